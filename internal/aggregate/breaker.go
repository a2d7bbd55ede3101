package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"fuelrecon/internal/domain"
	"fuelrecon/pkg/logger"
)

// BreakerReader wraps a Reader in a circuit breaker so a flapping upstream
// fails fast instead of stalling every summary and dashboard call.
type BreakerReader struct {
	inner Reader
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerReader(inner Reader) *BreakerReader {
	settings := gobreaker.Settings{
		Name:    "aggregation-reader",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A day without sales is a valid answer, not an outage.
			return err == nil || errors.Is(err, domain.ErrNoSalesData)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.GetLogger().WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &BreakerReader{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

func (r *BreakerReader) GetSystemTotals(ctx context.Context, stationID, date string) (*domain.SystemCalculated, error) {
	result, err := r.cb.Execute(func() (interface{}, error) {
		return r.inner.GetSystemTotals(ctx, stationID, date)
	})

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%w: aggregation reader circuit open", domain.ErrUpstreamUnavailable)
	}
	if err != nil {
		return nil, err
	}

	return result.(*domain.SystemCalculated), nil
}
