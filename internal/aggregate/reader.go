package aggregate

import (
	"context"

	"fuelrecon/internal/domain"
)

// Reader supplies the authoritative system-calculated sales aggregate for a
// (station, date) pair. Implementations return domain.ErrNoSalesData when
// the station recorded no sales that day.
type Reader interface {
	GetSystemTotals(ctx context.Context, stationID, date string) (*domain.SystemCalculated, error)
}
