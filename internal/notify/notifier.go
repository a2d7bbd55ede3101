package notify

import (
	"context"

	"fuelrecon/internal/domain"
	"fuelrecon/pkg/logger"
)

// Notifier receives the DayClosed event after a successful close. Delivery
// is best-effort; the close itself never depends on it.
type Notifier interface {
	DayClosed(ctx context.Context, event domain.DayClosedEvent) error
}

// LogNotifier writes close events to the structured log as an audit trail.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) DayClosed(_ context.Context, event domain.DayClosedEvent) error {
	logger.GetLogger().WithFields(map[string]interface{}{
		"station_id":       event.StationID,
		"date":             event.Date,
		"closed_by":        event.ClosedBy,
		"total_difference": event.TotalDifference.String(),
	}).Info("Business day closed")
	return nil
}
