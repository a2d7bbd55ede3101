package station

import (
	"context"
	"database/sql"
	"fmt"

	"fuelrecon/internal/domain"
	"fuelrecon/pkg/logger"
)

type postgresDirectory struct {
	db *sql.DB
}

// NewPostgresDirectory returns a Directory backed by the stations table.
func NewPostgresDirectory(db *sql.DB) Directory {
	return &postgresDirectory{db: db}
}

func (d *postgresDirectory) Get(ctx context.Context, stationID string) (*domain.Station, error) {
	query := `
		SELECT id, name, timezone, active
		FROM stations
		WHERE id = $1
	`

	var s domain.Station
	err := d.db.QueryRowContext(ctx, query, stationID).Scan(&s.ID, &s.Name, &s.Timezone, &s.Active)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get station")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	return &s, nil
}

func (d *postgresDirectory) ListActive(ctx context.Context) ([]domain.Station, error) {
	query := `
		SELECT id, name, timezone, active
		FROM stations
		WHERE active = true
		ORDER BY name
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to list stations")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Timezone, &s.Active); err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan station")
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		stations = append(stations, s)
	}

	return stations, rows.Err()
}
