package station

import (
	"context"
	"sync"

	"fuelrecon/internal/domain"
)

// Directory answers which stations exist, which are active, and what
// timezone governs each station's business day.
type Directory interface {
	Get(ctx context.Context, stationID string) (*domain.Station, error)
	ListActive(ctx context.Context) ([]domain.Station, error)
}

// MemoryDirectory is a fixed in-memory Directory, used in tests and
// single-tenant deployments configured from the environment.
type MemoryDirectory struct {
	mu       sync.RWMutex
	stations map[string]domain.Station
	order    []string
}

func NewMemoryDirectory(stations ...domain.Station) *MemoryDirectory {
	d := &MemoryDirectory{stations: make(map[string]domain.Station)}
	for _, s := range stations {
		d.stations[s.ID] = s
		d.order = append(d.order, s.ID)
	}
	return d
}

func (d *MemoryDirectory) Get(_ context.Context, stationID string) (*domain.Station, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.stations[stationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (d *MemoryDirectory) ListActive(_ context.Context) ([]domain.Station, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	active := make([]domain.Station, 0, len(d.order))
	for _, id := range d.order {
		if s := d.stations[id]; s.Active {
			active = append(active, s)
		}
	}
	return active, nil
}
