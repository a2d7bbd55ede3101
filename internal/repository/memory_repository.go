package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fuelrecon/internal/domain"
)

// MemoryRepository is the mutex-guarded reference implementation of
// ReconciliationRepository. The write lock makes Close a compare-and-swap:
// the status check and the transition happen under the same critical
// section, so concurrent closers see exactly one success.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.ReconciliationRecord
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]*domain.ReconciliationRecord),
		now:     time.Now,
	}
}

func recordKey(stationID, date string) string {
	return stationID + "|" + date
}

func (r *MemoryRepository) GetOrCreate(_ context.Context, stationID, date string) (*domain.ReconciliationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey(stationID, date)
	if record, ok := r.records[key]; ok {
		return copyRecord(record), nil
	}

	now := r.now()
	record := &domain.ReconciliationRecord{
		ID:        uuid.New().String(),
		StationID: stationID,
		Date:      date,
		Status:    domain.Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.records[key] = record

	return copyRecord(record), nil
}

func (r *MemoryRepository) Get(_ context.Context, stationID, date string) (*domain.ReconciliationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[recordKey(stationID, date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRecord(record), nil
}

func (r *MemoryRepository) SaveDraft(_ context.Context, stationID, date string, amounts domain.UserEnteredAmounts) (*domain.ReconciliationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordKey(stationID, date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if record.Status == domain.Closed {
		return nil, domain.ErrAlreadyClosed
	}

	entered := amounts
	record.UserEntered = &entered
	record.UpdatedAt = r.now()

	return copyRecord(record), nil
}

func (r *MemoryRepository) Close(_ context.Context, stationID, date string, snapshot domain.CloseSnapshot) (*domain.ReconciliationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[recordKey(stationID, date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if record.Status != domain.Pending {
		return nil, domain.ErrAlreadyClosed
	}

	system := snapshot.System
	entered := snapshot.UserEntered
	diffs := snapshot.Differences
	closedBy := snapshot.ClosedBy
	closedAt := snapshot.ClosedAt

	record.Status = domain.Closed
	record.SystemCalculated = &system
	record.UserEntered = &entered
	record.Differences = &diffs
	record.ClosedBy = &closedBy
	record.ClosedAt = &closedAt
	record.Notes = snapshot.Notes
	record.UpdatedAt = r.now()

	return copyRecord(record), nil
}

func (r *MemoryRepository) ListByStation(_ context.Context, stationID, startDate, endDate string) ([]domain.ReconciliationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []domain.ReconciliationRecord
	for _, record := range r.records {
		if record.StationID != stationID {
			continue
		}
		if record.Date < startDate || record.Date > endDate {
			continue
		}
		records = append(records, *copyRecord(record))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})

	return records, nil
}

// copyRecord deep-copies so callers can never mutate stored state, which is
// what makes closed records immutable in this implementation.
func copyRecord(record *domain.ReconciliationRecord) *domain.ReconciliationRecord {
	out := *record

	if record.UserEntered != nil {
		entered := *record.UserEntered
		if record.UserEntered.CreditGiven != nil {
			credit := *record.UserEntered.CreditGiven
			entered.CreditGiven = &credit
		}
		out.UserEntered = &entered
	}
	if record.SystemCalculated != nil {
		system := *record.SystemCalculated
		system.FuelBreakdown = make(map[domain.FuelType]domain.FuelTotals, len(record.SystemCalculated.FuelBreakdown))
		for fuel, totals := range record.SystemCalculated.FuelBreakdown {
			system.FuelBreakdown[fuel] = totals
		}
		out.SystemCalculated = &system
	}
	if record.Differences != nil {
		diffs := *record.Differences
		if record.Differences.CreditDifference != nil {
			credit := *record.Differences.CreditDifference
			diffs.CreditDifference = &credit
		}
		out.Differences = &diffs
	}
	if record.ClosedBy != nil {
		closedBy := *record.ClosedBy
		out.ClosedBy = &closedBy
	}
	if record.ClosedAt != nil {
		closedAt := *record.ClosedAt
		out.ClosedAt = &closedAt
	}
	if record.Notes != nil {
		notes := *record.Notes
		out.Notes = &notes
	}

	return &out
}
