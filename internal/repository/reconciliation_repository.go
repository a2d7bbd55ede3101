package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fuelrecon/internal/domain"
	"fuelrecon/pkg/logger"
)

// ReconciliationRepository persists one record per (station, date). Close
// must be an atomic compare-and-swap on status so concurrent closers yield
// exactly one success.
type ReconciliationRepository interface {
	GetOrCreate(ctx context.Context, stationID, date string) (*domain.ReconciliationRecord, error)
	Get(ctx context.Context, stationID, date string) (*domain.ReconciliationRecord, error)
	SaveDraft(ctx context.Context, stationID, date string, amounts domain.UserEnteredAmounts) (*domain.ReconciliationRecord, error)
	Close(ctx context.Context, stationID, date string, snapshot domain.CloseSnapshot) (*domain.ReconciliationRecord, error)
	ListByStation(ctx context.Context, stationID, startDate, endDate string) ([]domain.ReconciliationRecord, error)
}

type reconciliationRepository struct {
	db *sql.DB
}

// NewReconciliationRepository returns the Postgres-backed repository.
func NewReconciliationRepository(db *sql.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

const recordColumns = `
	id, station_id, to_char(date, 'YYYY-MM-DD'), status,
	cash_collected, card_collected, upi_collected, credit_given, total_collected,
	system_snapshot, differences,
	closed_by, closed_at, notes, created_at, updated_at
`

func (r *reconciliationRepository) GetOrCreate(ctx context.Context, stationID, date string) (*domain.ReconciliationRecord, error) {
	insert := `
		INSERT INTO reconciliation_records (id, station_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (station_id, date) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, insert, uuid.New().String(), stationID, date, domain.Pending); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to create reconciliation record")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	return r.Get(ctx, stationID, date)
}

func (r *reconciliationRepository) Get(ctx context.Context, stationID, date string) (*domain.ReconciliationRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM reconciliation_records
		WHERE station_id = $1 AND date = $2
	`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, stationID, date))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get reconciliation record")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	return record, nil
}

func (r *reconciliationRepository) SaveDraft(ctx context.Context, stationID, date string, amounts domain.UserEnteredAmounts) (*domain.ReconciliationRecord, error) {
	update := `
		UPDATE reconciliation_records
		SET cash_collected = $3, card_collected = $4, upi_collected = $5,
			credit_given = $6, total_collected = $7, updated_at = NOW()
		WHERE station_id = $1 AND date = $2 AND status = $8
		RETURNING ` + recordColumns

	record, err := scanRecord(r.db.QueryRowContext(ctx, update,
		stationID, date,
		amounts.CashCollected, amounts.CardCollected, amounts.UpiCollected,
		nullDecimal(amounts.CreditGiven), amounts.TotalCollected,
		domain.Pending,
	))
	if err == sql.ErrNoRows {
		return nil, r.mutationConflict(ctx, stationID, date)
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to save cash report draft")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	return record, nil
}

// Close performs the pending-to-closed transition. The status predicate in
// the WHERE clause is the compare-and-swap: of two concurrent closers only
// one update matches a Pending row.
func (r *reconciliationRepository) Close(ctx context.Context, stationID, date string, snapshot domain.CloseSnapshot) (*domain.ReconciliationRecord, error) {
	systemJSON, err := json.Marshal(snapshot.System)
	if err != nil {
		return nil, fmt.Errorf("marshal system snapshot: %w", err)
	}
	diffJSON, err := json.Marshal(snapshot.Differences)
	if err != nil {
		return nil, fmt.Errorf("marshal differences: %w", err)
	}

	update := `
		UPDATE reconciliation_records
		SET status = $3,
			cash_collected = $4, card_collected = $5, upi_collected = $6,
			credit_given = $7, total_collected = $8,
			system_snapshot = $9, differences = $10,
			closed_by = $11, closed_at = $12, notes = $13, updated_at = NOW()
		WHERE station_id = $1 AND date = $2 AND status = $14
		RETURNING ` + recordColumns

	record, err := scanRecord(r.db.QueryRowContext(ctx, update,
		stationID, date, domain.Closed,
		snapshot.UserEntered.CashCollected, snapshot.UserEntered.CardCollected,
		snapshot.UserEntered.UpiCollected, nullDecimal(snapshot.UserEntered.CreditGiven),
		snapshot.UserEntered.TotalCollected,
		systemJSON, diffJSON,
		snapshot.ClosedBy, snapshot.ClosedAt, snapshot.Notes,
		domain.Pending,
	))
	if err == sql.ErrNoRows {
		return nil, r.mutationConflict(ctx, stationID, date)
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to close reconciliation record")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	return record, nil
}

func (r *reconciliationRepository) ListByStation(ctx context.Context, stationID, startDate, endDate string) ([]domain.ReconciliationRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM reconciliation_records
		WHERE station_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, stationID, startDate, endDate)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to list reconciliation records")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	var records []domain.ReconciliationRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan reconciliation record")
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// mutationConflict distinguishes "row is closed" from "row never existed"
// after a zero-row CAS update.
func (r *reconciliationRepository) mutationConflict(ctx context.Context, stationID, date string) error {
	record, err := r.Get(ctx, stationID, date)
	if err != nil {
		return err
	}
	if record.Status == domain.Closed {
		return domain.ErrAlreadyClosed
	}
	return domain.ErrNotFound
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*domain.ReconciliationRecord, error) {
	var record domain.ReconciliationRecord
	var cash, card, upi, credit, total decimal.NullDecimal
	var systemJSON, diffJSON []byte
	var closedBy, notes sql.NullString
	var closedAt sql.NullTime

	err := row.Scan(
		&record.ID,
		&record.StationID,
		&record.Date,
		&record.Status,
		&cash, &card, &upi, &credit, &total,
		&systemJSON, &diffJSON,
		&closedBy, &closedAt, &notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cash.Valid {
		amounts := domain.UserEnteredAmounts{
			CashCollected:  cash.Decimal,
			CardCollected:  card.Decimal,
			UpiCollected:   upi.Decimal,
			TotalCollected: total.Decimal,
		}
		if credit.Valid {
			c := credit.Decimal
			amounts.CreditGiven = &c
		}
		record.UserEntered = &amounts
	}

	if len(systemJSON) > 0 {
		var system domain.SystemCalculated
		if err := json.Unmarshal(systemJSON, &system); err != nil {
			return nil, fmt.Errorf("unmarshal system snapshot: %w", err)
		}
		record.SystemCalculated = &system
	}
	if len(diffJSON) > 0 {
		var diffs domain.DifferenceSet
		if err := json.Unmarshal(diffJSON, &diffs); err != nil {
			return nil, fmt.Errorf("unmarshal differences: %w", err)
		}
		record.Differences = &diffs
	}

	if closedBy.Valid {
		record.ClosedBy = &closedBy.String
	}
	if closedAt.Valid {
		t := closedAt.Time
		record.ClosedAt = &t
	}
	if notes.Valid {
		record.Notes = &notes.String
	}

	return &record, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
