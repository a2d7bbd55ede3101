package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fuelrecon/internal/aggregate"
	"fuelrecon/internal/calculator"
	"fuelrecon/internal/domain"
	"fuelrecon/internal/metrics"
	"fuelrecon/internal/notify"
	"fuelrecon/internal/repository"
	"fuelrecon/internal/station"
	"fuelrecon/pkg/logger"
)

// ErrInvalidReport rejects cash reports with negative channel amounts.
var ErrInvalidReport = errors.New("invalid cash report")

type ReconciliationService interface {
	GetSummary(ctx context.Context, stationID, date string) (*domain.ReconciliationSummary, error)
	CloseDay(ctx context.Context, req CloseDayRequest) (*domain.ReconciliationRecord, error)
	GetDashboard(ctx context.Context) (*domain.FleetSummary, error)
	SaveCashReport(ctx context.Context, req CashReportRequest) (*domain.ReconciliationRecord, error)
	ListRecords(ctx context.Context, stationID, startDate, endDate string) ([]domain.ReconciliationRecord, error)
	GetAnalytics(ctx context.Context, stationID, startDate, endDate string) (*domain.ReconciliationAnalytics, error)
	ListOpenDays(ctx context.Context, stationID string) ([]domain.OpenDay, error)
}

// CloseDayRequest carries a supervisor's close-day action. Override skips
// the station-local day-end check for administrative corrections.
type CloseDayRequest struct {
	StationID string
	Date      string
	ClosedBy  string
	Notes     *string
	Override  bool
}

// CashReportRequest is the validated output of the attendant cash report form.
type CashReportRequest struct {
	StationID     string
	Date          string
	CashCollected decimal.Decimal
	CardCollected decimal.Decimal
	UpiCollected  decimal.Decimal
	CreditGiven   *decimal.Decimal
}

// Options tune the engine; zero values fall back to defaults.
type Options struct {
	WindowDays           int              // backdated-closure window, default 7
	DashboardConcurrency int              // dashboard fan-out bound, default 8
	Now                  func() time.Time // injectable clock
}

type reconciliationService struct {
	repo     repository.ReconciliationRepository
	reader   aggregate.Reader
	stations station.Directory
	calc     *calculator.Calculator
	notifier notify.Notifier
	metrics  *metrics.Metrics

	windowDays int
	workers    int
	now        func() time.Time
}

func NewReconciliationService(
	repo repository.ReconciliationRepository,
	reader aggregate.Reader,
	stations station.Directory,
	calc *calculator.Calculator,
	notifier notify.Notifier,
	m *metrics.Metrics,
	opts Options,
) ReconciliationService {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 7
	}
	if opts.DashboardConcurrency <= 0 {
		opts.DashboardConcurrency = 8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &reconciliationService{
		repo:       repo,
		reader:     reader,
		stations:   stations,
		calc:       calc,
		notifier:   notifier,
		metrics:    m,
		windowDays: opts.WindowDays,
		workers:    opts.DashboardConcurrency,
		now:        opts.Now,
	}
}

// GetSummary joins the repository record with the live system aggregate.
// Pending records get live-recomputed differences; closed records return the
// snapshot frozen at close time, with only SystemCalculated read live.
func (s *reconciliationService) GetSummary(ctx context.Context, stationID, date string) (*domain.ReconciliationSummary, error) {
	st, err := s.stations.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	loc := s.location(st)

	if _, err := time.ParseInLocation(domain.DateLayout, date, loc); err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}

	record, err := s.repo.GetOrCreate(ctx, stationID, date)
	if err != nil {
		return nil, err
	}

	system, hasData, err := s.systemTotals(ctx, stationID, date)
	if err != nil {
		return nil, err
	}

	summary := &domain.ReconciliationSummary{
		StationID:         stationID,
		StationName:       st.Name,
		Date:              date,
		SystemCalculated:  system,
		HasData:           hasData,
		CanCloseBackdated: s.withinWindow(date, loc),
	}

	if record.Status == domain.Closed {
		summary.IsReconciled = true
		summary.ReconciledBy = record.ClosedBy
		summary.ReconciledAt = record.ClosedAt
		summary.UserEntered = enteredOrZero(record.UserEntered)
		if record.Differences != nil {
			summary.Differences = *record.Differences
			summary.Severities = s.calc.ClassifySet(*record.Differences)
		}
		return summary, nil
	}

	summary.UserEntered = enteredOrZero(record.UserEntered)
	summary.Differences, summary.Severities = s.calc.Calculate(system, record.UserEntered)

	return summary, nil
}

// CloseDay validates the eligibility rules, snapshots the current state and
// performs the one-way pending-to-closed transition.
func (s *reconciliationService) CloseDay(ctx context.Context, req CloseDayRequest) (*domain.ReconciliationRecord, error) {
	st, err := s.stations.Get(ctx, req.StationID)
	if err != nil {
		return nil, err
	}
	loc := s.location(st)

	day, err := time.ParseInLocation(domain.DateLayout, req.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", req.Date)
	}

	record, err := s.repo.GetOrCreate(ctx, req.StationID, req.Date)
	if err != nil {
		return nil, err
	}
	if record.Status == domain.Closed {
		s.countCloseFailure("already_closed")
		return nil, fmt.Errorf("%w: %s closed this day at %s", domain.ErrAlreadyClosed,
			derefOr(record.ClosedBy, "someone"), formatClosedAt(record.ClosedAt))
	}

	now := s.now().In(loc)
	if age := daysBetween(day, startOfDay(now)); age > s.windowDays {
		s.countCloseFailure("window_exceeded")
		return nil, fmt.Errorf("%w: %s is %d days old, closures are allowed within %d days",
			domain.ErrWindowExceeded, req.Date, age, s.windowDays)
	}

	if endOfDay := day.AddDate(0, 0, 1); now.Before(endOfDay) && !req.Override {
		s.countCloseFailure("day_not_complete")
		return nil, fmt.Errorf("%w: the business day at %s ends at %s station time",
			domain.ErrDayNotYetComplete, st.Name, endOfDay.Format("2006-01-02 15:04"))
	}

	system, _, err := s.systemTotals(ctx, req.StationID, req.Date)
	if err != nil {
		return nil, err
	}

	differences, _ := s.calc.Calculate(system, record.UserEntered)

	snapshot := domain.CloseSnapshot{
		System:      system,
		UserEntered: enteredOrZero(record.UserEntered),
		Differences: differences,
		ClosedBy:    req.ClosedBy,
		ClosedAt:    s.now(),
		Notes:       req.Notes,
	}

	closed, err := s.repo.Close(ctx, req.StationID, req.Date, snapshot)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyClosed) {
			s.countCloseFailure("already_closed")
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DaysClosed.WithLabelValues(req.StationID).Inc()
	}

	event := domain.DayClosedEvent{
		StationID:       req.StationID,
		Date:            req.Date,
		ClosedBy:        req.ClosedBy,
		TotalDifference: differences.TotalDifference,
		ClosedAt:        snapshot.ClosedAt,
	}
	if err := s.notifier.DayClosed(ctx, event); err != nil {
		logger.GetLogger().WithError(err).WithField("station_id", req.StationID).
			Warn("Failed to publish day-closed event")
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"station_id": req.StationID,
		"date":       req.Date,
		"closed_by":  req.ClosedBy,
	}).Info("Reconciliation day closed")

	return closed, nil
}

// GetDashboard summarizes every active station for its local current day.
// Per-station failures become an inline error field; they never abort the
// rest of the fleet.
func (s *reconciliationService) GetDashboard(ctx context.Context) (*domain.FleetSummary, error) {
	stations, err := s.stations.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.StationStatus, len(stations))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, st := range stations {
		wg.Add(1)
		go func(i int, st domain.Station) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			date := s.now().In(s.location(&st)).Format(domain.DateLayout)
			summary, err := s.GetSummary(ctx, st.ID, date)
			if err != nil {
				logger.GetLogger().WithError(err).WithField("station_id", st.ID).
					Warn("Failed to summarize station for dashboard")
				statuses[i] = domain.StationStatus{
					ID:              st.ID,
					Name:            st.Name,
					TotalDifference: decimal.Zero,
					SystemTotal:     decimal.Zero,
					UserTotal:       decimal.Zero,
					Error:           err.Error(),
				}
				return
			}

			statuses[i] = domain.StationStatus{
				ID:                st.ID,
				Name:              st.Name,
				HasData:           summary.HasData,
				IsReconciled:      summary.IsReconciled,
				TotalDifference:   summary.Differences.TotalDifference,
				SystemTotal:       summary.SystemCalculated.TotalRevenue,
				UserTotal:         summary.UserEntered.TotalCollected,
				CanCloseBackdated: summary.CanCloseBackdated,
			}
		}(i, st)
	}
	wg.Wait()

	totals := domain.DashboardTotals{
		TotalStations:    len(stations),
		TotalDifferences: decimal.Zero,
	}
	for _, status := range statuses {
		if status.Error != "" {
			continue
		}
		if status.IsReconciled {
			totals.ReconciledToday++
		} else {
			totals.PendingReconciliation++
			totals.TotalDifferences = totals.TotalDifferences.Add(status.TotalDifference.Abs())
		}
	}

	return &domain.FleetSummary{
		Today:    s.now().Format(domain.DateLayout),
		Stations: statuses,
		Summary:  totals,
	}, nil
}

// SaveCashReport persists the attendant's amounts as a draft against the
// pending record. Closed days reject the write with AlreadyClosed.
func (s *reconciliationService) SaveCashReport(ctx context.Context, req CashReportRequest) (*domain.ReconciliationRecord, error) {
	if req.CashCollected.IsNegative() || req.CardCollected.IsNegative() || req.UpiCollected.IsNegative() ||
		(req.CreditGiven != nil && req.CreditGiven.IsNegative()) {
		return nil, fmt.Errorf("%w: amounts must not be negative", ErrInvalidReport)
	}

	st, err := s.stations.Get(ctx, req.StationID)
	if err != nil {
		return nil, err
	}
	if _, err := time.ParseInLocation(domain.DateLayout, req.Date, s.location(st)); err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", req.Date)
	}

	if _, err := s.repo.GetOrCreate(ctx, req.StationID, req.Date); err != nil {
		return nil, err
	}

	amounts := domain.UserEnteredAmounts{
		CashCollected:  req.CashCollected,
		CardCollected:  req.CardCollected,
		UpiCollected:   req.UpiCollected,
		CreditGiven:    req.CreditGiven,
		TotalCollected: req.CashCollected.Add(req.CardCollected).Add(req.UpiCollected),
	}

	return s.repo.SaveDraft(ctx, req.StationID, req.Date, amounts)
}

func (s *reconciliationService) ListRecords(ctx context.Context, stationID, startDate, endDate string) ([]domain.ReconciliationRecord, error) {
	if _, err := s.stations.Get(ctx, stationID); err != nil {
		return nil, err
	}
	return s.repo.ListByStation(ctx, stationID, startDate, endDate)
}

// GetAnalytics reports discrepancy statistics over the closed records of a
// station in a date range. Pending records count toward TotalRecords only;
// their differences are not final.
func (s *reconciliationService) GetAnalytics(ctx context.Context, stationID, startDate, endDate string) (*domain.ReconciliationAnalytics, error) {
	records, err := s.ListRecords(ctx, stationID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	analytics := &domain.ReconciliationAnalytics{
		TotalRecords:       len(records),
		AverageDiscrepancy: decimal.Zero,
		LargestDiscrepancy: decimal.Zero,
	}

	sum := decimal.Zero
	matched := 0
	for _, record := range records {
		if record.Status != domain.Closed || record.Differences == nil {
			continue
		}
		analytics.ClosedRecords++

		abs := record.Differences.TotalDifference.Abs()
		sum = sum.Add(abs)
		if abs.GreaterThan(analytics.LargestDiscrepancy) {
			analytics.LargestDiscrepancy = abs
		}
		if s.calc.Classify(record.Differences.TotalDifference) == domain.SeverityOK {
			matched++
		}
	}

	if analytics.ClosedRecords > 0 {
		analytics.AverageDiscrepancy = sum.Div(decimal.NewFromInt(int64(analytics.ClosedRecords)))
		analytics.ReconciliationRate = float64(matched) / float64(analytics.ClosedRecords) * 100
	}

	return analytics, nil
}

// ListOpenDays returns past dates inside the closure window that have sales
// data but no closed record, for one station or the whole active fleet.
func (s *reconciliationService) ListOpenDays(ctx context.Context, stationID string) ([]domain.OpenDay, error) {
	var stations []domain.Station
	if stationID != "" {
		st, err := s.stations.Get(ctx, stationID)
		if err != nil {
			return nil, err
		}
		stations = []domain.Station{*st}
	} else {
		var err error
		stations, err = s.stations.ListActive(ctx)
		if err != nil {
			return nil, err
		}
	}

	openDays := make([]domain.OpenDay, 0)
	for _, st := range stations {
		loc := s.location(&st)
		today := startOfDay(s.now().In(loc))

		for age := s.windowDays; age >= 1; age-- {
			date := today.AddDate(0, 0, -age).Format(domain.DateLayout)

			record, err := s.repo.Get(ctx, st.ID, date)
			if err == nil && record.Status == domain.Closed {
				continue
			}
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}

			system, hasData, err := s.systemTotals(ctx, st.ID, date)
			if err != nil {
				logger.GetLogger().WithError(err).WithField("station_id", st.ID).
					Warn("Skipping station-day in open-days listing")
				continue
			}
			if !hasData {
				continue
			}

			openDays = append(openDays, domain.OpenDay{
				StationID:   st.ID,
				Date:        date,
				SystemTotal: system.TotalRevenue,
			})
		}
	}

	return openDays, nil
}

// systemTotals reads the live aggregate, mapping a day without sales onto an
// all-zero system side instead of an error.
func (s *reconciliationService) systemTotals(ctx context.Context, stationID, date string) (domain.SystemCalculated, bool, error) {
	system, err := s.reader.GetSystemTotals(ctx, stationID, date)
	if errors.Is(err, domain.ErrNoSalesData) {
		return domain.EmptySystemCalculated(), false, nil
	}
	if err != nil {
		return domain.SystemCalculated{}, false, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return *system, true, nil
}

func (s *reconciliationService) withinWindow(date string, loc *time.Location) bool {
	day, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return false
	}
	return daysBetween(day, startOfDay(s.now().In(loc))) <= s.windowDays
}

func (s *reconciliationService) location(st *domain.Station) *time.Location {
	loc, err := time.LoadLocation(st.Timezone)
	if err != nil {
		logger.GetLogger().WithField("station_id", st.ID).WithField("timezone", st.Timezone).
			Warn("Unknown station timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}

func (s *reconciliationService) countCloseFailure(reason string) {
	if s.metrics != nil {
		s.metrics.CloseFailures.WithLabelValues(reason).Inc()
	}
}

func enteredOrZero(amounts *domain.UserEnteredAmounts) domain.UserEnteredAmounts {
	if amounts != nil {
		return *amounts
	}
	return domain.UserEnteredAmounts{
		CashCollected:  decimal.Zero,
		CardCollected:  decimal.Zero,
		UpiCollected:   decimal.Zero,
		TotalCollected: decimal.Zero,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween rounds so a DST-shortened or lengthened day still counts as
// one calendar day.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Round(24*time.Hour) / (24 * time.Hour))
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}

func formatClosedAt(t *time.Time) string {
	if t == nil {
		return "an earlier time"
	}
	return t.Format(time.RFC3339)
}
