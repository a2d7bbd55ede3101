package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelrecon/internal/calculator"
	"fuelrecon/internal/domain"
	"fuelrecon/internal/repository"
	"fuelrecon/internal/service"
	"fuelrecon/internal/station"
)

// fixedNow is a Monday noon UTC; "today" for all tests is 2026-08-31.
var fixedNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

type fakeReader struct {
	mu     sync.Mutex
	totals map[string]domain.SystemCalculated
	errs   map[string]error
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		totals: make(map[string]domain.SystemCalculated),
		errs:   make(map[string]error),
	}
}

func (r *fakeReader) set(stationID, date string, totals domain.SystemCalculated) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals[stationID+"|"+date] = totals
}

func (r *fakeReader) fail(stationID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[stationID] = err
}

func (r *fakeReader) GetSystemTotals(_ context.Context, stationID, date string) (*domain.SystemCalculated, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.errs[stationID]; ok {
		return nil, err
	}
	totals, ok := r.totals[stationID+"|"+date]
	if !ok {
		return nil, domain.ErrNoSalesData
	}
	return &totals, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.DayClosedEvent
}

func (n *fakeNotifier) DayClosed(_ context.Context, event domain.DayClosedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func salesDay(cash, card, upi, credit int64) domain.SystemCalculated {
	return domain.SystemCalculated{
		CashSales:    dec(cash),
		CardSales:    dec(card),
		UpiSales:     dec(upi),
		CreditSales:  dec(credit),
		TotalRevenue: dec(cash + card + upi + credit),
		TotalVolume:  dec(100),
		FuelBreakdown: map[domain.FuelType]domain.FuelTotals{
			domain.Petrol: {Volume: dec(100), Revenue: dec(cash + card + upi + credit)},
		},
	}
}

type bench struct {
	svc      service.ReconciliationService
	repo     *repository.MemoryRepository
	reader   *fakeReader
	notifier *fakeNotifier
}

func newBench(t *testing.T, stations ...domain.Station) *bench {
	t.Helper()
	if len(stations) == 0 {
		stations = []domain.Station{{ID: "st-1", Name: "Highway One", Timezone: "UTC", Active: true}}
	}

	repo := repository.NewMemoryRepository()
	reader := newFakeReader()
	notifier := &fakeNotifier{}

	svc := service.NewReconciliationService(
		repo,
		reader,
		station.NewMemoryDirectory(stations...),
		calculator.New(calculator.DefaultThresholds()),
		notifier,
		nil,
		service.Options{Now: func() time.Time { return fixedNow }},
	)

	return &bench{svc: svc, repo: repo, reader: reader, notifier: notifier}
}

func TestGetSummary_UnknownStation(t *testing.T) {
	b := newBench(t)

	_, err := b.svc.GetSummary(context.Background(), "nope", "2026-08-30")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetSummary_NoSalesDataReturnsZeros(t *testing.T) {
	b := newBench(t)

	summary, err := b.svc.GetSummary(context.Background(), "st-1", "2026-08-30")
	require.NoError(t, err)
	assert.False(t, summary.HasData)
	assert.True(t, summary.SystemCalculated.TotalRevenue.IsZero())
	assert.True(t, summary.Differences.TotalDifference.IsZero())
	assert.False(t, summary.IsReconciled)
}

func TestGetSummary_AbsentUserReport(t *testing.T) {
	b := newBench(t)
	b.reader.set("st-1", "2026-08-30", salesDay(200, 0, 0, 0))

	summary, err := b.svc.GetSummary(context.Background(), "st-1", "2026-08-30")
	require.NoError(t, err)
	assert.True(t, summary.Differences.CashDifference.Equal(dec(-200)))
	assert.True(t, summary.Differences.TotalDifference.Equal(dec(-200)))
	assert.Equal(t, domain.SeverityCritical, summary.Severities.Total)
}

func TestGetSummary_Idempotent(t *testing.T) {
	b := newBench(t)
	b.reader.set("st-1", "2026-08-30", salesDay(1000, 500, 300, 0))

	_, err := b.svc.SaveCashReport(context.Background(), service.CashReportRequest{
		StationID:     "st-1",
		Date:          "2026-08-30",
		CashCollected: dec(1005),
		CardCollected: dec(500),
		UpiCollected:  dec(290),
	})
	require.NoError(t, err)

	first, err := b.svc.GetSummary(context.Background(), "st-1", "2026-08-30")
	require.NoError(t, err)
	second, err := b.svc.GetSummary(context.Background(), "st-1", "2026-08-30")
	require.NoError(t, err)

	assert.Equal(t, first.Differences, second.Differences)
	assert.Equal(t, first.Severities, second.Severities)
	assert.True(t, first.Differences.TotalDifference.Equal(dec(-5)))
}

func TestCloseDay_ClosedIsFrozen(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()
	b.reader.set("st-1", "2026-08-30", salesDay(1000, 0, 0, 0))

	_, err := b.svc.SaveCashReport(ctx, service.CashReportRequest{
		StationID:     "st-1",
		Date:          "2026-08-30",
		CashCollected: dec(990),
	})
	require.NoError(t, err)

	closed, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1",
		Date:      "2026-08-30",
		ClosedBy:  "manager@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Closed, closed.Status)

	// A late upstream correction must not change the frozen snapshot.
	b.reader.set("st-1", "2026-08-30", salesDay(5000, 0, 0, 0))

	summary, err := b.svc.GetSummary(ctx, "st-1", "2026-08-30")
	require.NoError(t, err)
	assert.True(t, summary.IsReconciled)
	assert.True(t, summary.UserEntered.CashCollected.Equal(dec(990)))
	assert.True(t, summary.Differences.CashDifference.Equal(dec(-10)), "differences frozen at close time")
	assert.True(t, summary.SystemCalculated.CashSales.Equal(dec(5000)), "live system view may drift")
	require.NotNil(t, summary.ReconciledBy)
	assert.Equal(t, "manager@example.com", *summary.ReconciledBy)
}

func TestCloseDay_NotIdempotent(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()

	req := service.CloseDayRequest{StationID: "st-1", Date: "2026-08-30", ClosedBy: "manager@example.com"}
	_, err := b.svc.CloseDay(ctx, req)
	require.NoError(t, err)

	_, err = b.svc.CloseDay(ctx, req)
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
}

func TestCloseDay_WindowBoundary(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()

	// today - 7 is the last closable day
	_, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-24", ClosedBy: "manager@example.com",
	})
	assert.NoError(t, err)

	// today - 8 is out
	_, err = b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-23", ClosedBy: "manager@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrWindowExceeded)
	assert.Contains(t, err.Error(), "8 days old", "failure explains why")
}

func TestCloseDay_DayNotYetComplete(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()

	_, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-31", ClosedBy: "manager@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrDayNotYetComplete)

	// explicit override permits administrative same-day closure
	record, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-31", ClosedBy: "manager@example.com", Override: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Closed, record.Status)
}

func TestCloseDay_StationLocalDayEnd(t *testing.T) {
	// At 12:00 UTC on 2026-08-31 it is already past midnight in Kolkata,
	// but 2026-08-31 itself is still in progress there.
	b := newBench(t, domain.Station{ID: "st-in", Name: "NH48 Gurgaon", Timezone: "Asia/Kolkata", Active: true})
	ctx := context.Background()

	_, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-in", Date: "2026-08-31", ClosedBy: "manager@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrDayNotYetComplete)

	_, err = b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-in", Date: "2026-08-30", ClosedBy: "manager@example.com",
	})
	assert.NoError(t, err)
}

func TestCloseDay_ConcurrentSingleWinner(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()

	const closers = 2
	errs := make([]error, closers)
	var wg sync.WaitGroup
	for i := 0; i < closers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.svc.CloseDay(ctx, service.CloseDayRequest{
				StationID: "st-1", Date: "2026-08-30", ClosedBy: "manager@example.com",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, b.notifier.events, 1, "one close, one event")
}

func TestCloseDay_EmitsDayClosedEvent(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()
	b.reader.set("st-1", "2026-08-30", salesDay(300, 0, 0, 0))

	_, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-30", ClosedBy: "manager@example.com",
	})
	require.NoError(t, err)

	require.Len(t, b.notifier.events, 1)
	event := b.notifier.events[0]
	assert.Equal(t, "st-1", event.StationID)
	assert.Equal(t, "2026-08-30", event.Date)
	assert.Equal(t, "manager@example.com", event.ClosedBy)
	assert.True(t, event.TotalDifference.Equal(dec(-300)))
}

func TestCloseDay_UpstreamFailureMutatesNothing(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()
	b.reader.fail("st-1", errors.New("connection refused"))

	_, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-30", ClosedBy: "manager@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	record, err := b.repo.Get(ctx, "st-1", "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, domain.Pending, record.Status, "failed close leaves the record untouched")
}

func TestSaveCashReport(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()

	creditGiven := dec(50)
	record, err := b.svc.SaveCashReport(ctx, service.CashReportRequest{
		StationID:     "st-1",
		Date:          "2026-08-30",
		CashCollected: dec(700),
		CardCollected: dec(200),
		UpiCollected:  dec(100),
		CreditGiven:   &creditGiven,
	})
	require.NoError(t, err)
	require.NotNil(t, record.UserEntered)
	assert.True(t, record.UserEntered.TotalCollected.Equal(dec(1000)),
		"credit given stays out of totalCollected")

	_, err = b.svc.SaveCashReport(ctx, service.CashReportRequest{
		StationID:     "st-1",
		Date:          "2026-08-30",
		CashCollected: dec(-1),
	})
	assert.ErrorIs(t, err, service.ErrInvalidReport)

	_, err = b.svc.SaveCashReport(ctx, service.CashReportRequest{
		StationID: "nope", Date: "2026-08-30",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveCashReport_RejectedAfterClose(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()

	_, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-30", ClosedBy: "manager@example.com",
	})
	require.NoError(t, err)

	_, err = b.svc.SaveCashReport(ctx, service.CashReportRequest{
		StationID: "st-1", Date: "2026-08-30", CashCollected: dec(100),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
}

func TestGetDashboard_PartialFailure(t *testing.T) {
	b := newBench(t,
		domain.Station{ID: "st-1", Name: "Highway One", Timezone: "UTC", Active: true},
		domain.Station{ID: "st-2", Name: "City Center", Timezone: "UTC", Active: true},
		domain.Station{ID: "st-3", Name: "Airport Road", Timezone: "UTC", Active: true},
	)
	ctx := context.Background()

	b.reader.set("st-1", "2026-08-31", salesDay(400, 100, 0, 0))
	b.reader.set("st-2", "2026-08-31", salesDay(250, 0, 50, 0))
	b.reader.fail("st-3", errors.New("connection refused"))

	dashboard, err := b.svc.GetDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-31", dashboard.Today)
	assert.Equal(t, 3, dashboard.Summary.TotalStations)
	require.Len(t, dashboard.Stations, 3)

	byID := make(map[string]domain.StationStatus)
	for _, status := range dashboard.Stations {
		byID[status.ID] = status
	}

	assert.NotEmpty(t, byID["st-3"].Error, "failed station reported inline")
	assert.Empty(t, byID["st-1"].Error)
	assert.True(t, byID["st-1"].HasData)
	assert.True(t, byID["st-1"].SystemTotal.Equal(dec(500)))

	assert.Equal(t, 0, dashboard.Summary.ReconciledToday)
	assert.Equal(t, 2, dashboard.Summary.PendingReconciliation, "failed station excluded from rollups")
	// no reports submitted: each pending difference is the negated system total
	assert.True(t, dashboard.Summary.TotalDifferences.Equal(dec(800)))
}

func TestGetDashboard_CountsReconciled(t *testing.T) {
	b := newBench(t,
		domain.Station{ID: "st-1", Name: "Highway One", Timezone: "UTC", Active: true},
		domain.Station{ID: "st-2", Name: "City Center", Timezone: "UTC", Active: true},
	)
	ctx := context.Background()

	_, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-31", ClosedBy: "manager@example.com", Override: true,
	})
	require.NoError(t, err)

	dashboard, err := b.svc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.Summary.ReconciledToday)
	assert.Equal(t, 1, dashboard.Summary.PendingReconciliation)
}

func TestListOpenDays(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()

	b.reader.set("st-1", "2026-08-28", salesDay(500, 0, 0, 0))
	b.reader.set("st-1", "2026-08-29", salesDay(700, 0, 0, 0))
	// 2026-08-27 has no sales and should not appear

	_, err := b.svc.CloseDay(ctx, service.CloseDayRequest{
		StationID: "st-1", Date: "2026-08-28", ClosedBy: "manager@example.com",
	})
	require.NoError(t, err)

	openDays, err := b.svc.ListOpenDays(ctx, "st-1")
	require.NoError(t, err)
	require.Len(t, openDays, 1)
	assert.Equal(t, "2026-08-29", openDays[0].Date)
	assert.True(t, openDays[0].SystemTotal.Equal(dec(700)))
}

func TestGetAnalytics(t *testing.T) {
	b := newBench(t)
	ctx := context.Background()

	b.reader.set("st-1", "2026-08-28", salesDay(100, 0, 0, 0))
	b.reader.set("st-1", "2026-08-29", salesDay(100, 0, 0, 0))

	for _, day := range []struct {
		date string
		cash int64
	}{
		{"2026-08-28", 100}, // perfect match
		{"2026-08-29", 90},  // short by 10
	} {
		_, err := b.svc.SaveCashReport(ctx, service.CashReportRequest{
			StationID: "st-1", Date: day.date, CashCollected: dec(day.cash),
		})
		require.NoError(t, err)
		_, err = b.svc.CloseDay(ctx, service.CloseDayRequest{
			StationID: "st-1", Date: day.date, ClosedBy: "manager@example.com",
		})
		require.NoError(t, err)
	}

	// a pending draft that must not affect closed-record statistics
	_, err := b.svc.GetSummary(ctx, "st-1", "2026-08-30")
	require.NoError(t, err)

	analytics, err := b.svc.GetAnalytics(ctx, "st-1", "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, 3, analytics.TotalRecords)
	assert.Equal(t, 2, analytics.ClosedRecords)
	assert.True(t, analytics.AverageDiscrepancy.Equal(dec(5)))
	assert.True(t, analytics.LargestDiscrepancy.Equal(dec(10)))
	assert.InDelta(t, 50.0, analytics.ReconciliationRate, 0.001)
}
