package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for all station-day keys.
const DateLayout = "2006-01-02"

// FuelType identifies a fuel product sold at a station.
type FuelType string

const (
	Petrol FuelType = "petrol"
	Diesel FuelType = "diesel"
	CNG    FuelType = "cng"
	LPG    FuelType = "lpg"
)

// RecordStatus represents the lifecycle state of a reconciliation record
type RecordStatus string

const (
	Pending RecordStatus = "Pending"
	Closed  RecordStatus = "Closed"
)

// Severity classifies how far a reported amount drifted from the system figure
type Severity string

const (
	SeverityOK       Severity = "OK"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// FuelTotals holds the per-fuel slice of a day's system aggregate.
type FuelTotals struct {
	Volume  decimal.Decimal `json:"volume"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SystemCalculated is the authoritative sales aggregate for one station-day,
// derived upstream from nozzle meter-reading deltas and fuel prices.
type SystemCalculated struct {
	TotalRevenue  decimal.Decimal         `json:"totalRevenue"`
	CashSales     decimal.Decimal         `json:"cashSales"`
	CardSales     decimal.Decimal         `json:"cardSales"`
	UpiSales      decimal.Decimal         `json:"upiSales"`
	CreditSales   decimal.Decimal         `json:"creditSales"`
	TotalVolume   decimal.Decimal         `json:"totalVolume"`
	FuelBreakdown map[FuelType]FuelTotals `json:"fuelBreakdown"`
}

// EmptySystemCalculated returns an all-zero aggregate for days without sales.
func EmptySystemCalculated() SystemCalculated {
	return SystemCalculated{
		TotalRevenue:  decimal.Zero,
		CashSales:     decimal.Zero,
		CardSales:     decimal.Zero,
		UpiSales:      decimal.Zero,
		CreditSales:   decimal.Zero,
		TotalVolume:   decimal.Zero,
		FuelBreakdown: map[FuelType]FuelTotals{},
	}
}

// UserEnteredAmounts is the cash report an attendant submits for one station-day.
// CreditGiven is tracked separately and never part of TotalCollected.
type UserEnteredAmounts struct {
	CashCollected  decimal.Decimal  `json:"cashCollected"`
	CardCollected  decimal.Decimal  `json:"cardCollected"`
	UpiCollected   decimal.Decimal  `json:"upiCollected"`
	CreditGiven    *decimal.Decimal `json:"creditGiven,omitempty"`
	TotalCollected decimal.Decimal  `json:"totalCollected"`
}

// DifferenceSet holds user-entered minus system-calculated per channel.
// CreditDifference is present only when the station had credit sales that day.
type DifferenceSet struct {
	CashDifference   decimal.Decimal  `json:"cashDifference"`
	CardDifference   decimal.Decimal  `json:"cardDifference"`
	UpiDifference    decimal.Decimal  `json:"upiDifference"`
	CreditDifference *decimal.Decimal `json:"creditDifference,omitempty"`
	TotalDifference  decimal.Decimal  `json:"totalDifference"`
}

// SeveritySet carries the per-channel classification of a DifferenceSet.
type SeveritySet struct {
	Cash   Severity  `json:"cash"`
	Card   Severity  `json:"card"`
	Upi    Severity  `json:"upi"`
	Credit *Severity `json:"credit,omitempty"`
	Total  Severity  `json:"total"`
}

// ReconciliationRecord is the one-per-(station, date) reconciliation state.
// SystemCalculated and Differences are populated only on close; while the
// record is Pending they are recomputed live and never persisted.
type ReconciliationRecord struct {
	ID               string              `json:"id"`
	StationID        string              `json:"stationId"`
	Date             string              `json:"date"`
	Status           RecordStatus        `json:"status"`
	UserEntered      *UserEnteredAmounts `json:"userEntered,omitempty"`
	SystemCalculated *SystemCalculated   `json:"systemCalculated,omitempty"`
	Differences      *DifferenceSet      `json:"differences,omitempty"`
	ClosedBy         *string             `json:"closedBy,omitempty"`
	ClosedAt         *time.Time          `json:"closedAt,omitempty"`
	Notes            *string             `json:"notes,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// CloseSnapshot is the frozen state written atomically when a day is closed.
type CloseSnapshot struct {
	System      SystemCalculated
	UserEntered UserEnteredAmounts
	Differences DifferenceSet
	ClosedBy    string
	ClosedAt    time.Time
	Notes       *string
}

// ReconciliationSummary is the supervisor-facing view of one station-day.
// For a Closed record UserEntered and Differences are the frozen close-time
// snapshot; SystemCalculated always reflects the live aggregate.
type ReconciliationSummary struct {
	StationID         string             `json:"stationId"`
	StationName       string             `json:"stationName"`
	Date              string             `json:"date"`
	SystemCalculated  SystemCalculated   `json:"systemCalculated"`
	UserEntered       UserEnteredAmounts `json:"userEntered"`
	Differences       DifferenceSet      `json:"differences"`
	Severities        SeveritySet        `json:"severities"`
	HasData           bool               `json:"hasData"`
	IsReconciled      bool               `json:"isReconciled"`
	ReconciledBy      *string            `json:"reconciledBy,omitempty"`
	ReconciledAt      *time.Time         `json:"reconciledAt,omitempty"`
	CanCloseBackdated bool               `json:"canCloseBackdated"`
}

// StationStatus is one station's row in the fleet dashboard. Error is set
// when summarizing that station failed; such rows are excluded from the
// numeric rollups.
type StationStatus struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	HasData           bool            `json:"hasData"`
	IsReconciled      bool            `json:"isReconciled"`
	TotalDifference   decimal.Decimal `json:"totalDifference"`
	SystemTotal       decimal.Decimal `json:"systemTotal"`
	UserTotal         decimal.Decimal `json:"userTotal"`
	CanCloseBackdated bool            `json:"canCloseBackdated"`
	Error             string          `json:"error,omitempty"`
}

// DashboardTotals aggregates the fleet counts for the current day.
type DashboardTotals struct {
	TotalStations         int             `json:"totalStations"`
	ReconciledToday       int             `json:"reconciledToday"`
	PendingReconciliation int             `json:"pendingReconciliation"`
	TotalDifferences      decimal.Decimal `json:"totalDifferences"`
}

// FleetSummary is the fleet-wide reconciliation dashboard.
type FleetSummary struct {
	Today    string          `json:"today"`
	Stations []StationStatus `json:"stations"`
	Summary  DashboardTotals `json:"summary"`
}

// OpenDay is a past station-day with sales data but no closed record.
type OpenDay struct {
	StationID   string          `json:"stationId"`
	Date        string          `json:"date"`
	SystemTotal decimal.Decimal `json:"systemTotal"`
}

// ReconciliationAnalytics summarizes closed records over a date range.
type ReconciliationAnalytics struct {
	TotalRecords       int             `json:"totalRecords"`
	ClosedRecords      int             `json:"closedRecords"`
	AverageDiscrepancy decimal.Decimal `json:"averageDiscrepancy"`
	LargestDiscrepancy decimal.Decimal `json:"largestDiscrepancy"`
	ReconciliationRate float64         `json:"reconciliationRate"`
}

// DayClosedEvent is emitted to the audit sink after a successful close.
type DayClosedEvent struct {
	StationID       string          `json:"stationId"`
	Date            string          `json:"date"`
	ClosedBy        string          `json:"closedBy"`
	TotalDifference decimal.Decimal `json:"totalDifference"`
	ClosedAt        time.Time       `json:"closedAt"`
}

// Station is a fuel station known to the directory.
type Station struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Active   bool   `json:"active"`
}
