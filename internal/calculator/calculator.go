package calculator

import (
	"github.com/shopspring/decimal"

	"fuelrecon/internal/domain"
)

// Thresholds define the severity bands for a channel difference:
// OK below OKBelow, Critical at or above CriticalAt, Warning in between.
// They are deployment configuration, not business constants.
type Thresholds struct {
	OKBelow    decimal.Decimal
	CriticalAt decimal.Decimal
}

// DefaultThresholds returns the 1 / 100 currency-minor-unit bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OKBelow:    decimal.NewFromInt(1),
		CriticalAt: decimal.NewFromInt(100),
	}
}

// Calculator computes per-channel differences between the system aggregate
// and a user-entered cash report. It is pure and safe for concurrent use.
type Calculator struct {
	thresholds Thresholds
}

func New(thresholds Thresholds) *Calculator {
	if thresholds.OKBelow.IsZero() && thresholds.CriticalAt.IsZero() {
		thresholds = DefaultThresholds()
	}
	return &Calculator{thresholds: thresholds}
}

// Calculate returns userEntered minus systemCalculated per channel, plus the
// severity classification. A nil userEntered is treated as all zeros, so the
// differences equal the negative of the system totals. The credit channel
// participates only when the system side recorded credit sales.
func (c *Calculator) Calculate(system domain.SystemCalculated, userEntered *domain.UserEnteredAmounts) (domain.DifferenceSet, domain.SeveritySet) {
	user := domain.UserEnteredAmounts{
		CashCollected: decimal.Zero,
		CardCollected: decimal.Zero,
		UpiCollected:  decimal.Zero,
	}
	if userEntered != nil {
		user = *userEntered
	}

	diffs := domain.DifferenceSet{
		CashDifference: user.CashCollected.Sub(system.CashSales),
		CardDifference: user.CardCollected.Sub(system.CardSales),
		UpiDifference:  user.UpiCollected.Sub(system.UpiSales),
	}

	total := diffs.CashDifference.Add(diffs.CardDifference).Add(diffs.UpiDifference)

	if system.CreditSales.IsPositive() {
		creditGiven := decimal.Zero
		if user.CreditGiven != nil {
			creditGiven = *user.CreditGiven
		}
		creditDiff := creditGiven.Sub(system.CreditSales)
		diffs.CreditDifference = &creditDiff
		total = total.Add(creditDiff)
	}
	diffs.TotalDifference = total

	severities := domain.SeveritySet{
		Cash:  c.Classify(diffs.CashDifference),
		Card:  c.Classify(diffs.CardDifference),
		Upi:   c.Classify(diffs.UpiDifference),
		Total: c.Classify(diffs.TotalDifference),
	}
	if diffs.CreditDifference != nil {
		sev := c.Classify(*diffs.CreditDifference)
		severities.Credit = &sev
	}

	return diffs, severities
}

// Classify maps a single difference onto its severity band.
func (c *Calculator) Classify(difference decimal.Decimal) domain.Severity {
	abs := difference.Abs()
	switch {
	case abs.LessThan(c.thresholds.OKBelow):
		return domain.SeverityOK
	case abs.LessThan(c.thresholds.CriticalAt):
		return domain.SeverityWarning
	default:
		return domain.SeverityCritical
	}
}

// ClassifySet recomputes severities for an already-frozen difference set,
// e.g. when displaying a closed record.
func (c *Calculator) ClassifySet(diffs domain.DifferenceSet) domain.SeveritySet {
	severities := domain.SeveritySet{
		Cash:  c.Classify(diffs.CashDifference),
		Card:  c.Classify(diffs.CardDifference),
		Upi:   c.Classify(diffs.UpiDifference),
		Total: c.Classify(diffs.TotalDifference),
	}
	if diffs.CreditDifference != nil {
		sev := c.Classify(*diffs.CreditDifference)
		severities.Credit = &sev
	}
	return severities
}
