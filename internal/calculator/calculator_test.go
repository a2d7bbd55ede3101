package calculator_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelrecon/internal/calculator"
	"fuelrecon/internal/domain"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func system(cash, card, upi, credit int64) domain.SystemCalculated {
	return domain.SystemCalculated{
		CashSales:    dec(cash),
		CardSales:    dec(card),
		UpiSales:     dec(upi),
		CreditSales:  dec(credit),
		TotalRevenue: dec(cash + card + upi + credit),
	}
}

func TestCalculator_Calculate(t *testing.T) {
	calc := calculator.New(calculator.DefaultThresholds())

	sys := system(1000, 500, 300, 0)
	user := &domain.UserEnteredAmounts{
		CashCollected:  dec(1005),
		CardCollected:  dec(500),
		UpiCollected:   dec(290),
		TotalCollected: dec(1795),
	}

	diffs, severities := calc.Calculate(sys, user)

	assert.True(t, diffs.CashDifference.Equal(dec(5)))
	assert.True(t, diffs.CardDifference.Equal(dec(0)))
	assert.True(t, diffs.UpiDifference.Equal(dec(-10)))
	assert.Nil(t, diffs.CreditDifference, "no credit channel without system credit sales")
	assert.True(t, diffs.TotalDifference.Equal(dec(-5)))

	// total difference must equal collected minus revenue
	assert.True(t, diffs.TotalDifference.Equal(user.TotalCollected.Sub(sys.TotalRevenue)))

	assert.Equal(t, domain.SeverityWarning, severities.Cash)
	assert.Equal(t, domain.SeverityOK, severities.Card)
	assert.Equal(t, domain.SeverityWarning, severities.Upi)
	assert.Equal(t, domain.SeverityWarning, severities.Total)
	assert.Nil(t, severities.Credit)
}

func TestCalculator_Calculate_AbsentUserReport(t *testing.T) {
	calc := calculator.New(calculator.DefaultThresholds())

	diffs, severities := calc.Calculate(system(200, 0, 0, 0), nil)

	assert.True(t, diffs.CashDifference.Equal(dec(-200)))
	assert.True(t, diffs.TotalDifference.Equal(dec(-200)))
	assert.Equal(t, domain.SeverityCritical, severities.Cash)
	assert.Equal(t, domain.SeverityCritical, severities.Total)
}

func TestCalculator_Calculate_CreditChannel(t *testing.T) {
	calc := calculator.New(calculator.DefaultThresholds())

	creditGiven := dec(450)
	user := &domain.UserEnteredAmounts{
		CashCollected:  dec(1000),
		CardCollected:  dec(500),
		UpiCollected:   dec(300),
		CreditGiven:    &creditGiven,
		TotalCollected: dec(1800),
	}

	diffs, severities := calc.Calculate(system(1000, 500, 300, 500), user)

	require.NotNil(t, diffs.CreditDifference)
	assert.True(t, diffs.CreditDifference.Equal(dec(-50)))
	assert.True(t, diffs.TotalDifference.Equal(dec(-50)), "credit shortfall flows into the total")
	require.NotNil(t, severities.Credit)
	assert.Equal(t, domain.SeverityWarning, *severities.Credit)
}

func TestCalculator_Calculate_Deterministic(t *testing.T) {
	calc := calculator.New(calculator.DefaultThresholds())

	sys := system(750, 120, 80, 40)
	user := &domain.UserEnteredAmounts{
		CashCollected:  dec(748),
		CardCollected:  dec(120),
		UpiCollected:   dec(95),
		TotalCollected: dec(963),
	}

	first, firstSev := calc.Calculate(sys, user)
	second, secondSev := calc.Calculate(sys, user)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSev, secondSev)
}

func TestCalculator_Classify_Boundaries(t *testing.T) {
	calc := calculator.New(calculator.DefaultThresholds())

	tests := []struct {
		name       string
		difference decimal.Decimal
		want       domain.Severity
	}{
		{"zero", dec(0), domain.SeverityOK},
		{"just under ok bound", decimal.NewFromFloat(0.99), domain.SeverityOK},
		{"at ok bound", dec(1), domain.SeverityWarning},
		{"negative warning", dec(-50), domain.SeverityWarning},
		{"just under critical bound", decimal.NewFromFloat(99.99), domain.SeverityWarning},
		{"at critical bound", dec(100), domain.SeverityCritical},
		{"negative critical", dec(-250), domain.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.Classify(tt.difference))
		})
	}
}

func TestCalculator_CustomThresholds(t *testing.T) {
	calc := calculator.New(calculator.Thresholds{
		OKBelow:    dec(5),
		CriticalAt: dec(50),
	})

	assert.Equal(t, domain.SeverityOK, calc.Classify(dec(4)))
	assert.Equal(t, domain.SeverityWarning, calc.Classify(dec(5)))
	assert.Equal(t, domain.SeverityCritical, calc.Classify(dec(50)))
}
