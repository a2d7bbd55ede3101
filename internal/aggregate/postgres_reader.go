package aggregate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"fuelrecon/internal/domain"
	"fuelrecon/pkg/logger"
)

type postgresReader struct {
	db *sql.DB
}

// NewPostgresReader returns a Reader that aggregates the sales table. Each
// sales row carries the revenue and volume of one nozzle transaction along
// with its payment method and fuel type.
func NewPostgresReader(db *sql.DB) Reader {
	return &postgresReader{db: db}
}

func (r *postgresReader) GetSystemTotals(ctx context.Context, stationID, date string) (*domain.SystemCalculated, error) {
	query := `
		SELECT payment_method, fuel_type,
			   COALESCE(SUM(volume), 0), COALESCE(SUM(amount), 0)
		FROM sales
		WHERE station_id = $1 AND sale_date = $2
		GROUP BY payment_method, fuel_type
	`

	rows, err := r.db.QueryContext(ctx, query, stationID, date)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query sales aggregate")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	totals := domain.EmptySystemCalculated()
	hasData := false

	for rows.Next() {
		var paymentMethod string
		var fuelType domain.FuelType
		var volume, amount decimal.Decimal

		if err := rows.Scan(&paymentMethod, &fuelType, &volume, &amount); err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan sales aggregate row")
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		hasData = true

		switch paymentMethod {
		case "cash":
			totals.CashSales = totals.CashSales.Add(amount)
		case "card":
			totals.CardSales = totals.CardSales.Add(amount)
		case "upi":
			totals.UpiSales = totals.UpiSales.Add(amount)
		case "credit":
			totals.CreditSales = totals.CreditSales.Add(amount)
		default:
			// Unknown methods still count toward revenue so the total
			// reconciles against the raw sales table.
			totals.CashSales = totals.CashSales.Add(amount)
		}

		totals.TotalRevenue = totals.TotalRevenue.Add(amount)
		totals.TotalVolume = totals.TotalVolume.Add(volume)

		fuel := totals.FuelBreakdown[fuelType]
		fuel.Volume = fuel.Volume.Add(volume)
		fuel.Revenue = fuel.Revenue.Add(amount)
		totals.FuelBreakdown[fuelType] = fuel
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if !hasData {
		return nil, domain.ErrNoSalesData
	}

	return &totals, nil
}
