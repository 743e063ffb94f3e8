package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/comptoir-erp/comptoir-erp/internal/records"
)

// TreasuryMetrics folds period rows into a running summary for the
// treasury screen.
type TreasuryMetrics struct {
	Periods     int             `json:"periods"`
	Deposits    decimal.Decimal `json:"deposits"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	Net         decimal.Decimal `json:"net"`
	Closing     decimal.Decimal `json:"closing"`
}

// DeriveTreasury sums movements across periods. Closing is taken from the
// latest period by (year, month); the backend's closing balance stays
// authoritative, nothing is recomputed from the client side.
func DeriveTreasury(periods []records.TreasuryPeriod) TreasuryMetrics {
	m := TreasuryMetrics{Periods: len(periods)}
	var latest *records.TreasuryPeriod
	for i := range periods {
		p := periods[i]
		m.Deposits = m.Deposits.Add(p.Deposits)
		m.Withdrawals = m.Withdrawals.Add(p.Withdrawals)
		if latest == nil || p.Year > latest.Year || (p.Year == latest.Year && p.Month > latest.Month) {
			latest = &periods[i]
		}
	}
	m.Net = m.Deposits.Sub(m.Withdrawals)
	if latest != nil {
		m.Closing = latest.Closing
	}
	return m
}
