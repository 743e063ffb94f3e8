package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/comptoir-erp/comptoir-erp/internal/records"
)

// FinanceMetrics summarizes a sales or purchases list. The year window is
// the calendar year of the reference time; bucket counts cover the whole
// list regardless of date.
type FinanceMetrics struct {
	Count       int             `json:"count"`
	YearCount   int             `json:"year_count"`
	YearTotal   decimal.Decimal `json:"year_total"`
	YearAverage decimal.Decimal `json:"year_average"`
	Paid        int             `json:"paid"`
	Partial     int             `json:"partial"`
	Unpaid      int             `json:"unpaid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// DeriveFinance aggregates discounted totals and payment buckets. Records
// with a zero date stay out of the year window but still count toward the
// buckets. An empty year window yields a zero average.
func DeriveFinance[T records.Transaction](txs []T, now time.Time) FinanceMetrics {
	m := FinanceMetrics{Count: len(txs)}
	for _, tx := range txs {
		net := records.TransactionNet(tx)
		if date := tx.DocumentDate(); !date.IsZero() && date.Year() == now.Year() {
			m.YearCount++
			m.YearTotal = m.YearTotal.Add(net)
		}
		switch records.TransactionBucket(tx) {
		case records.PaymentPaid:
			m.Paid++
		case records.PaymentPartial:
			m.Partial++
		default:
			m.Unpaid++
		}
		if rest := net.Sub(tx.PaidAmount()); rest.Sign() > 0 {
			m.Outstanding = m.Outstanding.Add(rest)
		}
	}
	if m.YearCount > 0 {
		m.YearAverage = m.YearTotal.Div(decimal.NewFromInt(int64(m.YearCount)))
	}
	return m
}
