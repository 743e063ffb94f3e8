package metrics

import "github.com/comptoir-erp/comptoir-erp/internal/records"

// StockMetrics aggregates the health of one stock list.
type StockMetrics struct {
	Total       int     `json:"total"`
	OutOfStock  int     `json:"out_of_stock"`
	Critical    int     `json:"critical"`
	CriticalPct float64 `json:"critical_pct"`
	HealthScore float64 `json:"health_score"`
}

// DeriveStock computes aggregate stock statistics. An item is critical when
// its quantity-to-threshold ratio is at most 1. The health score averages 1
// for a ratio of at least 1.5, 0.5 for a ratio strictly between 1 and 1.5,
// and 0 otherwise, expressed as a percentage. Empty input and zero
// thresholds yield defined values, never a panic.
func DeriveStock(items []records.StockItem) StockMetrics {
	m := StockMetrics{Total: len(items)}
	if len(items) == 0 {
		return m
	}
	var score float64
	for _, item := range items {
		if item.Quantity == 0 {
			m.OutOfStock++
		}
		ratio := records.StockRatio(item.Quantity, item.Threshold)
		switch {
		case ratio <= 1:
			m.Critical++
		case ratio >= 1.5:
			score++
		default:
			score += 0.5
		}
	}
	m.CriticalPct = float64(m.Critical) / float64(m.Total) * 100
	m.HealthScore = score / float64(m.Total) * 100
	return m
}
