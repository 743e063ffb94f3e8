package records

import (
	"math"

	"github.com/shopspring/decimal"
)

// PaymentBucket classifies how much of a document has been settled.
// The numeric order (unpaid < partial < paid) is the sort order used by
// payment-status columns.
type PaymentBucket int

const (
	PaymentUnpaid PaymentBucket = iota
	PaymentPartial
	PaymentPaid
)

// String returns the bucket label used in view models.
func (b PaymentBucket) String() string {
	switch b {
	case PaymentPaid:
		return "paid"
	case PaymentPartial:
		return "partial"
	default:
		return "unpaid"
	}
}

var hundred = decimal.NewFromInt(100)

// DiscountedTotal applies the remise percentage to a document total.
func DiscountedTotal(total, remise decimal.Decimal) decimal.Decimal {
	return total.Mul(hundred.Sub(remise)).Div(hundred)
}

// PaymentStatus buckets a document by the settled share of its discounted
// total. A non-positive discounted total counts as unpaid; paying the
// discounted total exactly counts as paid.
func PaymentStatus(currentPaid, total, remise decimal.Decimal) PaymentBucket {
	discounted := DiscountedTotal(total, remise)
	if discounted.Sign() <= 0 {
		return PaymentUnpaid
	}
	pct := currentPaid.Div(discounted).Mul(hundred)
	switch {
	case pct.GreaterThanOrEqual(hundred):
		return PaymentPaid
	case pct.Sign() > 0:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// TransactionBucket buckets a sale or purchase record.
func TransactionBucket(tx Transaction) PaymentBucket {
	return PaymentStatus(tx.PaidAmount(), tx.GrossTotal(), tx.DiscountPct())
}

// TransactionNet returns the discounted total of a sale or purchase record.
func TransactionNet(tx Transaction) decimal.Decimal {
	return DiscountedTotal(tx.GrossTotal(), tx.DiscountPct())
}

// StockBucket classifies the stock level of an item against its threshold.
type StockBucket int

const (
	StockOut StockBucket = iota
	StockLow
	StockSufficient
	StockExcess
)

// String returns the bucket label used in the stock-status column.
func (b StockBucket) String() string {
	switch b {
	case StockOut:
		return "out_of_stock"
	case StockLow:
		return "low"
	case StockExcess:
		return "excess"
	default:
		return "sufficient"
	}
}

// StockStatus buckets an item. Boundaries: quantity equal to the threshold
// is low, quantity equal to twice the threshold is sufficient.
func StockStatus(quantity, threshold float64) StockBucket {
	switch {
	case quantity == 0:
		return StockOut
	case quantity <= threshold:
		return StockLow
	case quantity > 2*threshold:
		return StockExcess
	default:
		return StockSufficient
	}
}

// StockRatio returns quantity/threshold with defined values for a zero or
// negative threshold: +Inf when stock is on hand, 0 when it is not. Callers
// never see NaN.
func StockRatio(quantity, threshold float64) float64 {
	if threshold <= 0 {
		if quantity > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return quantity / threshold
}
