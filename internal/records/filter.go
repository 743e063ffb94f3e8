package records

import (
	"fmt"
	"strconv"
	"strings"
)

// PaymentFilter selects a payment bucket, or every record when set to all.
type PaymentFilter string

const (
	PaymentFilterAll     PaymentFilter = "all"
	PaymentFilterPaid    PaymentFilter = "paid"
	PaymentFilterPartial PaymentFilter = "partial"
	PaymentFilterUnpaid  PaymentFilter = "unpaid"
)

// TransactionCriteria is the advanced filter state of a sales or purchases
// grid. Zero-valued fields are inactive clauses and exclude nothing.
type TransactionCriteria struct {
	PartyName  string
	DocType    DocumentType
	DocNumber  string
	Year       string
	Month      string
	CodeSearch string
	Payment    PaymentFilter
}

// DefaultCriteria returns criteria with every clause inactive.
func DefaultCriteria() TransactionCriteria {
	return TransactionCriteria{Payment: PaymentFilterAll}
}

// IsDefault reports whether no clause is active.
func (c TransactionCriteria) IsDefault() bool {
	return c.PartyName == "" &&
		c.DocType == DocumentAny &&
		c.DocNumber == "" &&
		c.Year == "" &&
		c.Month == "" &&
		c.CodeSearch == "" &&
		(c.Payment == "" || c.Payment == PaymentFilterAll)
}

// Matches reports whether a transaction passes every active criteria clause.
// The party name clause resolves the counterparty through partyNames; an
// unknown id resolves to the empty name. A record with a zero date passes
// the year and month clauses untouched rather than being excluded.
func Matches(tx Transaction, c TransactionCriteria, partyNames map[int64]string) bool {
	if c.PartyName != "" && !containsFold(partyNames[tx.PartyID()], c.PartyName) {
		return false
	}
	code := tx.DocumentCode()
	if c.DocType != DocumentAny && tx.DocumentType() != c.DocType {
		return false
	}
	if c.DocNumber != "" && !containsFold(code, c.DocNumber) {
		return false
	}
	if c.Year != "" || c.Month != "" {
		if date := tx.DocumentDate(); !date.IsZero() {
			if c.Year != "" && strconv.Itoa(date.Year()) != c.Year {
				return false
			}
			if c.Month != "" && fmt.Sprintf("%02d", int(date.Month())) != c.Month {
				return false
			}
		}
	}
	if c.CodeSearch != "" && !containsFold(code, c.CodeSearch) {
		return false
	}
	if c.Payment != "" && c.Payment != PaymentFilterAll {
		if PaymentFilter(TransactionBucket(tx).String()) != c.Payment {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
