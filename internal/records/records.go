package records

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType distinguishes delivery notes from invoices.
type DocumentType string

const (
	// DocumentAny matches every document type in a filter clause.
	DocumentAny DocumentType = ""
	// DocumentBL is a delivery note (bon de livraison).
	DocumentBL DocumentType = "BL"
	// DocumentInvoice is a regular invoice.
	DocumentInvoice DocumentType = "Invoice"
)

// PartyKind tells clients apart from vendors.
type PartyKind string

const (
	PartyClient PartyKind = "client"
	PartyVendor PartyKind = "vendor"
)

// StockItem is one sellable product or raw material with its reorder threshold.
type StockItem struct {
	ID        int64
	Code      string
	Name      string
	Quantity  float64
	Threshold float64
	UnitPrice decimal.Decimal
}

// PartyRecord is a client or vendor together with the outstanding
// rest/balance joined from the balance aggregate.
type PartyRecord struct {
	ID      int64
	Kind    PartyKind
	Name    string
	Phone   string
	Address string
	Balance decimal.Decimal
}

// SaleRecord is one outgoing document (BL or invoice) issued to a client.
type SaleRecord struct {
	ID          int64
	Code        int64
	DocType     DocumentType
	ClientID    int64
	Date        time.Time
	Total       decimal.Decimal
	Remise      decimal.Decimal
	CurrentPaid decimal.Decimal
}

// PurchaseRecord is one incoming document received from a vendor.
type PurchaseRecord struct {
	ID          int64
	Code        int64
	DocType     DocumentType
	VendorID    int64
	Date        time.Time
	Total       decimal.Decimal
	Remise      decimal.Decimal
	CurrentPaid decimal.Decimal
}

// TreasuryPeriod is one month of treasury movements as reported by the backend.
type TreasuryPeriod struct {
	ID          int64
	Year        int
	Month       int
	Opening     decimal.Decimal
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
	Closing     decimal.Decimal
}

// Transaction is the common read surface shared by sales and purchases.
// The grid filter predicate and the finance metrics only ever go through
// this interface, so both domains reuse the same machinery.
type Transaction interface {
	RecordID() int64
	PartyID() int64
	DocumentType() DocumentType
	DocumentCode() string
	DocumentDate() time.Time
	GrossTotal() decimal.Decimal
	DiscountPct() decimal.Decimal
	PaidAmount() decimal.Decimal
}

func (s SaleRecord) RecordID() int64              { return s.ID }
func (s SaleRecord) PartyID() int64               { return s.ClientID }
func (s SaleRecord) DocumentType() DocumentType   { return s.DocType }
func (s SaleRecord) DocumentCode() string         { return strconv.FormatInt(s.Code, 10) }
func (s SaleRecord) DocumentDate() time.Time      { return s.Date }
func (s SaleRecord) GrossTotal() decimal.Decimal  { return s.Total }
func (s SaleRecord) DiscountPct() decimal.Decimal { return s.Remise }
func (s SaleRecord) PaidAmount() decimal.Decimal  { return s.CurrentPaid }

func (p PurchaseRecord) RecordID() int64              { return p.ID }
func (p PurchaseRecord) PartyID() int64               { return p.VendorID }
func (p PurchaseRecord) DocumentType() DocumentType   { return p.DocType }
func (p PurchaseRecord) DocumentCode() string         { return strconv.FormatInt(p.Code, 10) }
func (p PurchaseRecord) DocumentDate() time.Time      { return p.Date }
func (p PurchaseRecord) GrossTotal() decimal.Decimal  { return p.Total }
func (p PurchaseRecord) DiscountPct() decimal.Decimal { return p.Remise }
func (p PurchaseRecord) PaidAmount() decimal.Decimal  { return p.CurrentPaid }
