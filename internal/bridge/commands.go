package bridge

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comptoir-erp/comptoir-erp/internal/records"
)

// Wire shapes mirror the backend's field names; conversion to the typed
// record variants happens here so nothing downstream sees raw payloads.

type stockItemWire struct {
	ID        int64           `json:"id"`
	AID       int64           `json:"a_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  float64         `json:"quantity"`
	Threshold float64         `json:"threshold"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type partyWire struct {
	ID      int64  `json:"id"`
	VeID    int64  `json:"ve_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type transactionWire struct {
	ID          int64           `json:"id"`
	Code        int64           `json:"code"`
	DocType     string          `json:"doc_type"`
	PartyID     int64           `json:"party_id"`
	Date        string          `json:"date"`
	Total       decimal.Decimal `json:"total"`
	Remise      decimal.Decimal `json:"remise"`
	CurrentPaid decimal.Decimal `json:"current_paid"`
}

type balanceWire struct {
	PartyID int64           `json:"party_id"`
	Rest    decimal.Decimal `json:"rest"`
}

type treasuryPeriodWire struct {
	ID          int64           `json:"id"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Opening     decimal.Decimal `json:"opening"`
	Deposits    decimal.Decimal `json:"deposits"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	Closing     decimal.Decimal `json:"closing"`
}

// ListStockItems fetches the sellable product list.
func (c *Client) ListStockItems(ctx context.Context) ([]records.StockItem, error) {
	return c.listStock(ctx, "list_stock_items")
}

// ListRawMaterials fetches the raw-material list.
func (c *Client) ListRawMaterials(ctx context.Context) ([]records.StockItem, error) {
	return c.listStock(ctx, "list_raw_materials")
}

func (c *Client) listStock(ctx context.Context, command string) ([]records.StockItem, error) {
	var wire []stockItemWire
	if err := c.list(ctx, command, nil, &wire); err != nil {
		return nil, err
	}
	items := make([]records.StockItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, records.StockItem{
			ID:        recordID(w.ID, w.AID),
			Code:      w.Code,
			Name:      w.Name,
			Quantity:  w.Quantity,
			Threshold: w.Threshold,
			UnitPrice: w.UnitPrice,
		})
	}
	return items, nil
}

// ListClients fetches client parties.
func (c *Client) ListClients(ctx context.Context) ([]records.PartyRecord, error) {
	return c.listParties(ctx, "list_clients", records.PartyClient)
}

// ListVendors fetches vendor parties.
func (c *Client) ListVendors(ctx context.Context) ([]records.PartyRecord, error) {
	return c.listParties(ctx, "list_vendors", records.PartyVendor)
}

func (c *Client) listParties(ctx context.Context, command string, kind records.PartyKind) ([]records.PartyRecord, error) {
	var wire []partyWire
	if err := c.list(ctx, command, nil, &wire); err != nil {
		return nil, err
	}
	parties := make([]records.PartyRecord, 0, len(wire))
	for _, w := range wire {
		parties = append(parties, records.PartyRecord{
			ID:      recordID(w.ID, w.VeID),
			Kind:    kind,
			Name:    w.Name,
			Phone:   w.Phone,
			Address: w.Address,
		})
	}
	return parties, nil
}

// ListPartyBalances fetches the rest/balance aggregate keyed by party id,
// joined onto party records by the page controller.
func (c *Client) ListPartyBalances(ctx context.Context, kind records.PartyKind) (map[int64]decimal.Decimal, error) {
	var wire []balanceWire
	args := map[string]string{"kind": string(kind)}
	if err := c.list(ctx, "list_party_balances", args, &wire); err != nil {
		return nil, err
	}
	balances := make(map[int64]decimal.Decimal, len(wire))
	for _, w := range wire {
		balances[w.PartyID] = w.Rest
	}
	return balances, nil
}

// ListSales fetches sale documents.
func (c *Client) ListSales(ctx context.Context) ([]records.SaleRecord, error) {
	var wire []transactionWire
	if err := c.list(ctx, "list_sales", nil, &wire); err != nil {
		return nil, err
	}
	sales := make([]records.SaleRecord, 0, len(wire))
	for _, w := range wire {
		sales = append(sales, records.SaleRecord{
			ID:          w.ID,
			Code:        w.Code,
			DocType:     records.DocumentType(w.DocType),
			ClientID:    w.PartyID,
			Date:        parseDate(w.Date),
			Total:       w.Total,
			Remise:      w.Remise,
			CurrentPaid: w.CurrentPaid,
		})
	}
	return sales, nil
}

// ListPurchases fetches purchase documents.
func (c *Client) ListPurchases(ctx context.Context) ([]records.PurchaseRecord, error) {
	var wire []transactionWire
	if err := c.list(ctx, "list_purchases", nil, &wire); err != nil {
		return nil, err
	}
	purchases := make([]records.PurchaseRecord, 0, len(wire))
	for _, w := range wire {
		purchases = append(purchases, records.PurchaseRecord{
			ID:          w.ID,
			Code:        w.Code,
			DocType:     records.DocumentType(w.DocType),
			VendorID:    w.PartyID,
			Date:        parseDate(w.Date),
			Total:       w.Total,
			Remise:      w.Remise,
			CurrentPaid: w.CurrentPaid,
		})
	}
	return purchases, nil
}

// ListTreasuryPeriods fetches the treasury period history.
func (c *Client) ListTreasuryPeriods(ctx context.Context) ([]records.TreasuryPeriod, error) {
	var wire []treasuryPeriodWire
	if err := c.list(ctx, "list_treasury_periods", nil, &wire); err != nil {
		return nil, err
	}
	periods := make([]records.TreasuryPeriod, 0, len(wire))
	for _, w := range wire {
		periods = append(periods, records.TreasuryPeriod{
			ID:          w.ID,
			Year:        w.Year,
			Month:       w.Month,
			Opening:     w.Opening,
			Deposits:    w.Deposits,
			Withdrawals: w.Withdrawals,
			Closing:     w.Closing,
		})
	}
	return periods, nil
}

type movementArgs struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// RecordDeposit registers a treasury deposit. Callers re-fetch the period
// list afterwards; the backend's balance stays authoritative.
func (c *Client) RecordDeposit(ctx context.Context, amount decimal.Decimal, note string) error {
	return c.invoke(ctx, "record_deposit", movementArgs{Amount: amount, Note: note}, nil)
}

// RecordWithdrawal registers a treasury withdrawal.
func (c *Client) RecordWithdrawal(ctx context.Context, amount decimal.Decimal, note string) error {
	return c.invoke(ctx, "record_withdrawal", movementArgs{Amount: amount, Note: note}, nil)
}

// recordID prefers the primary id, falling back to the substitute key some
// backend lists carry instead.
func recordID(id, substitute int64) int64 {
	if id != 0 {
		return id
	}
	return substitute
}

// parseDate tolerates the backend's date formats; anything unparseable
// becomes the zero time, which filter clauses treat as missing.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
