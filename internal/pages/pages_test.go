package pages

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comptoir-erp/comptoir-erp/internal/prefs"
	"github.com/comptoir-erp/comptoir-erp/internal/records"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeStockBridge struct {
	items []records.StockItem
	err   error
}

func (f *fakeStockBridge) ListStockItems(context.Context) ([]records.StockItem, error) {
	return f.items, f.err
}

func (f *fakeStockBridge) ListRawMaterials(context.Context) ([]records.StockItem, error) {
	return f.items, f.err
}

func serve(t *testing.T, mount func(chi.Router), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/", mount)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProductsPage(t *testing.T) {
	bridge := &fakeStockBridge{items: []records.StockItem{
		{ID: 1, Code: "P001", Name: "Paint", Quantity: 0, Threshold: 10, UnitPrice: dec("12.5")},
		{ID: 2, Code: "P002", Name: "Brush", Quantity: 25, Threshold: 10, UnitPrice: dec("3")},
	}}
	h := NewProductsHandler(discardLogger(), bridge, 10)

	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var vm struct {
		Metrics struct {
			Total      int `json:"total"`
			OutOfStock int `json:"out_of_stock"`
		} `json:"metrics"`
		Grid GridVM `json:"grid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))

	assert.Equal(t, 2, vm.Metrics.Total)
	assert.Equal(t, 1, vm.Metrics.OutOfStock)
	require.Len(t, vm.Grid.Rows, 2)
	assert.Equal(t, "out_of_stock", vm.Grid.Rows[0].Cells["stock_status"])
	assert.Equal(t, "excess", vm.Grid.Rows[1].Cells["stock_status"])
	assert.Equal(t, "products/view", vm.Grid.RowRoute)
	assert.Equal(t, "products/new", vm.Grid.AddRoute)

	// The derived status column renders exactly once.
	statusCols := 0
	for _, col := range vm.Grid.Columns {
		if col.Key == "stock_status" {
			statusCols++
		}
	}
	assert.Equal(t, 1, statusCols)
}

func TestProductsPageFetchFailure(t *testing.T) {
	bridge := &fakeStockBridge{err: shared.ErrBridgeUnavailable}
	h := NewProductsHandler(discardLogger(), bridge, 10)

	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Retryable)
	assert.NotEmpty(t, env.Error)
}

func TestStockPageGlobalQuery(t *testing.T) {
	bridge := &fakeStockBridge{items: []records.StockItem{
		{ID: 1, Code: "P001", Name: "Blue Paint", Quantity: 5, Threshold: 2},
		{ID: 2, Code: "P002", Name: "Thinner", Quantity: 5, Threshold: 2},
	}}
	h := NewRawMaterialsHandler(discardLogger(), bridge, 10)

	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/?q=paint", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var vm struct {
		Grid GridVM `json:"grid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	require.Len(t, vm.Grid.Rows, 1)
	assert.Equal(t, "Blue Paint", vm.Grid.Rows[0].Cells["name"])
	assert.Equal(t, 1, vm.Grid.Meta.Total)
}

type fakeSalesBridge struct {
	sales   []records.SaleRecord
	clients []records.PartyRecord
	err     error
}

func (f *fakeSalesBridge) ListSales(context.Context) ([]records.SaleRecord, error) {
	return f.sales, f.err
}

func (f *fakeSalesBridge) ListClients(context.Context) ([]records.PartyRecord, error) {
	return f.clients, f.err
}

func testSales() *fakeSalesBridge {
	return &fakeSalesBridge{
		sales: []records.SaleRecord{
			{ID: 1, Code: 100, DocType: records.DocumentInvoice, ClientID: 1,
				Date:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
				Total: dec("1000"), Remise: dec("0"), CurrentPaid: dec("1000")},
			{ID: 2, Code: 101, DocType: records.DocumentBL, ClientID: 2,
				Date:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
				Total: dec("500"), Remise: dec("0"), CurrentPaid: dec("100")},
		},
		clients: []records.PartyRecord{
			{ID: 1, Kind: records.PartyClient, Name: "Acme Distribution"},
			{ID: 2, Kind: records.PartyClient, Name: "Bolt Works"},
		},
	}
}

func TestSalesPage(t *testing.T) {
	h := NewSalesHandler(discardLogger(), testSales(), prefs.NewStore(nil), 10)

	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var vm struct {
		Metrics struct {
			Count   int `json:"count"`
			Paid    int `json:"paid"`
			Partial int `json:"partial"`
		} `json:"metrics"`
		Grid GridVM `json:"grid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))

	assert.Equal(t, 2, vm.Metrics.Count)
	assert.Equal(t, 1, vm.Metrics.Paid)
	assert.Equal(t, 1, vm.Metrics.Partial)
	require.Len(t, vm.Grid.Rows, 2)
	assert.Equal(t, "Acme Distribution", vm.Grid.Rows[0].Cells["party"])
	assert.Equal(t, "paid", vm.Grid.Rows[0].Cells["payment_status"])
}

func TestSalesPageAdvancedFilter(t *testing.T) {
	h := NewSalesHandler(discardLogger(), testSales(), prefs.NewStore(nil), 10)

	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/?party=bolt", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var vm struct {
		Grid GridVM `json:"grid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	require.Len(t, vm.Grid.Rows, 1)
	assert.Equal(t, "Bolt Works", vm.Grid.Rows[0].Cells["party"])

	// Reset restores the unfiltered view.
	rec = serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/?reset=1", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	assert.Len(t, vm.Grid.Rows, 2)
}

func TestSalesPageFilteredEmptyState(t *testing.T) {
	h := NewSalesHandler(discardLogger(), testSales(), prefs.NewStore(nil), 10)

	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/?party=nobody", nil))
	var vm struct {
		Grid GridVM `json:"grid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	assert.Empty(t, vm.Grid.Rows)
	assert.Equal(t, "filtered", vm.Grid.Empty)
	assert.Equal(t, "No records match the current filters.", vm.Grid.EmptyMessage)
}

func TestSalesPageFetchFailure(t *testing.T) {
	h := NewSalesHandler(discardLogger(), &fakeSalesBridge{err: shared.ErrBridgeUnavailable}, prefs.NewStore(nil), 10)

	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Retryable)
}

type fakeTreasuryBridge struct {
	mu      sync.Mutex
	periods []records.TreasuryPeriod

	depositCalls    int
	withdrawalCalls int
	movementErr     error
	block           chan struct{}
}

func (f *fakeTreasuryBridge) ListTreasuryPeriods(context.Context) ([]records.TreasuryPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]records.TreasuryPeriod, len(f.periods))
	copy(out, f.periods)
	return out, nil
}

func (f *fakeTreasuryBridge) deposits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depositCalls
}

func (f *fakeTreasuryBridge) RecordDeposit(_ context.Context, amount decimal.Decimal, _ string) error {
	f.mu.Lock()
	f.depositCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.movementErr != nil {
		return f.movementErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	last := len(f.periods) - 1
	f.periods[last].Deposits = f.periods[last].Deposits.Add(amount)
	f.periods[last].Closing = f.periods[last].Closing.Add(amount)
	return nil
}

func (f *fakeTreasuryBridge) RecordWithdrawal(_ context.Context, amount decimal.Decimal, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawalCalls++
	if f.movementErr != nil {
		return f.movementErr
	}
	last := len(f.periods) - 1
	f.periods[last].Closing = f.periods[last].Closing.Sub(amount)
	return nil
}

func testTreasury() *fakeTreasuryBridge {
	return &fakeTreasuryBridge{periods: []records.TreasuryPeriod{
		{ID: 1, Year: 2024, Month: 3, Opening: dec("0"), Deposits: dec("100"), Withdrawals: dec("0"), Closing: dec("100")},
	}}
}

func movementRequest(path, amount string) *http.Request {
	body := strings.NewReader(`{"amount":"` + amount + `","note":"test"}`)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestTreasuryDeposit(t *testing.T) {
	bridge := testTreasury()
	h := NewTreasuryHandler(discardLogger(), bridge, prefs.NewStore(nil), 10)

	rec := serve(t, h.MountRoutes, movementRequest("/deposits", "50"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, bridge.depositCalls)

	var vm treasuryPageVM
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	// The response reflects the re-fetched authoritative state.
	assert.True(t, vm.Metrics.Closing.Equal(dec("150")), "closing %s", vm.Metrics.Closing)
}

func TestTreasuryRejectsInvalidAmounts(t *testing.T) {
	bridge := testTreasury()
	h := NewTreasuryHandler(discardLogger(), bridge, prefs.NewStore(nil), 10)

	for _, amount := range []string{"0", "-10", "abc"} {
		rec := serve(t, h.MountRoutes, movementRequest("/deposits", amount))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %q", amount)
	}
	assert.Equal(t, 0, bridge.depositCalls, "rejected amounts must never reach the backend")
}

func TestTreasuryRejectsOverdraft(t *testing.T) {
	bridge := testTreasury()
	h := NewTreasuryHandler(discardLogger(), bridge, prefs.NewStore(nil), 10)

	// Prime the cached closing balance with one list fetch.
	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h.MountRoutes, movementRequest("/withdrawals", "150"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, bridge.withdrawalCalls)

	rec = serve(t, h.MountRoutes, movementRequest("/withdrawals", "100"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, bridge.withdrawalCalls)
}

func TestTreasuryBusySerializesMutations(t *testing.T) {
	bridge := testTreasury()
	bridge.block = make(chan struct{})
	h := NewTreasuryHandler(discardLogger(), bridge, prefs.NewStore(nil), 10)

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		firstDone <- serve(t, h.MountRoutes, movementRequest("/deposits", "10"))
	}()

	// Wait for the first mutation to hold the busy flag.
	require.Eventually(t, func() bool {
		return bridge.deposits() == 1
	}, time.Second, 5*time.Millisecond)

	rec := serve(t, h.MountRoutes, movementRequest("/deposits", "20"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(bridge.block)
	first := <-firstDone
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, bridge.deposits(), "the rejected call never reached the backend")
}

func TestTreasuryListGrid(t *testing.T) {
	h := NewTreasuryHandler(discardLogger(), testTreasury(), prefs.NewStore(nil), 10)

	rec := serve(t, h.MountRoutes, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var vm treasuryPageVM
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	require.Len(t, vm.Grid.Rows, 1)
	assert.Equal(t, "2024-03", vm.Grid.Rows[0].Cells["period"])
	// Archival rows have no activation or creation routes.
	assert.Empty(t, vm.Grid.RowRoute)
	assert.Empty(t, vm.Grid.AddRoute)
}

func TestParseSortSpec(t *testing.T) {
	spec := parseSortSpec("name:asc,qty:desc,,bad")
	keys := spec.Keys()
	require.Len(t, keys, 3)
	assert.Equal(t, "name", keys[0].Column)
	assert.Equal(t, "qty", keys[1].Column)
	assert.Equal(t, "desc", string(keys[1].Direction))
	// Entries without a direction default to ascending.
	assert.Equal(t, "asc", string(keys[2].Direction))
}
