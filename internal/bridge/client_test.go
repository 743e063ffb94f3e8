package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comptoir-erp/comptoir-erp/internal/records"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

type recordingObserver struct {
	mu       sync.Mutex
	commands []string
	failures int
}

func (o *recordingObserver) ObserveCommand(command string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commands = append(o.commands, command)
	if err != nil {
		o.failures++
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	return New(srv.URL, 2*time.Second, discardLogger(), obs), obs
}

func TestListStockItemsDecodesPayload(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/invoke", r.URL.Path)

		var inv struct {
			ID      string `json:"id"`
			Command string `json:"command"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&inv))
		require.Equal(t, "list_stock_items", inv.Command)
		require.NotEmpty(t, inv.ID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[
			{"id":1,"code":"P001","name":"Paint","quantity":5,"threshold":10,"unit_price":"12.50"},
			{"id":0,"a_id":7,"code":"P002","name":"Brush","quantity":0,"threshold":2,"unit_price":"3"}
		]}`))
	})

	items, err := client.ListStockItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "Paint", items[0].Name)
	assert.True(t, items[0].UnitPrice.Equal(decimalFromString(t, "12.50")))
	// The substitute key fills in when the primary id is absent.
	assert.Equal(t, int64(7), items[1].ID)

	assert.Equal(t, []string{"list_stock_items"}, obs.commands)
	assert.Equal(t, 0, obs.failures)
}

func TestListSalesParsesDates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[
			{"id":1,"code":100,"doc_type":"invoice","party_id":4,"date":"2024-03-15","total":"1000","remise":"10","current_paid":"900"},
			{"id":2,"code":101,"doc_type":"bl","party_id":4,"date":"not-a-date","total":"50","remise":"0","current_paid":"0"}
		]}`))
	})

	sales, err := client.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, 2024, sales[0].Date.Year())
	assert.Equal(t, records.DocumentInvoice, sales[0].DocType)
	assert.True(t, sales[1].Date.IsZero(), "unparseable dates become the zero time")
}

func TestInvokeMapsServerFailure(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListClients(context.Background())
	require.ErrorIs(t, err, shared.ErrBridgeUnavailable)
	assert.Equal(t, 1, obs.failures)
}

func TestInvokeMapsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	client := New(srv.URL, time.Second, discardLogger(), nil)

	_, err := client.ListVendors(context.Background())
	require.ErrorIs(t, err, shared.ErrBridgeUnavailable)
}

func TestInvokeMapsRejection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"amount must be positive"}`))
	})

	err := client.RecordDeposit(context.Background(), decimalFromString(t, "-5"), "")
	require.ErrorIs(t, err, shared.ErrCommandRejected)
	assert.Contains(t, err.Error(), "amount must be positive")
}

func TestListPartyBalances(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var inv struct {
			Args map[string]string `json:"args"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&inv))
		require.Equal(t, "client", inv.Args["kind"])
		_, _ = w.Write([]byte(`{"result":[{"party_id":3,"rest":"120.00"}]}`))
	})

	balances, err := client.ListPartyBalances(context.Background(), records.PartyClient)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[3].Equal(decimalFromString(t, "120")))
}

func TestConcurrentListsShareOneRoundTrip(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		_, _ = w.Write([]byte(`{"result":[]}`))
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ListTreasuryPeriods(context.Background())
			assert.NoError(t, err)
		}()
	}
	// Let the goroutines pile onto the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "identical concurrent reads should collapse into one request")
}
