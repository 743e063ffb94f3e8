package pages

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/comptoir-erp/comptoir-erp/internal/grid"
	"github.com/comptoir-erp/comptoir-erp/internal/metrics"
	"github.com/comptoir-erp/comptoir-erp/internal/prefs"
	"github.com/comptoir-erp/comptoir-erp/internal/records"
)

// transactionPage implements the sales and purchases screens. Both run the
// same grid schema, advanced filter, and finance metrics; only the backend
// commands and routes differ.
type transactionPage[T records.Transaction] struct {
	logger       *slog.Logger
	fetchTx      func(context.Context) ([]T, error)
	fetchParties func(context.Context) ([]records.PartyRecord, error)
	prefs        *prefs.Store
	rowRoute     string
	addRoute     string
	now          func() time.Time

	mu     sync.Mutex
	names  map[int64]string
	engine *grid.Engine[T]
}

func newTransactionPage[T records.Transaction](
	logger *slog.Logger,
	fetchTx func(context.Context) ([]T, error),
	fetchParties func(context.Context) ([]records.PartyRecord, error),
	store *prefs.Store,
	rowRoute, addRoute string,
	pageSize int,
) *transactionPage[T] {
	p := &transactionPage[T]{
		logger:       logger,
		fetchTx:      fetchTx,
		fetchParties: fetchParties,
		prefs:        store,
		rowRoute:     rowRoute,
		addRoute:     addRoute,
		now:          time.Now,
		names:        map[int64]string{},
	}
	// The matcher closes over the handler so the party-name clause always
	// sees the lookup table from the latest fetch.
	matcher := func(tx T, c records.TransactionCriteria) bool {
		return records.Matches(tx, c, p.names)
	}
	p.engine = grid.NewEngine(transactionColumns[T](p.partyName),
		grid.WithPageSize[T](pageSize),
		grid.WithMatcher[T](matcher),
	)
	return p
}

func (p *transactionPage[T]) partyName(id int64) string {
	return p.names[id]
}

// MountRoutes registers the screen's routes.
func (p *transactionPage[T]) MountRoutes(r chi.Router) {
	r.Get("/", p.handleList)
}

type financeVM struct {
	metrics.FinanceMetrics
	YearTotalDisplay   string `json:"year_total_display"`
	YearAverageDisplay string `json:"year_average_display"`
	OutstandingDisplay string `json:"outstanding_display"`
}

type transactionsPageVM struct {
	Metrics financeVM `json:"metrics"`
	Grid    GridVM    `json:"grid"`
}

func (p *transactionPage[T]) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		txs     []T
		parties []records.PartyRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = p.fetchTx(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		parties, err = p.fetchParties(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		p.logger.Error("fetch transactions", slog.Any("error", err))
		writeError(p.logger, w, err)
		return
	}

	userPrefs, err := p.prefs.Load(ctx, prefsUserID)
	if err != nil {
		p.logger.Warn("load preferences", slog.Any("error", err))
		userPrefs = prefs.Default()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	names := make(map[int64]string, len(parties))
	for _, party := range parties {
		names[party.ID] = party.Name
	}
	p.names = names

	p.engine.NoteDataChanged()
	applyGridQuery(p.engine, r.URL.Query())
	applyCriteriaQuery(p.engine, r.URL.Query())
	view := p.engine.View(txs)

	m := metrics.DeriveFinance(txs, p.now())
	vm := transactionsPageVM{
		Metrics: financeVM{
			FinanceMetrics:     m,
			YearTotalDisplay:   formatAmount(m.YearTotal, userPrefs.GroupedNumbers),
			YearAverageDisplay: formatAmount(m.YearAverage, userPrefs.GroupedNumbers),
			OutstandingDisplay: formatAmount(m.Outstanding, userPrefs.GroupedNumbers),
		},
		Grid: buildGridVM(p.engine, view, func(tx T) int64 {
			return tx.RecordID()
		}, p.rowRoute, p.addRoute),
	}
	writeJSON(p.logger, w, http.StatusOK, vm)
}

// transactionColumns builds the shared sales/purchases grid schema. The
// payment-status column compares by the numeric bucket, not its label, so
// ordering survives relabeling.
func transactionColumns[T records.Transaction](partyName func(int64) string) []grid.ColumnSpec[T] {
	return []grid.ColumnSpec[T]{
		{Key: "code", Label: "Number", Sortable: true,
			Value: func(tx T) string { return tx.DocumentCode() },
			Compare: func(a, b T) int {
				return cmpNumericString(a.DocumentCode(), b.DocumentCode())
			}},
		{Key: "doc_type", Label: "Type", Sortable: true, Value: func(tx T) string {
			return string(tx.DocumentType())
		}},
		{Key: "party", Label: "Party", Sortable: true, Value: func(tx T) string {
			return partyName(tx.PartyID())
		}},
		{Key: "date", Label: "Date", Sortable: true,
			Value: func(tx T) string {
				if tx.DocumentDate().IsZero() {
					return ""
				}
				return tx.DocumentDate().Format("2006-01-02")
			},
			Compare: func(a, b T) int {
				return a.DocumentDate().Compare(b.DocumentDate())
			}},
		{Key: "total", Label: "Total", Sortable: true,
			Value: func(tx T) string {
				return tx.GrossTotal().StringFixed(2)
			},
			Compare: func(a, b T) int {
				return a.GrossTotal().Cmp(b.GrossTotal())
			}},
		{Key: "paid", Label: "Paid", Sortable: true,
			Value: func(tx T) string {
				return tx.PaidAmount().StringFixed(2)
			},
			Compare: func(a, b T) int {
				return a.PaidAmount().Cmp(b.PaidAmount())
			}},
		{Key: "payment_status", Label: "Payment", Sortable: true,
			Value: func(tx T) string {
				return records.TransactionBucket(tx).String()
			},
			Compare: func(a, b T) int {
				return int(records.TransactionBucket(a)) - int(records.TransactionBucket(b))
			}},
	}
}

// cmpNumericString orders decimal digit strings by magnitude: shorter
// strings first, then lexicographic.
func cmpNumericString(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

// salesBridge is the backend surface the sales screen consumes.
type salesBridge interface {
	ListSales(ctx context.Context) ([]records.SaleRecord, error)
	ListClients(ctx context.Context) ([]records.PartyRecord, error)
}

// SalesHandler serves the sales screen.
type SalesHandler struct {
	*transactionPage[records.SaleRecord]
}

// NewSalesHandler constructs the sales page controller.
func NewSalesHandler(logger *slog.Logger, bridge salesBridge, store *prefs.Store, pageSize int) *SalesHandler {
	return &SalesHandler{transactionPage: newTransactionPage(
		logger, bridge.ListSales, bridge.ListClients, store, "sales/view", "sales/new", pageSize,
	)}
}

// purchasesBridge is the backend surface the purchases screen consumes.
type purchasesBridge interface {
	ListPurchases(ctx context.Context) ([]records.PurchaseRecord, error)
	ListVendors(ctx context.Context) ([]records.PartyRecord, error)
}

// PurchasesHandler serves the purchases screen.
type PurchasesHandler struct {
	*transactionPage[records.PurchaseRecord]
}

// NewPurchasesHandler constructs the purchases page controller.
func NewPurchasesHandler(logger *slog.Logger, bridge purchasesBridge, store *prefs.Store, pageSize int) *PurchasesHandler {
	return &PurchasesHandler{transactionPage: newTransactionPage(
		logger, bridge.ListPurchases, bridge.ListVendors, store, "purchases/view", "purchases/new", pageSize,
	)}
}
