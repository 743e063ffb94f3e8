package pages

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/comptoir-erp/comptoir-erp/internal/grid"
	"github.com/comptoir-erp/comptoir-erp/internal/prefs"
	"github.com/comptoir-erp/comptoir-erp/internal/records"
)

// partiesBridge is the backend surface the parties screen consumes.
type partiesBridge interface {
	ListClients(ctx context.Context) ([]records.PartyRecord, error)
	ListVendors(ctx context.Context) ([]records.PartyRecord, error)
	ListPartyBalances(ctx context.Context, kind records.PartyKind) (map[int64]decimal.Decimal, error)
}

// PartiesHandler serves the clients/vendors screen. The two tabs share one
// grid; the selected tab is remembered across sessions through the
// preferences store.
type PartiesHandler struct {
	logger *slog.Logger
	bridge partiesBridge
	prefs  *prefs.Store

	mu     sync.Mutex
	engine *grid.Engine[records.PartyRecord]
}

// NewPartiesHandler constructs the parties page controller.
func NewPartiesHandler(logger *slog.Logger, bridge partiesBridge, store *prefs.Store, pageSize int) *PartiesHandler {
	return &PartiesHandler{
		logger: logger,
		bridge: bridge,
		prefs:  store,
		engine: grid.NewEngine(partyColumns(), grid.WithPageSize[records.PartyRecord](pageSize)),
	}
}

// MountRoutes registers the screen's routes.
func (h *PartiesHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
}

type partiesPageVM struct {
	Kind  records.PartyKind `json:"kind"`
	Total int               `json:"total"`
	Owed  string            `json:"owed"`
	Grid  GridVM            `json:"grid"`
}

func (h *PartiesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := h.resolveKind(ctx, r.URL.Query().Get("kind"))

	var (
		parties  []records.PartyRecord
		balances map[int64]decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if kind == records.PartyVendor {
			parties, err = h.bridge.ListVendors(gctx)
		} else {
			parties, err = h.bridge.ListClients(gctx)
		}
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = h.bridge.ListPartyBalances(gctx, kind)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("fetch parties", slog.String("kind", string(kind)), slog.Any("error", err))
		writeError(h.logger, w, err)
		return
	}

	// Join the rest/balance aggregate onto the party list by id.
	var owed decimal.Decimal
	for i := range parties {
		parties[i].Balance = balances[parties[i].ID]
		owed = owed.Add(parties[i].Balance)
	}

	if err := h.prefs.SetTab(ctx, prefsUserID, "parties", string(kind)); err != nil {
		h.logger.Warn("persist parties tab", slog.Any("error", err))
	}
	p, err := h.prefs.Load(ctx, prefsUserID)
	if err != nil {
		h.logger.Warn("load preferences", slog.Any("error", err))
		p = prefs.Default()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.engine.NoteDataChanged()
	applyGridQuery(h.engine, r.URL.Query())
	view := h.engine.View(parties)

	vm := partiesPageVM{
		Kind:  kind,
		Total: len(parties),
		Owed:  formatAmount(owed, p.GroupedNumbers),
		Grid: buildGridVM(h.engine, view, func(pr records.PartyRecord) int64 {
			return pr.ID
		}, "parties/view", "parties/new"),
	}
	writeJSON(h.logger, w, http.StatusOK, vm)
}

// resolveKind picks the requested tab, falling back to the remembered one.
func (h *PartiesHandler) resolveKind(ctx context.Context, raw string) records.PartyKind {
	switch records.PartyKind(raw) {
	case records.PartyClient, records.PartyVendor:
		return records.PartyKind(raw)
	}
	if p, err := h.prefs.Load(ctx, prefsUserID); err == nil {
		if records.PartyKind(p.LastTab["parties"]) == records.PartyVendor {
			return records.PartyVendor
		}
	}
	return records.PartyClient
}

func partyColumns() []grid.ColumnSpec[records.PartyRecord] {
	return []grid.ColumnSpec[records.PartyRecord]{
		{Key: "name", Label: "Name", Sortable: true, Value: func(p records.PartyRecord) string {
			return p.Name
		}},
		{Key: "phone", Label: "Phone", Sortable: true, Value: func(p records.PartyRecord) string {
			return p.Phone
		}},
		{Key: "address", Label: "Address", Value: func(p records.PartyRecord) string {
			return p.Address
		}},
		{Key: "balance", Label: "Balance", Sortable: true,
			Value: func(p records.PartyRecord) string {
				return p.Balance.StringFixed(2)
			},
			Compare: func(a, b records.PartyRecord) int {
				return a.Balance.Cmp(b.Balance)
			}},
	}
}
