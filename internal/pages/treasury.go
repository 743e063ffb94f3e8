package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/comptoir-erp/comptoir-erp/internal/grid"
	"github.com/comptoir-erp/comptoir-erp/internal/metrics"
	"github.com/comptoir-erp/comptoir-erp/internal/prefs"
	"github.com/comptoir-erp/comptoir-erp/internal/records"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// treasuryBridge is the backend surface the treasury screen consumes.
type treasuryBridge interface {
	ListTreasuryPeriods(ctx context.Context) ([]records.TreasuryPeriod, error)
	RecordDeposit(ctx context.Context, amount decimal.Decimal, note string) error
	RecordWithdrawal(ctx context.Context, amount decimal.Decimal, note string) error
}

// TreasuryHandler serves the treasury screen. Periods are archival: rows
// have no activation target. Deposits and withdrawals are serialized by a
// busy flag and always re-fetch authoritative state after success instead
// of merging the result locally.
type TreasuryHandler struct {
	logger   *slog.Logger
	bridge   treasuryBridge
	prefs    *prefs.Store
	validate *validator.Validate
	busy     atomic.Bool

	mu      sync.Mutex
	engine  *grid.Engine[records.TreasuryPeriod]
	closing decimal.Decimal
}

// NewTreasuryHandler constructs the treasury page controller.
func NewTreasuryHandler(logger *slog.Logger, bridge treasuryBridge, store *prefs.Store, pageSize int) *TreasuryHandler {
	return &TreasuryHandler{
		logger:   logger,
		bridge:   bridge,
		prefs:    store,
		validate: validator.New(),
		engine:   grid.NewEngine(treasuryColumns(), grid.WithPageSize[records.TreasuryPeriod](pageSize)),
	}
}

// MountRoutes registers the screen's routes.
func (h *TreasuryHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/deposits", h.handleDeposit)
	r.Post("/withdrawals", h.handleWithdrawal)
}

type treasuryPageVM struct {
	Metrics        metrics.TreasuryMetrics `json:"metrics"`
	ClosingDisplay string                  `json:"closing_display"`
	Grid           GridVM                  `json:"grid"`
}

func (h *TreasuryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	vm, err := h.refresh(r.Context(), r)
	if err != nil {
		h.logger.Error("fetch treasury periods", slog.Any("error", err))
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, vm)
}

// refresh fetches the authoritative period list and rebuilds the view
// model. r may be nil when called after a mutation; grid state is then
// left as-is.
func (h *TreasuryHandler) refresh(ctx context.Context, r *http.Request) (treasuryPageVM, error) {
	periods, err := h.bridge.ListTreasuryPeriods(ctx)
	if err != nil {
		return treasuryPageVM{}, err
	}
	userPrefs, err := h.prefs.Load(ctx, prefsUserID)
	if err != nil {
		h.logger.Warn("load preferences", slog.Any("error", err))
		userPrefs = prefs.Default()
	}

	m := metrics.DeriveTreasury(periods)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closing = m.Closing
	h.engine.NoteDataChanged()
	if r != nil {
		applyGridQuery(h.engine, r.URL.Query())
	}
	view := h.engine.View(periods)

	return treasuryPageVM{
		Metrics:        m,
		ClosingDisplay: formatAmount(m.Closing, userPrefs.GroupedNumbers),
		Grid: buildGridVM(h.engine, view, func(p records.TreasuryPeriod) int64 {
			return p.ID
		}, "", ""),
	}, nil
}

type movementInput struct {
	Amount string `json:"amount" validate:"required"`
	Note   string `json:"note" validate:"max=200"`
}

func (h *TreasuryHandler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleMovement(w, r, false)
}

func (h *TreasuryHandler) handleWithdrawal(w http.ResponseWriter, r *http.Request) {
	h.handleMovement(w, r, true)
}

func (h *TreasuryHandler) handleMovement(w http.ResponseWriter, r *http.Request, withdrawal bool) {
	var input movementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(h.logger, w, fmt.Errorf("%w: malformed body", shared.ErrInvalidAmount))
		return
	}
	if err := h.validate.Struct(input); err != nil {
		writeError(h.logger, w, fmt.Errorf("%w: %v", shared.ErrInvalidAmount, err))
		return
	}
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || amount.Sign() <= 0 {
		writeError(h.logger, w, shared.ErrInvalidAmount)
		return
	}
	if withdrawal {
		h.mu.Lock()
		closing := h.closing
		h.mu.Unlock()
		if amount.GreaterThan(closing) {
			writeError(h.logger, w, shared.ErrInsufficientBalance)
			return
		}
	}

	// One mutation at a time; the shell disables the control, this backs it up.
	if !h.busy.CompareAndSwap(false, true) {
		writeError(h.logger, w, shared.ErrBusy)
		return
	}
	defer h.busy.Store(false)

	ctx := r.Context()
	if withdrawal {
		err = h.bridge.RecordWithdrawal(ctx, amount, input.Note)
	} else {
		err = h.bridge.RecordDeposit(ctx, amount, input.Note)
	}
	if err != nil {
		h.logger.Error("record movement", slog.Bool("withdrawal", withdrawal), slog.Any("error", err))
		writeError(h.logger, w, err)
		return
	}

	vm, err := h.refresh(ctx, nil)
	if err != nil {
		h.logger.Error("refresh after movement", slog.Any("error", err))
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, vm)
}

func treasuryColumns() []grid.ColumnSpec[records.TreasuryPeriod] {
	period := func(p records.TreasuryPeriod) string {
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	}
	return []grid.ColumnSpec[records.TreasuryPeriod]{
		{Key: "period", Label: "Period", Sortable: true, Value: period},
		{Key: "opening", Label: "Opening", Sortable: true,
			Value: func(p records.TreasuryPeriod) string {
				return p.Opening.StringFixed(2)
			},
			Compare: func(a, b records.TreasuryPeriod) int {
				return a.Opening.Cmp(b.Opening)
			}},
		{Key: "deposits", Label: "Deposits", Sortable: true,
			Value: func(p records.TreasuryPeriod) string {
				return p.Deposits.StringFixed(2)
			},
			Compare: func(a, b records.TreasuryPeriod) int {
				return a.Deposits.Cmp(b.Deposits)
			}},
		{Key: "withdrawals", Label: "Withdrawals", Sortable: true,
			Value: func(p records.TreasuryPeriod) string {
				return p.Withdrawals.StringFixed(2)
			},
			Compare: func(a, b records.TreasuryPeriod) int {
				return a.Withdrawals.Cmp(b.Withdrawals)
			}},
		{Key: "closing", Label: "Closing", Sortable: true,
			Value: func(p records.TreasuryPeriod) string {
				return p.Closing.StringFixed(2)
			},
			Compare: func(a, b records.TreasuryPeriod) int {
				return a.Closing.Cmp(b.Closing)
			}},
	}
}
