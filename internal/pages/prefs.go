package pages

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comptoir-erp/comptoir-erp/internal/prefs"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// PrefsHandler exposes the persisted UI preferences. They are convenience
// state only; every handler falls back to defaults when the store is empty
// or unreachable.
type PrefsHandler struct {
	logger   *slog.Logger
	store    *prefs.Store
	validate *validator.Validate
}

// NewPrefsHandler constructs the preferences handler.
func NewPrefsHandler(logger *slog.Logger, store *prefs.Store) *PrefsHandler {
	return &PrefsHandler{logger: logger, store: store, validate: validator.New()}
}

// MountRoutes registers the preference routes.
func (h *PrefsHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleGet)
	r.Put("/", h.handlePut)
	r.Put("/tab", h.handleSetTab)
}

func (h *PrefsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Load(r.Context(), prefsUserID)
	if err != nil {
		h.logger.Warn("load preferences", slog.Any("error", err))
		p = prefs.Default()
	}
	writeJSON(h.logger, w, http.StatusOK, p)
}

func (h *PrefsHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	var p prefs.Preferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(h.logger, w, fmt.Errorf("%w: malformed body", shared.ErrCommandRejected))
		return
	}
	if p.LastTab == nil {
		p.LastTab = map[string]string{}
	}
	if err := h.store.Save(r.Context(), prefsUserID, p); err != nil {
		h.logger.Error("save preferences", slog.Any("error", err))
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, p)
}

type setTabInput struct {
	Screen string `json:"screen" validate:"required,max=64"`
	Tab    string `json:"tab" validate:"required,max=64"`
}

func (h *PrefsHandler) handleSetTab(w http.ResponseWriter, r *http.Request) {
	var input setTabInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(h.logger, w, fmt.Errorf("%w: malformed body", shared.ErrCommandRejected))
		return
	}
	if err := h.validate.Struct(input); err != nil {
		writeError(h.logger, w, fmt.Errorf("%w: %v", shared.ErrCommandRejected, err))
		return
	}
	if err := h.store.SetTab(r.Context(), prefsUserID, input.Screen, input.Tab); err != nil {
		h.logger.Error("save tab preference", slog.Any("error", err))
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
