package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/comptoir-erp/comptoir-erp/internal/observability"
	"github.com/comptoir-erp/comptoir-erp/internal/pages"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	ProductsHandler     *pages.ProductsHandler
	RawMaterialsHandler *pages.RawMaterialsHandler
	PartiesHandler      *pages.PartiesHandler
	SalesHandler        *pages.SalesHandler
	PurchasesHandler    *pages.PurchasesHandler
	TreasuryHandler     *pages.TreasuryHandler
	PrefsHandler        *pages.PrefsHandler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/products", params.ProductsHandler.MountRoutes)
	r.Route("/materials", params.RawMaterialsHandler.MountRoutes)
	r.Route("/parties", params.PartiesHandler.MountRoutes)
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/purchases", params.PurchasesHandler.MountRoutes)
	r.Route("/treasury", params.TreasuryHandler.MountRoutes)
	r.Route("/prefs", params.PrefsHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
