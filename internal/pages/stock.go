package pages

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/comptoir-erp/comptoir-erp/internal/grid"
	"github.com/comptoir-erp/comptoir-erp/internal/metrics"
	"github.com/comptoir-erp/comptoir-erp/internal/records"
)

// stockBridge is the backend surface the stock screens consume.
type stockBridge interface {
	ListStockItems(ctx context.Context) ([]records.StockItem, error)
	ListRawMaterials(ctx context.Context) ([]records.StockItem, error)
}

// stockPage implements the products and raw-materials screens, which share
// everything but the backend command and their navigation routes.
type stockPage struct {
	logger   *slog.Logger
	fetch    func(context.Context) ([]records.StockItem, error)
	rowRoute string
	addRoute string

	mu     sync.Mutex
	engine *grid.Engine[records.StockItem]
}

func newStockPage(logger *slog.Logger, fetch func(context.Context) ([]records.StockItem, error), rowRoute, addRoute string, pageSize int) *stockPage {
	return &stockPage{
		logger:   logger,
		fetch:    fetch,
		rowRoute: rowRoute,
		addRoute: addRoute,
		engine:   grid.NewEngine(stockColumns(), grid.WithPageSize[records.StockItem](pageSize)),
	}
}

// MountRoutes registers the screen's routes.
func (p *stockPage) MountRoutes(r chi.Router) {
	r.Get("/", p.handleList)
}

type stockPageVM struct {
	Metrics metrics.StockMetrics `json:"metrics"`
	Grid    GridVM               `json:"grid"`
}

func (p *stockPage) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := p.fetch(r.Context())
	if err != nil {
		p.logger.Error("fetch stock list", slog.Any("error", err))
		writeError(p.logger, w, err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.NoteDataChanged()
	applyGridQuery(p.engine, r.URL.Query())
	view := p.engine.View(items)

	vm := stockPageVM{
		Metrics: metrics.DeriveStock(items),
		Grid: buildGridVM(p.engine, view, func(it records.StockItem) int64 {
			return it.ID
		}, p.rowRoute, p.addRoute),
	}
	writeJSON(p.logger, w, http.StatusOK, vm)
}

// stockColumns builds the stock grid schema, including the derived
// stock-status column which these domains opt into.
func stockColumns() []grid.ColumnSpec[records.StockItem] {
	cols := []grid.ColumnSpec[records.StockItem]{
		{Key: "code", Label: "Code", Sortable: true, Value: func(it records.StockItem) string {
			return it.Code
		}},
		{Key: "name", Label: "Name", Sortable: true, Value: func(it records.StockItem) string {
			return it.Name
		}},
		{Key: "quantity", Label: "Quantity", Sortable: true,
			Value: func(it records.StockItem) string {
				return strconv.FormatFloat(it.Quantity, 'f', -1, 64)
			},
			Compare: func(a, b records.StockItem) int {
				return cmpFloat(a.Quantity, b.Quantity)
			}},
		{Key: "threshold", Label: "Threshold", Sortable: true,
			Value: func(it records.StockItem) string {
				return strconv.FormatFloat(it.Threshold, 'f', -1, 64)
			},
			Compare: func(a, b records.StockItem) int {
				return cmpFloat(a.Threshold, b.Threshold)
			}},
		{Key: "unit_price", Label: "Unit price", Sortable: true,
			Value: func(it records.StockItem) string {
				return it.UnitPrice.StringFixed(2)
			},
			Compare: func(a, b records.StockItem) int {
				return a.UnitPrice.Cmp(b.UnitPrice)
			}},
	}
	return grid.AppendStockStatus(cols,
		func(it records.StockItem) string {
			return records.StockStatus(it.Quantity, it.Threshold).String()
		},
		func(a, b records.StockItem) int {
			return int(records.StockStatus(a.Quantity, a.Threshold)) - int(records.StockStatus(b.Quantity, b.Threshold))
		})
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ProductsHandler serves the finished-products screen.
type ProductsHandler struct {
	*stockPage
}

// NewProductsHandler constructs the products page controller.
func NewProductsHandler(logger *slog.Logger, bridge stockBridge, pageSize int) *ProductsHandler {
	return &ProductsHandler{stockPage: newStockPage(logger, bridge.ListStockItems, "products/view", "products/new", pageSize)}
}

// RawMaterialsHandler serves the raw-materials screen.
type RawMaterialsHandler struct {
	*stockPage
}

// NewRawMaterialsHandler constructs the raw-materials page controller.
func NewRawMaterialsHandler(logger *slog.Logger, bridge stockBridge, pageSize int) *RawMaterialsHandler {
	return &RawMaterialsHandler{stockPage: newStockPage(logger, bridge.ListRawMaterials, "materials/view", "materials/new", pageSize)}
}
