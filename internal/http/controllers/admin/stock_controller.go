package admin

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/prepmood/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	"github.com/dropDatabas3/prepmood/internal/http/middlewares"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/admin"
)

// StockController maneja el inventario del admin.
type StockController struct {
	service svc.StockService
}

// NewStockController crea el controller admin de stock.
func NewStockController(service svc.StockService) *StockController {
	return &StockController{service: service}
}

// List maneja GET /api/admin/stock?product_id=&status=&limit=&offset=.
func (c *StockController) List(w http.ResponseWriter, r *http.Request) {
	limit := helpers.QueryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := helpers.QueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	productID := int64(helpers.QueryInt(r, "product_id", 0))

	resp, err := c.service.List(r.Context(), productID, r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		writeStockError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Stats maneja GET /api/admin/stock/stats.
func (c *StockController) Stats(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.Stats(r.Context())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Create maneja POST /api/admin/stock.
func (c *StockController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.StockCreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	units, err := c.service.Create(r.Context(), req)
	if err != nil {
		writeStockError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, map[string]any{"units": units})
}

// Correct maneja POST /api/admin/stock/{id}/correct.
func (c *StockController) Correct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := middlewares.GetSession(ctx)

	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.StockCorrectRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	resp, err := c.service.Correct(ctx, id, s.UserID, req)
	if err != nil {
		writeStockError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func writeStockError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidStockStatus):
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("invalid stock status"))
	case errors.Is(err, svc.ErrNoUnits):
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("at least one token is required"))
	case errors.Is(err, svc.ErrReasonTooShort):
		httperrors.WriteError(w, httperrors.ErrReasonTooShort)
	default:
		httperrors.WriteError(w, err)
	}
}
