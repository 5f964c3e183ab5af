package api

import (
	"database/sql"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200

	// maxPage keeps (page-1)*page_size and the next link within int range.
	maxPage = math.MaxInt32
)

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	DB       *sql.DB
	Validate *validator.Validate
	Log      *zap.Logger
}

type addStockRequest struct {
	Branch   int64  `json:"branch" validate:"required,gt=0"`
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// List handles GET /api/inventory?branch=&page=&page_size=&search=.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	branchID, err := strconv.ParseInt(q.Get("branch"), 10, 64)
	if err != nil || branchID <= 0 {
		jsonDetail(w, http.StatusBadRequest, "branch query parameter is required")
		return
	}
	page, ok := positiveParam(q, "page", 1)
	if !ok || page > maxPage {
		jsonDetail(w, http.StatusBadRequest, "invalid page")
		return
	}
	size, ok := positiveParam(q, "page_size", defaultPageSize)
	if !ok {
		jsonDetail(w, http.StatusBadRequest, "invalid page_size")
		return
	}
	size = min(size, maxPageSize)

	branch, err := store.GetBranch(r.Context(), h.DB, branchID)
	if err != nil {
		h.Log.Error("getting branch failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}
	if branch == nil {
		jsonDetail(w, http.StatusNotFound, "branch not found")
		return
	}

	entries, total, err := store.ListStock(r.Context(), h.DB, store.StockFilter{
		BranchID: branchID,
		Search:   q.Get("search"),
		Limit:    uint64(size),
		Offset:   uint64((page - 1) * size),
	})
	if err != nil {
		h.Log.Error("listing stock failed", zap.Error(err), zap.Int64("branch", branchID))
		jsonError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}

	resp := model.InventoryPage{Count: total, Results: make([]model.InventoryRow, 0, len(entries))}
	for _, e := range entries {
		row := model.InventoryRow{
			ID:           e.ID,
			Product:      e.ProductID,
			Name:         e.Name,
			CurrentStock: e.Quantity,
		}
		if e.Barcode != "" {
			barcode := e.Barcode
			row.Barcode = &barcode
		}
		resp.Results = append(resp.Results, row)
	}
	if page*size < total {
		resp.Next = pageLink(r.URL, page+1)
	}
	if page > 1 {
		resp.Previous = pageLink(r.URL, page-1)
	}

	jsonResponse(w, http.StatusOK, resp)
}

// AddStock handles POST /api/inventory/stock.
func (h *InventoryHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validateBody(w, h.Validate, req) {
		return
	}

	err := store.AddStock(r.Context(), h.DB, req.Branch, req.Product, req.Quantity)
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonDetail(w, http.StatusNotFound, "branch or product not found")
		return
	case err != nil:
		h.Log.Error("adding stock failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to add stock")
		return
	}

	h.Log.Info("stock added", zap.Int64("branch", req.Branch),
		zap.String("product", req.Product), zap.Int("quantity", req.Quantity))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "stock added"})
}

// positiveParam parses an optional positive integer query parameter.
func positiveParam(q url.Values, key string, fallback int) (int, bool) {
	v := q.Get(key)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func pageLink(u *url.URL, page int) *string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	link := (&url.URL{Path: u.Path, RawQuery: q.Encode()}).String()
	return &link
}
