package api

import (
	"database/sql"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/store"
)

// ProductsHandler handles product endpoints.
type ProductsHandler struct {
	DB       *sql.DB
	Validate *validator.Validate
	Log      *zap.Logger
}

type createProductRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Barcode string `json:"barcode" validate:"omitempty,max=64,alphanum"`
}

// List handles GET /api/products?search=.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProducts(r.Context(), h.DB, r.URL.Query().Get("search"))
	if err != nil {
		h.Log.Error("listing products failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	jsonResponse(w, http.StatusOK, products)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validateBody(w, h.Validate, req) {
		return
	}

	product, err := store.CreateProduct(r.Context(), h.DB, req.Name, req.Barcode)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string][]string{"barcode": {"barcode already in use"}})
		return
	}

	h.Log.Info("product created", zap.String("id", product.ID), zap.String("name", product.Name))
	jsonResponse(w, http.StatusCreated, product)
}
