package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/store"
)

// IdempotencyHeader carries the client's draft reference.
const IdempotencyHeader = "Idempotency-Key"

// TransfersHandler handles transfer endpoints.
type TransfersHandler struct {
	DB       *sql.DB
	Validate *validator.Validate
	Log      *zap.Logger
}

// Create handles POST /api/transfers. A replayed Idempotency-Key returns the
// original transfer with 200 instead of 201.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validateBody(w, h.Validate, req) {
		return
	}

	reference := r.Header.Get(IdempotencyHeader)
	if reference != "" {
		if _, err := uuid.Parse(reference); err != nil {
			jsonDetail(w, http.StatusBadRequest, IdempotencyHeader+" must be a UUID")
			return
		}
	}

	nt := store.NewTransfer{
		Reference:    reference,
		FromBranchID: req.FromBranch,
		ToBranchID:   req.ToBranch,
		Notes:        req.Notes,
		CreatedBy:    userID(r.Context()),
	}
	for _, it := range req.Items {
		nt.Items = append(nt.Items, store.NewTransferItem{
			ProductID: it.Product,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	transfer, created, err := store.CreateTransfer(r.Context(), h.DB, nt)
	var stockErr *store.StockError
	switch {
	case err == nil:
	case errors.Is(err, store.ErrSameBranch):
		jsonNonField(w, http.StatusBadRequest, "source and destination branch must differ")
		return
	case errors.Is(err, store.ErrDuplicateProduct), errors.Is(err, store.ErrInvalidQuantity), errors.Is(err, store.ErrNoItems):
		jsonResponse(w, http.StatusBadRequest, map[string][]string{"items": {err.Error()}})
		return
	case errors.As(err, &stockErr):
		jsonResponse(w, http.StatusBadRequest, map[string][]store.Shortage{"items": stockErr.Shortages})
		return
	case errors.Is(err, store.ErrNotFound):
		jsonDetail(w, http.StatusNotFound, err.Error())
		return
	default:
		h.Log.Error("creating transfer failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to create transfer")
		return
	}

	claims := GetClaims(r.Context())
	if !created {
		h.Log.Info("transfer replayed", zap.String("user", claims.Username),
			zap.Int64("id", transfer.ID), zap.String("reference", transfer.Reference))
		jsonResponse(w, http.StatusOK, transfer)
		return
	}

	h.Log.Info("transfer created", zap.String("user", claims.Username),
		zap.Int64("id", transfer.ID),
		zap.Int64("from", transfer.FromBranchID), zap.Int64("to", transfer.ToBranchID),
		zap.Int("lines", transfer.LineCount), zap.Int("units", transfer.TotalUnits))
	jsonResponse(w, http.StatusCreated, transfer)
}

// List handles GET /api/transfers?branch=&limit=.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := transferFilter(w, r)
	if !ok {
		return
	}

	transfers, err := store.ListTransfers(r.Context(), h.DB, filter)
	if err != nil {
		h.Log.Error("listing transfers failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}
	if transfers == nil {
		transfers = []model.Transfer{}
	}
	jsonResponse(w, http.StatusOK, transfers)
}

// Get handles GET /api/transfers/{id}.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonDetail(w, http.StatusBadRequest, "invalid id")
		return
	}

	transfer, err := store.GetTransfer(r.Context(), h.DB, id)
	if err != nil {
		h.Log.Error("getting transfer failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to get transfer")
		return
	}
	if transfer == nil {
		jsonDetail(w, http.StatusNotFound, "transfer not found")
		return
	}
	jsonResponse(w, http.StatusOK, transfer)
}

func transferFilter(w http.ResponseWriter, r *http.Request) (store.TransferFilter, bool) {
	var f store.TransferFilter
	q := r.URL.Query()

	if v := q.Get("branch"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonDetail(w, http.StatusBadRequest, "invalid branch")
			return f, false
		}
		f.BranchID = id
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			jsonDetail(w, http.StatusBadRequest, "invalid limit")
			return f, false
		}
		f.Limit = n
	}
	return f, true
}
