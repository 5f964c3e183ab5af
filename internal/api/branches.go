package api

import (
	"database/sql"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/store"
)

// BranchesHandler handles branch endpoints.
type BranchesHandler struct {
	DB       *sql.DB
	Validate *validator.Validate
	Log      *zap.Logger
}

type createBranchRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// List handles GET /api/branches.
func (h *BranchesHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := store.ListBranches(r.Context(), h.DB)
	if err != nil {
		h.Log.Error("listing branches failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to list branches")
		return
	}
	if branches == nil {
		branches = []model.Branch{}
	}
	jsonResponse(w, http.StatusOK, branches)
}

// Create handles POST /api/branches.
func (h *BranchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validateBody(w, h.Validate, req) {
		return
	}

	branch, err := store.CreateBranch(r.Context(), h.DB, req.Name)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string][]string{"name": {"branch name already in use"}})
		return
	}

	h.Log.Info("branch created", zap.Int64("id", branch.ID), zap.String("name", branch.Name))
	jsonResponse(w, http.StatusCreated, branch)
}
