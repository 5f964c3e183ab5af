package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/composer"
	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/notify"
	"github.com/erazemk/prenos/internal/store"
)

const transferListLimit = 100

// TransfersPage handles GET /transfers.
func (s *Server) TransfersPage(w http.ResponseWriter, r *http.Request) {
	branchID := formID(r.URL.Query().Get("branch"))

	transfers, err := store.ListTransfers(r.Context(), s.DB, store.TransferFilter{
		BranchID: branchID,
		Limit:    transferListLimit,
	})
	if err != nil {
		s.Log.Error("listing transfers failed", zap.Error(err))
	}
	branches, err := store.ListBranches(r.Context(), s.DB)
	if err != nil {
		s.Log.Error("listing branches failed", zap.Error(err))
	}

	s.Templates.Render(w, "transfers.html", &struct {
		PageData
		Transfers []model.Transfer
		Branches  []model.Branch
		BranchID  int64
	}{
		PageData:  s.page(r, "Transfers"),
		Transfers: transfers,
		Branches:  branches,
		BranchID:  branchID,
	})
}

type composerPage struct {
	PageData
	Branches    []model.Branch
	Source      int64
	Destination int64
	Notes       string
	Query       string
	Results     []model.InventoryItem
	InDraft     map[string]bool
	Lines       []composer.Line
	LineCount   int
	TotalUnits  int
	Loading     bool
	Submitting  bool
}

// TransferNewPage handles GET /transfers/new, the bulk transfer composer.
func (s *Server) TransferNewPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	c, err := s.Sessions.Composer(claims.ID, GetWebToken(r.Context()))
	if err != nil {
		s.Log.Error("opening composer failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// A failed load leaves the catalog empty; visiting the page retries it.
	if len(c.Branches()) == 0 {
		c.LoadBranches(r.Context())
	}

	query := r.URL.Query().Get("q")
	draft := c.Draft()
	lines, units := c.Totals()

	data := composerPage{
		PageData:   s.page(r, "New transfer"),
		Branches:   c.Branches(),
		Notes:      draft.Notes,
		Query:      query,
		Results:    c.Search(query),
		InDraft:    make(map[string]bool, len(draft.Lines)),
		Lines:      draft.Lines,
		LineCount:  lines,
		TotalUnits: units,
		Loading:    c.Loading(),
		Submitting: c.Submitting(),
	}
	if draft.SourceBranchID != nil {
		data.Source = *draft.SourceBranchID
	}
	if draft.DestinationBranchID != nil {
		data.Destination = *draft.DestinationBranchID
	}
	for _, l := range draft.Lines {
		data.InDraft[l.ProductID] = true
	}
	if s.Sessions.Closing(claims.ID) {
		data.Refresh = composer.DefaultCloseDelay
		data.RefreshURL = "/transfers"
	}

	s.Templates.Render(w, "transfer_new.html", &data)
}

// TransferAction handles POST /transfers/new/{action}: one composer
// operation per form post, followed by a redirect back to the page.
func (s *Server) TransferAction(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	c, err := s.Sessions.Composer(claims.ID, GetWebToken(r.Context()))
	if err != nil {
		s.Log.Error("opening composer failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	sink := s.Sessions.Sink(claims.ID)
	product := r.FormValue("product")

	switch r.PathValue("action") {
	case "source":
		err = c.SelectSource(r.Context(), formID(r.FormValue("branch")))
		if errors.Is(err, composer.ErrSuperseded) {
			err = nil
		}
	case "destination":
		err = c.SelectDestination(formID(r.FormValue("branch")))
	case "add":
		err = c.Add(product)
	case "remove":
		c.Remove(product)
	case "quantity":
		// A form post is the end of editing: apply the value, then commit.
		c.SetQuantity(product, r.FormValue("quantity"))
		c.Commit(product)
	case "inc":
		c.Increment(product)
	case "dec":
		c.Decrement(product)
	case "max":
		c.SetMax(product)
	case "clear":
		c.Clear()
	case "notes":
		c.SetNotes(r.FormValue("notes"))
	case "submit":
		if r.Form.Has("notes") {
			c.SetNotes(r.FormValue("notes"))
		}
		var t *model.Transfer
		t, err = c.Submit(r.Context())
		if err == nil {
			s.Sessions.markClosing(claims.ID)
			s.Log.Info("transfer created via console", zap.String("user", claims.Username), zap.Int64("id", t.ID))
		}
	case "cancel":
		c.Reset()
		s.Sessions.release(claims.ID)
		http.Redirect(w, r, "/transfers", http.StatusSeeOther)
		return
	default:
		http.NotFound(w, r)
		return
	}

	if msg := actionMessage(err); msg != "" {
		sink.Show(notify.Warning, "Not applied", msg)
	}

	target := "/transfers/new"
	if q := r.FormValue("q"); q != "" {
		target += "?q=" + url.QueryEscape(q)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// actionMessage describes errors the composer has not already reported
// through the sink. Empty means nothing more to show.
func actionMessage(err error) string {
	var verr *composer.ValidationError
	var serr *composer.SubmitError
	switch {
	case err == nil,
		errors.As(err, &verr),
		errors.As(err, &serr),
		errors.Is(err, composer.ErrDuplicateLine):
		return ""
	case errors.Is(err, composer.ErrUnknownBranch):
		return "Unknown branch."
	case errors.Is(err, composer.ErrNoSource):
		return "Select the source branch first."
	case errors.Is(err, composer.ErrNotInSnapshot), errors.Is(err, composer.ErrOutOfStock):
		return "That product is not available at the source branch."
	case errors.Is(err, composer.ErrSubmitInProgress):
		return "The transfer is already being submitted."
	default:
		// Load failures are reported by the composer.
		return ""
	}
}

func formID(v string) int64 {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
