package composer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/notify"
)

// DefaultCloseDelay is how long the success notification is shown before
// the composer asks to be closed.
const DefaultCloseDelay = 2 * time.Second

// UnitPrice is sent on every line. The backend requires the field but a
// stock transfer carries no price.
var UnitPrice = decimal.Zero

// SubmitError is a rejected submit with the message shown to the user.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("composer: submit failed: %v", e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Submitter sends validated drafts to the backend.
type Submitter struct {
	Backend    Backend
	Sink       *notify.Sink
	Log        *zap.Logger
	CloseDelay time.Duration

	// OnClose is called CloseDelay after a successful submit.
	OnClose func()
}

// BuildRequest converts d into the create-transfer body. Lines with
// quantity 0 are left out and blank notes are omitted.
func BuildRequest(d Draft) model.TransferRequest {
	req := model.TransferRequest{Notes: strings.TrimSpace(d.Notes)}
	if d.SourceBranchID != nil {
		req.FromBranch = *d.SourceBranchID
	}
	if d.DestinationBranchID != nil {
		req.ToBranch = *d.DestinationBranchID
	}
	for _, l := range d.Lines {
		if l.Quantity <= 0 {
			continue
		}
		req.Items = append(req.Items, model.TransferRequestItem{
			Product:   l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: UnitPrice,
		})
	}
	return req
}

// Submit sends d. It does not validate; callers check Validate first.
func (s *Submitter) Submit(ctx context.Context, d Draft) (*model.Transfer, error) {
	req := BuildRequest(d)

	t, err := s.Backend.CreateTransfer(ctx, req, d.Reference.String())
	if err != nil {
		msg := failureMessage(err)
		s.Sink.Show(notify.Error, "Transfer failed", msg)
		s.Log.Warn("transfer submit failed",
			zap.String("reference", d.Reference.String()), zap.Error(err))
		return nil, &SubmitError{Message: msg, Err: err}
	}

	lines, units := len(req.Items), req.TotalUnits()
	s.Sink.Show(notify.Success, "Transfer created",
		fmt.Sprintf("Transferred %d %s, %d %s in total.",
			lines, plural(lines, "product", "products"), units, plural(units, "unit", "units")))
	s.Log.Info("transfer submitted",
		zap.Int64("id", t.ID), zap.String("reference", d.Reference.String()),
		zap.Int("lines", lines), zap.Int("units", units))

	if s.OnClose != nil {
		time.AfterFunc(s.CloseDelay, s.OnClose)
	}
	return t, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
