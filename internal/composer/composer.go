package composer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/notify"
)

var (
	ErrUnknownBranch    = errors.New("composer: unknown branch")
	ErrNoSource         = errors.New("composer: no source branch selected")
	ErrNotInSnapshot    = errors.New("composer: product is not in the loaded inventory")
	ErrSubmitInProgress = errors.New("composer: submit already in progress")

	// ErrSuperseded is returned by SelectSource when another selection
	// happened before its inventory arrived. The response was discarded.
	ErrSuperseded = errors.New("composer: inventory load superseded")
)

// Composer owns one transfer draft for one user session. Its methods are
// safe for concurrent use; no lock is held across backend calls.
type Composer struct {
	backend   Backend
	sink      *notify.Sink
	log       *zap.Logger
	submitter *Submitter

	mu          sync.Mutex
	catalog     *Catalog
	source      *int64
	destination *int64
	notes       string
	reference   uuid.UUID
	lines       LineSet
	snapshot    []model.InventoryItem
	generation  uint64
	loading     bool
	submitting  bool
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Composer) { c.log = log }
}

// WithCloseDelay overrides DefaultCloseDelay.
func WithCloseDelay(d time.Duration) Option {
	return func(c *Composer) { c.submitter.CloseDelay = d }
}

// WithOnClose sets the callback fired after a successful submit.
func WithOnClose(fn func()) Option {
	return func(c *Composer) { c.submitter.OnClose = fn }
}

// New returns a composer with an empty draft. A nil sink gets a private one.
func New(backend Backend, sink *notify.Sink, opts ...Option) *Composer {
	if sink == nil {
		sink = notify.NewSink()
	}
	c := &Composer{
		backend:   backend,
		sink:      sink,
		log:       zap.NewNop(),
		reference: uuid.New(),
		submitter: &Submitter{Backend: backend, Sink: sink, CloseDelay: DefaultCloseDelay},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.submitter.Log = c.log
	return c
}

// LoadBranches fetches the branch catalog. On failure the catalog is empty
// and an error notification is shown.
func (c *Composer) LoadBranches(ctx context.Context) ([]model.Branch, error) {
	catalog, err := LoadCatalog(ctx, c.backend)
	if err != nil {
		c.mu.Lock()
		c.catalog = NewCatalog(nil)
		c.mu.Unlock()
		c.sink.Show(notify.Error, "Load failed", "Could not load branches.")
		c.log.Warn("loading branches failed", zap.Error(err))
		return nil, fmt.Errorf("loading branches: %w", err)
	}

	c.mu.Lock()
	c.catalog = catalog
	c.mu.Unlock()
	return catalog.Branches(), nil
}

// Branches returns the loaded catalog.
func (c *Composer) Branches() []model.Branch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.Branches()
}

// SelectSource makes branchID the source branch, discards all lines and
// loads the branch's inventory. 0 clears the selection. When another
// selection happens before the load returns, the response is dropped and
// ErrSuperseded is returned.
func (c *Composer) SelectSource(ctx context.Context, branchID int64) error {
	c.mu.Lock()
	if branchID != 0 {
		if _, ok := c.catalog.Lookup(branchID); !ok {
			c.mu.Unlock()
			return ErrUnknownBranch
		}
	}
	c.generation++
	gen := c.generation
	c.lines.Clear()
	c.snapshot = nil
	if branchID == 0 {
		c.source = nil
		c.loading = false
		c.mu.Unlock()
		return nil
	}
	c.source = &branchID
	c.loading = true
	c.mu.Unlock()

	items, err := loadSnapshot(ctx, c.backend, branchID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.source == nil || *c.source != branchID {
		c.log.Debug("discarding stale inventory", zap.Int64("branch", branchID), zap.Uint64("generation", gen))
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.sink.Show(notify.Error, "Load failed", "Could not load inventory for the source branch.")
		c.log.Warn("loading inventory failed", zap.Int64("branch", branchID), zap.Error(err))
		return fmt.Errorf("loading inventory for branch %d: %w", branchID, err)
	}
	c.snapshot = items
	return nil
}

// SelectDestination sets the destination branch. 0 clears it.
func (c *Composer) SelectDestination(branchID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if branchID == 0 {
		c.destination = nil
		return nil
	}
	if _, ok := c.catalog.Lookup(branchID); !ok {
		return ErrUnknownBranch
	}
	c.destination = &branchID
	return nil
}

// SetNotes replaces the draft notes.
func (c *Composer) SetNotes(notes string) {
	c.mu.Lock()
	c.notes = notes
	c.mu.Unlock()
}

// Snapshot returns the in-stock inventory of the source branch.
func (c *Composer) Snapshot() []model.InventoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.snapshot)
}

// Search filters the snapshot by name or barcode.
func (c *Composer) Search(term string) []model.InventoryItem {
	return Filter(c.Snapshot(), term)
}

// Add puts a snapshot product into the draft with quantity 1. Adding a
// product twice shows a warning and returns ErrDuplicateLine.
func (c *Composer) Add(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil {
		return ErrNoSource
	}
	i := slices.IndexFunc(c.snapshot, func(it model.InventoryItem) bool {
		return it.ProductID == productID
	})
	if i < 0 {
		return ErrNotInSnapshot
	}

	item := c.snapshot[i]
	if err := c.lines.Add(*c.source, item); err != nil {
		if errors.Is(err, ErrDuplicateLine) {
			c.sink.Show(notify.Warning, "Already added", item.Name+" is already in the transfer.")
		}
		return err
	}
	return nil
}

// Remove drops a line.
func (c *Composer) Remove(productID string) {
	c.withLines(func(s *LineSet) { s.Remove(productID) })
}

// SetQuantity applies a typed quantity; see LineSet.SetQuantity.
func (c *Composer) SetQuantity(productID, raw string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines.SetQuantity(productID, raw)
}

// Commit finalizes an edited quantity.
func (c *Composer) Commit(productID string) {
	c.withLines(func(s *LineSet) { s.Commit(productID) })
}

// Increment raises a line's quantity by one.
func (c *Composer) Increment(productID string) {
	c.withLines(func(s *LineSet) { s.Increment(productID) })
}

// Decrement lowers a line's quantity by one.
func (c *Composer) Decrement(productID string) {
	c.withLines(func(s *LineSet) { s.Decrement(productID) })
}

// SetMax sets a line to all available stock.
func (c *Composer) SetMax(productID string) {
	c.withLines(func(s *LineSet) { s.SetMax(productID) })
}

// Clear removes all lines.
func (c *Composer) Clear() {
	c.withLines(func(s *LineSet) { s.Clear() })
}

func (c *Composer) withLines(fn func(*LineSet)) {
	c.mu.Lock()
	fn(&c.lines)
	c.mu.Unlock()
}

// Lines returns the draft lines.
func (c *Composer) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines.Lines()
}

// Totals returns the line count and the sum of quantities.
func (c *Composer) Totals() (lines, units int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines.Len(), c.lines.TotalUnits()
}

// Draft returns a copy of the current draft.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftLocked()
}

func (c *Composer) draftLocked() Draft {
	d := Draft{
		Notes:     c.notes,
		Lines:     c.lines.Lines(),
		Reference: c.reference,
	}
	if c.source != nil {
		id := *c.source
		d.SourceBranchID = &id
	}
	if c.destination != nil {
		id := *c.destination
		d.DestinationBranchID = &id
	}
	return d
}

// Loading reports whether an inventory load is outstanding.
func (c *Composer) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Submitting reports whether a submit is outstanding.
func (c *Composer) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Submit validates the draft and sends it. An invalid draft is never sent:
// a warning is shown and a *ValidationError returned. On success the draft
// is replaced with a fresh empty one. On failure the draft is kept.
func (c *Composer) Submit(ctx context.Context) (*model.Transfer, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	d := c.draftLocked()
	if outcome := Validate(d); !outcome.Valid() {
		c.mu.Unlock()
		c.sink.Show(notify.Warning, "Cannot submit", outcome.Message())
		return nil, &ValidationError{Outcome: outcome}
	}
	c.submitting = true
	c.mu.Unlock()

	t, err := c.submitter.Submit(ctx, d)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		return nil, err
	}
	c.resetLocked()
	return t, nil
}

// Reset discards the draft and starts a fresh one.
func (c *Composer) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
}

func (c *Composer) resetLocked() {
	c.generation++
	c.source = nil
	c.destination = nil
	c.notes = ""
	c.lines.Clear()
	c.snapshot = nil
	c.loading = false
	c.reference = uuid.New()
}
