package composer

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/erazemk/prenos/internal/model"
)

var (
	ErrDuplicateLine = errors.New("composer: product is already in the transfer")
	ErrOutOfStock    = errors.New("composer: product has no available stock")
)

// Line is one product of the draft with its target quantity.
type Line struct {
	ProductID         string `json:"product_id"`
	DisplayName       string `json:"display_name"`
	Barcode           string `json:"barcode,omitempty"`
	SourceBranchID    int64  `json:"source_branch_id"`
	AvailableQuantity int    `json:"available_quantity"`
	Quantity          int    `json:"quantity"`

	// Editing is set while the quantity field holds an uncommitted value.
	// Quantity may be 0 only in this state.
	Editing bool `json:"editing"`
}

func (l *Line) clamp(v int) int {
	return max(1, min(v, l.AvailableQuantity))
}

// LineSet is the ordered set of transfer lines, at most one per product.
// It is not safe for concurrent use.
type LineSet struct {
	lines []Line
}

func (s *LineSet) find(productID string) *Line {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return &s.lines[i]
		}
	}
	return nil
}

// Add appends a line for item with quantity 1.
func (s *LineSet) Add(sourceBranchID int64, item model.InventoryItem) error {
	if s.find(item.ProductID) != nil {
		return ErrDuplicateLine
	}
	if !item.InStock() {
		return ErrOutOfStock
	}
	s.lines = append(s.lines, Line{
		ProductID:         item.ProductID,
		DisplayName:       item.Name,
		Barcode:           item.Barcode,
		SourceBranchID:    sourceBranchID,
		AvailableQuantity: item.AvailableQuantity,
		Quantity:          1,
	})
	return nil
}

// Remove deletes the line for productID, if any.
func (s *LineSet) Remove(productID string) {
	s.lines = slices.DeleteFunc(s.lines, func(l Line) bool {
		return l.ProductID == productID
	})
}

// SetQuantity applies a raw value typed into a quantity field. A blank value
// puts the line into the editing state with quantity 0. A valid integer is
// committed clamped to [1, available], including integers too large to
// represent. Anything else is ignored and false is returned.
func (s *LineSet) SetQuantity(productID, raw string) bool {
	l := s.find(productID)
	if l == nil {
		return false
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		l.Quantity = 0
		l.Editing = true
		return true
	}
	v, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		// Out-of-range integers still clamp to the nearest bound.
		v = math.MaxInt
		if raw[0] == '-' {
			v = math.MinInt
		}
	} else if err != nil {
		return false
	}
	l.Quantity = l.clamp(v)
	l.Editing = false
	return true
}

// Commit finalizes an edited quantity, as when the field loses focus.
func (s *LineSet) Commit(productID string) {
	if l := s.find(productID); l != nil {
		l.Quantity = l.clamp(l.Quantity)
		l.Editing = false
	}
}

// Increment raises the quantity by one, up to the available stock.
func (s *LineSet) Increment(productID string) {
	if l := s.find(productID); l != nil {
		l.Quantity = l.clamp(l.Quantity + 1)
		l.Editing = false
	}
}

// Decrement lowers the quantity by one, down to 1.
func (s *LineSet) Decrement(productID string) {
	if l := s.find(productID); l != nil {
		l.Quantity = l.clamp(l.Quantity - 1)
		l.Editing = false
	}
}

// SetMax sets the quantity to the available stock.
func (s *LineSet) SetMax(productID string) {
	if l := s.find(productID); l != nil {
		l.Quantity = l.AvailableQuantity
		l.Editing = false
	}
}

// Clear removes every line.
func (s *LineSet) Clear() {
	s.lines = nil
}

// Get returns the line for productID.
func (s *LineSet) Get(productID string) (Line, bool) {
	if l := s.find(productID); l != nil {
		return *l, true
	}
	return Line{}, false
}

// Lines returns a copy of the lines in insertion order.
func (s *LineSet) Lines() []Line {
	return slices.Clone(s.lines)
}

// Len is the number of lines.
func (s *LineSet) Len() int {
	return len(s.lines)
}

// TotalUnits sums all line quantities.
func (s *LineSet) TotalUnits() int {
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}
