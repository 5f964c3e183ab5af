package store

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound         = errors.New("store: not found")
	ErrSameBranch       = errors.New("store: source and destination branch are the same")
	ErrNoItems          = errors.New("store: transfer has no items")
	ErrDuplicateProduct = errors.New("store: product appears more than once")
	ErrInvalidQuantity  = errors.New("store: quantity must be positive")
)

// Shortage describes one product the source branch cannot cover.
type Shortage struct {
	ProductID string `json:"product"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockError is returned when one or more transfer lines exceed the source
// branch's stock. Every short product is listed.
type StockError struct {
	Shortages []Shortage
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (have %d, need %d)", s.Name, s.Available, s.Requested))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
