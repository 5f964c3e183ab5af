package composer

import (
	"context"
	"slices"

	"github.com/erazemk/prenos/internal/model"
)

// Catalog is the branch list loaded once per session. It is immutable.
type Catalog struct {
	branches []model.Branch
	byID     map[int64]int
}

// NewCatalog indexes branches by ID.
func NewCatalog(branches []model.Branch) *Catalog {
	c := &Catalog{
		branches: slices.Clone(branches),
		byID:     make(map[int64]int, len(branches)),
	}
	for i, b := range c.branches {
		c.byID[b.ID] = i
	}
	return c
}

// LoadCatalog fetches the branch list from the backend.
func LoadCatalog(ctx context.Context, b Backend) (*Catalog, error) {
	branches, err := b.ListBranches(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(branches), nil
}

// Branches returns the branches in backend order.
func (c *Catalog) Branches() []model.Branch {
	if c == nil {
		return nil
	}
	return slices.Clone(c.branches)
}

// Lookup returns the branch with the given ID.
func (c *Catalog) Lookup(id int64) (model.Branch, bool) {
	if c == nil {
		return model.Branch{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return model.Branch{}, false
	}
	return c.branches[i], true
}
