package client

import (
	"context"
	"net/http"

	"github.com/erazemk/prenos/internal/model"
)

// ListBranches returns all branches the caller may transfer between.
func (c *Client) ListBranches(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	if err := c.do(ctx, http.MethodGet, "/api/branches", nil, nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}
