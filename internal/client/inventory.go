package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/prenos/internal/model"
)

const (
	inventoryPageSize = 200
	maxInventoryPages = 500
)

// ListInventory returns every inventory row of a branch, following the
// paginated next links until the last page.
func (c *Client) ListInventory(ctx context.Context, branchID int64) ([]model.InventoryItem, error) {
	return c.listInventoryPaged(ctx, branchID, inventoryPageSize)
}

func (c *Client) listInventoryPaged(ctx context.Context, branchID int64, pageSize int) ([]model.InventoryItem, error) {
	q := url.Values{}
	q.Set("branch", strconv.FormatInt(branchID, 10))
	q.Set("page_size", strconv.Itoa(pageSize))
	next := "/api/inventory?" + q.Encode()

	var items []model.InventoryItem
	for pages := 0; next != ""; pages++ {
		if pages == maxInventoryPages {
			return nil, fmt.Errorf("inventory for branch %d exceeds %d pages", branchID, maxInventoryPages)
		}

		var page model.InventoryPage
		if err := c.do(ctx, http.MethodGet, next, nil, nil, &page); err != nil {
			return nil, err
		}
		if items == nil {
			items = make([]model.InventoryItem, 0, max(0, min(page.Count, inventoryPageSize)))
		}
		for _, row := range page.Results {
			items = append(items, row.Item())
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}
	return items, nil
}
