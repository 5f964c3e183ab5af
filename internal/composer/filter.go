package composer

import (
	"context"
	"strings"

	"github.com/erazemk/prenos/internal/model"
)

// Filter returns the items whose name or barcode contains term, ignoring
// case. A blank term returns items unchanged.
func Filter(items []model.InventoryItem, term string) []model.InventoryItem {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}

	out := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), term) ||
			strings.Contains(strings.ToLower(it.Barcode), term) {
			out = append(out, it)
		}
	}
	return out
}

// loadSnapshot fetches a branch's inventory and drops items with no stock.
func loadSnapshot(ctx context.Context, b Backend, branchID int64) ([]model.InventoryItem, error) {
	items, err := b.ListInventory(ctx, branchID)
	if err != nil {
		return nil, err
	}

	snapshot := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		if it.InStock() {
			snapshot = append(snapshot, it)
		}
	}
	return snapshot, nil
}
