package model

import "time"

// Product is a sellable article. IDs are opaque strings.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryItem is one product's available stock at a single branch.
type InventoryItem struct {
	ProductID         string `json:"product_id"`
	Name              string `json:"name"`
	Barcode           string `json:"barcode,omitempty"`
	AvailableQuantity int    `json:"available_quantity"`
}

// InStock reports whether the item can be transferred at all.
func (i InventoryItem) InStock() bool {
	return i.AvailableQuantity > 0
}
