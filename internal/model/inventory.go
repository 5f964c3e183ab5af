package model

// InventoryRow is one element of GET /api/inventory.
type InventoryRow struct {
	ID           int64   `json:"id"`
	Product      string  `json:"product"`
	Name         string  `json:"name"`
	Barcode      *string `json:"barcode"`
	CurrentStock int     `json:"current_stock"`
}

// InventoryPage is the paginated envelope of GET /api/inventory. Next and
// Previous are request URIs relative to the API host, nil at the ends.
type InventoryPage struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []InventoryRow `json:"results"`
}

// Item converts the wire row to the composer's view.
func (r InventoryRow) Item() InventoryItem {
	item := InventoryItem{
		ProductID:         r.Product,
		Name:              r.Name,
		AvailableQuantity: r.CurrentStock,
	}
	if r.Barcode != nil {
		item.Barcode = *r.Barcode
	}
	return item
}
