package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is a recorded multi-line stock movement between two branches.
type Transfer struct {
	ID           int64          `json:"id"`
	Reference    string         `json:"reference"`
	FromBranchID int64          `json:"from_branch"`
	ToBranchID   int64          `json:"to_branch"`
	Notes        string         `json:"notes,omitempty"`
	CreatedBy    *int64         `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Items        []TransferItem `json:"items,omitempty"`

	// Joined fields (not always populated).
	FromBranchName string `json:"from_branch_name,omitempty"`
	ToBranchName   string `json:"to_branch_name,omitempty"`
	LineCount      int    `json:"line_count"`
	TotalUnits     int    `json:"total_units"`
}

// TransferItem is one product line of a recorded transfer.
type TransferItem struct {
	ProductID   string          `json:"product"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// TransferRequest is the body of POST /api/transfers.
type TransferRequest struct {
	FromBranch int64                 `json:"from_branch" validate:"required,gt=0"`
	ToBranch   int64                 `json:"to_branch" validate:"required,gt=0"`
	Notes      string                `json:"notes,omitempty" validate:"max=500"`
	Items      []TransferRequestItem `json:"items" validate:"required,min=1,dive"`
}

// TransferRequestItem is one line of a TransferRequest.
type TransferRequestItem struct {
	Product   string          `json:"product" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TotalUnits sums the quantities of all request lines.
func (r TransferRequest) TotalUnits() int {
	total := 0
	for _, it := range r.Items {
		total += it.Quantity
	}
	return total
}
