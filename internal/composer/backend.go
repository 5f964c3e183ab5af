// Package composer builds a multi-line branch-to-branch stock transfer in
// memory and submits it to the backend as one atomic request.
package composer

import (
	"context"

	"github.com/erazemk/prenos/internal/model"
)

//go:generate mockgen -destination=mocks/mock_backend.go -package=mocks . Backend

// Backend is the subset of the API the composer depends on.
// *client.Client satisfies it.
type Backend interface {
	ListBranches(ctx context.Context) ([]model.Branch, error)
	ListInventory(ctx context.Context, branchID int64) ([]model.InventoryItem, error)
	CreateTransfer(ctx context.Context, req model.TransferRequest, idempotencyKey string) (*model.Transfer, error)
}
