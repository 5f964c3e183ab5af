package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/erazemk/prenos/internal/model"
)

// IdempotencyHeader matches the header the backend deduplicates on.
const IdempotencyHeader = "Idempotency-Key"

// CreateTransfer submits a transfer. A non-empty idempotencyKey makes
// retries of the same draft return the original transfer.
func (c *Client) CreateTransfer(ctx context.Context, req model.TransferRequest, idempotencyKey string) (*model.Transfer, error) {
	var header http.Header
	if idempotencyKey != "" {
		header = http.Header{IdempotencyHeader: {idempotencyKey}}
	}

	var t model.Transfer
	if err := c.do(ctx, http.MethodPost, "/api/transfers", req, header, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransfers returns recent transfers touching branchID, or all when 0.
func (c *Client) ListTransfers(ctx context.Context, branchID int64, limit int) ([]model.Transfer, error) {
	path := "/api/transfers?limit=" + strconv.Itoa(limit)
	if branchID > 0 {
		path += "&branch=" + strconv.FormatInt(branchID, 10)
	}
	var transfers []model.Transfer
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}
