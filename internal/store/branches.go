package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/prenos/internal/model"
)

// CreateBranch creates a new branch.
func CreateBranch(ctx context.Context, db *sql.DB, name string) (*model.Branch, error) {
	result, err := db.ExecContext(ctx, `INSERT INTO branches (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating branch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting branch id: %w", err)
	}

	return GetBranch(ctx, db, id)
}

// GetBranch returns a branch by ID, or nil if it does not exist.
func GetBranch(ctx context.Context, db *sql.DB, id int64) (*model.Branch, error) {
	b := &model.Branch{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM branches WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting branch: %w", err)
	}
	return b, nil
}

// ListBranches returns all branches ordered by name.
func ListBranches(ctx context.Context, db *sql.DB) ([]model.Branch, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at FROM branches ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer rows.Close()

	var branches []model.Branch
	for rows.Next() {
		var b model.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning branch: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}
