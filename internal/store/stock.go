package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"

	"github.com/erazemk/prenos/internal/model"
)

// StockEntry is one row of a branch's inventory.
type StockEntry struct {
	ID        int64
	BranchID  int64
	ProductID string
	Name      string
	Barcode   string
	Quantity  int
}

// Item converts the entry to the inventory view used by the composer.
func (e StockEntry) Item() model.InventoryItem {
	return model.InventoryItem{
		ProductID:         e.ProductID,
		Name:              e.Name,
		Barcode:           e.Barcode,
		AvailableQuantity: e.Quantity,
	}
}

// StockFilter selects a page of a branch's inventory.
type StockFilter struct {
	BranchID int64
	Search   string
	Limit    uint64
	Offset   uint64
}

// AddStock puts quantity units of a product at a branch.
func AddStock(ctx context.Context, db *sql.DB, branchID int64, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var branches, products int
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM branches WHERE id = ?),
		        (SELECT COUNT(*) FROM products WHERE id = ?)`,
		branchID, productID,
	).Scan(&branches, &products)
	if err != nil {
		return fmt.Errorf("checking branch and product: %w", err)
	}
	if branches == 0 {
		return fmt.Errorf("branch %d: %w", branchID, ErrNotFound)
	}
	if products == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock (branch_id, product_id, quantity) VALUES (?, ?, ?)
		 ON CONFLICT (branch_id, product_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		branchID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("adding stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stock addition: %w", err)
	}
	return nil
}

// GetStock returns how many units of a product a branch holds.
func GetStock(ctx context.Context, db *sql.DB, branchID int64, productID string) (int, error) {
	var qty int
	err := db.QueryRowContext(ctx,
		`SELECT quantity FROM stock WHERE branch_id = ? AND product_id = ?`,
		branchID, productID,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting stock: %w", err)
	}
	return qty, nil
}

// ListStock returns one page of a branch's inventory ordered by product name,
// together with the total number of matching rows.
func ListStock(ctx context.Context, db *sql.DB, f StockFilter) ([]StockEntry, int, error) {
	where := sq.And{sq.Eq{"s.branch_id": f.BranchID}}
	if term := strings.TrimSpace(f.Search); term != "" {
		where = append(where, matchNameOrBarcode("p.name", "p.barcode", term))
	}

	countQuery, countArgs, err := sq.Select("COUNT(*)").
		From("stock s").
		Join("products p ON p.id = s.product_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building stock count query: %w", err)
	}

	var total int
	if err := db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting stock: %w", err)
	}

	q := sq.Select("s.id", "s.branch_id", "s.product_id", "p.name", "p.barcode", "s.quantity").
		From("stock s").
		Join("products p ON p.id = s.product_id").
		Where(where).
		OrderBy("p.name", "s.id")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building stock query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing stock: %w", err)
	}
	defer rows.Close()

	var entries []StockEntry
	for rows.Next() {
		var e StockEntry
		var barcode null.String
		if err := rows.Scan(&e.ID, &e.BranchID, &e.ProductID, &e.Name, &barcode, &e.Quantity); err != nil {
			return nil, 0, fmt.Errorf("scanning stock: %w", err)
		}
		e.Barcode = barcode.String
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
