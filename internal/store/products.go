package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"github.com/erazemk/prenos/internal/model"
)

// CreateProduct creates a product with a fresh opaque ID. An empty barcode
// is stored as NULL.
func CreateProduct(ctx context.Context, db *sql.DB, name, barcode string) (*model.Product, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO products (id, name, barcode) VALUES (?, ?, ?)`,
		id, name, null.NewString(barcode, barcode != ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return GetProduct(ctx, db, id)
}

// GetProduct returns a product by ID, or nil if it does not exist.
func GetProduct(ctx context.Context, db *sql.DB, id string) (*model.Product, error) {
	p := &model.Product{}
	var barcode null.String
	err := db.QueryRowContext(ctx,
		`SELECT id, name, barcode, created_at FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &barcode, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	p.Barcode = barcode.String
	return p, nil
}

// ListProducts returns products whose name or barcode contains search
// (case-insensitive). An empty search returns everything.
func ListProducts(ctx context.Context, db *sql.DB, search string) ([]model.Product, error) {
	q := sq.Select("id", "name", "barcode", "created_at").
		From("products").
		OrderBy("name")
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where(matchNameOrBarcode("name", "barcode", search))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building product query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		var barcode null.String
		if err := rows.Scan(&p.ID, &p.Name, &barcode, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.Barcode = barcode.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// matchNameOrBarcode builds a case-insensitive substring condition over two columns.
func matchNameOrBarcode(nameCol, barcodeCol, term string) sq.Sqlizer {
	like := "%" + strings.ToLower(term) + "%"
	return sq.Or{
		sq.Like{"LOWER(" + nameCol + ")": like},
		sq.Like{"LOWER(" + barcodeCol + ")": like},
	}
}
