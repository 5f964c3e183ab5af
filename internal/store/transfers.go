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
	"github.com/shopspring/decimal"

	"github.com/erazemk/prenos/internal/model"
)

// NewTransfer is the input of CreateTransfer.
type NewTransfer struct {
	// Reference makes creation idempotent. Empty means a fresh one is generated.
	Reference    string
	FromBranchID int64
	ToBranchID   int64
	Notes        string
	Items        []NewTransferItem
	CreatedBy    *int64
}

// NewTransferItem is one requested line.
type NewTransferItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// TransferFilter narrows ListTransfers.
type TransferFilter struct {
	// BranchID matches transfers leaving or entering the branch; 0 means all.
	BranchID int64
	Limit    uint64
}

func (nt NewTransfer) check() error {
	if nt.FromBranchID == nt.ToBranchID {
		return ErrSameBranch
	}
	if len(nt.Items) == 0 {
		return ErrNoItems
	}
	seen := make(map[string]bool, len(nt.Items))
	for _, it := range nt.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("product %s: %w", it.ProductID, ErrInvalidQuantity)
		}
		if seen[it.ProductID] {
			return fmt.Errorf("product %s: %w", it.ProductID, ErrDuplicateProduct)
		}
		seen[it.ProductID] = true
	}
	return nil
}

// CreateTransfer moves every line of nt from the source to the destination
// branch in one transaction: either all lines are applied or none. When a
// transfer with the same reference already exists it is returned unchanged
// and created is false.
func CreateTransfer(ctx context.Context, db *sql.DB, nt NewTransfer) (t *model.Transfer, created bool, err error) {
	if err := nt.check(); err != nil {
		return nil, false, err
	}
	if nt.Reference == "" {
		nt.Reference = uuid.NewString()
	}

	existing, err := GetTransferByReference(ctx, db, nt.Reference)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var branches int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM branches WHERE id IN (?, ?)`,
		nt.FromBranchID, nt.ToBranchID,
	).Scan(&branches)
	if err != nil {
		return nil, false, fmt.Errorf("checking branches: %w", err)
	}
	if branches != 2 {
		return nil, false, fmt.Errorf("branch: %w", ErrNotFound)
	}

	var shortages []Shortage
	for _, it := range nt.Items {
		var name string
		var available null.Int
		err := tx.QueryRowContext(ctx,
			`SELECT p.name, s.quantity
			 FROM products p
			 LEFT JOIN stock s ON s.product_id = p.id AND s.branch_id = ?
			 WHERE p.id = ?`,
			nt.FromBranchID, it.ProductID,
		).Scan(&name, &available)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("product %s: %w", it.ProductID, ErrNotFound)
		}
		if err != nil {
			return nil, false, fmt.Errorf("checking available quantity: %w", err)
		}
		if available.Int < it.Quantity {
			shortages = append(shortages, Shortage{
				ProductID: it.ProductID,
				Name:      name,
				Requested: it.Quantity,
				Available: available.Int,
			})
		}
	}
	if len(shortages) > 0 {
		return nil, false, &StockError{Shortages: shortages}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO transfers (reference, from_branch, to_branch, notes, created_by)
		 VALUES (?, ?, ?, ?, ?)`,
		nt.Reference, nt.FromBranchID, nt.ToBranchID,
		null.NewString(nt.Notes, strings.TrimSpace(nt.Notes) != ""), nt.CreatedBy,
	)
	if isUniqueViolation(err) {
		// A concurrent request with the same reference committed first.
		tx.Rollback()
		existing, err := GetTransferByReference(ctx, db, nt.Reference)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("recording transfer: %w", err)
	}
	transferID, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("getting transfer id: %w", err)
	}

	for _, it := range nt.Items {
		if err := moveStock(ctx, tx, nt.FromBranchID, nt.ToBranchID, it.ProductID, it.Quantity); err != nil {
			return nil, false, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transfer_items (transfer_id, product_id, quantity, unit_price)
			 VALUES (?, ?, ?, ?)`,
			transferID, it.ProductID, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			return nil, false, fmt.Errorf("recording transfer item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing transfer: %w", err)
	}

	t, err = GetTransfer(ctx, db, transferID)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// moveStock decrements the source row (deleting it at zero) and upserts the
// destination row.
func moveStock(ctx context.Context, tx *sql.Tx, from, to int64, productID string, quantity int) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM stock WHERE branch_id = ? AND product_id = ? AND quantity = ?`,
		from, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("clearing source stock: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE stock SET quantity = quantity - ? WHERE branch_id = ? AND product_id = ? AND quantity > ?`,
		quantity, from, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("updating source stock: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock (branch_id, product_id, quantity) VALUES (?, ?, ?)
		 ON CONFLICT (branch_id, product_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		to, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("updating destination stock: %w", err)
	}
	return nil
}

const transferColumns = `t.id, t.reference, t.from_branch, t.to_branch, t.notes,
	t.created_by, t.created_at, fb.name, tb.name`

func scanTransfer(row interface{ Scan(...any) error }, t *model.Transfer) error {
	var notes null.String
	if err := row.Scan(&t.ID, &t.Reference, &t.FromBranchID, &t.ToBranchID, &notes,
		&t.CreatedBy, &t.CreatedAt, &t.FromBranchName, &t.ToBranchName); err != nil {
		return err
	}
	t.Notes = notes.String
	return nil
}

// GetTransfer returns a transfer with its items, or nil if it does not exist.
func GetTransfer(ctx context.Context, db *sql.DB, id int64) (*model.Transfer, error) {
	t := &model.Transfer{}
	err := scanTransfer(db.QueryRowContext(ctx,
		`SELECT `+transferColumns+`
		 FROM transfers t
		 JOIN branches fb ON fb.id = t.from_branch
		 JOIN branches tb ON tb.id = t.to_branch
		 WHERE t.id = ?`, id,
	), t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer: %w", err)
	}

	items, err := getTransferItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	t.Items = items
	t.LineCount = len(items)
	for _, it := range items {
		t.TotalUnits += it.Quantity
	}
	return t, nil
}

// GetTransferByReference returns the transfer created with the given
// reference, or nil.
func GetTransferByReference(ctx context.Context, db *sql.DB, reference string) (*model.Transfer, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM transfers WHERE reference = ?`, reference,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up transfer reference: %w", err)
	}
	return GetTransfer(ctx, db, id)
}

func getTransferItems(ctx context.Context, db *sql.DB, transferID int64) ([]model.TransferItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT ti.product_id, p.name, ti.quantity, ti.unit_price
		 FROM transfer_items ti
		 JOIN products p ON p.id = ti.product_id
		 WHERE ti.transfer_id = ?
		 ORDER BY p.name`, transferID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transfer items: %w", err)
	}
	defer rows.Close()

	var items []model.TransferItem
	for rows.Next() {
		var it model.TransferItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning transfer item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListTransfers returns transfers newest first with line and unit totals.
// Items are not loaded.
func ListTransfers(ctx context.Context, db *sql.DB, f TransferFilter) ([]model.Transfer, error) {
	q := sq.Select(transferColumns, "COUNT(ti.product_id)", "COALESCE(SUM(ti.quantity), 0)").
		From("transfers t").
		Join("branches fb ON fb.id = t.from_branch").
		Join("branches tb ON tb.id = t.to_branch").
		LeftJoin("transfer_items ti ON ti.transfer_id = t.id").
		GroupBy("t.id").
		OrderBy("t.created_at DESC", "t.id DESC")
	if f.BranchID > 0 {
		q = q.Where(sq.Or{sq.Eq{"t.from_branch": f.BranchID}, sq.Eq{"t.to_branch": f.BranchID}})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building transfer query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	var transfers []model.Transfer
	for rows.Next() {
		var t model.Transfer
		var notes null.String
		if err := rows.Scan(&t.ID, &t.Reference, &t.FromBranchID, &t.ToBranchID, &notes,
			&t.CreatedBy, &t.CreatedAt, &t.FromBranchName, &t.ToBranchName,
			&t.LineCount, &t.TotalUnits); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		t.Notes = notes.String
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
