package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/prenos/internal/db"
	"github.com/erazemk/prenos/internal/model"
)

type transferFixture struct {
	from, to *model.Branch
	flour    *model.Product
	sugar    *model.Product
}

func newTransferFixture(t *testing.T, database *sql.DB) transferFixture {
	t.Helper()
	ctx := context.Background()

	from, _ := CreateBranch(ctx, database, "Warehouse")
	to, _ := CreateBranch(ctx, database, "Shop")
	flour, _ := CreateProduct(ctx, database, "Flour", "100")
	sugar, _ := CreateProduct(ctx, database, "Sugar", "200")

	if err := AddStock(ctx, database, from.ID, flour.ID, 10); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if err := AddStock(ctx, database, from.ID, sugar.ID, 4); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	return transferFixture{from: from, to: to, flour: flour, sugar: sugar}
}

func TestCreateTransferMovesAllLines(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newTransferFixture(t, database)

	tr, created, err := CreateTransfer(ctx, database, NewTransfer{
		FromBranchID: f.from.ID,
		ToBranchID:   f.to.ID,
		Notes:        "weekly restock",
		Items: []NewTransferItem{
			{ProductID: f.flour.ID, Quantity: 3, UnitPrice: decimal.Zero},
			{ProductID: f.sugar.ID, Quantity: 4, UnitPrice: decimal.Zero},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}
	if !created {
		t.Error("expected created to be true")
	}
	if tr.LineCount != 2 || tr.TotalUnits != 7 {
		t.Errorf("expected 2 lines / 7 units, got %d / %d", tr.LineCount, tr.TotalUnits)
	}
	if tr.Notes != "weekly restock" || tr.Reference == "" {
		t.Errorf("unexpected transfer: %+v", tr)
	}

	if qty, _ := GetStock(ctx, database, f.from.ID, f.flour.ID); qty != 7 {
		t.Errorf("expected 7 flour left at source, got %d", qty)
	}
	if qty, _ := GetStock(ctx, database, f.from.ID, f.sugar.ID); qty != 0 {
		t.Errorf("expected sugar row removed at source, got %d", qty)
	}
	if qty, _ := GetStock(ctx, database, f.to.ID, f.flour.ID); qty != 3 {
		t.Errorf("expected 3 flour at destination, got %d", qty)
	}
}

func TestCreateTransferHalfStockKeepsRow(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newTransferFixture(t, database)

	// 10 - 5 leaves exactly the moved quantity behind.
	_, _, err := CreateTransfer(ctx, database, NewTransfer{
		FromBranchID: f.from.ID,
		ToBranchID:   f.to.ID,
		Items:        []NewTransferItem{{ProductID: f.flour.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}
	if qty, _ := GetStock(ctx, database, f.from.ID, f.flour.ID); qty != 5 {
		t.Errorf("expected 5 flour left, got %d", qty)
	}
}

func TestCreateTransferInsufficientStockIsAtomic(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newTransferFixture(t, database)

	_, _, err := CreateTransfer(ctx, database, NewTransfer{
		FromBranchID: f.from.ID,
		ToBranchID:   f.to.ID,
		Items: []NewTransferItem{
			{ProductID: f.flour.ID, Quantity: 2},
			{ProductID: f.sugar.ID, Quantity: 9},
		},
	})
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError, got %v", err)
	}
	if len(stockErr.Shortages) != 1 || stockErr.Shortages[0].ProductID != f.sugar.ID {
		t.Errorf("expected sugar shortage only, got %+v", stockErr.Shortages)
	}
	if stockErr.Shortages[0].Available != 4 {
		t.Errorf("expected available 4, got %d", stockErr.Shortages[0].Available)
	}

	if qty, _ := GetStock(ctx, database, f.from.ID, f.flour.ID); qty != 10 {
		t.Errorf("expected source flour untouched, got %d", qty)
	}
	transfers, _ := ListTransfers(ctx, database, TransferFilter{})
	if len(transfers) != 0 {
		t.Errorf("expected no transfers recorded, got %d", len(transfers))
	}
}

func TestCreateTransferRejectsBadInput(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newTransferFixture(t, database)

	tests := []struct {
		name string
		nt   NewTransfer
		want error
	}{
		{"same branch", NewTransfer{FromBranchID: f.from.ID, ToBranchID: f.from.ID,
			Items: []NewTransferItem{{ProductID: f.flour.ID, Quantity: 1}}}, ErrSameBranch},
		{"no items", NewTransfer{FromBranchID: f.from.ID, ToBranchID: f.to.ID}, ErrNoItems},
		{"zero quantity", NewTransfer{FromBranchID: f.from.ID, ToBranchID: f.to.ID,
			Items: []NewTransferItem{{ProductID: f.flour.ID, Quantity: 0}}}, ErrInvalidQuantity},
		{"duplicate product", NewTransfer{FromBranchID: f.from.ID, ToBranchID: f.to.ID,
			Items: []NewTransferItem{{ProductID: f.flour.ID, Quantity: 1}, {ProductID: f.flour.ID, Quantity: 1}}}, ErrDuplicateProduct},
		{"unknown branch", NewTransfer{FromBranchID: f.from.ID, ToBranchID: 999,
			Items: []NewTransferItem{{ProductID: f.flour.ID, Quantity: 1}}}, ErrNotFound},
		{"unknown product", NewTransfer{FromBranchID: f.from.ID, ToBranchID: f.to.ID,
			Items: []NewTransferItem{{ProductID: "missing", Quantity: 1}}}, ErrNotFound},
	}

	for _, tt := range tests {
		_, _, err := CreateTransfer(ctx, database, tt.nt)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestCreateTransferIdempotentReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newTransferFixture(t, database)

	nt := NewTransfer{
		Reference:    "8a1c0c55-7f7e-4d1b-9a57-3f1f7e0c2b11",
		FromBranchID: f.from.ID,
		ToBranchID:   f.to.ID,
		Items:        []NewTransferItem{{ProductID: f.flour.ID, Quantity: 2}},
	}

	first, created, err := CreateTransfer(ctx, database, nt)
	if err != nil || !created {
		t.Fatalf("first CreateTransfer: created=%v err=%v", created, err)
	}
	second, created, err := CreateTransfer(ctx, database, nt)
	if err != nil {
		t.Fatalf("second CreateTransfer: %v", err)
	}
	if created {
		t.Error("expected replay not to create a new transfer")
	}
	if second.ID != first.ID {
		t.Errorf("expected same transfer %d, got %d", first.ID, second.ID)
	}
	if qty, _ := GetStock(ctx, database, f.from.ID, f.flour.ID); qty != 8 {
		t.Errorf("expected stock moved once, got %d left", qty)
	}
}

func TestCreateTransferConcurrentSameReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newTransferFixture(t, database)

	nt := NewTransfer{
		Reference:    "3f0b8c2e-5a41-4c7d-9b1e-2d6f4a8c9e10",
		FromBranchID: f.from.ID,
		ToBranchID:   f.to.ID,
		Items:        []NewTransferItem{{ProductID: f.flour.ID, Quantity: 2}},
	}

	const workers = 4
	var wg sync.WaitGroup
	ids := make([]int64, workers)
	createdFlags := make([]bool, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr, created, err := CreateTransfer(ctx, database, nt)
			errs[i] = err
			createdFlags[i] = created
			if tr != nil {
				ids[i] = tr.ID
			}
		}()
	}
	wg.Wait()

	var created int
	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if createdFlags[i] {
			created++
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got transfer %d, expected %d", i, ids[i], ids[0])
		}
	}
	if created != 1 {
		t.Errorf("expected exactly one create, got %d", created)
	}
	if qty, _ := GetStock(ctx, database, f.from.ID, f.flour.ID); qty != 8 {
		t.Errorf("expected stock moved once, got %d left", qty)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBranch(ctx, database, "Warehouse"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	_, err := CreateBranch(ctx, database, "Warehouse")
	if err == nil {
		t.Fatal("expected duplicate branch name to fail")
	}
	if !isUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
	if isUniqueViolation(errors.New("other")) {
		t.Error("plain error reported as unique violation")
	}
}

func TestListTransfersFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newTransferFixture(t, database)
	third, _ := CreateBranch(ctx, database, "Outlet")

	CreateTransfer(ctx, database, NewTransfer{FromBranchID: f.from.ID, ToBranchID: f.to.ID,
		Items: []NewTransferItem{{ProductID: f.flour.ID, Quantity: 1}, {ProductID: f.sugar.ID, Quantity: 2}}})
	CreateTransfer(ctx, database, NewTransfer{FromBranchID: f.from.ID, ToBranchID: third.ID,
		Items: []NewTransferItem{{ProductID: f.flour.ID, Quantity: 1}}})

	all, err := ListTransfers(ctx, database, TransferFilter{})
	if err != nil {
		t.Fatalf("ListTransfers: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(all))
	}

	toShop, _ := ListTransfers(ctx, database, TransferFilter{BranchID: f.to.ID})
	if len(toShop) != 1 {
		t.Fatalf("expected 1 transfer for shop, got %d", len(toShop))
	}
	if toShop[0].LineCount != 2 || toShop[0].TotalUnits != 3 {
		t.Errorf("expected 2 lines / 3 units, got %d / %d", toShop[0].LineCount, toShop[0].TotalUnits)
	}
	if toShop[0].FromBranchName != "Warehouse" {
		t.Errorf("expected joined branch name, got %q", toShop[0].FromBranchName)
	}

	limited, _ := ListTransfers(ctx, database, TransferFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}
