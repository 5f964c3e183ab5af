package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/prenos/internal/db"
)

func TestAddStockUpserts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	branch, _ := CreateBranch(ctx, database, "Ljubljana")
	product, _ := CreateProduct(ctx, database, "Flour 1kg", "3830001")

	if err := AddStock(ctx, database, branch.ID, product.ID, 5); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if err := AddStock(ctx, database, branch.ID, product.ID, 3); err != nil {
		t.Fatalf("AddStock: %v", err)
	}

	qty, err := GetStock(ctx, database, branch.ID, product.ID)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if qty != 8 {
		t.Errorf("expected 8, got %d", qty)
	}
}

func TestAddStockUnknownBranch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	product, _ := CreateProduct(ctx, database, "Flour 1kg", "")
	err := AddStock(ctx, database, 42, product.ID, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddStockRejectsNonPositive(t *testing.T) {
	database := db.NewTestDB(t)

	err := AddStock(context.Background(), database, 1, "x", 0)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestListStockPagesAndSearches(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	branch, _ := CreateBranch(ctx, database, "Maribor")
	other, _ := CreateBranch(ctx, database, "Koper")
	names := []struct{ name, barcode string }{
		{"Apples", "111"},
		{"Bread", ""},
		{"Cheese", "333"},
		{"Dates", "444"},
	}
	for _, n := range names {
		p, _ := CreateProduct(ctx, database, n.name, n.barcode)
		AddStock(ctx, database, branch.ID, p.ID, 2)
		AddStock(ctx, database, other.ID, p.ID, 9)
	}

	page, total, err := ListStock(ctx, database, StockFilter{BranchID: branch.ID, Limit: 3})
	if err != nil {
		t.Fatalf("ListStock: %v", err)
	}
	if total != 4 {
		t.Errorf("expected total 4, got %d", total)
	}
	if len(page) != 3 || page[0].Name != "Apples" {
		t.Fatalf("unexpected first page: %+v", page)
	}
	if page[1].Barcode != "" {
		t.Errorf("expected NULL barcode to scan as empty, got %q", page[1].Barcode)
	}

	rest, _, _ := ListStock(ctx, database, StockFilter{BranchID: branch.ID, Limit: 3, Offset: 3})
	if len(rest) != 1 || rest[0].Name != "Dates" {
		t.Fatalf("unexpected second page: %+v", rest)
	}

	found, total, _ := ListStock(ctx, database, StockFilter{BranchID: branch.ID, Search: "33"})
	if total != 1 || len(found) != 1 || found[0].Name != "Cheese" {
		t.Errorf("expected barcode search to find Cheese, got %+v", found)
	}

	found, _, _ = ListStock(ctx, database, StockFilter{BranchID: branch.ID, Search: "BREAD"})
	if len(found) != 1 || found[0].Item().AvailableQuantity != 2 {
		t.Errorf("expected case-insensitive name search, got %+v", found)
	}
}
