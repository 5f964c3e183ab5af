package store

import (
	"context"
	"testing"

	"github.com/erazemk/prenos/internal/db"
)

func TestBranchesAndProducts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateBranch(ctx, database, "Maribor")
	CreateBranch(ctx, database, "Celje")

	branches, err := ListBranches(ctx, database)
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 2 || branches[0].Name != "Celje" {
		t.Fatalf("expected branches ordered by name, got %+v", branches)
	}

	if _, err := CreateBranch(ctx, database, "Celje"); err == nil {
		t.Error("expected duplicate branch name to fail")
	}

	missing, err := GetBranch(ctx, database, 999)
	if err != nil || missing != nil {
		t.Errorf("expected nil branch, got %+v, %v", missing, err)
	}

	p1, _ := CreateProduct(ctx, database, "Milk 1l", "3830002")
	CreateProduct(ctx, database, "Butter", "")
	if p1.ID == "" {
		t.Fatal("expected product id")
	}

	products, err := ListProducts(ctx, database, "milk")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 1 || products[0].Barcode != "3830002" {
		t.Errorf("expected Milk only, got %+v", products)
	}

	all, _ := ListProducts(ctx, database, "")
	if len(all) != 2 {
		t.Errorf("expected 2 products, got %d", len(all))
	}
}
