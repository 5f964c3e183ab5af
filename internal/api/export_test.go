package api

import (
	"testing"
	"time"

	"github.com/erazemk/prenos/internal/model"
)

func TestBuildWorkbook(t *testing.T) {
	transfers := []model.Transfer{{
		ID:             7,
		Reference:      "ref",
		CreatedAt:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		FromBranchName: "Warehouse",
		ToBranchName:   "Shop",
		LineCount:      2,
		TotalUnits:     9,
	}}

	f, err := buildWorkbook(transfers)
	if err != nil {
		t.Fatalf("buildWorkbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][3] != "Warehouse" || rows[1][6] != "9" {
		t.Errorf("unexpected rows: %v", rows)
	}
}
