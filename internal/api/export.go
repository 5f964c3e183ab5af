package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/erazemk/prenos/internal/model"
	"github.com/erazemk/prenos/internal/store"
)

const exportSheet = "Transfers"

var exportHeader = []any{"ID", "Reference", "Created", "From", "To", "Lines", "Units", "Notes"}

// Export handles GET /api/transfers/export and streams an xlsx workbook with
// the same filters as List.
func (h *TransfersHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, ok := transferFilter(w, r)
	if !ok {
		return
	}

	transfers, err := store.ListTransfers(r.Context(), h.DB, filter)
	if err != nil {
		h.Log.Error("listing transfers for export failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to export transfers")
		return
	}

	f, err := buildWorkbook(transfers)
	if err != nil {
		h.Log.Error("building workbook failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to export transfers")
		return
	}
	defer f.Close()

	name := fmt.Sprintf("transfers-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		h.Log.Error("writing workbook failed", zap.Error(err))
	}
}

func buildWorkbook(transfers []model.Transfer) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, t := range transfers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{
			t.ID, t.Reference, t.CreatedAt.Format(time.DateTime),
			t.FromBranchName, t.ToBranchName, t.LineCount, t.TotalUnits, t.Notes,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return f, nil
}
