package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/BlockPack/internal/model"
)

// Workbook sheet names.
const (
	SheetRegions     = "Regions"
	SheetGrid        = "Grid"
	SheetGenerations = "Generations"
)

// ExportExcel writes a workbook with the placed regions, the raw label grid
// and the per generation statistics of the run.
func ExportExcel(path string, res model.LayoutResult) error {
	if res.Grid == nil {
		return fmt.Errorf("no layout to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRegions); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := writeRegionSheet(f, res, header); err != nil {
		return err
	}
	if err := writeGridSheet(f, res.Grid); err != nil {
		return err
	}
	if err := writeGenerationSheet(f, res.History, header); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeRegionSheet(f *excelize.File, res model.LayoutResult, header int) error {
	headers := []any{"Label", "Block", "Name", "X", "Y", "Width", "Height", "Area"}
	if err := f.SetSheetRow(SheetRegions, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetRegions, "A1", "H1", header); err != nil {
		return err
	}

	for i, r := range res.Regions {
		id, name := -1, ""
		if blk, ok := res.BlockForLabel(r.Label); ok {
			id, name = blk.ID+1, blk.DisplayName()
		}
		row := []any{r.Label, id, name, r.MinX, r.MinY, r.Width(), r.Height(), r.Area()}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetRegions, cell, &row); err != nil {
			return err
		}
	}

	summaryRow := len(res.Regions) + 3
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	summary := []any{"Efficiency", res.Efficiency, "Placed", len(res.Regions), "Blocks", len(res.Problem.Blocks)}
	return f.SetSheetRow(SheetRegions, cell, &summary)
}

func writeGridSheet(f *excelize.File, g *model.Grid) error {
	if _, err := f.NewSheet(SheetGrid); err != nil {
		return err
	}
	for y, row := range g.Rows() {
		values := make([]any, len(row))
		for x, label := range row {
			values[x] = label
		}
		cell, err := excelize.CoordinatesToCellName(1, y+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetGrid, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeGenerationSheet(f *excelize.File, history []model.GenerationStats, header int) error {
	if _, err := f.NewSheet(SheetGenerations); err != nil {
		return err
	}
	headers := []any{"Generation", "Best", "Mean", "Worst", "Best So Far"}
	if err := f.SetSheetRow(SheetGenerations, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetGenerations, "A1", "E1", header); err != nil {
		return err
	}
	for i, st := range history {
		row := []any{st.Generation, st.Best, st.Mean, st.Worst, st.BestSoFar}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetGenerations, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
