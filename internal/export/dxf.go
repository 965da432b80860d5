package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/BlockPack/internal/model"
)

// DXF layer names.
const (
	LayerSpace  = "SPACE"
	LayerBlocks = "BLOCKS"
	LayerLabels = "LABELS"
)

// ExportDXF writes the layout as closed polylines in millimetres: the space
// outline on one layer, one rectangle per placed block on another and the
// block tags on a third. The drawing is Y-up, so rows are mirrored to keep
// row 0 at the top.
func ExportDXF(path string, res model.LayoutResult, cellSize float64) error {
	if cellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %g", cellSize)
	}
	if res.Problem.Space.Area() <= 0 {
		return fmt.Errorf("no layout to export")
	}

	d := dxf.NewDrawing()
	spaceH := float64(res.Problem.Space.Height) * cellSize
	rect := func(x0, y0, x1, y1 float64) error {
		_, err := d.LwPolyline(true,
			[]float64{x0, spaceH - y0},
			[]float64{x1, spaceH - y0},
			[]float64{x1, spaceH - y1},
			[]float64{x0, spaceH - y1},
		)
		return err
	}

	if _, err := d.AddLayer(LayerSpace, color.White, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	if err := rect(0, 0, float64(res.Problem.Space.Width)*cellSize, spaceH); err != nil {
		return fmt.Errorf("failed to draw space: %w", err)
	}

	if _, err := d.AddLayer(LayerBlocks, color.Green, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for _, r := range res.Regions {
		x0, y0 := float64(r.MinX)*cellSize, float64(r.MinY)*cellSize
		x1, y1 := float64(r.MaxX+1)*cellSize, float64(r.MaxY+1)*cellSize
		if err := rect(x0, y0, x1, y1); err != nil {
			return fmt.Errorf("failed to draw block %d: %w", r.Label, err)
		}
	}

	if _, err := d.AddLayer(LayerLabels, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	textH := cellSize / 2
	for _, r := range res.Regions {
		cx := (float64(r.MinX) + float64(r.Width())/2) * cellSize
		cy := (float64(r.MinY) + float64(r.Height())/2) * cellSize
		if _, err := d.Text(CellText(r.Label), cx-textH/2, spaceH-cy-textH/2, 0, textH); err != nil {
			return fmt.Errorf("failed to tag block %d: %w", r.Label, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return d.SaveAs(path)
}
