package export

import (
	"encoding/json"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/BlockPack/internal/engine"
	"github.com/piwi3910/BlockPack/internal/importer"
	"github.com/piwi3910/BlockPack/internal/model"
)

// buildTestLayout decodes a 6x4 space holding three blocks, one of which
// does not fit.
func buildTestLayout(t *testing.T) model.LayoutResult {
	t.Helper()
	p := model.NewProblem("C2_1", model.Space{Width: 6, Height: 4}, [][2]int{{4, 2}, {2, 4}, {3, 3}, {2, 2}})
	p.Blocks[0].Label = "lid"

	genome := model.Genome{0, 1, 2, 3}
	grid, placed, err := engine.DecodeGenome(p.Blocks, genome, p.Space)
	require.NoError(t, err)

	return model.LayoutResult{
		Problem:     p,
		Grid:        grid,
		Efficiency:  engine.Efficiency(grid),
		Genome:      genome,
		Placed:      placed,
		Regions:     engine.ExtractRegions(grid),
		Generations: 3,
		Outcome:     model.OutcomeGenerationCap,
		Seed:        7,
		History: []model.GenerationStats{
			{Generation: 1, Best: 0.5, Mean: 0.4, Worst: 0.3, BestSoFar: 0.5},
			{Generation: 2, Best: 0.6, Mean: 0.5, Worst: 0.3, BestSoFar: 0.6},
			{Generation: 3, Best: 0.6, Mean: 0.6, Worst: 0.6, BestSoFar: 0.6},
		},
	}
}

func requireNonEmptyFile(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "file was not created")
	assert.GreaterOrEqual(t, info.Size(), minSize, "file seems too small")
}

// ─── PNG Tests ─────────────────────────────────────────────

func TestRenderPNG_Dimensions(t *testing.T) {
	res := buildTestLayout(t)
	img, err := RenderPNG(res.Grid, 20)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestRenderPNG_CellColors(t *testing.T) {
	res := buildTestLayout(t)
	img, err := RenderPNG(res.Grid, 20)
	require.NoError(t, err)

	// Sample near the cell corner, away from the grid line and the text.
	assert.Equal(t, BlockColor(1), img.RGBAAt(3, 3), "block 1 at (0,0)")
	assert.Equal(t, BlockColor(2), img.RGBAAt(4*20+3, 3), "block 2 at (4,0)")
	assert.Equal(t, BlockColor(4), img.RGBAAt(3, 3*20+3), "block 4 fills the bottom-left corner")
	assert.Equal(t, emptyColor, img.RGBAAt(3*20+3, 3*20+3), "dropped block leaves (3,3) empty")
}

func TestRenderPNG_Errors(t *testing.T) {
	_, err := RenderPNG(nil, 20)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidInput))

	res := buildTestLayout(t)
	_, err = RenderPNG(res.Grid, 0)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidConfig))
}

func TestSavePNG(t *testing.T) {
	res := buildTestLayout(t)
	path := filepath.Join(t.TempDir(), "images", "C2_1.png")
	require.NoError(t, SavePNG(path, res.Grid, 20))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
}

func TestBlockColorAndText(t *testing.T) {
	assert.Equal(t, emptyColor, BlockColor(model.Empty))
	assert.Equal(t, BlockColor(1), BlockColor(1+len(blockColors)), "palette wraps")
	assert.NotEqual(t, color.RGBA{}, BlockColor(3))

	assert.Equal(t, "", CellText(model.Empty))
	assert.Equal(t, "07", CellText(7))
	assert.Equal(t, "12", CellText(12))
}

// ─── PDF Tests ─────────────────────────────────────────────

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, ExportPDF(path, buildTestLayout(t), model.DefaultExportSettings()))
	requireNonEmptyFile(t, path, 500)
}

func TestExportPDF_NoGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	err := ExportPDF(path, model.LayoutResult{}, model.DefaultExportSettings())
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSampleHistory(t *testing.T) {
	var history []model.GenerationStats
	for i := 1; i <= 100; i++ {
		history = append(history, model.GenerationStats{Generation: i})
	}

	got := sampleHistory(history, 10)
	require.Len(t, got, 10)
	assert.Equal(t, 1, got[0].Generation)
	assert.Equal(t, 100, got[9].Generation)

	assert.Len(t, sampleHistory(history[:5], 10), 5)
}

func TestLabelFontSize(t *testing.T) {
	assert.Equal(t, 10.0, labelFontSize(50, 60))
	assert.Equal(t, 8.0, labelFontSize(20, 80))
	assert.Equal(t, 6.0, labelFontSize(10, 10))
}

// ─── Label Tests ───────────────────────────────────────────

func TestCollectLabelInfos(t *testing.T) {
	res := buildTestLayout(t)
	labels := CollectLabelInfos(res)
	require.Len(t, labels, len(res.Regions))

	first := labels[0]
	assert.Equal(t, "C2_1", first.Problem)
	assert.Equal(t, 1, first.Label)
	assert.Equal(t, 0, first.BlockID)
	assert.Equal(t, "lid", first.Name)
	assert.Equal(t, 4, first.Width)
	assert.Equal(t, 2, first.Height)

	data, err := json.Marshal(first)
	require.NoError(t, err)
	var decoded LabelInfo
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, first, decoded)
}

func TestExportLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	require.NoError(t, ExportLabels(path, buildTestLayout(t)))
	requireNonEmptyFile(t, path, 500)
}

func TestExportLabels_NothingPlaced(t *testing.T) {
	err := ExportLabels(filepath.Join(t.TempDir(), "labels.pdf"), model.LayoutResult{})
	assert.Error(t, err)
}

// ─── DXF Tests ─────────────────────────────────────────────

func TestExportDXF_ReimportsBlocks(t *testing.T) {
	res := buildTestLayout(t)
	path := filepath.Join(t.TempDir(), "dxf", "C2_1.dxf")
	require.NoError(t, ExportDXF(path, res, 4))

	imported := importer.ImportDXF(path, 4)
	require.Empty(t, imported.Errors)
	require.Len(t, imported.Blocks, 1+len(res.Regions))

	assert.Equal(t, res.Problem.Space.Width, imported.Blocks[0].Width)
	assert.Equal(t, res.Problem.Space.Height, imported.Blocks[0].Height)
	for i, r := range res.Regions {
		assert.Equal(t, r.Width(), imported.Blocks[i+1].Width)
		assert.Equal(t, r.Height(), imported.Blocks[i+1].Height)
	}
}

func TestExportDXF_BadCellSize(t *testing.T) {
	err := ExportDXF(filepath.Join(t.TempDir(), "x.dxf"), buildTestLayout(t), 0)
	assert.Error(t, err)
}

// ─── Excel Tests ───────────────────────────────────────────

func TestExportExcel(t *testing.T) {
	res := buildTestLayout(t)
	path := filepath.Join(t.TempDir(), "C2_1.xlsx")
	require.NoError(t, ExportExcel(path, res))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetRegions, SheetGrid, SheetGenerations}, f.GetSheetList())

	rows, err := f.GetRows(SheetRegions)
	require.NoError(t, err)
	assert.Equal(t, "Label", rows[0][0])
	assert.Equal(t, "lid", rows[1][2])

	grid, err := f.GetRows(SheetGrid)
	require.NoError(t, err)
	require.Len(t, grid, 4)
	assert.Equal(t, []string{"1", "1", "1", "1", "2", "2"}, grid[0])

	gens, err := f.GetRows(SheetGenerations)
	require.NoError(t, err)
	assert.Len(t, gens, 1+len(res.History))
}
