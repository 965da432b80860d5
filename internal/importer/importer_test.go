package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"

	"github.com/piwi3910/BlockPack/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Label,Width,Height\nA,3,2\nB,1,4\n", ','},
		{"semicolon", "Label;Width;Height\nA;3;2\nB;1;4\n", ';'},
		{"tab", "Label\tWidth\tHeight\nA\t3\t2\nB\t1\t4\n", '\t'},
		{"pipe", "Label|Width|Height\nA|3|2\nB|1|4\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCSVDelimiter([]byte(tt.data)))
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_Aliases(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"QTY", "H", "W", "Block"})
	require.True(t, isHeader)
	assert.Equal(t, 3, mapping.Label)
	assert.Equal(t, 2, mapping.Width)
	assert.Equal(t, 1, mapping.Height)
	assert.Equal(t, 0, mapping.Quantity)
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"A", "3", "2", "1"})
	assert.False(t, isHeader)
	assert.Equal(t, ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3}, mapping)
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_ExpandsQuantity(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Height,Qty\nDoor,2,3,2\nShelf,4,1,1\n"), ',')
	require.Empty(t, result.Errors)
	require.Len(t, result.Blocks, 3)

	for i, b := range result.Blocks {
		assert.Equal(t, i, b.ID)
	}
	assert.Equal(t, "Door", result.Blocks[0].Label)
	assert.Equal(t, "Door", result.Blocks[1].Label)
	assert.Equal(t, model.Block{ID: 2, Label: "Shelf", Width: 4, Height: 1}, result.Blocks[2])
}

func TestImportCSVFromReader_QuantityOptional(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("w;h\n3;2\n1;1\n"), ';')
	require.Empty(t, result.Errors)
	require.Len(t, result.Blocks, 2)
	assert.Equal(t, "Block 1", result.Blocks[0].Label)
	assert.Equal(t, "Block 2", result.Blocks[1].Label)
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("A,3,2\nB,1,4,3\n"), ',')
	require.Empty(t, result.Errors)
	assert.Len(t, result.Blocks, 4)
}

func TestImportCSVFromReader_RejectsBadRows(t *testing.T) {
	data := "Label,Width,Height,Qty\nok,2,2,1\nfrac,2.5,2,1\nneg,-1,2,1\nzero,1,1,0\nbad,x,1,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	assert.Len(t, result.Blocks, 1)
	assert.Len(t, result.Errors, 4)
	assert.False(t, result.OK())
}

func TestImportCSVFromReader_WholeNumberDecimals(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("A,3.0,2.0,1\n"), ',')
	require.Empty(t, result.Errors)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, 3, result.Blocks[0].Width)
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Qty\nA,3,1\n"), ',')
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Height")
}

func TestImportCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.csv")
	require.NoError(t, os.WriteFile(path, []byte("Label;Width;Height;Qty\nA;2;2;2\n"), 0644))

	result := ImportCSV(path)
	require.Empty(t, result.Errors)
	assert.Len(t, result.Blocks, 2)
	assert.Contains(t, result.Warnings, "Detected semicolon delimiter")

	p := result.Problem("blocks", model.Space{Width: 4, Height: 2})
	assert.NoError(t, p.Validate())
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Cannot open file")
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blocks.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, cell))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Name", "Width", "Height", "Pieces"},
		{"Door", 4, 6, 2},
		{"Lid", 3, 3, 1},
	})

	result := ImportExcel(path)
	require.Empty(t, result.Errors)
	require.Len(t, result.Blocks, 3)
	assert.Equal(t, "Lid", result.Blocks[2].Label)
	assert.Equal(t, 6, result.Blocks[0].Height)
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.NotEmpty(t, result.Errors)
}

// ─── Problem File Tests ────────────────────────────────────

func TestParseProblem(t *testing.T) {
	data := "3\n4 4\n4 2\n2 2\n\n2 2\n"
	pf, err := ParseProblem(strings.NewReader(data), "C1_1")
	require.NoError(t, err)

	assert.Empty(t, pf.Warnings)
	assert.Equal(t, "C1_1", pf.Problem.Name)
	assert.Equal(t, model.Space{Width: 4, Height: 4}, pf.Problem.Space)
	require.Len(t, pf.Problem.Blocks, 3)
	assert.Equal(t, model.Block{ID: 1, Width: 2, Height: 2}, pf.Problem.Blocks[1])
}

func TestParseProblem_CountMismatchWarns(t *testing.T) {
	pf, err := ParseProblem(strings.NewReader("5\n4 4\n1 1\n"), "short")
	require.NoError(t, err)
	require.Len(t, pf.Warnings, 1)
	assert.Contains(t, pf.Warnings[0], "declares 5 blocks, found 1")
}

func TestParseProblem_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code model.Code
	}{
		{"empty", "", model.ErrCodeInvalidInput},
		{"bad count", "x\n4 4\n1 1\n", model.ErrCodeInvalidInput},
		{"bad space", "1\n4\n1 1\n", model.ErrCodeInvalidInput},
		{"bad block", "1\n4 4\n1 a\n", model.ErrCodeInvalidInput},
		{"no blocks", "0\n4 4\n", model.ErrCodeInvalidInput},
		{"zero space", "1\n0 4\n1 1\n", model.ErrCodeInvalidDimension},
		{"zero block", "1\n4 4\n0 1\n", model.ErrCodeInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProblem(strings.NewReader(tt.data), tt.name)
			require.Error(t, err)
			assert.True(t, model.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestReadProblemRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := model.NewProblem("C2_3", model.Space{Width: 10, Height: 5}, [][2]int{{3, 2}, {5, 5}})

	f, err := os.Create(filepath.Join(dir, "C2_3"))
	require.NoError(t, err)
	require.NoError(t, WriteProblem(f, p))
	require.NoError(t, f.Close())

	pf, err := ReadProblem(filepath.Join(dir, "C2_3"))
	require.NoError(t, err)
	assert.Equal(t, p, pf.Problem)
}

func TestFindProblems(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"C2_1", "C1_2", "C1_1", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("1\n1 1\n1 1\n"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "C9_9"), 0755))

	files, err := FindProblems(dir, "")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "C1_1", filepath.Base(files[0]))
	assert.Equal(t, "C2_1", filepath.Base(files[2]))
}

func TestBatchNames(t *testing.T) {
	names := BatchNames(7, 3)
	require.Len(t, names, 21)
	assert.Equal(t, "C1_1", names[0])
	assert.Equal(t, "C1_3", names[2])
	assert.Equal(t, "C7_3", names[20])
}

// ─── TOML Job Tests ────────────────────────────────────────

const sampleJob = `
name = "shelf"

[space]
width = 6
height = 4

[[blocks]]
label = "door"
width = 3
height = 4
quantity = 2

[[blocks]]
width = 1
height = 1

[engine]
population = 20
efficiency_limit = 0.95
time_limit = "2s"
`

func TestParseJob(t *testing.T) {
	job, err := ParseJob(sampleJob)
	require.NoError(t, err)

	p, err := job.Problem()
	require.NoError(t, err)
	assert.Equal(t, "shelf", p.Name)
	require.Len(t, p.Blocks, 3)
	assert.Equal(t, model.Block{ID: 1, Label: "door", Width: 3, Height: 4}, p.Blocks[1])
	assert.Equal(t, 20, job.Engine.PopulationSize)

	d, err := job.Engine.Duration()
	require.NoError(t, err)
	assert.Equal(t, "2s", d.String())
}

func TestReadJob_NameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kitchen.toml")
	require.NoError(t, os.WriteFile(path, []byte("[space]\nwidth = 2\nheight = 2\n[[blocks]]\nwidth = 1\nheight = 1\n"), 0644))

	job, err := ReadJob(path)
	require.NoError(t, err)
	assert.Equal(t, "kitchen", job.Name)
}

func TestReadJob_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[space]\nwidth = 2\nheight = 2\n[engine]\ntime_limit = \"soon\"\n[[blocks]]\nwidth = 1\nheight = 1\n"), 0644))

	_, err := ReadJob(path)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidConfig), "got %v", err)

	require.NoError(t, os.WriteFile(path, []byte("[space]\nwidth = 2\nheight = 2\n"), 0644))
	_, err = ReadJob(path)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidInput), "got %v", err)
}

func TestWriteJobRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	p := model.NewProblem("out", model.Space{Width: 5, Height: 5}, [][2]int{{2, 2}, {1, 3}})
	require.NoError(t, WriteJob(path, p))

	job, err := ReadJob(path)
	require.NoError(t, err)
	got, err := job.Problem()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

// ─── DXF Import Tests ──────────────────────────────────────

func TestImportDXF_LineRectangle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rect.dxf")
	d := dxf.NewDrawing()
	corners := [][2]float64{{0, 0}, {10, 0}, {10, 8}, {0, 8}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		_, err := d.Line(c[0], c[1], 0, n[0], n[1], 0)
		require.NoError(t, err)
	}
	require.NoError(t, d.SaveAs(path))

	result := ImportDXF(path, 4)
	require.Empty(t, result.Errors)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, 3, result.Blocks[0].Width, "10mm rounds up to 3 cells")
	assert.Equal(t, 2, result.Blocks[0].Height)
	assert.Len(t, result.Warnings, 1)
}

func TestImportDXF_BadCellSize(t *testing.T) {
	result := ImportDXF("unused.dxf", 0)
	assert.NotEmpty(t, result.Errors)
}

func TestToCells(t *testing.T) {
	assert.Equal(t, 2, toCells(8, 4))
	assert.Equal(t, 2, toCells(8.0000001, 4))
	assert.Equal(t, 3, toCells(8.1, 4))
	assert.Equal(t, 1, toCells(0.5, 4))
}
