package gcode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BlockPack/internal/model"
)

// newTestLayout returns the packed 4x4 square: one 4x2 block over two 2x2 blocks.
func newTestLayout() model.LayoutResult {
	p := model.NewProblem("C1_1", model.Space{Width: 4, Height: 4}, [][2]int{{4, 2}, {2, 2}, {2, 2}})
	p.Blocks[0].Label = "lid"
	return model.LayoutResult{
		Problem:    p,
		Efficiency: 1.0,
		Genome:     model.Genome{0, 1, 2},
		Placed:     3,
		Regions: []model.Region{
			{Label: 1, MinX: 0, MinY: 0, MaxX: 3, MaxY: 1},
			{Label: 2, MinX: 0, MinY: 2, MaxX: 1, MaxY: 3},
			{Label: 3, MinX: 2, MinY: 2, MaxX: 3, MaxY: 3},
		},
	}
}

func newTestSettings(profile string) model.ExportSettings {
	s := model.DefaultExportSettings()
	s.GCodeProfile = profile
	s.CellSize = 4
	s.FeedRate = 1000
	s.PlungeRate = 300
	s.SafeZ = 5
	s.CutDepth = 3
	s.PassDepth = 1.5
	return s
}

func TestGenerate_PlotterProgram(t *testing.T) {
	code := New(newTestSettings("Plotter")).Generate(newTestLayout())

	assert.Contains(t, code, "G21\nG90\nG1 F1000\nM03 S250\n")
	assert.Contains(t, code, "M03 S250\nG4 P0.5\nG0 X0 Y0\nM03 S90\nG4 P0.5\nG1 X16 Y0 ; Square\n")
	assert.Contains(t, code, "G1 X16 Y8 ; Block 1\n")
	assert.Contains(t, code, "; Block 1: lid (4 x 2 cells)")
	assert.Contains(t, code, "G0 X0 Y8\n")
	assert.True(t, strings.HasSuffix(code, "M03 S250\nG0 X0 Y0\n"), "ends with pen up and return home")
	assert.NotContains(t, code, " Z")
}

func TestGenerate_PlotterContoursMatchRegions(t *testing.T) {
	settings := newTestSettings("Plotter")
	gen := New(settings)
	layout := newTestLayout()

	rects := Contours(ParseGCode(gen.Generate(layout), gen.Profile()))
	require.Len(t, rects, 1+len(layout.Regions))

	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 16, Y1: 16}, rects[0])
	for i, r := range layout.Regions {
		x0, y0, x1, y1 := RegionRect(r, settings.CellSize)
		assert.Equal(t, Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}, rects[i+1])
	}
}

func TestGenerate_RouterPasses(t *testing.T) {
	gen := New(newTestSettings("Grbl"))
	layout := newTestLayout()
	code := gen.Generate(layout)

	assert.Contains(t, code, "M3 S18000")
	assert.Contains(t, code, "Pass 2/2, depth=3.00mm")
	assert.Contains(t, code, "G1 Z-1.500 F300.000")
	assert.NotContains(t, code, "M03 S90")
	assert.Equal(t, 1, strings.Count(code, "M5\n"), "spindle stop is not repeated")

	rects := Contours(ParseGCode(code, gen.Profile()))
	assert.Len(t, rects, 2*(1+len(layout.Regions)), "one contour per pass")

	violations := CheckBounds(ParseGCode(code, gen.Profile()), Rect{X1: 16, Y1: 16}, 0.01)
	assert.Empty(t, violations)
}

func TestGenerate_ParenthesisComments(t *testing.T) {
	code := New(newTestSettings("Mach3")).Generate(newTestLayout())
	assert.Contains(t, code, "( Profile: Mach3)")
	assert.NotContains(t, code, ";")
}

func TestGenerate_EmptyLayoutDrawsSpaceOnly(t *testing.T) {
	layout := newTestLayout()
	layout.Regions = nil
	layout.Efficiency = 0

	gen := New(newTestSettings("Plotter"))
	rects := Contours(ParseGCode(gen.Generate(layout), gen.Profile()))
	assert.Len(t, rects, 1)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gCodes", "C1_1.gcodes")
	gen := New(newTestSettings("Plotter"))
	require.NoError(t, gen.WriteFile(path, newTestLayout()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, gen.Generate(newTestLayout()), string(data))
}

func TestFormatShortestForPen(t *testing.T) {
	gen := New(newTestSettings("Plotter"))
	assert.Equal(t, "80", gen.format(80))
	assert.Equal(t, "2.5", gen.format(2.5))

	router := New(newTestSettings("LinuxCNC"))
	assert.Equal(t, "2.5000", router.format(2.5))
}
