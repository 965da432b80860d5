package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BlockPack/internal/engine"
	"github.com/piwi3910/BlockPack/internal/importer"
	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single", "png", []string{"png"}, false},
		{"list", "png, gcode,PDF", []string{"png", "gcode", "pdf"}, false},
		{"duplicates", "png,png", []string{"png"}, false},
		{"all", "png,all", allFormats, false},
		{"unknown", "png,svg", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFormats(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, model.IsCode(err, model.ErrCodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSpace(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Space
		wantErr bool
	}{
		{"20x12", model.Space{Width: 20, Height: 12}, false},
		{"20X12", model.Space{Width: 20, Height: 12}, false},
		{"7 3", model.Space{Width: 7, Height: 3}, false},
		{"", model.Space{}, true},
		{"20", model.Space{}, true},
		{"0x5", model.Space{}, true},
		{"ax5", model.Space{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSpace(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "Images", "C1_1.png"), outputPath("out", "C1_1", FormatPNG))
	assert.Equal(t, filepath.Join("out", "gCodes", "C1_1.gcodes"), outputPath("out", "C1_1", FormatGCode))
	assert.Equal(t, filepath.Join("out", "Labels", "C1_1-labels.pdf"), outputPath("out", "C1_1", FormatLabels))
	assert.Equal(t, filepath.Join("out", "Reports", "C1_1.xlsx"), outputPath("out", "C1_1", FormatXLSX))
	assert.Equal(t, filepath.Join("out", "Reports", "C1_1.pdf"), outputPath("out", "C1_1", FormatPDF))
	assert.Equal(t, filepath.Join("out", "Reports", "C1_1.json"), outputPath("out", "C1_1", FormatJSON))
}

func TestRenderGridPlain(t *testing.T) {
	g, err := model.GridFromRows([][]int{
		{1, 1, 2},
		{3, 0, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "01 01 02\n03 00 02\n", renderGrid(g, false))
}

func TestRenderGridColorKeepsLabels(t *testing.T) {
	g, err := model.GridFromRows([][]int{{12, 0}})
	require.NoError(t, err)

	out := renderGrid(g, true)
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "00")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestApplyJobEngine(t *testing.T) {
	cfg := engine.DefaultGeneticConfig()
	require.NoError(t, applyJobEngine(&cfg, nil))
	assert.Equal(t, engine.DefaultGeneticConfig(), cfg)

	je := &importer.JobEngine{PopulationSize: 30, MaxGenerations: 50, TimeLimit: "2s", Seed: 9}
	require.NoError(t, applyJobEngine(&cfg, je))
	assert.Equal(t, 30, cfg.PopulationSize)
	assert.Equal(t, 50, cfg.MaxGenerations)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, "2s", cfg.MaxDuration.String())
	assert.Equal(t, 0.9, cfg.EfficiencyLimit)

	err := applyJobEngine(&cfg, &importer.JobEngine{TimeLimit: "soon"})
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidConfig))
}

func TestLoadProblemPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "C1_1")
	require.NoError(t, os.WriteFile(path, []byte("3\n4 2\n2 2\n2 2\n"), 0644))

	loaded, err := loadProblem(path, loadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "C1_1", loaded.Problem.Name)
	assert.Equal(t, model.Space{Width: 4, Height: 2}, loaded.Problem.Space)
	assert.Len(t, loaded.Problem.Blocks, 2)
	assert.Len(t, loaded.Warnings, 1)
	assert.Nil(t, loaded.Engine)
}

func TestLoadProblemJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.toml")
	job := `
name = "shelf"

[space]
width = 6
height = 4

[[blocks]]
label = "door"
width = 3
height = 4
quantity = 2

[engine]
population = 12
`
	require.NoError(t, os.WriteFile(path, []byte(job), 0644))

	loaded, err := loadProblem(path, loadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "shelf", loaded.Problem.Name)
	assert.Len(t, loaded.Problem.Blocks, 2)
	require.NotNil(t, loaded.Engine)
	assert.Equal(t, 12, loaded.Engine.PopulationSize)
}

func TestLoadProblemBlockListNeedsSpace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.csv")
	require.NoError(t, os.WriteFile(path, []byte("Label,Width,Height,Quantity\nA,2,2,1\n"), 0644))

	_, err := loadProblem(path, loadOptions{})
	assert.Error(t, err)

	loaded, err := loadProblem(path, loadOptions{space: "4x4"})
	require.NoError(t, err)
	assert.Equal(t, "parts", loaded.Problem.Name)
	assert.Len(t, loaded.Problem.Blocks, 1)
}

// newTestCLI returns a CLI whose config, profiles and history live in a
// temporary directory, and the buffer it prints to.
func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(project.ConfigDirEnv, home)

	cfg := model.DefaultAppConfig()
	cfg.HistoryPath = filepath.Join(home, "history.db")
	require.NoError(t, project.SaveAppConfig(filepath.Join(home, "config.json"), cfg))

	c := New(io.Discard, LogInfo)
	var out bytes.Buffer
	c.Out = &out
	return c, &out
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func writeSquareProblem(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "C1_1")
	require.NoError(t, os.WriteFile(path, []byte("2\n4 2\n2 2\n2 2\n"), 0644))
	return path
}

func TestPackCommandWritesOutputs(t *testing.T) {
	c, out := newTestCLI(t)
	problem := writeSquareProblem(t)
	outDir := t.TempDir()

	err := execute(t, c, "pack", problem, "--seed", "3", "--no-history", "--no-color", "-f", "png,gcode,json", "-o", outDir)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "C1_1")
	assert.Contains(t, text, "100.00%")
	assert.Contains(t, text, string(model.OutcomeConverged))

	for _, f := range []string{FormatPNG, FormatGCode, FormatJSON} {
		assert.FileExists(t, outputPath(outDir, "C1_1", f))
	}

	data, err := os.ReadFile(outputPath(outDir, "C1_1", FormatJSON))
	require.NoError(t, err)
	var decoded struct {
		Grid [][]int `json:"grid"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Grid, 2)
	for _, row := range decoded.Grid {
		assert.NotContains(t, row, model.Empty)
	}
}

func TestPackCommandRejectsBadInput(t *testing.T) {
	c, _ := newTestCLI(t)
	assert.Error(t, execute(t, c, "pack", filepath.Join(t.TempDir(), "missing")))

	problem := writeSquareProblem(t)
	assert.Error(t, execute(t, c, "pack", problem, "-f", "svg"))
	assert.Error(t, execute(t, c, "pack", problem, "--population", "1", "--no-history"))
}

func TestPackRecordsHistory(t *testing.T) {
	c, out := newTestCLI(t)
	problem := writeSquareProblem(t)

	require.NoError(t, execute(t, c, "pack", problem, "--seed", "5", "--no-grid", "-o", t.TempDir()))
	out.Reset()

	require.NoError(t, execute(t, c, "history"))
	assert.Contains(t, out.String(), "C1_1")
	assert.Contains(t, out.String(), "100.00%")

	out.Reset()
	require.NoError(t, execute(t, c, "history", "C9_9"))
	assert.Contains(t, out.String(), "No recorded runs")
}

func TestHistoryShowAndDelete(t *testing.T) {
	c, out := newTestCLI(t)
	problem := writeSquareProblem(t)
	require.NoError(t, execute(t, c, "pack", problem, "--seed", "5", "-o", t.TempDir()))

	cfg, err := project.LoadAppConfig(c.configPath())
	require.NoError(t, err)
	store, err := project.OpenStore(t.Context(), cfg.HistoryBackend, cfg.HistoryPath)
	require.NoError(t, err)
	runs, err := store.ListRuns(t.Context(), "C1_1", 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, runs, 1)
	id := runs[0].ID.String()

	out.Reset()
	require.NoError(t, execute(t, c, "history", "show", id[:8], "--no-color"))
	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), "01 01 02 02\n")

	out.Reset()
	require.NoError(t, execute(t, c, "history", "delete", id))
	assert.Contains(t, out.String(), "Deleted run")

	assert.Error(t, execute(t, c, "history", "show", id))
}

func TestConfigCommands(t *testing.T) {
	c, out := newTestCLI(t)

	require.NoError(t, execute(t, c, "config", "path"))
	assert.Equal(t, c.configPath(), strings.TrimSpace(out.String()))

	out.Reset()
	require.NoError(t, execute(t, c, "config", "show"))
	var shown model.AppConfig
	require.NoError(t, json.Unmarshal(out.Bytes(), &shown))
	assert.Equal(t, "sqlite", shown.HistoryBackend)

	backup := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, execute(t, c, "config", "backup", backup))
	assert.FileExists(t, backup)

	require.NoError(t, execute(t, c, "config", "reset"))
	require.NoError(t, execute(t, c, "config", "restore", backup))
	restored, err := project.LoadAppConfig(c.configPath())
	require.NoError(t, err)
	assert.Equal(t, shown.HistoryPath, restored.HistoryPath)
}

func TestProfilesCommands(t *testing.T) {
	c, out := newTestCLI(t)
	t.Cleanup(func() { model.CustomProfiles = nil })

	require.NoError(t, execute(t, c, "profiles"))
	assert.Contains(t, out.String(), "Grbl")
	assert.Contains(t, out.String(), "Plotter")

	shared := filepath.Join(t.TempDir(), "grbl.json")
	require.NoError(t, execute(t, c, "profiles", "export", "Grbl", shared))
	assert.FileExists(t, shared)
	assert.Error(t, execute(t, c, "profiles", "export", "Nope", shared))

	// Built-in names cannot be imported over.
	assert.Error(t, execute(t, c, "profiles", "import", shared))

	p := model.GetProfile("Grbl")
	p.Name = "Shop Grbl"
	custom := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, project.ExportProfile(custom, p))

	out.Reset()
	require.NoError(t, execute(t, c, "profiles", "import", custom))
	assert.Contains(t, out.String(), "Added profile Shop Grbl")

	saved, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Shop Grbl", saved[0].Name)
}

func TestCompareCommand(t *testing.T) {
	c, out := newTestCLI(t)
	problem := writeSquareProblem(t)

	require.NoError(t, execute(t, c, "compare", problem, "--max-generations", "3"))
	text := out.String()
	assert.Contains(t, text, "Current Settings")
	assert.Contains(t, text, "Efficiency")

	out.Reset()
	require.NoError(t, execute(t, c, "compare", problem, "--max-generations", "3", "--baselines=false"))
	assert.Contains(t, out.String(), "Current Settings")
}

func TestBatchCommand(t *testing.T) {
	c, out := newTestCLI(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "C1_1"), []byte("2\n4 2\n2 2\n2 2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "C1_2"), []byte("1\n3 3\n2 2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644))
	outDir := t.TempDir()

	require.NoError(t, execute(t, c, "batch", dir, "-o", outDir, "--seed", "2", "--max-generations", "5"))

	assert.FileExists(t, filepath.Join(outDir, "Images", "C1_1.png"))
	assert.FileExists(t, filepath.Join(outDir, "gCodes", "C1_1.gcodes"))
	assert.FileExists(t, filepath.Join(outDir, "Images", "C1_2.png"))
	assert.NotContains(t, out.String(), "notes.txt")
	assert.Contains(t, out.String(), "C1_2")
}
