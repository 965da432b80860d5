package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/piwi3910/BlockPack/internal/engine"
	"github.com/piwi3910/BlockPack/internal/importer"
	"github.com/piwi3910/BlockPack/internal/model"
)

type batchOptions struct {
	search  searchFlags
	export  exportFlags
	pattern string
}

// batchCommand creates the "batch" command.
func (c *CLI) batchCommand() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Pack every problem file in a directory",
		Long: `Batch packs each plain text problem in dir whose name matches --pattern
(C*_* by default, the C1_1 … C7_3 naming) and writes Images/<name>.png and
gCodes/<name>.gcodes under the output directory.`,
		Example: `  blockpack batch problems -o results
  blockpack batch problems --pattern 'C3_*' -f png,gcode,pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd, args[0], opts)
		},
	}

	opts.search.register(cmd)
	opts.export.register(cmd, "results")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "C*_*", "file name glob")
	return cmd
}

// batchEntry is one row of the batch summary.
type batchEntry struct {
	name   string
	result model.LayoutResult
	err    error
}

func (c *CLI) runBatch(cmd *cobra.Command, dir string, opts batchOptions) error {
	ctx := cmd.Context()

	appCfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.export.formats == "" {
		opts.export.formats = FormatPNG + "," + FormatGCode
	}
	formats, err := parseFormats(opts.export.formats)
	if err != nil {
		return err
	}
	settings := opts.export.settings(appCfg)

	files, err := importer.FindProblems(dir, opts.pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		printWarning(c.Out, "no problem files matching %s in %s", opts.pattern, dir)
		return nil
	}
	printInfo(c.Out, "Packing %d problems from %s", len(files), dir)

	cfg := engine.ConfigFromApp(appCfg)
	opts.search.apply(cmd, &cfg)

	var entries []batchEntry
	for _, path := range files {
		entry := batchEntry{name: filepath.Base(path)}
		entry.result, entry.err = c.packFile(ctx, path, cfg, settings, formats, opts.export)
		entries = append(entries, entry)

		if errors.Is(entry.err, context.Canceled) {
			break
		}
		if entry.err != nil {
			printError(c.Out, "%s: %v", entry.name, entry.err)
			continue
		}
		printSuccess(c.Out, "%s %s", entry.name, StyleNumber.Render(fmt.Sprintf("%.2f%%", entry.result.Efficiency*100)))
	}

	fmt.Fprintln(c.Out, renderBatchTable(entries))
	if ctx.Err() != nil {
		return context.Canceled
	}
	return nil
}

// packFile runs one batch member and writes its outputs.
func (c *CLI) packFile(ctx context.Context, path string, cfg engine.GeneticConfig, settings model.ExportSettings, formats []string, ef exportFlags) (model.LayoutResult, error) {
	pf, err := importer.ReadProblem(path)
	if err != nil {
		return model.LayoutResult{}, err
	}
	for _, w := range pf.Warnings {
		c.Logger.Warn(w)
	}

	res, err := c.search(ctx, pf.Problem, cfg)
	if err != nil {
		return res, err
	}
	paths, err := writeOutputs(ef.outDir, res, settings, formats)
	if err != nil {
		return res, err
	}
	for _, p := range paths {
		c.Logger.Debug("wrote", "path", p)
	}
	return res, nil
}

func renderBatchTable(entries []batchEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if e.err != nil {
			rows = append(rows, []string{e.name, "-", "-", "-", "error"})
			continue
		}
		r := e.result
		rows = append(rows, []string{
			e.name,
			fmt.Sprintf("%.2f%%", r.Efficiency*100),
			fmt.Sprintf("%d/%d", r.Placed, len(r.Problem.Blocks)),
			fmt.Sprintf("%d", r.Generations),
			string(r.Outcome),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Problem", "Efficiency", "Placed", "Generations", "Outcome").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
