package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/BlockPack/internal/engine"
	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

// searchFlags are the engine settings shared by pack, batch and compare.
type searchFlags struct {
	population     int
	limit          float64
	maxGenerations int
	timeLimit      time.Duration
	workers        int
	seed           int64
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.population, "population", "p", 0, "genomes per generation (default from config)")
	cmd.Flags().Float64VarP(&f.limit, "limit", "l", 0, "stop once a generation reaches this efficiency, 0..1")
	cmd.Flags().IntVar(&f.maxGenerations, "max-generations", 0, "generation cap, 0 for none")
	cmd.Flags().DurationVar(&f.timeLimit, "time-limit", 0, "wall-clock cap, e.g. 30s")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "decode goroutines per generation")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed, 0 for clock-based")
}

// apply overlays the flags the user actually set.
func (f *searchFlags) apply(cmd *cobra.Command, cfg *engine.GeneticConfig) {
	flags := cmd.Flags()
	if flags.Changed("population") {
		cfg.PopulationSize = f.population
	}
	if flags.Changed("limit") {
		cfg.EfficiencyLimit = f.limit
	}
	if flags.Changed("max-generations") {
		cfg.MaxGenerations = f.maxGenerations
	}
	if flags.Changed("time-limit") {
		cfg.MaxDuration = f.timeLimit
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
}

// exportFlags select output formats and machine settings.
type exportFlags struct {
	formats   string
	outDir    string
	profile   string
	cellSize  float64
	pixels    int
	noHistory bool
}

func (f *exportFlags) register(cmd *cobra.Command, defaultOut string) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "outputs: png,gcode,pdf,labels,dxf,xlsx,json or all")
	cmd.Flags().StringVarP(&f.outDir, "output", "o", defaultOut, "output directory")
	cmd.Flags().StringVar(&f.profile, "profile", "", "GCode profile (default from config)")
	cmd.Flags().Float64Var(&f.cellSize, "cell-size", 0, "mm per cell for GCode, DXF and PDF")
	cmd.Flags().IntVar(&f.pixels, "pixels", 0, "pixels per cell for PNG")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "do not record the run")
}

func (f *exportFlags) settings(cfg model.AppConfig) model.ExportSettings {
	s := model.DefaultExportSettings()
	cfg.ApplyToSettings(&s)
	if f.profile != "" {
		s.GCodeProfile = f.profile
	}
	if f.cellSize > 0 {
		s.CellSize = f.cellSize
	}
	if f.pixels > 0 {
		s.PixelsCell = f.pixels
	}
	return s
}

type packOptions struct {
	search  searchFlags
	export  exportFlags
	space   string
	noGrid  bool
	noColor bool
}

// packCommand creates the "pack" command.
func (c *CLI) packCommand() *cobra.Command {
	var opts packOptions

	cmd := &cobra.Command{
		Use:   "pack <file>",
		Short: "Search for the best layout of one problem",
		Long: `Pack reads a problem, runs the genetic search and prints the best layout.

Inputs are chosen by extension: .toml job files, .csv and .xlsx block lists,
.dxf drawings, and otherwise the plain text format:

  <block count>
  <space width> <space height>
  <block width> <block height>
  ...`,
		Example: `  blockpack pack C1_1
  blockpack pack shelf.toml -f png,gcode -o out
  blockpack pack parts.csv --space 20x12 --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPack(cmd, args[0], opts)
		},
	}

	opts.search.register(cmd)
	opts.export.register(cmd, ".")
	cmd.Flags().StringVar(&opts.space, "space", "", "space size WxH for block lists")
	cmd.Flags().BoolVar(&opts.noGrid, "no-grid", false, "do not print the layout matrix")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "print the matrix without colors")

	return cmd
}

func (c *CLI) runPack(cmd *cobra.Command, path string, opts packOptions) error {
	ctx := cmd.Context()

	appCfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	formats, err := parseFormats(opts.export.formats)
	if err != nil {
		return err
	}
	settings := opts.export.settings(appCfg)

	loaded, err := loadProblem(path, loadOptions{space: opts.space, cellSize: settings.CellSize})
	if err != nil {
		return err
	}
	for _, w := range loaded.Warnings {
		printWarning(c.Out, "%s", w)
	}

	cfg := engine.ConfigFromApp(appCfg)
	if err := applyJobEngine(&cfg, loaded.Engine); err != nil {
		return err
	}
	opts.search.apply(cmd, &cfg)

	res, err := c.search(ctx, loaded.Problem, cfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cancelled := err != nil

	printResult(c.Out, res)
	if !opts.noGrid && res.Grid != nil {
		fmt.Fprintln(c.Out)
		fmt.Fprint(c.Out, renderGrid(res.Grid, !opts.noColor))
	}
	for _, b := range res.Dropped() {
		printDetail(c.Out, "dropped %s (%dx%d)", b.DisplayName(), b.Width, b.Height)
	}
	if convErr := res.Err(); convErr != nil {
		printWarning(c.Out, "%v", convErr)
	}

	if res.Grid != nil {
		paths, err := writeOutputs(opts.export.outDir, res, settings, formats)
		for _, p := range paths {
			printFile(c.Out, p)
		}
		if err != nil {
			return err
		}
	}

	if !opts.export.noHistory && res.Grid != nil {
		c.recordRun(ctx, appCfg, res)
	}
	c.rememberProblem(appCfg, path)

	if cancelled {
		return context.Canceled
	}
	return nil
}

// search runs the engine with CLI logging. A cancelled context still returns
// the best layout found so far together with context.Canceled.
func (c *CLI) search(ctx context.Context, p model.Problem, cfg engine.GeneticConfig) (model.LayoutResult, error) {
	prog := newProgress(c.Logger)
	c.Logger.Info("searching", "problem", p.Name, "space", describeSpace(p.Space), "blocks", len(p.Blocks), "population", cfg.PopulationSize)

	res, err := engine.Evolve(ctx, p, cfg, engine.WithLogger(c.Logger))
	if err != nil {
		return res, err
	}
	prog.done(fmt.Sprintf("Packed %s at %.2f%%", p.Name, res.Efficiency*100))
	if res.Outcome == model.OutcomeCancelled {
		return res, context.Canceled
	}
	return res, nil
}

// recordRun stores res in the run history. Failures only warn.
func (c *CLI) recordRun(ctx context.Context, cfg model.AppConfig, res model.LayoutResult) {
	store, err := c.openStore(context.WithoutCancel(ctx), cfg)
	if err != nil {
		c.Logger.Warn("run history unavailable", "err", err)
		return
	}
	defer store.Close()

	run := project.NewRunRecord(res)
	if err := store.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		c.Logger.Warn("failed to record run", "err", err)
		return
	}
	c.Logger.Debug("run recorded", "id", run.ID)
}

// rememberProblem adds path to the recent problems list in the config file.
func (c *CLI) rememberProblem(cfg model.AppConfig, path string) {
	if _, err := os.Stat(c.configPath()); os.IsNotExist(err) {
		return
	}
	cfg.AddRecentProblem(path, 10)
	if err := project.SaveAppConfig(c.configPath(), cfg); err != nil {
		c.Logger.Warn("failed to update recent problems", "err", err)
	}
}
