package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/piwi3910/BlockPack/internal/project"
)

// historyCommand creates the "history" command and its subcommands.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		limit int
		best  bool
	)

	cmd := &cobra.Command{
		Use:   "history [problem]",
		Short: "List recorded runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problem := ""
			if len(args) == 1 {
				problem = args[0]
			}
			return c.runHistory(cmd, problem, limit, best)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list, 0 for all")
	cmd.Flags().BoolVar(&best, "best", false, "show only the most efficient run")

	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())
	return cmd
}

func (c *CLI) runHistory(cmd *cobra.Command, problem string, limit int, best bool) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var runs []project.RunRecord
	if best {
		run, ok, err := store.BestRun(ctx, problem)
		if err != nil {
			return err
		}
		if ok {
			runs = append(runs, run)
		}
	} else {
		runs, err = store.ListRuns(ctx, problem, limit)
		if err != nil {
			return err
		}
	}

	if len(runs) == 0 {
		printInfo(c.Out, "No recorded runs")
		return nil
	}
	fmt.Fprintln(c.Out, renderHistoryTable(runs))
	return nil
}

func renderHistoryTable(runs []project.RunRecord) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID.String()[:8],
			r.Problem,
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			fmt.Sprintf("%.2f%%", r.Efficiency*100),
			fmt.Sprintf("%d/%d", r.Placed, r.BlockCount),
			fmt.Sprintf("%d", r.Generations),
			string(r.Outcome),
			r.CreatedAt.Local().Format(time.DateTime),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Problem", "Space", "Efficiency", "Placed", "Generations", "Outcome", "When").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if col == 0 {
				return StyleDim.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// historyShowCommand creates "history show".
func (c *CLI) historyShowCommand() *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a recorded run and its layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := findRun(cmd, store, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Out, StyleTitle.Render(run.Problem))
			printKeyValue(c.Out, "ID", run.ID.String())
			printKeyValue(c.Out, "Efficiency", StyleNumber.Render(fmt.Sprintf("%.2f%%", run.Efficiency*100)))
			printKeyValue(c.Out, "Generations", fmt.Sprintf("%d", run.Generations))
			printKeyValue(c.Out, "Outcome", string(run.Outcome))
			printKeyValue(c.Out, "Seed", fmt.Sprintf("%d", run.Seed))
			printKeyValue(c.Out, "Elapsed", run.Elapsed.String())

			if grid, err := run.Layout(); err == nil {
				fmt.Fprintln(c.Out)
				fmt.Fprint(c.Out, renderGrid(grid, !noColor))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "print the matrix without colors")
	return cmd
}

// historyDeleteCommand creates "history delete".
func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := findRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			if _, err := store.DeleteRun(ctx, run.ID); err != nil {
				return err
			}
			printSuccess(c.Out, "Deleted run %s", run.ID)
			return nil
		},
	}
}

// findRun resolves a full ID, or a unique prefix of one as printed by
// "history".
func findRun(cmd *cobra.Command, store project.Store, ref string) (project.RunRecord, error) {
	ctx := cmd.Context()
	if id, err := uuid.Parse(ref); err == nil {
		run, ok, err := store.GetRun(ctx, id)
		if err != nil {
			return project.RunRecord{}, err
		}
		if !ok {
			return project.RunRecord{}, fmt.Errorf("no run %s", ref)
		}
		return run, nil
	}

	runs, err := store.ListRuns(ctx, "", 0)
	if err != nil {
		return project.RunRecord{}, err
	}
	var matches []project.RunRecord
	for _, r := range runs {
		if len(ref) > 0 && len(ref) <= len(r.ID.String()) && r.ID.String()[:len(ref)] == ref {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return project.RunRecord{}, fmt.Errorf("no run matching %q", ref)
	case 1:
		return matches[0], nil
	default:
		return project.RunRecord{}, fmt.Errorf("%q matches %d runs", ref, len(matches))
	}
}
