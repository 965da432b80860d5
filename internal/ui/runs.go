package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/BlockPack/internal/engine"
	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

// ─── Run History Dialog ────────────────────────────────────

func (a *App) showRunHistoryDialog() {
	ctx := context.Background()
	store, err := project.OpenStore(ctx, a.config.HistoryBackend, a.config.HistoryPath)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	runList := container.NewVBox()
	var d dialog.Dialog
	var refreshList func()

	refreshList = func() {
		runList.RemoveAll()

		runs, err := store.ListRuns(ctx, "", 100)
		if err != nil {
			runList.Add(widget.NewLabel(err.Error()))
			return
		}
		if len(runs) == 0 {
			runList.Add(widget.NewLabel("No recorded runs."))
			return
		}

		header := container.NewGridWithColumns(7,
			widget.NewLabelWithStyle("Problem", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("Space", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("Efficiency", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("Generations", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabelWithStyle("When", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabel(""),
			widget.NewLabel(""),
		)
		runList.Add(header)
		runList.Add(widget.NewSeparator())

		for _, r := range runs {
			run := r
			row := container.NewGridWithColumns(7,
				widget.NewLabel(run.Problem),
				widget.NewLabel(fmt.Sprintf("%d x %d", run.Width, run.Height)),
				widget.NewLabel(fmt.Sprintf("%.2f%%", run.Efficiency*100)),
				widget.NewLabel(fmt.Sprintf("%d", run.Generations)),
				widget.NewLabel(run.CreatedAt.Local().Format(time.DateTime)),
				widget.NewButtonWithIcon("", theme.VisibilityIcon(), func() {
					res, err := layoutFromRun(run)
					if err != nil {
						dialog.ShowError(err, a.window)
						return
					}
					a.result = &res
					a.refreshResults()
					a.tabs.SelectIndex(2)
					d.Hide()
				}),
				widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
					if _, err := store.DeleteRun(ctx, run.ID); err != nil {
						dialog.ShowError(err, a.window)
						return
					}
					refreshList()
				}),
			)
			runList.Add(row)
		}
	}
	refreshList()

	d = dialog.NewCustom("Run History", "Close", container.NewVScroll(runList), a.window)
	d.SetOnClosed(func() { store.Close() })
	d.Resize(fyne.NewSize(800, 500))
	d.Show()
}

// layoutFromRun rebuilds a viewable result from a stored run. Block sizes
// come from the stored grid, so labels stand in for the original catalog.
func layoutFromRun(run project.RunRecord) (model.LayoutResult, error) {
	grid, err := run.Layout()
	if err != nil {
		return model.LayoutResult{}, err
	}
	regions := engine.ExtractRegions(grid)

	p := model.Problem{Name: run.Problem, Space: model.Space{Width: run.Width, Height: run.Height}}
	maxLabel := 0
	for _, r := range regions {
		maxLabel = max(maxLabel, r.Label)
	}
	genome := make(model.Genome, maxLabel)
	for i := range genome {
		genome[i] = -1
	}
	for i, r := range regions {
		p.Blocks = append(p.Blocks, model.Block{ID: i, Width: r.Width(), Height: r.Height()})
		genome[r.Label-1] = i
	}

	return model.LayoutResult{
		Problem:     p,
		Grid:        grid,
		Efficiency:  engine.Efficiency(grid),
		Genome:      genome,
		Placed:      len(regions),
		Regions:     regions,
		Generations: run.Generations,
		Outcome:     run.Outcome,
		Elapsed:     run.Elapsed,
		Seed:        run.Seed,
	}, nil
}

// ─── Compare Dialog ────────────────────────────────────────

// showCompareDialog runs the default scenarios against the current problem
// and lists their efficiencies.
func (a *App) showCompareDialog() {
	if err := a.problem.Validate(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	p := a.problem
	p.Blocks = append([]model.Block(nil), a.problem.Blocks...)
	base := a.search
	if base.Seed == 0 {
		base.Seed = time.Now().UnixNano()
	}

	rows := container.NewVBox(widget.NewLabel("Running scenarios..."))
	d := dialog.NewCustom("Compare Scenarios", "Close", container.NewVScroll(rows), a.window)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()

	go func() {
		results := engine.CompareScenarios(context.Background(), engine.BuildDefaultScenarios(base), p, a.logger)
		fyne.Do(func() {
			rows.RemoveAll()
			rows.Add(container.NewGridWithColumns(4,
				widget.NewLabelWithStyle("Scenario", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
				widget.NewLabelWithStyle("Efficiency", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
				widget.NewLabelWithStyle("Placed", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
				widget.NewLabelWithStyle("Generations", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			))
			rows.Add(widget.NewSeparator())
			for _, r := range results {
				if r.Err != nil {
					rows.Add(container.NewGridWithColumns(4,
						widget.NewLabel(r.Scenario.Name), widget.NewLabel(r.Err.Error()), widget.NewLabel("-"), widget.NewLabel("-")))
					continue
				}
				rows.Add(container.NewGridWithColumns(4,
					widget.NewLabel(r.Scenario.Name),
					widget.NewLabel(fmt.Sprintf("%.2f%%", r.Result.Efficiency*100)),
					widget.NewLabel(fmt.Sprintf("%d/%d", r.Placed, len(p.Blocks))),
					widget.NewLabel(fmt.Sprintf("%d", r.Result.Generations)),
				))
			}
		})
	}()
}
