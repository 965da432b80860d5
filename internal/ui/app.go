package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/piwi3910/BlockPack/internal/engine"
	"github.com/piwi3910/BlockPack/internal/gcode"
	"github.com/piwi3910/BlockPack/internal/importer"
	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
	"github.com/piwi3910/BlockPack/internal/ui/widgets"
)

// App holds all application state and UI references.
type App struct {
	app      fyne.App
	window   fyne.Window
	config   model.AppConfig
	theme    *BlockPackTheme
	logger   *log.Logger
	problem  model.Problem
	result   *model.LayoutResult
	history  *History
	search   engine.GeneticConfig
	settings model.ExportSettings

	// cancel stops the running search; nil while idle.
	cancel context.CancelFunc

	tabs             *container.AppTabs
	blocksContainer  *fyne.Container
	resultContainer  *fyne.Container
	previewContainer *fyne.Container
	statusLabel      *widget.Label
	progress         *widget.ProgressBar
	packBtn          fyne.Disableable
	stopBtn          fyne.Disableable
}

// NewApp loads preferences and custom profiles and returns an App with an
// empty problem.
func NewApp(application fyne.App, window fyne.Window) *App {
	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		cfg = model.DefaultAppConfig()
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "blockpack"})
	if _, err := project.RegisterCustomProfiles(project.DefaultProfilesPath()); err != nil {
		logger.Warn("ignoring custom profiles", "err", err)
	}

	settings := model.DefaultExportSettings()
	cfg.ApplyToSettings(&settings)

	a := &App{
		app:      application,
		window:   window,
		config:   cfg,
		theme:    NewBlockPackTheme(cfg.Theme),
		logger:   logger,
		problem:  newProblem(),
		history:  NewHistory(),
		search:   engine.ConfigFromApp(cfg),
		settings: settings,
	}
	application.Settings().SetTheme(a.theme)
	return a
}

func newProblem() model.Problem {
	return model.Problem{Name: "untitled", Space: model.Space{Width: 20, Height: 20}}
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Problem", func() {
			a.pushHistory("New Problem")
			a.problem = newProblem()
			a.result = nil
			a.refreshAll()
		}),
		fyne.NewMenuItem("Open Problem...", func() {
			a.openProblem()
		}),
		fyne.NewMenuItem("Save Problem...", func() {
			a.saveProblem()
		}),
		a.recentMenuItem(),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Blocks from CSV...", func() {
			a.importBlocks(func(path string) importer.ImportResult { return importer.ImportCSV(path) })
		}),
		fyne.NewMenuItem("Import Blocks from Excel...", func() {
			a.importBlocks(func(path string) importer.ImportResult { return importer.ImportExcel(path) })
		}),
		fyne.NewMenuItem("Import Blocks from DXF...", func() {
			a.importBlocks(func(path string) importer.ImportResult { return importer.ImportDXF(path, a.settings.CellSize) })
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export...", func() {
			a.showExportDialog()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { a.undo() }),
		fyne.NewMenuItem("Redo", func() { a.redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear All Blocks", func() {
			a.pushHistory("Clear Blocks")
			a.problem.Blocks = nil
			a.refreshBlocksList()
		}),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Pack", func() { a.runPack() }),
		fyne.NewMenuItem("Stop", func() { a.stopPack() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Compare Scenarios...", func() { a.showCompareDialog() }),
		fyne.NewMenuItem("Run History...", func() { a.showRunHistoryDialog() }),
	)

	settingsMenu := fyne.NewMenu("Settings",
		fyne.NewMenuItem("Preferences...", func() { a.showSettingsDialog() }),
		fyne.NewMenuItem("GCode Profiles...", func() { a.showProfileManager() }),
		fyne.NewMenuItem("Import / Export Data...", func() { a.showImportExportDialog() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() { a.showAboutDialog() }),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, settingsMenu, helpMenu))
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About BlockPack",
		"BlockPack packs rectangular blocks into a grid.\n\n"+
			"A genetic search over bottom-left-fill placement orders,\n"+
			"with image, report and GCode export.",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.tabs = container.NewAppTabs(
		container.NewTabItem("Blocks", a.buildBlocksPanel()),
		container.NewTabItem("Search", a.buildSearchPanel()),
		container.NewTabItem("Layout", a.buildResultsPanel()),
		container.NewTabItem("GCode", a.buildPreviewPanel()),
	)
	a.tabs.SetTabLocation(container.TabLocationTop)

	content := container.NewBorder(a.buildToolbar(), a.buildStatusBar(), nil, nil, a.tabs)
	return withTooltipLayer(content, a.window)
}

func (a *App) buildToolbar() fyne.CanvasObject {
	pack := newIconButtonWithTooltip(theme.MediaPlayIcon(), "Pack the current problem", a.runPack)
	stop := newIconButtonWithTooltip(theme.MediaStopIcon(), "Stop the search and keep the best layout", a.stopPack)
	stop.Disable()
	a.packBtn, a.stopBtn = pack, stop

	return container.NewHBox(
		newIconButtonWithTooltip(theme.FolderOpenIcon(), "Open a problem", a.openProblem),
		newIconButtonWithTooltip(theme.DocumentSaveIcon(), "Save the problem", a.saveProblem),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.ContentUndoIcon(), "Undo", a.undo),
		newIconButtonWithTooltip(theme.ContentRedoIcon(), "Redo", a.redo),
		widget.NewSeparator(),
		pack,
		stop,
		newIconButtonWithTooltip(theme.DownloadIcon(), "Export the layout", a.showExportDialog),
	)
}

func (a *App) buildStatusBar() fyne.CanvasObject {
	a.statusLabel = widget.NewLabel("Ready")
	a.progress = widget.NewProgressBar()
	a.progress.Max = 1
	return container.NewBorder(nil, nil, nil, container.NewGridWrap(fyne.NewSize(200, 20), a.progress), a.statusLabel)
}

func (a *App) refreshAll() {
	a.refreshBlocksList()
	a.refreshResults()
	a.window.SetTitle("BlockPack: " + a.problem.Name)
}

// ─── Blocks Panel ──────────────────────────────────────────

func (a *App) buildBlocksPanel() fyne.CanvasObject {
	a.blocksContainer = container.NewVBox()
	a.refreshBlocksList()

	addBtn := widget.NewButtonWithIcon("Add Block", theme.ContentAddIcon(), func() {
		a.showBlockDialog(-1)
	})
	spaceBtn := widget.NewButtonWithIcon("Space...", theme.SettingsIcon(), func() {
		a.showSpaceDialog()
	})

	return container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Blocks", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			spaceBtn,
			addBtn,
		),
		nil, nil, nil,
		container.NewVScroll(a.blocksContainer),
	)
}

func (a *App) refreshBlocksList() {
	a.blocksContainer.RemoveAll()

	space := a.problem.Space
	a.blocksContainer.Add(widget.NewLabel(fmt.Sprintf(
		"Space %d x %d cells, %d blocks covering %d of %d cells",
		space.Width, space.Height, len(a.problem.Blocks), a.problem.TotalBlockArea(), space.Area(),
	)))

	if len(a.problem.Blocks) == 0 {
		a.blocksContainer.Add(widget.NewLabel("No blocks added yet. Click 'Add Block' or import a list."))
		return
	}

	header := container.NewGridWithColumns(6,
		widget.NewLabelWithStyle("#", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Label", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Width", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Height", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(""),
		widget.NewLabel(""),
	)
	a.blocksContainer.Add(header)
	a.blocksContainer.Add(widget.NewSeparator())

	for i := range a.problem.Blocks {
		idx := i
		b := a.problem.Blocks[idx]
		row := container.NewGridWithColumns(6,
			widget.NewLabel(fmt.Sprintf("%d", b.ID+1)),
			widget.NewLabel(b.Label),
			widget.NewLabel(fmt.Sprintf("%d", b.Width)),
			widget.NewLabel(fmt.Sprintf("%d", b.Height)),
			widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
				a.showBlockDialog(idx)
			}),
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.pushHistory("Delete Block")
				a.problem.Blocks = append(a.problem.Blocks[:idx], a.problem.Blocks[idx+1:]...)
				a.problem.Renumber()
				a.refreshBlocksList()
			}),
		)
		a.blocksContainer.Add(row)
	}
}

// showBlockDialog adds blocks when idx is negative and edits block idx
// otherwise.
func (a *App) showBlockDialog(idx int) {
	editing := idx >= 0

	labelEntry := widget.NewEntry()
	labelEntry.SetPlaceHolder("Optional name")
	widthEntry := widget.NewEntry()
	widthEntry.SetPlaceHolder("Width in cells")
	heightEntry := widget.NewEntry()
	heightEntry.SetPlaceHolder("Height in cells")
	qtyEntry := widget.NewEntry()
	qtyEntry.SetText("1")

	items := []*widget.FormItem{
		widget.NewFormItem("Label", labelEntry),
		widget.NewFormItem("Width", widthEntry),
		widget.NewFormItem("Height", heightEntry),
	}
	title, confirm := "Add Block", "Add"
	if editing {
		b := a.problem.Blocks[idx]
		labelEntry.SetText(b.Label)
		widthEntry.SetText(strconv.Itoa(b.Width))
		heightEntry.SetText(strconv.Itoa(b.Height))
		title, confirm = "Edit Block", "Save"
	} else {
		items = append(items, widget.NewFormItem("Quantity", qtyEntry))
	}

	form := dialog.NewForm(title, confirm, "Cancel", items,
		func(ok bool) {
			if !ok {
				return
			}
			w, errW := strconv.Atoi(strings.TrimSpace(widthEntry.Text))
			h, errH := strconv.Atoi(strings.TrimSpace(heightEntry.Text))
			q, errQ := strconv.Atoi(strings.TrimSpace(qtyEntry.Text))
			if errW != nil || errH != nil || errQ != nil || w <= 0 || h <= 0 || q <= 0 {
				dialog.ShowError(fmt.Errorf("width, height and quantity must be positive integers"), a.window)
				return
			}

			a.pushHistory(title)
			block := model.Block{Label: strings.TrimSpace(labelEntry.Text), Width: w, Height: h}
			if editing {
				a.problem.Blocks[idx] = block
			} else {
				for i := 0; i < q; i++ {
					a.problem.Blocks = append(a.problem.Blocks, block)
				}
			}
			a.problem.Renumber()
			a.refreshBlocksList()
		},
		a.window,
	)
	form.Resize(fyne.NewSize(400, 300))
	form.Show()
}

func (a *App) showSpaceDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(a.problem.Name)
	widthEntry := widget.NewEntry()
	widthEntry.SetText(strconv.Itoa(a.problem.Space.Width))
	heightEntry := widget.NewEntry()
	heightEntry.SetText(strconv.Itoa(a.problem.Space.Height))

	form := dialog.NewForm("Space", "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Name", nameEntry),
			widget.NewFormItem("Width (cells)", widthEntry),
			widget.NewFormItem("Height (cells)", heightEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			w, errW := strconv.Atoi(strings.TrimSpace(widthEntry.Text))
			h, errH := strconv.Atoi(strings.TrimSpace(heightEntry.Text))
			if errW != nil || errH != nil || w <= 0 || h <= 0 {
				dialog.ShowError(fmt.Errorf("space width and height must be positive integers"), a.window)
				return
			}
			a.pushHistory("Resize Space")
			a.problem.Space = model.Space{Width: w, Height: h}
			if name := strings.TrimSpace(nameEntry.Text); name != "" {
				a.problem.Name = name
			}
			a.refreshAll()
		},
		a.window,
	)
	form.Resize(fyne.NewSize(360, 250))
	form.Show()
}

func (a *App) pushHistory(label string) {
	a.history.Push(MakeSnapshot(a.problem, label))
}

func (a *App) undo() {
	if s, ok := a.history.Undo(MakeSnapshot(a.problem, "current")); ok {
		s.Apply(&a.problem)
		a.refreshAll()
	}
}

func (a *App) redo() {
	if s, ok := a.history.Redo(MakeSnapshot(a.problem, "current")); ok {
		s.Apply(&a.problem)
		a.refreshAll()
	}
}

// ─── Search Panel ──────────────────────────────────────────

func (a *App) buildSearchPanel() fyne.CanvasObject {
	cfg := &a.search
	s := &a.settings

	floatEntry := func(val *float64) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.FormatFloat(*val, 'f', -1, 64))
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				*val = v
			}
		}
		return e
	}

	intEntry := func(val *int) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.Itoa(*val))
		e.OnChanged = func(text string) {
			if v, err := strconv.Atoi(text); err == nil {
				*val = v
			}
		}
		return e
	}

	seedEntry := widget.NewEntry()
	seedEntry.SetText(strconv.FormatInt(cfg.Seed, 10))
	seedEntry.OnChanged = func(text string) {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			cfg.Seed = v
		}
	}

	timeEntry := widget.NewEntry()
	timeEntry.SetText(formatDuration(cfg.MaxDuration))
	timeEntry.SetPlaceHolder("e.g. 30s, empty for none")
	timeEntry.OnChanged = func(text string) {
		if text == "" {
			cfg.MaxDuration = 0
			return
		}
		if d, err := time.ParseDuration(text); err == nil {
			cfg.MaxDuration = d
		}
	}

	searchSection := widget.NewCard("Genetic Search", "", container.NewGridWithColumns(2,
		widget.NewLabel("Population Size"), intEntry(&cfg.PopulationSize),
		widget.NewLabel("Efficiency Limit (0..1)"), floatEntry(&cfg.EfficiencyLimit),
		widget.NewLabel("Max Generations (0 = none)"), intEntry(&cfg.MaxGenerations),
		widget.NewLabel("Time Limit"), timeEntry,
		widget.NewLabel("Workers"), intEntry(&cfg.Workers),
		widget.NewLabel("Seed (0 = clock)"), seedEntry,
	))

	exportSection := widget.NewCard("Export / GCode", "", container.NewGridWithColumns(2,
		widget.NewLabel("GCode Profile"), a.buildProfileSelector(),
		widget.NewLabel("Cell Size (mm)"), floatEntry(&s.CellSize),
		widget.NewLabel("PNG Pixels per Cell"), intEntry(&s.PixelsCell),
		widget.NewLabel("Feed Rate (mm/min)"), floatEntry(&s.FeedRate),
		widget.NewLabel("Plunge Rate (mm/min)"), floatEntry(&s.PlungeRate),
		widget.NewLabel("Spindle Speed (RPM)"), intEntry(&s.SpindleSpeed),
		widget.NewLabel("Safe Z Height (mm)"), floatEntry(&s.SafeZ),
		widget.NewLabel("Cut Depth (mm)"), floatEntry(&s.CutDepth),
		widget.NewLabel("Pass Depth (mm)"), floatEntry(&s.PassDepth),
	))

	return container.NewVScroll(container.NewVBox(searchSection, exportSection))
}

func (a *App) buildProfileSelector() *widget.Select {
	selector := widget.NewSelect(model.GetProfileNames(), func(selected string) {
		a.settings.GCodeProfile = selected
		a.refreshPreview()
	})
	selector.SetSelected(a.settings.GCodeProfile)
	return selector
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.String()
}

// ─── Results Panels ────────────────────────────────────────

func (a *App) buildResultsPanel() fyne.CanvasObject {
	a.resultContainer = container.NewStack(widgets.RenderLayoutResult(nil))
	return a.resultContainer
}

func (a *App) refreshResults() {
	a.resultContainer.RemoveAll()
	a.resultContainer.Add(widgets.RenderLayoutResult(a.result))
	a.resultContainer.Refresh()
	a.refreshPreview()
}

func (a *App) buildPreviewPanel() fyne.CanvasObject {
	a.previewContainer = container.NewStack()
	a.refreshPreview()
	return a.previewContainer
}

// refreshPreview regenerates the GCode program and its toolpath preview.
func (a *App) refreshPreview() {
	if a.previewContainer == nil {
		return
	}
	a.previewContainer.RemoveAll()
	if a.result == nil || a.result.Grid == nil {
		a.previewContainer.Add(widget.NewLabel("Pack a problem to preview its GCode."))
		a.previewContainer.Refresh()
		return
	}

	code := gcode.New(a.settings).Generate(*a.result)
	moves := gcode.ParseGCode(code, model.GetProfile(a.settings.GCodeProfile))
	area := gcode.Rect{
		X1: float64(a.result.Problem.Space.Width) * a.settings.CellSize,
		Y1: float64(a.result.Problem.Space.Height) * a.settings.CellSize,
	}
	warnings := gcode.FormatBoundsWarnings(gcode.CheckBounds(moves, area, 0.001))

	status := widget.NewLabel(fmt.Sprintf("%d moves, %d contours, profile %s",
		len(moves), len(gcode.Contours(moves)), a.settings.GCodeProfile))
	if len(warnings) > 0 {
		status.SetText(strings.Join(warnings, "\n"))
		status.Importance = widget.DangerImportance
	}

	codeView := widget.NewMultiLineEntry()
	codeView.SetText(code)
	codeView.TextStyle = fyne.TextStyle{Monospace: true}

	split := container.NewHSplit(
		container.NewVScroll(widgets.RenderGCodePreview(*a.result, a.settings, code)),
		codeView,
	)
	split.Offset = 0.6
	a.previewContainer.Add(container.NewBorder(status, nil, nil, nil, split))
	a.previewContainer.Refresh()
}

// ─── Search Actions ────────────────────────────────────────

// runPack starts the genetic search in the background. Progress arrives
// through the engine observer and is applied on the UI goroutine.
func (a *App) runPack() {
	if a.cancel != nil {
		return
	}
	if err := a.problem.Validate(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if err := a.search.Validate(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	p := a.problem
	p.Blocks = append([]model.Block(nil), a.problem.Blocks...)
	cfg := a.search

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.setRunning(true)
	a.statusLabel.SetText("Searching...")
	a.progress.SetValue(0)

	observer := func(s model.GenerationStats) {
		fyne.Do(func() {
			a.statusLabel.SetText(fmt.Sprintf("Generation %d: best %.2f%%, mean %.2f%%", s.Generation, s.BestSoFar*100, s.Mean*100))
			a.progress.SetValue(s.BestSoFar)
		})
	}

	go func() {
		res, err := engine.Evolve(ctx, p, cfg, engine.WithLogger(a.logger), engine.WithObserver(observer))
		fyne.Do(func() {
			cancel()
			a.cancel = nil
			a.setRunning(false)
			if err != nil {
				a.statusLabel.SetText("Search failed")
				dialog.ShowError(err, a.window)
				return
			}
			a.statusLabel.SetText(fmt.Sprintf("%s: %.2f%% after %d generations (%s)",
				res.Problem.Name, res.Efficiency*100, res.Generations, res.Outcome))
			a.result = &res
			a.refreshResults()
			a.tabs.SelectIndex(2)
			a.recordRun(res)
		})
	}()
}

func (a *App) stopPack() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) setRunning(running bool) {
	if running {
		a.packBtn.Disable()
		a.stopBtn.Enable()
		return
	}
	a.packBtn.Enable()
	a.stopBtn.Disable()
}

// recordRun saves res to the run history; failures are logged only.
func (a *App) recordRun(res model.LayoutResult) {
	if res.Grid == nil {
		return
	}
	ctx := context.Background()
	store, err := project.OpenStore(ctx, a.config.HistoryBackend, a.config.HistoryPath)
	if err != nil {
		a.logger.Warn("run history unavailable", "err", err)
		return
	}
	defer store.Close()
	if err := store.SaveRun(ctx, project.NewRunRecord(res)); err != nil {
		a.logger.Warn("failed to record run", "err", err)
	}
}

// ─── Problem Files ─────────────────────────────────────────

func (a *App) openProblem() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.loadProblemFile(path)
	}, a.window)
	d.Show()
}

// loadProblemFile reads a TOML job or a plain text problem.
func (a *App) loadProblemFile(path string) {
	var (
		p        model.Problem
		warnings []string
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		job, err := importer.ReadJob(path)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if p, err = job.Problem(); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.applyJobEngine(job.Engine)
	} else {
		pf, err := importer.ReadProblem(path)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		p, warnings = pf.Problem, pf.Warnings
	}

	a.pushHistory("Open Problem")
	a.problem = p
	a.result = nil
	a.refreshAll()
	a.rememberProblem(path)

	if len(warnings) > 0 {
		dialog.ShowInformation("Problem Loaded", strings.Join(warnings, "\n"), a.window)
	}
}

func (a *App) applyJobEngine(je importer.JobEngine) {
	if je.PopulationSize > 0 {
		a.search.PopulationSize = je.PopulationSize
	}
	if je.EfficiencyLimit > 0 {
		a.search.EfficiencyLimit = je.EfficiencyLimit
	}
	if je.MaxGenerations > 0 {
		a.search.MaxGenerations = je.MaxGenerations
	}
	if je.Workers > 0 {
		a.search.Workers = je.Workers
	}
	if je.Seed != 0 {
		a.search.Seed = je.Seed
	}
	if d, err := je.Duration(); err == nil && d > 0 {
		a.search.MaxDuration = d
	}
}

func (a *App) saveProblem() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := writer.URI().Path()
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			err = importer.WriteJob(path, a.problem)
		} else {
			err = importer.WriteProblem(writer, a.problem)
		}
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.rememberProblem(path)
	}, a.window)
	d.SetFileName(a.problem.Name)
	d.Show()
}

func (a *App) recentMenuItem() *fyne.MenuItem {
	item := fyne.NewMenuItem("Open Recent", nil)
	var children []*fyne.MenuItem
	for _, path := range a.config.RecentProblems {
		p := path
		children = append(children, fyne.NewMenuItem(filepath.Base(p), func() { a.loadProblemFile(p) }))
	}
	if len(children) == 0 {
		item.Disabled = true
	}
	item.ChildMenu = fyne.NewMenu("", children...)
	return item
}

func (a *App) rememberProblem(path string) {
	a.config.AddRecentProblem(path, 10)
	if err := a.saveConfig(); err != nil {
		a.logger.Warn("failed to update recent problems", "err", err)
	}
}

// ─── Import Functions ──────────────────────────────────────

func (a *App) importBlocks(read func(path string) importer.ImportResult) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.handleImportResult(read(path))
	}, a.window)
}

func (a *App) handleImportResult(result importer.ImportResult) {
	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		dialog.ShowError(fmt.Errorf("%s", errorMsg), a.window)
	}
	for _, w := range result.Warnings {
		a.logger.Warn("import", "warning", w)
	}

	if len(result.Blocks) > 0 {
		a.pushHistory("Import Blocks")
		a.problem.Blocks = append(a.problem.Blocks, result.Blocks...)
		a.problem.Renumber()
		a.refreshBlocksList()

		msg := fmt.Sprintf("Imported %d blocks.", len(result.Blocks))
		if len(result.Errors) > 0 {
			msg += fmt.Sprintf("\n\n%d rows had errors and were skipped.", len(result.Errors))
		}
		dialog.ShowInformation("Import Complete", msg, a.window)
	}
}
