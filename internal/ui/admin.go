package ui

import (
	"context"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/BlockPack/internal/engine"
	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

// showSettingsDialog displays the application preferences editor.
func (a *App) showSettingsDialog() {
	cfg := a.config

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
		e.SetText(fmt.Sprintf("%d", *val))
		e.OnChanged = func(text string) {
			if v, err := strconv.Atoi(text); err == nil {
				*val = v
			}
		}
		return e
	}

	profileSelect := widget.NewSelect(model.GetProfileNames(), func(selected string) {
		cfg.DefaultGCodeProfile = selected
	})
	profileSelect.SetSelected(cfg.DefaultGCodeProfile)

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	backendSelect := widget.NewSelect([]string{project.BackendSQLite, project.BackendMemory}, func(selected string) {
		cfg.HistoryBackend = selected
	})
	backendSelect.SetSelected(cfg.HistoryBackend)

	historyPath := widget.NewEntry()
	historyPath.SetPlaceHolder(project.DefaultHistoryPath())
	historyPath.SetText(cfg.HistoryPath)
	historyPath.OnChanged = func(text string) { cfg.HistoryPath = text }

	formItems := []*widget.FormItem{
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("Run History", backendSelect),
		widget.NewFormItem("History Database", historyPath),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Population", intEntry(&cfg.DefaultPopulationSize)),
		widget.NewFormItem("Default Efficiency Limit", floatEntry(&cfg.DefaultEfficiencyLimit)),
		widget.NewFormItem("Default Max Generations", intEntry(&cfg.DefaultMaxGenerations)),
		widget.NewFormItem("Default Time Limit (s, 0=none)", intEntry(&cfg.DefaultTimeLimitSec)),
		widget.NewFormItem("Default Workers", intEntry(&cfg.DefaultWorkers)),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Cell Size (mm)", floatEntry(&cfg.DefaultCellSize)),
		widget.NewFormItem("Default Pixels per Cell", intEntry(&cfg.DefaultPixelsCell)),
		widget.NewFormItem("Default Feed Rate (mm/min)", floatEntry(&cfg.DefaultFeedRate)),
		widget.NewFormItem("Default Safe Z (mm)", floatEntry(&cfg.DefaultSafeZ)),
		widget.NewFormItem("Default Cut Depth (mm)", floatEntry(&cfg.DefaultCutDepth)),
		widget.NewFormItem("Default Pass Depth (mm)", floatEntry(&cfg.DefaultPassDepth)),
		widget.NewFormItem("Default GCode Profile", profileSelect),
	}

	d := dialog.NewForm("Preferences", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			if err := engine.ConfigFromApp(cfg).Validate(); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.config = cfg
			a.theme.SetMode(cfg.Theme)
			a.app.Settings().SetTheme(a.theme)
			if err := a.saveConfig(); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save preferences: %w", err), a.window)
				return
			}
			dialog.ShowInformation("Preferences Saved", "New defaults apply to the next problem you open.", a.window)
		},
		a.window,
	)
	d.Resize(fyne.NewSize(520, 640))
	d.Show()
}

// showImportExportDialog backs up or restores config, custom profiles and
// run history.
func (a *App) showImportExportDialog() {
	exportBtn := widget.NewButton("Export All Data...", func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()

			n, err := a.exportAllData(path)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			dialog.ShowInformation("Export Complete",
				fmt.Sprintf("Preferences, profiles and %d runs exported to:\n%s", n, path), a.window)
		}, a.window)
		d.SetFileName("blockpack-backup.json")
		d.Show()
	})

	importBtn := widget.NewButton("Import All Data...", func() {
		dialog.ShowConfirm("Import Data",
			"Importing replaces your preferences and custom profiles\nand adds the backed up runs to the history.\n\nContinue?",
			func(ok bool) {
				if !ok {
					return
				}
				d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
					if err != nil || reader == nil {
						return
					}
					path := reader.URI().Path()
					reader.Close()

					backup, n, err := a.importAllData(path)
					if err != nil {
						dialog.ShowError(err, a.window)
						return
					}
					dialog.ShowInformation("Import Complete",
						fmt.Sprintf("Restored %d runs from the backup created at %s.", n, backup.CreatedAt), a.window)
				}, a.window)
				d.Show()
			},
			a.window,
		)
	})

	content := container.NewVBox(
		widget.NewLabel("Export preferences, custom GCode profiles and the run history\nto a backup file, or restore them from one."),
		widget.NewSeparator(),
		exportBtn,
		widget.NewSeparator(),
		importBtn,
	)

	d := dialog.NewCustom("Import / Export Data", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 250))
	d.Show()
}

func (a *App) exportAllData(path string) (int, error) {
	ctx := context.Background()
	store, err := project.OpenStore(ctx, a.config.HistoryBackend, a.config.HistoryPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	backup, err := project.CollectBackup(ctx, a.config, model.CustomProfiles, store)
	if err != nil {
		return 0, err
	}
	return len(backup.Runs), project.ExportAllData(path, backup)
}

func (a *App) importAllData(path string) (project.BackupData, int, error) {
	backup, err := project.ImportAllData(path)
	if err != nil {
		return project.BackupData{}, 0, err
	}
	a.config = backup.Config
	if err := a.saveConfig(); err != nil {
		return backup, 0, fmt.Errorf("failed to save imported preferences: %w", err)
	}
	if len(backup.Profiles) > 0 {
		if err := project.SaveCustomProfiles(project.DefaultProfilesPath(), backup.Profiles); err != nil {
			return backup, 0, err
		}
		model.CustomProfiles = backup.Profiles
	}

	ctx := context.Background()
	store, err := project.OpenStore(ctx, a.config.HistoryBackend, a.config.HistoryPath)
	if err != nil {
		return backup, 0, err
	}
	defer store.Close()
	n, err := project.RestoreRuns(ctx, backup, store)
	return backup, n, err
}

// saveConfig persists the current preferences to disk.
func (a *App) saveConfig() error {
	return project.SaveAppConfig(project.DefaultConfigPath(), a.config)
}
