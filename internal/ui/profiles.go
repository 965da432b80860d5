package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

// showProfileManager opens a window listing the GCode profiles, where custom
// ones can be duplicated, imported, exported and deleted.
func (a *App) showProfileManager() {
	w := fyne.CurrentApp().NewWindow("GCode Profiles")
	w.Resize(fyne.NewSize(700, 500))

	profiles := model.AllProfiles()
	selectedIdx := -1
	detail := widget.NewLabel("Select a profile to view details.")
	detail.Wrapping = fyne.TextWrapWord

	list := widget.NewList(
		func() int { return len(profiles) },
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.DocumentIcon()),
				widget.NewLabel("Profile Name"),
				layout.NewSpacer(),
				widget.NewLabel("(built-in)"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			p := profiles[id]
			box.Objects[1].(*widget.Label).SetText(p.Name)
			tag := "(custom)"
			if p.IsBuiltIn {
				tag = "(built-in)"
			}
			box.Objects[3].(*widget.Label).SetText(tag)
		},
	)

	reload := func() {
		profiles = model.AllProfiles()
		selectedIdx = -1
		list.UnselectAll()
		list.Refresh()
		detail.SetText("Select a profile to view details.")
	}

	list.OnSelected = func(id widget.ListItemID) {
		selectedIdx = id
		detail.SetText(profileDetail(profiles[id]))
	}

	selected := func(action string) (model.GCodeProfile, bool) {
		if selectedIdx < 0 || selectedIdx >= len(profiles) {
			dialog.ShowInformation("No Selection", "Select a profile to "+action+".", w)
			return model.GCodeProfile{}, false
		}
		return profiles[selectedIdx], true
	}

	duplicateBtn := widget.NewButtonWithIcon("Duplicate", theme.ContentCopyIcon(), func() {
		source, ok := selected("duplicate")
		if !ok {
			return
		}
		nameEntry := widget.NewEntry()
		nameEntry.SetText(source.Name + " Copy")
		dialog.ShowForm("Duplicate Profile", "Create", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Name", nameEntry)},
			func(ok bool) {
				if !ok {
					return
				}
				p := source
				p.Name = strings.TrimSpace(nameEntry.Text)
				p.StartCode = append([]string(nil), source.StartCode...)
				p.EndCode = append([]string(nil), source.EndCode...)
				if _, err := model.AddCustomProfile(p); err != nil {
					dialog.ShowError(err, w)
					return
				}
				a.persistCustomProfiles(w)
				reload()
			}, w)
	})

	importBtn := widget.NewButtonWithIcon("Import", theme.FolderOpenIcon(), func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			path := reader.URI().Path()
			reader.Close()

			profile, err := project.ImportProfile(path)
			if err != nil {
				dialog.ShowError(fmt.Errorf("failed to import profile: %w", err), w)
				return
			}
			if _, err := model.AddCustomProfile(profile); err != nil {
				dialog.ShowError(err, w)
				return
			}
			a.persistCustomProfiles(w)
			reload()
			dialog.ShowInformation("Import Complete", fmt.Sprintf("Profile %q imported.", profile.Name), w)
		}, w)
	})

	exportBtn := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		p, ok := selected("export")
		if !ok {
			return
		}
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()
			if err := project.ExportProfile(path, p); err != nil {
				dialog.ShowError(fmt.Errorf("failed to export profile: %w", err), w)
			}
		}, w)
		d.SetFileName(strings.ReplaceAll(strings.ToLower(p.Name), " ", "_") + "_profile.json")
		d.Show()
	})

	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
		p, ok := selected("delete")
		if !ok {
			return
		}
		if p.IsBuiltIn {
			dialog.ShowInformation("Cannot Delete", "Built-in profiles cannot be deleted.", w)
			return
		}
		dialog.ShowConfirm("Delete Profile", fmt.Sprintf("Delete custom profile %q?", p.Name),
			func(ok bool) {
				if !ok {
					return
				}
				if err := model.RemoveCustomProfile(p.Name); err != nil {
					dialog.ShowError(err, w)
					return
				}
				a.persistCustomProfiles(w)
				reload()
			}, w)
	})

	listPanel := container.NewBorder(
		widget.NewLabelWithStyle("Profiles", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(duplicateBtn, importBtn, exportBtn, deleteBtn),
		nil, nil,
		list,
	)
	detailPanel := container.NewBorder(
		widget.NewLabelWithStyle("Profile Details", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		container.NewVScroll(detail),
	)

	split := container.NewHSplit(listPanel, detailPanel)
	split.SetOffset(0.4)
	w.SetContent(split)
	w.Show()
}

// profileDetail formats a profile for the detail pane.
func profileDetail(p model.GCodeProfile) string {
	var b strings.Builder
	b.WriteString(project.ProfileSummary(p) + "\n\n")
	fmt.Fprintf(&b, "Units: %s\n", p.Units)
	fmt.Fprintf(&b, "Rapid / feed: %s / %s\n", p.RapidMove, p.FeedMove)
	if p.IsPen() {
		fmt.Fprintf(&b, "Pen up / down: %s / %s\n", p.PenUp, p.PenDown)
		if p.Dwell != "" {
			fmt.Fprintf(&b, "Dwell: %s\n", p.Dwell)
		}
	} else {
		fmt.Fprintf(&b, "Spindle: %s / %s\n", p.SpindleStart, p.SpindleStop)
	}
	fmt.Fprintf(&b, "Comments: %s ... %s\n", p.CommentPrefix, p.CommentSuffix)
	fmt.Fprintf(&b, "Decimal places: %d\n", p.DecimalPlaces)
	if len(p.StartCode) > 0 {
		fmt.Fprintf(&b, "\nStart code:\n  %s\n", strings.Join(p.StartCode, "\n  "))
	}
	if len(p.EndCode) > 0 {
		fmt.Fprintf(&b, "\nEnd code:\n  %s\n", strings.Join(p.EndCode, "\n  "))
	}
	return b.String()
}

// persistCustomProfiles saves the current custom profiles to disk.
func (a *App) persistCustomProfiles(w fyne.Window) {
	if err := project.SaveCustomProfiles(project.DefaultProfilesPath(), model.CustomProfiles); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save profiles: %w", err), w)
	}
}
