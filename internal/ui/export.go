package ui

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/BlockPack/internal/export"
	"github.com/piwi3910/BlockPack/internal/gcode"
	"github.com/piwi3910/BlockPack/internal/model"
)

// exportFormat is one entry of the export dialog.
type exportFormat struct {
	name  string
	ext   string
	write func(path string, res model.LayoutResult, s model.ExportSettings) error
}

var exportFormats = []exportFormat{
	{"PNG Image", ".png", func(path string, res model.LayoutResult, s model.ExportSettings) error {
		return export.SavePNG(path, res.Grid, s.PixelsCell)
	}},
	{"GCode", ".gcodes", func(path string, res model.LayoutResult, s model.ExportSettings) error {
		return gcode.New(s).WriteFile(path, res)
	}},
	{"PDF Report", ".pdf", func(path string, res model.LayoutResult, s model.ExportSettings) error {
		return export.ExportPDF(path, res, s)
	}},
	{"PDF Labels", "-labels.pdf", func(path string, res model.LayoutResult, s model.ExportSettings) error {
		return export.ExportLabels(path, res)
	}},
	{"DXF Drawing", ".dxf", func(path string, res model.LayoutResult, s model.ExportSettings) error {
		return export.ExportDXF(path, res, s.CellSize)
	}},
	{"Excel Workbook", ".xlsx", func(path string, res model.LayoutResult, s model.ExportSettings) error {
		return export.ExportExcel(path, res)
	}},
}

// showExportDialog offers one save button per output format.
func (a *App) showExportDialog() {
	if a.result == nil || a.result.Grid == nil {
		dialog.ShowInformation("No layout", "Pack a problem before exporting.", a.window)
		return
	}
	res := *a.result

	var buttons []fyne.CanvasObject
	for _, f := range exportFormats {
		format := f
		buttons = append(buttons, widget.NewButton(format.name+"...", func() {
			a.saveExport(format, res)
		}))
	}

	d := dialog.NewCustom("Export Layout", "Close", container.NewVBox(buttons...), a.window)
	d.Resize(fyne.NewSize(300, 320))
	d.Show()
}

func (a *App) saveExport(f exportFormat, res model.LayoutResult) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := f.write(path, res, a.settings); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete",
			fmt.Sprintf("%s saved to %s", f.name, filepath.Base(path)), a.window)
	}, a.window)
	d.SetFileName(res.Problem.Name + f.ext)
	d.Show()
}
