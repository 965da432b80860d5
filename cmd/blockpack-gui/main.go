// BlockPack desktop: edit a block catalog, pack it into a square space with
// the genetic search and export the layout as images, reports or GCode.
//
// Build:
//
//	go build -o blockpack-gui ./cmd/blockpack-gui
//
// Using fyne-cross for packaged builds:
//
//	fyne-cross windows -arch=amd64 ./cmd/blockpack-gui
//	fyne-cross darwin  -arch=amd64,arm64 ./cmd/blockpack-gui
package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/piwi3910/BlockPack/internal/ui"
)

func main() {
	application := app.NewWithID("com.piwi3910.blockpack")
	window := application.NewWindow("BlockPack")

	appUI := ui.NewApp(application, window)
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()
	window.ShowAndRun()
}
