package widgets

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/BlockPack/internal/export"
	"github.com/piwi3910/BlockPack/internal/model"
)

var (
	colorSpace     = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	colorCellLine  = color.NRGBA{R: 210, G: 210, B: 210, A: 255}
	colorBorder    = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	colorBlockEdge = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
)

// LayoutCanvas renders a packed grid: the space, its cell lines and one
// colored rectangle per placed block.
type LayoutCanvas struct {
	widget.BaseWidget
	result    model.LayoutResult
	maxWidth  float32
	maxHeight float32
}

func NewLayoutCanvas(res model.LayoutResult, maxW, maxH float32) *LayoutCanvas {
	lc := &LayoutCanvas{
		result:    res,
		maxWidth:  maxW,
		maxHeight: maxH,
	}
	lc.ExtendBaseWidget(lc)
	return lc
}

// SetResult replaces the rendered layout.
func (lc *LayoutCanvas) SetResult(res model.LayoutResult) {
	lc.result = res
	lc.Refresh()
}

func (lc *LayoutCanvas) CreateRenderer() fyne.WidgetRenderer {
	return newLayoutCanvasRenderer(lc)
}

// FitScale returns the cell size in pixels that fits a w x h cell space into
// maxW x maxH.
func FitScale(w, h int, maxW, maxH float32) float32 {
	if w <= 0 || h <= 0 {
		return 1
	}
	scale := maxW / float32(w)
	if s := maxH / float32(h); s < scale {
		scale = s
	}
	if scale <= 0 {
		return 1
	}
	return scale
}

// ToNRGBA converts an export palette color for canvas use.
func ToNRGBA(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

type layoutCanvasRenderer struct {
	lc      *LayoutCanvas
	objects []fyne.CanvasObject
}

func newLayoutCanvasRenderer(lc *LayoutCanvas) *layoutCanvasRenderer {
	r := &layoutCanvasRenderer{lc: lc}
	r.rebuild()
	return r
}

func (r *layoutCanvasRenderer) rebuild() {
	r.objects = nil

	space := r.lc.result.Problem.Space
	if space.Width <= 0 || space.Height <= 0 {
		return
	}
	scale := FitScale(space.Width, space.Height, r.lc.maxWidth, r.lc.maxHeight)
	canvasW := float32(space.Width) * scale
	canvasH := float32(space.Height) * scale

	bg := canvas.NewRectangle(colorSpace)
	bg.Resize(fyne.NewSize(canvasW, canvasH))
	r.objects = append(r.objects, bg)

	// Cell lines only while cells stay readable.
	if scale >= 6 {
		for x := 1; x < space.Width; x++ {
			line := canvas.NewLine(colorCellLine)
			line.Position1 = fyne.NewPos(float32(x)*scale, 0)
			line.Position2 = fyne.NewPos(float32(x)*scale, canvasH)
			r.objects = append(r.objects, line)
		}
		for y := 1; y < space.Height; y++ {
			line := canvas.NewLine(colorCellLine)
			line.Position1 = fyne.NewPos(0, float32(y)*scale)
			line.Position2 = fyne.NewPos(canvasW, float32(y)*scale)
			r.objects = append(r.objects, line)
		}
	}

	for _, reg := range r.lc.result.Regions {
		px := float32(reg.MinX) * scale
		py := float32(reg.MinY) * scale
		pw := float32(reg.Width()) * scale
		ph := float32(reg.Height()) * scale

		rect := canvas.NewRectangle(ToNRGBA(export.BlockColor(reg.Label)))
		rect.StrokeColor = colorBlockEdge
		rect.StrokeWidth = 1
		rect.Resize(fyne.NewSize(pw, ph))
		rect.Move(fyne.NewPos(px, py))
		r.objects = append(r.objects, rect)

		if pw > 24 && ph > 14 {
			text := export.CellText(reg.Label)
			if blk, ok := r.lc.result.BlockForLabel(reg.Label); ok && blk.Label != "" && pw > 60 {
				text = fmt.Sprintf("%s %s", text, blk.Label)
			}
			label := canvas.NewText(text, color.Black)
			label.TextSize = 10
			label.Move(fyne.NewPos(px+3, py+2))
			r.objects = append(r.objects, label)
		}
	}

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = colorBorder
	border.StrokeWidth = 2
	border.Resize(fyne.NewSize(canvasW, canvasH))
	r.objects = append(r.objects, border)
}

func (r *layoutCanvasRenderer) Layout(size fyne.Size)        {}
func (r *layoutCanvasRenderer) Refresh()                     { r.rebuild() }
func (r *layoutCanvasRenderer) Destroy()                     {}
func (r *layoutCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *layoutCanvasRenderer) MinSize() fyne.Size {
	space := r.lc.result.Problem.Space
	if space.Width <= 0 || space.Height <= 0 {
		return fyne.NewSize(100, 100)
	}
	scale := FitScale(space.Width, space.Height, r.lc.maxWidth, r.lc.maxHeight)
	return fyne.NewSize(float32(space.Width)*scale, float32(space.Height)*scale)
}

// RenderLayoutResult creates a scrollable panel with the layout, its summary
// and the blocks left out of it.
func RenderLayoutResult(res *model.LayoutResult) fyne.CanvasObject {
	if res == nil || res.Grid == nil {
		return widget.NewLabel("No layout yet. Add blocks, then click Pack.")
	}

	header := widget.NewLabel(fmt.Sprintf(
		"%s: %d x %d cells, %d of %d blocks placed, %.2f%% efficiency",
		res.Problem.Name, res.Problem.Space.Width, res.Problem.Space.Height,
		res.Placed, len(res.Problem.Blocks), res.Efficiency*100,
	))
	header.TextStyle = fyne.TextStyle{Bold: true}

	items := []fyne.CanvasObject{header, NewLayoutCanvas(*res, 700, 450), widget.NewSeparator()}

	if dropped := res.Dropped(); len(dropped) > 0 {
		warning := widget.NewLabel(fmt.Sprintf("%d blocks did not fit:", len(dropped)))
		warning.Importance = widget.DangerImportance
		items = append(items, warning)
		for _, b := range dropped {
			items = append(items, widget.NewLabel(fmt.Sprintf("  %s (%d x %d)", b.DisplayName(), b.Width, b.Height)))
		}
	}

	summary := widget.NewLabel(fmt.Sprintf(
		"%d generations, outcome %s, seed %d, %s",
		res.Generations, res.Outcome, res.Seed, res.Elapsed.Round(time.Millisecond),
	))
	items = append(items, summary)

	return container.NewVScroll(container.NewVBox(items...))
}
