package widgets

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/BlockPack/internal/gcode"
	"github.com/piwi3910/BlockPack/internal/model"
)

// Toolpath colors for different move types.
var (
	colorRapid   = color.NRGBA{R: 255, G: 60, B: 60, A: 200}   // Red for rapid moves
	colorFeed    = color.NRGBA{R: 30, G: 120, B: 255, A: 230}  // Blue for drawing moves
	colorPlunge  = color.NRGBA{R: 50, G: 200, B: 50, A: 220}   // Green for plunge
	colorRetract = color.NRGBA{R: 180, G: 180, B: 0, A: 180}   // Yellow for retract
	colorSheet   = color.NRGBA{R: 230, G: 210, B: 175, A: 255} // Light wood for the space
	colorOutline = color.NRGBA{R: 200, G: 220, B: 255, A: 120} // Light blue for block outlines
)

const previewMargin = float32(10)

// GCodePreview renders parsed toolpath moves over the block outlines of a
// layout, in machine units.
type GCodePreview struct {
	widget.BaseWidget
	moves     []gcode.GCodeMove
	regions   []model.Region
	cellSize  float64
	spaceW    float64
	spaceH    float64
	maxWidth  float32
	maxHeight float32
}

// NewGCodePreview creates a preview. spaceW and spaceH are in machine units.
func NewGCodePreview(moves []gcode.GCodeMove, regions []model.Region, cellSize, spaceW, spaceH float64, maxW, maxH float32) *GCodePreview {
	gp := &GCodePreview{
		moves:     moves,
		regions:   regions,
		cellSize:  cellSize,
		spaceW:    spaceW,
		spaceH:    spaceH,
		maxWidth:  maxW,
		maxHeight: maxH,
	}
	gp.ExtendBaseWidget(gp)
	return gp
}

// CreateRenderer implements fyne.Widget.
func (gp *GCodePreview) CreateRenderer() fyne.WidgetRenderer {
	return newGCodePreviewRenderer(gp)
}

func (gp *GCodePreview) scale() float32 {
	sx := (gp.maxWidth - previewMargin*2) / float32(gp.spaceW)
	sy := (gp.maxHeight - previewMargin*2) / float32(gp.spaceH)
	scale := float32(math.Min(float64(sx), float64(sy)))
	if scale <= 0 {
		scale = 1
	}
	return scale
}

type gcodePreviewRenderer struct {
	gp      *GCodePreview
	objects []fyne.CanvasObject
}

func newGCodePreviewRenderer(gp *GCodePreview) *gcodePreviewRenderer {
	r := &gcodePreviewRenderer{gp: gp}
	r.rebuild()
	return r
}

func (r *gcodePreviewRenderer) rebuild() {
	r.objects = nil

	gp := r.gp
	if gp.spaceW <= 0 || gp.spaceH <= 0 {
		return
	}
	scale := gp.scale()
	canvasW := float32(gp.spaceW) * scale
	canvasH := float32(gp.spaceH) * scale

	bg := canvas.NewRectangle(colorSheet)
	bg.Resize(fyne.NewSize(canvasW, canvasH))
	bg.Move(fyne.NewPos(previewMargin, previewMargin))
	r.objects = append(r.objects, bg)

	for _, reg := range gp.regions {
		x0, y0, x1, y1 := gcode.RegionRect(reg, gp.cellSize)
		outline := canvas.NewRectangle(colorOutline)
		outline.StrokeColor = color.NRGBA{R: 100, G: 130, B: 180, A: 200}
		outline.StrokeWidth = 1.5
		outline.Resize(fyne.NewSize(float32(x1-x0)*scale, float32(y1-y0)*scale))
		outline.Move(fyne.NewPos(float32(x0)*scale+previewMargin, float32(y0)*scale+previewMargin))
		r.objects = append(r.objects, outline)
	}

	for _, m := range gp.moves {
		fromX := float32(m.FromX)*scale + previewMargin
		fromY := float32(m.FromY)*scale + previewMargin
		toX := float32(m.ToX)*scale + previewMargin
		toY := float32(m.ToY)*scale + previewMargin
		xyDist := math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)

		switch m.Type {
		case gcode.MoveRapid:
			if xyDist < 0.01 {
				continue
			}
			r.addLine(fromX, fromY, toX, toY, colorRapid, 1)
			r.drawDashedOverlay(fromX, fromY, toX, toY)

		case gcode.MoveFeed:
			if xyDist < 0.01 {
				continue
			}
			col := colorFeed
			if !m.Drawing {
				col = colorRapid
			}
			r.addLine(fromX, fromY, toX, toY, col, 2)

		case gcode.MovePlunge:
			r.addMarker(fromX, fromY, colorPlunge, 4)

		case gcode.MoveRetract:
			if xyDist < 0.01 {
				r.addMarker(fromX, fromY, colorRetract, 3)
			} else {
				r.addLine(fromX, fromY, toX, toY, colorRetract, 1)
			}
		}
	}

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
	border.StrokeWidth = 2
	border.Resize(fyne.NewSize(canvasW, canvasH))
	border.Move(fyne.NewPos(previewMargin, previewMargin))
	r.objects = append(r.objects, border)
}

func (r *gcodePreviewRenderer) addLine(x1, y1, x2, y2 float32, col color.NRGBA, width float32) {
	line := canvas.NewLine(col)
	line.StrokeWidth = width
	line.Position1 = fyne.NewPos(x1, y1)
	line.Position2 = fyne.NewPos(x2, y2)
	r.objects = append(r.objects, line)
}

func (r *gcodePreviewRenderer) addMarker(x, y float32, col color.NRGBA, size float32) {
	marker := canvas.NewCircle(col)
	marker.Resize(fyne.NewSize(size, size))
	marker.Move(fyne.NewPos(x-size/2, y-size/2))
	r.objects = append(r.objects, marker)
}

// drawDashedOverlay adds background-colored gaps along a rapid move.
func (r *gcodePreviewRenderer) drawDashedOverlay(x1, y1, x2, y2 float32) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 8 {
		return
	}

	dashLen := float32(6)
	gapLen := float32(4)
	nx := dx / length
	ny := dy / length

	cursor := dashLen
	for cursor+gapLen < length {
		r.addLine(x1+nx*cursor, y1+ny*cursor, x1+nx*(cursor+gapLen), y1+ny*(cursor+gapLen), colorSheet, 2.5)
		cursor += dashLen + gapLen
	}
}

func (r *gcodePreviewRenderer) Layout(size fyne.Size)        {}
func (r *gcodePreviewRenderer) Refresh()                     { r.rebuild() }
func (r *gcodePreviewRenderer) Destroy()                     {}
func (r *gcodePreviewRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *gcodePreviewRenderer) MinSize() fyne.Size {
	gp := r.gp
	if gp.spaceW <= 0 || gp.spaceH <= 0 {
		return fyne.NewSize(100, 100)
	}
	scale := gp.scale()
	return fyne.NewSize(float32(gp.spaceW)*scale+previewMargin*2, float32(gp.spaceH)*scale+previewMargin*2)
}

// RenderGCodePreview creates a preview panel for the program generated from
// res with settings.
func RenderGCodePreview(res model.LayoutResult, settings model.ExportSettings, code string) fyne.CanvasObject {
	moves := gcode.ParseGCode(code, model.GetProfile(settings.GCodeProfile))
	return NewGCodePreview(
		moves,
		res.Regions,
		settings.CellSize,
		float64(res.Problem.Space.Width)*settings.CellSize,
		float64(res.Problem.Space.Height)*settings.CellSize,
		700, 450,
	)
}
