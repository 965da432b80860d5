// Package export writes packed layouts to image, document, drawing and
// spreadsheet formats.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/piwi3910/BlockPack/internal/model"
)

// blockColors is the fill palette shared by every renderer, indexed by label.
var blockColors = []color.RGBA{
	{R: 76, G: 175, B: 80, A: 255},  // green
	{R: 33, G: 150, B: 243, A: 255}, // blue
	{R: 255, G: 152, B: 0, A: 255},  // orange
	{R: 156, G: 39, B: 176, A: 255}, // purple
	{R: 0, G: 188, B: 212, A: 255},  // cyan
	{R: 244, G: 67, B: 54, A: 255},  // red
	{R: 255, G: 235, B: 59, A: 255}, // yellow
	{R: 121, G: 85, B: 72, A: 255},  // brown
}

var (
	emptyColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	lineColor  = color.RGBA{R: 160, G: 160, B: 160, A: 255}
)

// BlockColor returns the fill color for a grid label. Empty cells are white.
func BlockColor(label int) color.RGBA {
	if label <= model.Empty {
		return emptyColor
	}
	return blockColors[(label-1)%len(blockColors)]
}

// CellText is the two digit tag drawn in a cell, or "" for empty cells.
func CellText(label int) string {
	if label <= model.Empty {
		return ""
	}
	return fmt.Sprintf("%02d", label)
}

// RenderPNG rasterizes a grid with px pixels per cell. Every filled cell is
// painted in its block's color and tagged with its label when the cell is
// wide enough for two glyphs.
func RenderPNG(g *model.Grid, px int) (*image.RGBA, error) {
	if g == nil {
		return nil, model.NewError(model.ErrCodeInvalidInput, "no grid to render")
	}
	if px <= 0 {
		return nil, model.NewError(model.ErrCodeInvalidConfig, "pixels per cell must be positive, got %d", px)
	}

	img := image.NewRGBA(image.Rect(0, 0, g.Width()*px, g.Height()*px))
	face := basicfont.Face7x13
	glyphW := face.Advance * 2
	showText := px >= glyphW+2 && px >= face.Height

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			label := g.At(x, y)
			cell := image.Rect(x*px, y*px, (x+1)*px, (y+1)*px)
			draw.Draw(img, cell, image.NewUniform(BlockColor(label)), image.Point{}, draw.Src)
			strokeCell(img, cell)

			if !showText || label == model.Empty {
				continue
			}
			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(color.Black),
				Face: face,
				Dot: fixed.P(
					cell.Min.X+(px-glyphW)/2,
					cell.Min.Y+(px+face.Ascent)/2,
				),
			}
			d.DrawString(CellText(label))
		}
	}
	return img, nil
}

// strokeCell draws the top and left edges of a cell, plus the bottom and right
// edges along the image border.
func strokeCell(img *image.RGBA, r image.Rectangle) {
	b := img.Bounds()
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, lineColor)
		if r.Max.Y == b.Max.Y {
			img.SetRGBA(x, r.Max.Y-1, lineColor)
		}
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, lineColor)
		if r.Max.X == b.Max.X {
			img.SetRGBA(r.Max.X-1, y, lineColor)
		}
	}
}

// SavePNG renders the grid and writes it to path, creating parent directories.
func SavePNG(path string, g *model.Grid, px int) error {
	img, err := RenderPNG(g, px)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return f.Close()
}
