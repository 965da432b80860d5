package gcode

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/BlockPack/internal/model"
)

// Generator produces GCode that traces a layout: one closed contour around
// the whole space, then one per placed block.
type Generator struct {
	Settings model.ExportSettings
	profile  model.GCodeProfile
}

func New(settings model.ExportSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.GCodeProfile),
	}
}

// Profile returns the post-processor profile in use.
func (g *Generator) Profile() model.GCodeProfile {
	return g.profile
}

// Generate produces the GCode program for a layout.
func (g *Generator) Generate(res model.LayoutResult) string {
	var b strings.Builder
	cs := g.Settings.CellSize

	g.writeHeader(&b, res)

	w := float64(res.Problem.Space.Width) * cs
	h := float64(res.Problem.Space.Height) * cs
	g.writeContour(&b, 0, 0, w, h, "Square")

	for _, r := range res.Regions {
		x0, y0, x1, y1 := RegionRect(r, cs)
		tag := fmt.Sprintf("Block %d", r.Label)
		if blk, ok := res.BlockForLabel(r.Label); ok && blk.Label != "" {
			b.WriteString(g.comment(fmt.Sprintf("%s: %s (%d x %d cells)", tag, blk.Label, blk.Width, blk.Height)))
		}
		g.writeContour(&b, x0, y0, x1, y1, tag)
	}

	g.writeFooter(&b)
	return b.String()
}

// WriteFile generates the program for res and writes it to path, creating
// parent directories as needed.
func (g *Generator) WriteFile(path string, res model.LayoutResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(g.Generate(res)), 0644); err != nil {
		return fmt.Errorf("failed to write gcode: %w", err)
	}
	return nil
}

// RegionRect converts an inclusive cell region into machine coordinates.
func RegionRect(r model.Region, cellSize float64) (x0, y0, x1, y1 float64) {
	return float64(r.MinX) * cellSize,
		float64(r.MinY) * cellSize,
		float64(r.MaxX+1) * cellSize,
		float64(r.MaxY+1) * cellSize
}

func (g *Generator) writeHeader(b *strings.Builder, res model.LayoutResult) {
	p := g.profile
	s := g.Settings
	space := res.Problem.Space

	b.WriteString(g.comment(fmt.Sprintf("BlockPack GCode: %s", res.Problem.Name)))
	b.WriteString(g.comment(fmt.Sprintf("Space: %d x %d cells (%.1f x %.1f %s)",
		space.Width, space.Height, float64(space.Width)*s.CellSize, float64(space.Height)*s.CellSize, p.Units)))
	b.WriteString(g.comment(fmt.Sprintf("Blocks: %d placed, Efficiency: %.1f%%", len(res.Regions), res.Efficiency*100)))
	if p.IsPen() {
		b.WriteString(g.comment(fmt.Sprintf("Pen plotter, Feed: %.0f mm/min", s.FeedRate)))
	} else {
		b.WriteString(g.comment(fmt.Sprintf("Feed: %.0f mm/min, Plunge: %.0f mm/min, Depth: %.1fmm in %.1fmm passes",
			s.FeedRate, s.PlungeRate, s.CutDepth, s.PassDepth)))
	}
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.IsPen() {
		b.WriteString(fmt.Sprintf("%s F%s\n", p.FeedMove, g.format(s.FeedRate)))
		b.WriteString(p.PenUp + "\n")
	} else {
		if p.SpindleStart != "" {
			b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", s.SpindleSpeed))
		}
		b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(s.SafeZ)))
	}

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" && !containsLine(p.EndCode, p.SpindleStop) {
		b.WriteString(p.SpindleStop + "\n")
	}
}

func (g *Generator) writeContour(b *strings.Builder, x0, y0, x1, y1 float64, tag string) {
	if g.profile.IsPen() {
		g.moveTo(b, x0, y0)
		g.writePerimeter(b, x0, y0, x1, y1, tag)
		return
	}

	b.WriteString(g.comment(fmt.Sprintf("--- %s (%.1f x %.1f) ---", tag, x1-x0, y1-y0)))

	numPasses := g.passes()
	for pass := 1; pass <= numPasses; pass++ {
		depth := math.Min(float64(pass)*g.Settings.PassDepth, g.Settings.CutDepth)
		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, numPasses, depth)))

		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(x0), g.format(y0)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))
		g.writePerimeter(b, x0, y0, x1, y1, tag)
		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}
	b.WriteString("\n")
}

// moveTo lifts the pen, travels to (x, y) and lowers it again.
func (g *Generator) moveTo(b *strings.Builder, x, y float64) {
	p := g.profile
	b.WriteString(p.PenUp + "\n")
	if p.Dwell != "" {
		b.WriteString(p.Dwell + "\n")
	}
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(x), g.format(y)))
	b.WriteString(p.PenDown + "\n")
	if p.Dwell != "" {
		b.WriteString(p.Dwell + "\n")
	}
}

func (g *Generator) writePerimeter(b *strings.Builder, x0, y0, x1, y1 float64, tag string) {
	p := g.profile
	feed := ""
	if !p.IsPen() {
		feed = " F" + g.format(g.Settings.FeedRate)
	}
	note := g.inline(tag)
	b.WriteString(fmt.Sprintf("%s X%s Y%s%s%s\n", p.FeedMove, g.format(x1), g.format(y0), feed, note))
	b.WriteString(fmt.Sprintf("%s X%s Y%s%s\n", p.FeedMove, g.format(x1), g.format(y1), note))
	b.WriteString(fmt.Sprintf("%s X%s Y%s%s\n", p.FeedMove, g.format(x0), g.format(y1), note))
	b.WriteString(fmt.Sprintf("%s X%s Y%s%s\n", p.FeedMove, g.format(x0), g.format(y0), note))
}

func (g *Generator) passes() int {
	if g.Settings.PassDepth <= 0 || g.Settings.CutDepth <= g.Settings.PassDepth {
		return 1
	}
	return int(math.Ceil(g.Settings.CutDepth / g.Settings.PassDepth))
}

// comment wraps text in the profile's comment syntax as a full line.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// inline returns a trailing comment for a motion line. Only pen profiles tag
// every segment.
func (g *Generator) inline(text string) string {
	if !g.profile.IsPen() {
		return ""
	}
	return " " + g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix
}

// format formats a coordinate according to the profile's decimal places. Zero
// decimal places means the shortest exact representation.
func (g *Generator) format(v float64) string {
	if g.profile.DecimalPlaces <= 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', g.profile.DecimalPlaces, 64)
}

func containsLine(lines []string, s string) bool {
	for _, l := range lines {
		if l == s {
			return true
		}
	}
	return false
}
