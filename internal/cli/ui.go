package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/piwi3910/BlockPack/internal/model"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// cellPalette colors grid labels in the terminal, cycling by label.
var cellPalette = []lipgloss.Color{"34", "33", "208", "129", "37", "160", "226", "94"}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// renderGrid formats the grid one row per line with two digit labels, empty
// cells as "00". With color set, every label gets its palette color.
func renderGrid(g *model.Grid, color bool) string {
	var b strings.Builder
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			label := g.At(x, y)
			text := fmt.Sprintf("%02d", label)
			if color {
				style := StyleDim
				if label != model.Empty {
					style = lipgloss.NewStyle().Foreground(cellPalette[(label-1)%len(cellPalette)])
				}
				text = style.Render(text)
			}
			b.WriteString(text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// printResult prints the summary block for one finished search.
func printResult(w io.Writer, res model.LayoutResult) {
	fmt.Fprintln(w, StyleTitle.Render(res.Problem.Name))
	printKeyValue(w, "Space", fmt.Sprintf("%d x %d", res.Problem.Space.Width, res.Problem.Space.Height))
	printKeyValue(w, "Efficiency", StyleNumber.Render(fmt.Sprintf("%.2f%%", res.Efficiency*100)))
	printKeyValue(w, "Placed", fmt.Sprintf("%d of %d", res.Placed, len(res.Problem.Blocks)))
	printKeyValue(w, "Generations", fmt.Sprintf("%d", res.Generations))
	printKeyValue(w, "Outcome", string(res.Outcome))
	printKeyValue(w, "Seed", fmt.Sprintf("%d", res.Seed))
	printKeyValue(w, "Elapsed", res.Elapsed.String())
}

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1
