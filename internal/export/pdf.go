package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/BlockPack/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0

	// maxHistoryRows bounds the generation table on the summary page.
	maxHistoryRows = 20
)

// ExportPDF writes a two page report: the packed layout drawn to scale, then a
// summary of the run with its placed blocks and generation history.
func ExportPDF(path string, res model.LayoutResult, settings model.ExportSettings) error {
	if res.Grid == nil {
		return fmt.Errorf("no layout to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, res, settings)

	pdf.AddPage()
	renderSummaryPage(pdf, res, settings)

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the space and every placed block on the current page.
func renderLayoutPage(pdf *fpdf.Fpdf, res model.LayoutResult, settings model.ExportSettings) {
	space := res.Problem.Space

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %d x %d cells", res.Problem.Name, space.Width, space.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Blocks: %d placed, %d dropped | Filled: %d / %d cells | Efficiency: %.1f%%",
		len(res.Regions), len(res.Dropped()), res.Grid.FilledCount(), res.Grid.Area(), res.Efficiency*100)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/float64(space.Width), drawHeight/float64(space.Height))

	canvasW := float64(space.Width) * scale
	canvasH := float64(space.Height) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	drawCellLines(pdf, space, scale, offsetX, offsetY)

	for _, r := range res.Regions {
		col := BlockColor(r.Label)
		rx := offsetX + float64(r.MinX)*scale
		ry := offsetY + float64(r.MinY)*scale
		rw := float64(r.Width()) * scale
		rh := float64(r.Height()) * scale

		pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(rx, ry, rw, rh, "FD")

		if rw < 6 || rh < 4 {
			continue
		}
		pdf.SetFont("Helvetica", "", labelFontSize(rw, rh))
		pdf.SetTextColor(0, 0, 0)
		tag := CellText(r.Label)
		tagW := pdf.GetStringWidth(tag)
		pdf.SetXY(rx+(rw-tagW)/2, ry+rh/2-2)
		pdf.CellFormat(tagW, 4, tag, "", 0, "C", false, 0, "")
	}

	drawDimensionAnnotations(pdf, space, settings.CellSize, offsetX, offsetY, canvasW, canvasH)
	drawBlockLegend(pdf, res, offsetY+canvasH+6)
}

// drawCellLines draws the faint cell grid inside the space outline.
func drawCellLines(pdf *fpdf.Fpdf, space model.Space, scale, offsetX, offsetY float64) {
	if scale < 2 {
		return
	}
	pdf.SetDrawColor(220, 220, 220)
	pdf.SetLineWidth(0.1)
	for x := 1; x < space.Width; x++ {
		px := offsetX + float64(x)*scale
		pdf.Line(px, offsetY, px, offsetY+float64(space.Height)*scale)
	}
	for y := 1; y < space.Height; y++ {
		py := offsetY + float64(y)*scale
		pdf.Line(offsetX, py, offsetX+float64(space.Width)*scale, py)
	}
}

// drawDimensionAnnotations labels the space width below and height to the left.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, space model.Space, cellSize, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d cells (%.0f mm)", space.Width, float64(space.Width)*cellSize)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d cells (%.0f mm)", space.Height, float64(space.Height)*cellSize)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawBlockLegend lists each placed block with its color swatch.
func drawBlockLegend(pdf *fpdf.Fpdf, res model.LayoutResult, startY float64) {
	if len(res.Regions) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Blocks placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, r := range res.Regions {
		col := BlockColor(r.Label)
		name := CellText(r.Label)
		if blk, ok := res.BlockForLabel(r.Label); ok {
			name = fmt.Sprintf("%s %s", name, blk.DisplayName())
		}
		text := fmt.Sprintf("%s (%dx%d)", name, r.Width(), r.Height())
		textW := pdf.GetStringWidth(text) + 6

		if xPos+textW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(textW-4, 4, text, "", 0, "L", false, 0, "")

		xPos += textW + 2
	}
}

// renderSummaryPage draws run statistics, dropped blocks and the generation history.
func renderSummaryPage(pdf *fpdf.Fpdf, res model.LayoutResult, settings model.ExportSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Run Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Efficiency", fmt.Sprintf("%.1f%%", res.Efficiency*100)},
		{"Blocks Placed", fmt.Sprintf("%d of %d", len(res.Regions), len(res.Problem.Blocks))},
		{"Generations", fmt.Sprintf("%d", res.Generations)},
		{"Outcome", string(res.Outcome)},
		{"Seed", fmt.Sprintf("%d", res.Seed)},
		{"Elapsed", res.Elapsed.String()},
		{"Cell Size", fmt.Sprintf("%.1f mm", settings.CellSize)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if dropped := res.Dropped(); len(dropped) > 0 {
		y += 4
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "Dropped Blocks", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, b := range dropped {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, fmt.Sprintf("- %s: %d x %d cells", b.DisplayName(), b.Width, b.Height), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	if len(res.History) > 0 {
		y += 6
		renderHistoryTable(pdf, res.History, y)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by BlockPack", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderHistoryTable draws up to maxHistoryRows generations, evenly sampled,
// always including the last one.
func renderHistoryTable(pdf *fpdf.Fpdf, history []model.GenerationStats, y float64) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Generation History", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{30, 35, 35, 35, 40}
	headers := []string{"Generation", "Best", "Mean", "Worst", "Best So Far"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, st := range sampleHistory(history, maxHistoryRows) {
		if y > pageHeight-marginBottom-8 {
			break
		}
		rowData := []string{
			fmt.Sprintf("%d", st.Generation),
			fmt.Sprintf("%.1f%%", st.Best*100),
			fmt.Sprintf("%.1f%%", st.Mean*100),
			fmt.Sprintf("%.1f%%", st.Worst*100),
			fmt.Sprintf("%.1f%%", st.BestSoFar*100),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}
}

// sampleHistory picks at most n entries spread evenly across history. The
// last generation is always kept.
func sampleHistory(history []model.GenerationStats, n int) []model.GenerationStats {
	if n <= 0 || len(history) <= n {
		return history
	}
	out := make([]model.GenerationStats, 0, n)
	step := float64(len(history)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, history[int(math.Round(float64(i)*step))])
	}
	return out
}

// labelFontSize returns a font size that fits a w x h mm rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 10
	case minDim > 15:
		return 8
	default:
		return 6
	}
}
