package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/BlockPack/internal/model"
)

// LabelInfo holds the data encoded into each block label's QR code.
type LabelInfo struct {
	Problem string `json:"problem"`
	Label   int    `json:"label"`
	BlockID int    `json:"block_id"`
	Name    string `json:"name"`
	Width   int    `json:"width"`  // cells
	Height  int    `json:"height"` // cells
	X       int    `json:"x"`      // cell column of the top-left corner
	Y       int    `json:"y"`      // cell row of the top-left corner
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // mm
	labelPadding    = 2.0  // mm
)

// ExportLabels writes one QR-coded label per placed block, laid out on US
// Letter label sheets. The QR code carries the LabelInfo as JSON.
func ExportLabels(path string, res model.LayoutResult) error {
	labels := CollectLabelInfos(res)
	if len(labels) == 0 {
		return fmt.Errorf("no blocks placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, info := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, info); err != nil {
			return fmt.Errorf("failed to render label %d: %w", info.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// CollectLabelInfos returns a LabelInfo for each placed block in label order.
func CollectLabelInfos(res model.LayoutResult) []LabelInfo {
	var labels []LabelInfo
	for _, r := range res.Regions {
		info := LabelInfo{
			Problem: res.Problem.Name,
			Label:   r.Label,
			BlockID: -1,
			Name:    CellText(r.Label),
			Width:   r.Width(),
			Height:  r.Height(),
			X:       r.MinX,
			Y:       r.MinY,
		}
		if blk, ok := res.BlockForLabel(r.Label); ok {
			info.BlockID = blk.ID
			info.Name = blk.DisplayName()
		}
		labels = append(labels, info)
	}
	return labels
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.Problem, info.Label)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	col := BlockColor(info.Label)
	pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	pdf.Rect(textX, y+labelPadding+0.5, 3, 3, "F")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX+4, y+labelPadding)
	name := fmt.Sprintf("%s %s", CellText(info.Label), info.Name)
	if pdf.GetStringWidth(name) > textW-4 {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW-4 {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW-4, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d x %d cells", info.Width, info.Height), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("%s @ (%d, %d)", info.Problem, info.X, info.Y), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
