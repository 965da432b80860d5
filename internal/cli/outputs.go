package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/BlockPack/internal/export"
	"github.com/piwi3910/BlockPack/internal/gcode"
	"github.com/piwi3910/BlockPack/internal/model"
)

// Output formats accepted by --format.
const (
	FormatPNG    = "png"
	FormatGCode  = "gcode"
	FormatPDF    = "pdf"
	FormatLabels = "labels"
	FormatDXF    = "dxf"
	FormatXLSX   = "xlsx"
	FormatJSON   = "json"
)

var allFormats = []string{FormatPNG, FormatGCode, FormatPDF, FormatLabels, FormatDXF, FormatXLSX, FormatJSON}

// parseFormats parses a comma-separated format list. "all" selects every format.
func parseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var formats []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "all" {
			return allFormats, nil
		}
		if !isFormat(f) {
			return nil, model.NewError(model.ErrCodeInvalidInput, "unknown format %q (want %s)", f, strings.Join(allFormats, ", "))
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

func isFormat(f string) bool {
	for _, known := range allFormats {
		if f == known {
			return true
		}
	}
	return false
}

// outputPath places each format in its own subdirectory: Images/ for PNG and
// gCodes/ for GCode, as batch runs have always been laid out.
func outputPath(dir, name, format string) string {
	switch format {
	case FormatPNG:
		return filepath.Join(dir, "Images", name+".png")
	case FormatGCode:
		return filepath.Join(dir, "gCodes", name+".gcodes")
	case FormatLabels:
		return filepath.Join(dir, "Labels", name+"-labels.pdf")
	case FormatXLSX:
		return filepath.Join(dir, "Reports", name+".xlsx")
	default:
		return filepath.Join(dir, "Reports", name+"."+format)
	}
}

// writeOutputs writes res in every requested format and returns the paths.
func writeOutputs(dir string, res model.LayoutResult, settings model.ExportSettings, formats []string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		path := outputPath(dir, res.Problem.Name, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return paths, fmt.Errorf("create output directory: %w", err)
		}

		var err error
		switch f {
		case FormatPNG:
			err = export.SavePNG(path, res.Grid, settings.PixelsCell)
		case FormatGCode:
			err = gcode.New(settings).WriteFile(path, res)
		case FormatPDF:
			err = export.ExportPDF(path, res, settings)
		case FormatLabels:
			if len(res.Regions) == 0 {
				continue
			}
			err = export.ExportLabels(path, res)
		case FormatDXF:
			err = export.ExportDXF(path, res, settings.CellSize)
		case FormatXLSX:
			err = export.ExportExcel(path, res)
		case FormatJSON:
			err = writeJSON(path, res)
		}
		if err != nil {
			return paths, fmt.Errorf("write %s: %w", f, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// jsonLayout adds the label matrix to the serialized result.
type jsonLayout struct {
	model.LayoutResult
	Grid [][]int `json:"grid"`
}

func writeJSON(path string, res model.LayoutResult) error {
	out := jsonLayout{LayoutResult: res}
	if res.Grid != nil {
		out.Grid = res.Grid.Rows()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
