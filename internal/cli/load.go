package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/BlockPack/internal/engine"
	"github.com/piwi3910/BlockPack/internal/importer"
	"github.com/piwi3910/BlockPack/internal/model"
)

// loadedProblem is a problem read from any supported input plus the engine
// overrides a TOML job may carry.
type loadedProblem struct {
	Problem  model.Problem
	Engine   *importer.JobEngine
	Warnings []string
}

// loadOptions carries the extra inputs block-list formats need.
type loadOptions struct {
	space    string  // "WxH", required for CSV, Excel and DXF
	cellSize float64 // drawing units per cell for DXF
}

// loadProblem reads path by extension: .toml jobs, .csv and .xlsx block
// lists, .dxf drawings, and anything else as the plain text format.
func loadProblem(path string, opts loadOptions) (loadedProblem, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		job, err := importer.ReadJob(path)
		if err != nil {
			return loadedProblem{}, err
		}
		p, err := job.Problem()
		if err != nil {
			return loadedProblem{}, err
		}
		return loadedProblem{Problem: p, Engine: &job.Engine}, nil

	case ".csv", ".xlsx", ".dxf":
		space, err := parseSpace(opts.space)
		if err != nil {
			return loadedProblem{}, err
		}
		var res importer.ImportResult
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			res = importer.ImportCSV(path)
		case ".xlsx":
			res = importer.ImportExcel(path)
		default:
			res = importer.ImportDXF(path, opts.cellSize)
		}
		if !res.OK() {
			msg := strings.Join(res.Errors, "; ")
			if msg == "" {
				msg = "no blocks found"
			}
			return loadedProblem{}, model.NewError(model.ErrCodeInvalidInput, "%s: %s", path, msg)
		}
		p := res.Problem(name, space)
		if err := p.Validate(); err != nil {
			return loadedProblem{}, err
		}
		return loadedProblem{Problem: p, Warnings: res.Warnings}, nil

	default:
		pf, err := importer.ReadProblem(path)
		if err != nil {
			return loadedProblem{}, err
		}
		return loadedProblem{Problem: pf.Problem, Warnings: pf.Warnings}, nil
	}
}

// parseSpace parses "WxH" (or "W H") into a Space.
func parseSpace(s string) (model.Space, error) {
	if s == "" {
		return model.Space{}, model.NewError(model.ErrCodeInvalidInput, "block lists need --space WxH")
	}
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == 'x' || r == ' ' || r == ',' })
	if len(parts) != 2 {
		return model.Space{}, model.NewError(model.ErrCodeInvalidInput, "invalid space %q, want WxH", s)
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return model.Space{}, model.NewError(model.ErrCodeInvalidDimension, "invalid space %q, want positive WxH", s)
	}
	return model.Space{Width: w, Height: h}, nil
}

// applyJobEngine overlays non-zero job settings on cfg.
func applyJobEngine(cfg *engine.GeneticConfig, je *importer.JobEngine) error {
	if je == nil {
		return nil
	}
	if je.PopulationSize > 0 {
		cfg.PopulationSize = je.PopulationSize
	}
	if je.EfficiencyLimit > 0 {
		cfg.EfficiencyLimit = je.EfficiencyLimit
	}
	if je.MaxGenerations > 0 {
		cfg.MaxGenerations = je.MaxGenerations
	}
	if je.Workers > 0 {
		cfg.Workers = je.Workers
	}
	if je.Seed != 0 {
		cfg.Seed = je.Seed
	}
	d, err := je.Duration()
	if err != nil {
		return err
	}
	if d > 0 {
		cfg.MaxDuration = d
	}
	return nil
}

func describeSpace(s model.Space) string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
