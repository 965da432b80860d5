package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/BlockPack/internal/model"
)

// Baseline is a fixed placement order evaluated without search.
type Baseline string

const (
	BaselineNone        Baseline = ""
	BaselineCatalog     Baseline = "catalog"      // blocks in input order
	BaselineAreaDesc    Baseline = "area-desc"    // largest footprint first
	BaselineHeightFirst Baseline = "height-first" // tallest first, then widest
)

// ComparisonScenario defines a named configuration to compare. Scenarios with
// a Baseline decode that fixed order once instead of running the search.
type ComparisonScenario struct {
	Name     string
	Config   GeneticConfig
	Baseline Baseline
}

// ComparisonResult holds the layout and summary statistics of one scenario.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Result       model.LayoutResult
	Err          error
	Placed       int
	Dropped      int
	WastePercent float64
}

// CompareScenarios runs every scenario against the same problem and returns
// results in scenario order.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, problem model.Problem, logger *log.Logger) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		var (
			res model.LayoutResult
			err error
		)
		if scenario.Baseline != BaselineNone {
			res, err = EvaluateBaseline(problem, scenario.Baseline)
		} else {
			opts := []Option{}
			if logger != nil {
				opts = append(opts, WithLogger(logger.With("scenario", scenario.Name)))
			}
			res, err = Evolve(ctx, problem, scenario.Config, opts...)
		}

		cr := ComparisonResult{Scenario: scenario, Result: res, Err: err}
		if err == nil {
			cr.Placed = res.Placed
			cr.Dropped = len(problem.Blocks) - res.Placed
			cr.WastePercent = 100.0 * (1 - res.Efficiency)
		}
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios derives what-if alternatives from base: the base
// search, a doubled population, a second seed, and the fixed-order baselines.
func BuildDefaultScenarios(base GeneticConfig) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Config: base},
	}

	bigger := base
	bigger.PopulationSize = base.PopulationSize * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:   fmt.Sprintf("Population %d", bigger.PopulationSize),
		Config: bigger,
	})

	reseeded := base
	reseeded.Seed = base.Seed + 1
	scenarios = append(scenarios, ComparisonScenario{
		Name:   fmt.Sprintf("Seed %d", reseeded.Seed),
		Config: reseeded,
	})

	for _, b := range []Baseline{BaselineCatalog, BaselineAreaDesc, BaselineHeightFirst} {
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Baseline " + string(b),
			Baseline: b,
		})
	}
	return scenarios
}

// BaselineOrder returns the genome for a fixed ordering strategy.
func BaselineOrder(blocks []model.Block, b Baseline) (model.Genome, error) {
	order := make(model.Genome, len(blocks))
	for i := range order {
		order[i] = i
	}
	switch b {
	case BaselineCatalog:
	case BaselineAreaDesc:
		sort.SliceStable(order, func(i, j int) bool {
			return blocks[order[i]].Area() > blocks[order[j]].Area()
		})
	case BaselineHeightFirst:
		sort.SliceStable(order, func(i, j int) bool {
			bi, bj := blocks[order[i]], blocks[order[j]]
			if bi.Height != bj.Height {
				return bi.Height > bj.Height
			}
			return bi.Width > bj.Width
		})
	default:
		return nil, model.NewError(model.ErrCodeInvalidConfig, "unknown baseline %q", b)
	}
	return order, nil
}

// EvaluateBaseline decodes a fixed ordering once and reports it as a
// single-generation result.
func EvaluateBaseline(problem model.Problem, b Baseline) (model.LayoutResult, error) {
	if err := problem.Validate(); err != nil {
		return model.LayoutResult{}, err
	}
	start := time.Now()
	order, err := BaselineOrder(problem.Blocks, b)
	if err != nil {
		return model.LayoutResult{}, err
	}
	grid, placed, err := DecodeGenome(problem.Blocks, order, problem.Space)
	if err != nil {
		return model.LayoutResult{}, err
	}
	eff := Efficiency(grid)
	return model.LayoutResult{
		Problem:     problem,
		Grid:        grid,
		Efficiency:  eff,
		Genome:      order,
		Placed:      placed,
		Regions:     ExtractRegions(grid),
		Generations: 1,
		Outcome:     model.OutcomeConverged,
		Elapsed:     time.Since(start),
		History:     []model.GenerationStats{{Generation: 1, Best: eff, Mean: eff, Worst: eff, BestSoFar: eff}},
	}, nil
}
