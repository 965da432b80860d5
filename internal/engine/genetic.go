package engine

import (
	"context"
	"io"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/BlockPack/internal/model"
)

// GeneticConfig holds parameters for the evolutionary search.
type GeneticConfig struct {
	PopulationSize  int           // genomes per generation, at least 2
	EfficiencyLimit float64       // stop once a generation's best reaches this
	MaxGenerations  int           // 0 = unbounded
	MaxDuration     time.Duration // 0 = unbounded
	Workers         int           // decode goroutines per generation; 0 or 1 = sequential
	Seed            int64         // 0 = seed from the clock
}

// DefaultGeneticConfig returns the search defaults: a population of 10 and a
// 90% efficiency target with no caps.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize:  10,
		EfficiencyLimit: 0.9,
		Workers:         1,
	}
}

// ConfigFromApp builds a GeneticConfig from saved application defaults.
func ConfigFromApp(c model.AppConfig) GeneticConfig {
	cfg := DefaultGeneticConfig()
	if c.DefaultPopulationSize > 0 {
		cfg.PopulationSize = c.DefaultPopulationSize
	}
	if c.DefaultEfficiencyLimit > 0 {
		cfg.EfficiencyLimit = c.DefaultEfficiencyLimit
	}
	cfg.MaxGenerations = c.DefaultMaxGenerations
	cfg.MaxDuration = c.TimeLimit()
	if c.DefaultWorkers > 0 {
		cfg.Workers = c.DefaultWorkers
	}
	return cfg
}

// Validate reports configuration values the search cannot run with.
func (c GeneticConfig) Validate() error {
	switch {
	case c.PopulationSize < 2:
		return model.NewError(model.ErrCodeInvalidConfig, "population size %d must be at least 2", c.PopulationSize)
	case math.IsNaN(c.EfficiencyLimit):
		return model.NewError(model.ErrCodeInvalidConfig, "efficiency limit is NaN")
	case c.MaxGenerations < 0:
		return model.NewError(model.ErrCodeInvalidConfig, "max generations %d is negative", c.MaxGenerations)
	case c.MaxDuration < 0:
		return model.NewError(model.ErrCodeInvalidConfig, "max duration %s is negative", c.MaxDuration)
	case c.Workers < 0:
		return model.NewError(model.ErrCodeInvalidConfig, "workers %d is negative", c.Workers)
	}
	return nil
}

// Observer is called once per finished generation.
type Observer func(stats model.GenerationStats)

// Option customizes a single Evolve call.
type Option func(*evolver)

// WithRand supplies the random source. It overrides GeneticConfig.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(e *evolver) { e.rng = rng }
}

// WithLogger sets the logger used for per-generation diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(e *evolver) { e.logger = logger }
}

// WithObserver registers a callback for per-generation statistics.
func WithObserver(fn Observer) Option {
	return func(e *evolver) { e.observer = fn }
}

// scored is a decoded genome. Each genome is decoded once per generation and
// its scored entry is reused by ranking and best-so-far tracking.
type scored struct {
	grid       *model.Grid
	placed     int
	efficiency float64
}

// bestRecord is the best layout seen across all generations.
type bestRecord struct {
	grid       *model.Grid
	genome     model.Genome
	placed     int
	efficiency float64
	generation int
}

// consider returns the record updated with s if s is a strict improvement.
func (b bestRecord) consider(genome model.Genome, s scored, generation int) bestRecord {
	if s.efficiency <= b.efficiency {
		return b
	}
	return bestRecord{
		grid:       s.grid,
		genome:     genome.Clone(),
		placed:     s.placed,
		efficiency: s.efficiency,
		generation: generation,
	}
}

type evolver struct {
	problem  model.Problem
	cfg      GeneticConfig
	rng      *rand.Rand
	seed     int64
	logger   *log.Logger
	observer Observer
}

// Evolve searches for the placement order whose bottom-left-fill layout fills
// the most of problem.Space. Generations run until one reaches
// cfg.EfficiencyLimit or a cap is hit; at least one generation always runs.
// Caps and ctx are only checked between generations. A capped run still
// returns its best layout with a nil error; LayoutResult.Err reports it.
func Evolve(ctx context.Context, problem model.Problem, cfg GeneticConfig, opts ...Option) (model.LayoutResult, error) {
	if err := problem.Validate(); err != nil {
		return model.LayoutResult{}, err
	}
	if err := cfg.Validate(); err != nil {
		return model.LayoutResult{}, err
	}

	e := &evolver{problem: problem, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.seed = cfg.Seed
		if e.seed == 0 {
			e.seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(e.seed))
	} else {
		e.seed = cfg.Seed
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e.run(ctx)
}

func (e *evolver) run(ctx context.Context) (model.LayoutResult, error) {
	start := time.Now()
	size := e.cfg.PopulationSize

	population := e.initPopulation()
	empty, err := model.NewGrid(e.problem.Space.Width, e.problem.Space.Height)
	if err != nil {
		return model.LayoutResult{}, err
	}
	best := bestRecord{grid: empty, genome: population[0].Clone()}

	var history []model.GenerationStats
	var outcome model.Outcome
	generation := 0

	for {
		scores, err := e.evaluate(population)
		if err != nil {
			return model.LayoutResult{}, err
		}
		for i := range population {
			best = best.consider(population[i], scores[i], generation+1)
		}

		ranked := rankByEfficiency(scores)
		topCount := max(1, size/2)
		top := make([]model.Genome, topCount)
		for i := range top {
			top[i] = population[ranked[i]]
		}

		children := e.reproduce(top)
		elites := e.carryOver(top)

		next := make([]model.Genome, 0, size)
		next = append(next, elites...)
		next = append(next, children[:size-len(elites)]...)
		population = next
		generation++

		stats := summarize(generation, scores, best.efficiency)
		history = append(history, stats)
		e.logger.Debug("generation",
			"generation", generation,
			"best", stats.Best,
			"mean", stats.Mean,
			"best_so_far", stats.BestSoFar,
			"scores", efficiencies(scores),
		)
		if e.observer != nil {
			e.observer(stats)
		}

		if stats.Best >= e.cfg.EfficiencyLimit {
			outcome = model.OutcomeConverged
			break
		}
		if e.cfg.MaxGenerations > 0 && generation >= e.cfg.MaxGenerations {
			outcome = model.OutcomeGenerationCap
			break
		}
		if e.cfg.MaxDuration > 0 && time.Since(start) >= e.cfg.MaxDuration {
			outcome = model.OutcomeTimeCap
			break
		}
		if ctx.Err() != nil {
			outcome = model.OutcomeCancelled
			break
		}
	}

	result := model.LayoutResult{
		Problem:     e.problem,
		Grid:        best.grid,
		Efficiency:  best.efficiency,
		Genome:      best.genome,
		Placed:      best.placed,
		Regions:     ExtractRegions(best.grid),
		Generations: generation,
		Outcome:     outcome,
		Elapsed:     time.Since(start),
		Seed:        e.seed,
		History:     history,
	}
	e.logger.Info("search finished",
		"problem", e.problem.Name,
		"outcome", outcome,
		"generations", generation,
		"efficiency", best.efficiency,
		"found_in", best.generation,
	)
	return result, nil
}

// initPopulation creates PopulationSize independent shuffles of the catalog.
func (e *evolver) initPopulation() []model.Genome {
	n := len(e.problem.Blocks)
	population := make([]model.Genome, e.cfg.PopulationSize)
	for i := range population {
		population[i] = model.Genome(e.rng.Perm(n))
	}
	return population
}

// evaluate decodes and scores every genome once, optionally across workers.
// Results are stored by population index.
func (e *evolver) evaluate(population []model.Genome) ([]scored, error) {
	workers := min(e.cfg.Workers, len(population))
	if workers <= 1 {
		out := make([]scored, len(population))
		for i, g := range population {
			s, err := e.score(g)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}

	type job struct {
		idx    int
		genome model.Genome
	}
	type result struct {
		idx int
		s   scored
		err error
	}

	jobs := make(chan job)
	results := make(chan result, len(population))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				s, err := e.score(j.genome)
				results <- result{idx: j.idx, s: s, err: err}
			}
		}()
	}

	for i := range population {
		jobs <- job{idx: i, genome: population[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]scored, len(population))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		out[res.idx] = res.s
	}
	return out, nil
}

func (e *evolver) score(g model.Genome) (scored, error) {
	grid, placed, err := DecodeGenome(e.problem.Blocks, g, e.problem.Space)
	if err != nil {
		return scored{}, err
	}
	return scored{grid: grid, placed: placed, efficiency: Efficiency(grid)}, nil
}

// reproduce runs PopulationSize crossover rounds over distinct parent pairs
// drawn from top, producing two mutated children per round.
func (e *evolver) reproduce(top []model.Genome) []model.Genome {
	children := make([]model.Genome, 0, 2*e.cfg.PopulationSize)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		a, b := e.pickParents(top)
		childA, childB := e.orderCrossover(a, b)
		children = append(children, e.mutate(childA), e.mutate(childB))
	}
	return children
}

// pickParents draws two distinct members of top. A single-member top is
// paired with itself.
func (e *evolver) pickParents(top []model.Genome) (model.Genome, model.Genome) {
	n := len(top)
	if n == 1 {
		return top[0], top[0]
	}
	i := e.rng.Intn(n)
	j := e.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return top[i], top[j]
}

// carryOver samples PopulationSize/2 distinct members of top and mutates each.
func (e *evolver) carryOver(top []model.Genome) []model.Genome {
	count := min(e.cfg.PopulationSize/2, len(top))
	picks := e.rng.Perm(len(top))[:count]
	elites := make([]model.Genome, count)
	for i, idx := range picks {
		elites[i] = e.mutate(top[idx])
	}
	return elites
}

// orderCrossover cuts both parents at one random point in [0, len-1]. Each
// child keeps its own parent's prefix and takes the remaining blocks in the
// order they appear in the other parent. Blocks are matched by catalog ID, so
// children are always permutations even when dimensions repeat.
func (e *evolver) orderCrossover(a, b model.Genome) (model.Genome, model.Genome) {
	n := len(a)
	if n == 0 {
		return model.Genome{}, model.Genome{}
	}
	cut := e.rng.Intn(n)
	return crossAt(a, b, cut), crossAt(b, a, cut)
}

func crossAt(prefix, donor model.Genome, cut int) model.Genome {
	child := make(model.Genome, 0, len(prefix))
	child = append(child, prefix[:cut]...)
	taken := make(map[int]bool, cut)
	for _, id := range prefix[:cut] {
		taken[id] = true
	}
	for _, id := range donor {
		if !taken[id] {
			child = append(child, id)
		}
	}
	return child
}

// mutate returns a copy of g with two distinct positions swapped. Genomes
// shorter than two are returned unchanged.
func (e *evolver) mutate(g model.Genome) model.Genome {
	c := g.Clone()
	n := len(c)
	if n < 2 {
		return c
	}
	i := e.rng.Intn(n)
	j := e.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	c[i], c[j] = c[j], c[i]
	return c
}

// rankByEfficiency returns population indices ordered by descending
// efficiency, keeping population order among ties.
func rankByEfficiency(scores []scored) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]].efficiency > scores[idx[j]].efficiency
	})
	return idx
}

func summarize(generation int, scores []scored, bestSoFar float64) model.GenerationStats {
	stats := model.GenerationStats{Generation: generation, Worst: math.Inf(1), BestSoFar: bestSoFar}
	var sum float64
	for _, s := range scores {
		sum += s.efficiency
		stats.Best = max(stats.Best, s.efficiency)
		stats.Worst = min(stats.Worst, s.efficiency)
	}
	if len(scores) > 0 {
		stats.Mean = sum / float64(len(scores))
	} else {
		stats.Worst = 0
	}
	return stats
}

func efficiencies(scores []scored) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s.efficiency
	}
	return out
}
