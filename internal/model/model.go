package model

import (
	"fmt"
	"time"
)

// Block is a rectangle to be placed in the space. ID is the block's position
// in the catalog and is its identity: two blocks with equal dimensions are
// still distinct blocks.
type Block struct {
	ID     int    `json:"id" toml:"-"`
	Label  string `json:"label,omitempty" toml:"label"`
	Width  int    `json:"width" toml:"width"`   // cells
	Height int    `json:"height" toml:"height"` // cells
}

// Area returns the block footprint in cells.
func (b Block) Area() int {
	return b.Width * b.Height
}

// DisplayName returns the label, or the catalog number when no label is set.
func (b Block) DisplayName() string {
	if b.Label != "" {
		return b.Label
	}
	return fmt.Sprintf("#%d", b.ID+1)
}

// Space is the rectangular area blocks are packed into.
type Space struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// Area returns the number of cells in the space.
func (s Space) Area() int {
	return s.Width * s.Height
}

// Genome is a placement order: a permutation of catalog block IDs.
type Genome []int

// Clone returns an independent copy of the genome.
func (g Genome) Clone() Genome {
	c := make(Genome, len(g))
	copy(c, g)
	return c
}

// IsPermutation reports whether g contains every ID in [0, n) exactly once.
func (g Genome) IsPermutation(n int) bool {
	if len(g) != n {
		return false
	}
	seen := make([]bool, n)
	for _, id := range g {
		if id < 0 || id >= n || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// Problem is one packing job: a space and the catalog of blocks to place in it.
type Problem struct {
	Name   string  `json:"name"`
	Space  Space   `json:"space"`
	Blocks []Block `json:"blocks"`
}

// NewProblem builds a problem from width/height pairs, assigning catalog IDs
// in order.
func NewProblem(name string, space Space, sizes [][2]int) Problem {
	blocks := make([]Block, len(sizes))
	for i, s := range sizes {
		blocks[i] = Block{ID: i, Width: s[0], Height: s[1]}
	}
	return Problem{Name: name, Space: space, Blocks: blocks}
}

// Renumber rewrites block IDs to match their catalog position.
func (p *Problem) Renumber() {
	for i := range p.Blocks {
		p.Blocks[i].ID = i
	}
}

// Validate checks the problem before a run starts.
func (p Problem) Validate() error {
	if p.Space.Width <= 0 || p.Space.Height <= 0 {
		return NewError(ErrCodeInvalidDimension, "space %dx%d must have positive dimensions", p.Space.Width, p.Space.Height)
	}
	if len(p.Blocks) == 0 {
		return NewError(ErrCodeInvalidInput, "problem %q has no blocks", p.Name)
	}
	for i, b := range p.Blocks {
		if b.Width <= 0 || b.Height <= 0 {
			return NewError(ErrCodeInvalidDimension, "block %d is %dx%d; dimensions must be positive", i+1, b.Width, b.Height)
		}
		if b.ID != i {
			return NewError(ErrCodeInvalidInput, "block at position %d has id %d", i, b.ID)
		}
	}
	return nil
}

// TotalBlockArea returns the summed footprint of every block in the catalog.
func (p Problem) TotalBlockArea() int {
	total := 0
	for _, b := range p.Blocks {
		total += b.Area()
	}
	return total
}

// Region is the inclusive cell bounding box covered by one placed block.
type Region struct {
	Label int `json:"label"`
	MinX  int `json:"min_x"`
	MinY  int `json:"min_y"`
	MaxX  int `json:"max_x"`
	MaxY  int `json:"max_y"`
}

// Width returns the region width in cells.
func (r Region) Width() int { return r.MaxX - r.MinX + 1 }

// Height returns the region height in cells.
func (r Region) Height() int { return r.MaxY - r.MinY + 1 }

// Area returns the region area in cells.
func (r Region) Area() int { return r.Width() * r.Height() }

// Outcome describes why a run stopped.
type Outcome string

const (
	OutcomeConverged     Outcome = "converged"      // a generation reached the efficiency limit
	OutcomeGenerationCap Outcome = "generation_cap" // MaxGenerations reached
	OutcomeTimeCap       Outcome = "time_cap"       // MaxDuration elapsed
	OutcomeCancelled     Outcome = "cancelled"      // context cancelled
)

// GenerationStats summarizes the scores of one generation.
type GenerationStats struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Mean       float64 `json:"mean"`
	Worst      float64 `json:"worst"`
	BestSoFar  float64 `json:"best_so_far"`
}

// LayoutResult is the outcome of a search: the best layout found and how the
// run went.
type LayoutResult struct {
	Problem     Problem           `json:"problem"`
	Grid        *Grid             `json:"-"`
	Efficiency  float64           `json:"efficiency"`
	Genome      Genome            `json:"genome"`
	Placed      int               `json:"placed"`
	Regions     []Region          `json:"regions"`
	Generations int               `json:"generations"`
	Outcome     Outcome           `json:"outcome"`
	Elapsed     time.Duration     `json:"elapsed"`
	Seed        int64             `json:"seed"`
	History     []GenerationStats `json:"history,omitempty"`
}

// Converged reports whether the run reached its efficiency limit.
func (r LayoutResult) Converged() bool {
	return r.Outcome == OutcomeConverged
}

// Err returns a NonConvergence error for runs stopped by a cap, nil otherwise.
func (r LayoutResult) Err() error {
	if r.Converged() {
		return nil
	}
	return NewError(ErrCodeNonConvergence, "stopped after %d generations (%s) at efficiency %.4f", r.Generations, r.Outcome, r.Efficiency)
}

// Dropped returns the blocks of the best genome that found no position.
func (r LayoutResult) Dropped() []Block {
	if len(r.Genome) == 0 {
		return nil
	}
	var dropped []Block
	placed := make(map[int]bool, len(r.Regions))
	for _, reg := range r.Regions {
		placed[reg.Label] = true
	}
	for rank, id := range r.Genome {
		if !placed[rank+1] && id >= 0 && id < len(r.Problem.Blocks) {
			dropped = append(dropped, r.Problem.Blocks[id])
		}
	}
	return dropped
}

// BlockForLabel returns the catalog block a grid label refers to.
func (r LayoutResult) BlockForLabel(label int) (Block, bool) {
	if label < 1 || label > len(r.Genome) {
		return Block{}, false
	}
	id := r.Genome[label-1]
	if id < 0 || id >= len(r.Problem.Blocks) {
		return Block{}, false
	}
	return r.Problem.Blocks[id], true
}
