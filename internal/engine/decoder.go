package engine

import (
	"github.com/piwi3910/BlockPack/internal/model"
)

// Decode places blocks in order using bottom-left-fill on a fresh width×height
// grid. Each block takes the first free anchor found scanning rows top to
// bottom and columns left to right; a block that fits nowhere is dropped.
// Cells of the i-th block (0-based) are labelled i+1. The second return value
// is the number of blocks placed.
func Decode(blocks []model.Block, width, height int) (*model.Grid, int, error) {
	if width <= 0 || height <= 0 {
		return nil, 0, model.NewError(model.ErrCodeInvalidDimension, "space %dx%d must have positive dimensions", width, height)
	}
	grid, err := model.NewGrid(width, height)
	if err != nil {
		return nil, 0, err
	}

	placed := 0
	for i, b := range blocks {
		if b.Width <= 0 || b.Height <= 0 {
			return nil, 0, model.NewError(model.ErrCodeInvalidDimension, "block %d is %dx%d", b.ID, b.Width, b.Height)
		}
		x, y, ok := findAnchor(grid, b.Width, b.Height)
		if !ok {
			continue
		}
		if err := grid.Fill(x, y, b.Width, b.Height, i+1); err != nil {
			return nil, 0, model.WrapError(model.ErrCodeOutOfBounds, err, "placing block %d", b.ID)
		}
		placed++
	}
	return grid, placed, nil
}

// findAnchor returns the first (x, y) in row-major order where a w×h block fits.
func findAnchor(grid *model.Grid, w, h int) (int, int, bool) {
	if w > grid.Width() || h > grid.Height() {
		return 0, 0, false
	}
	for y := 0; y+h <= grid.Height(); y++ {
		for x := 0; x+w <= grid.Width(); x++ {
			if grid.CanPlace(x, y, w, h) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// DecodeGenome resolves the genome's catalog IDs against catalog and decodes
// the resulting order into space.
func DecodeGenome(catalog []model.Block, genome model.Genome, space model.Space) (*model.Grid, int, error) {
	if !genome.IsPermutation(len(catalog)) {
		return nil, 0, model.NewError(model.ErrCodeInvalidInput, "genome is not a permutation of %d blocks", len(catalog))
	}
	ordered := make([]model.Block, len(genome))
	for i, id := range genome {
		ordered[i] = catalog[id]
	}
	return Decode(ordered, space.Width, space.Height)
}
