package engine

import "github.com/piwi3910/BlockPack/internal/model"

// Efficiency returns the fraction of grid cells that are occupied, or 0 for a
// zero-area grid.
func Efficiency(grid *model.Grid) float64 {
	if grid == nil || grid.Area() == 0 {
		return 0
	}
	return float64(grid.Area()-grid.EmptyCount()) / float64(grid.Area())
}
