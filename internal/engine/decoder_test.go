package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BlockPack/internal/model"
)

func blocksOf(sizes ...[2]int) []model.Block {
	blocks := make([]model.Block, len(sizes))
	for i, s := range sizes {
		blocks[i] = model.Block{ID: i, Width: s[0], Height: s[1]}
	}
	return blocks
}

func TestDecodeFillsSquareExactly(t *testing.T) {
	grid, placed, err := Decode(blocksOf([2]int{4, 2}, [2]int{2, 2}, [2]int{2, 2}), 4, 4)
	require.NoError(t, err)

	assert.Equal(t, 3, placed)
	assert.Equal(t, [][]int{
		{1, 1, 1, 1},
		{1, 1, 1, 1},
		{2, 2, 3, 3},
		{2, 2, 3, 3},
	}, grid.Rows())
	assert.Equal(t, 1.0, Efficiency(grid))
}

func TestDecodeOversizedBlockLeavesGridEmpty(t *testing.T) {
	grid, placed, err := Decode(blocksOf([2]int{3, 3}), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, 0, placed)
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, grid.Rows())
	assert.Equal(t, 0.0, Efficiency(grid))
}

func TestDecodeScansRowsBeforeColumns(t *testing.T) {
	grid, _, err := Decode(blocksOf([2]int{1, 2}, [2]int{1, 1}, [2]int{1, 1}), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, [][]int{
		{1, 2},
		{1, 3},
	}, grid.Rows())
}

func TestDecodeDropsBlocksThatDoNotFit(t *testing.T) {
	grid, placed, err := Decode(blocksOf([2]int{2, 2}, [2]int{2, 2}, [2]int{1, 2}), 3, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, placed)
	assert.Equal(t, [][]int{
		{1, 1, 3},
		{1, 1, 3},
	}, grid.Rows())
}

func TestDecodeRejectsInvalidDimensions(t *testing.T) {
	_, _, err := Decode(blocksOf([2]int{1, 1}), 0, 3)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidDimension))

	_, _, err = Decode(blocksOf([2]int{0, 1}), 3, 3)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidDimension))
}

func TestDecodeIsDeterministic(t *testing.T) {
	blocks := blocksOf([2]int{3, 1}, [2]int{1, 3}, [2]int{2, 2}, [2]int{1, 1}, [2]int{4, 1})
	a, _, err := Decode(blocks, 5, 4)
	require.NoError(t, err)
	b, _, err := Decode(blocks, 5, 4)
	require.NoError(t, err)
	assert.Equal(t, a.Rows(), b.Rows())
}

// Every placed block must cover exactly its own w×h rectangle inside the grid.
func TestDecodeNeverOverlaps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(12)
		sizes := make([][2]int, n)
		for i := range sizes {
			sizes[i] = [2]int{1 + rng.Intn(5), 1 + rng.Intn(5)}
		}
		blocks := blocksOf(sizes...)
		w, h := 1+rng.Intn(10), 1+rng.Intn(10)

		grid, placed, err := Decode(blocks, w, h)
		require.NoError(t, err)

		counts := map[int]int{}
		for _, row := range grid.Rows() {
			for _, c := range row {
				if c != model.Empty {
					counts[c]++
				}
			}
		}
		assert.Len(t, counts, placed)

		for _, r := range ExtractRegions(grid) {
			b := blocks[r.Label-1]
			assert.Equal(t, b.Width, r.Width(), "trial %d label %d", trial, r.Label)
			assert.Equal(t, b.Height, r.Height(), "trial %d label %d", trial, r.Label)
			assert.Equal(t, b.Area(), counts[r.Label], "trial %d label %d", trial, r.Label)
		}

		eff := Efficiency(grid)
		assert.GreaterOrEqual(t, eff, 0.0)
		assert.LessOrEqual(t, eff, 1.0)
	}
}

func TestDecodeGenomeResolvesIdentity(t *testing.T) {
	catalog := blocksOf([2]int{2, 2}, [2]int{4, 2}, [2]int{2, 2})
	space := model.Space{Width: 4, Height: 4}

	grid, placed, err := DecodeGenome(catalog, model.Genome{1, 0, 2}, space)
	require.NoError(t, err)
	assert.Equal(t, 3, placed)
	assert.Equal(t, 1, grid.At(3, 0), "rank 1 is catalog block 1 (4x2)")

	_, _, err = DecodeGenome(catalog, model.Genome{0, 0, 2}, space)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidInput))
}

func TestEfficiency(t *testing.T) {
	empty, err := model.NewGrid(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, Efficiency(empty))
	assert.Equal(t, 0.0, Efficiency(nil))

	half, err := model.GridFromRows([][]int{{1, 0}, {1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 0.5, Efficiency(half))
}
