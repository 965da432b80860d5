package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceOutside(t *testing.T) {
	r := Rect{X0: 100, Y0: 100, X1: 150, Y1: 150}

	assert.InDelta(t, 20.0, distanceOutside(80, 125, r), 0.001)
	assert.InDelta(t, 20.0, distanceOutside(125, 80, r), 0.001)
	assert.InDelta(t, 28.284, distanceOutside(80, 80, r), 0.01)
	assert.InDelta(t, 0.0, distanceOutside(125, 125, r), 0.001)
	assert.InDelta(t, 0.0, distanceOutside(100, 125, r), 0.001)
}

func TestCheckBounds(t *testing.T) {
	moves := []GCodeMove{
		{Type: MoveRapid, ToX: -50, ToY: -50},
		{Type: MoveFeed, Drawing: true, FromX: 0, FromY: 0, ToX: 16, ToY: 0},
		{Type: MoveFeed, Drawing: true, FromX: 16, FromY: 0, ToX: 20, ToY: 0},
	}

	violations := CheckBounds(moves, Rect{X1: 16, Y1: 16}, 0.01)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].MoveIndex)
	assert.InDelta(t, 4.0, violations[0].Distance, 0.001)

	warnings := FormatBoundsWarnings(violations)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Move 3")
}

func TestContoursIgnoresOpenPaths(t *testing.T) {
	moves := []GCodeMove{
		{Type: MoveFeed, Drawing: true, FromX: 0, FromY: 0, ToX: 5, ToY: 0},
		{Type: MoveFeed, Drawing: true, FromX: 5, FromY: 0, ToX: 5, ToY: 5},
		{Type: MoveRapid, FromX: 5, FromY: 5, ToX: 0, ToY: 0},
	}
	assert.Empty(t, Contours(moves))
}

func TestRectSize(t *testing.T) {
	r := Rect{X0: 4, Y0: 8, X1: 12, Y1: 10}
	assert.Equal(t, 8.0, r.Width())
	assert.Equal(t, 2.0, r.Height())
}
