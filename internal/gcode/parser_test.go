package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BlockPack/internal/model"
)

var (
	routerProfile = model.GetProfile("Generic")
	penProfile    = model.GetProfile("Plotter")
)

func TestParseGCode_IgnoresCommentsAndNonMotion(t *testing.T) {
	code := "; header\n(paren comment)\nG90\nG21\nM3 S18000\nG4 P0.5\n"
	assert.Empty(t, ParseGCode(code, routerProfile))
}

func TestParseGCode_Classification(t *testing.T) {
	code := `G0 X10 Y20
G0 Z5
G1 Z-6 F500
G1 X100 Y20 F1500 ; cut
G1 X100 Y80
G0 Z5
`
	moves := ParseGCode(code, routerProfile)
	require.Len(t, moves, 6)

	want := []MoveType{MoveRapid, MoveRetract, MovePlunge, MoveFeed, MoveFeed, MoveRetract}
	for i, m := range moves {
		assert.Equal(t, want[i], m.Type, "move %d", i)
	}

	assert.Equal(t, 10.0, moves[2].FromX)
	assert.Equal(t, 20.0, moves[2].FromY)
	assert.Equal(t, 1500.0, moves[4].FeedRate, "feed rate is sticky")
	assert.False(t, moves[2].Drawing, "plunge starts above the work")
	assert.True(t, moves[3].Drawing)
	assert.True(t, moves[4].Drawing)
	assert.False(t, moves[5].Drawing)
}

func TestParseGCode_NegativeCoordinates(t *testing.T) {
	moves := ParseGCode("G0 X-3.5 Y-3\n", routerProfile)
	require.Len(t, moves, 1)
	assert.Equal(t, -3.5, moves[0].ToX)
	assert.Equal(t, -3.0, moves[0].ToY)
}

func TestParseGCode_PenState(t *testing.T) {
	code := `G1 F1000
M03 S250
G0 X4 Y4
M03 S90
G1 X8 Y4 ; Block 1
M03 S250
G1 X0 Y0
`
	moves := ParseGCode(code, penProfile)
	require.Len(t, moves, 4)
	assert.False(t, moves[0].Drawing)
	assert.False(t, moves[1].Drawing)
	assert.True(t, moves[2].Drawing)
	assert.False(t, moves[3].Drawing, "pen lifted before the last move")
}

func TestClassifyMove(t *testing.T) {
	tests := []struct {
		name    string
		isRapid bool
		fromZ   float64
		toZ     float64
		fromX   float64
		toX     float64
		want    MoveType
	}{
		{"rapid XY", true, 5, 5, 0, 10, MoveRapid},
		{"rapid retract", true, -6, 5, 10, 10, MoveRetract},
		{"feed XY", false, -6, -6, 0, 100, MoveFeed},
		{"plunge", false, 5, -6, 10, 10, MovePlunge},
		{"retract feed", false, -6, 0, 10, 10, MoveRetract},
		{"feed with slight Z", false, -6, -6.0001, 0, 100, MoveFeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyMove(tt.isRapid, tt.fromZ, tt.toZ, tt.fromX, 0, tt.toX, 0)
			assert.Equal(t, tt.want, got)
		})
	}
}
