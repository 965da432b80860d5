package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllProfilesIncludesBuiltInAndCustom(t *testing.T) {
	CustomProfiles = nil

	builtInCount := len(GCodeProfiles)
	assert.Len(t, AllProfiles(), builtInCount)

	CustomProfiles = []GCodeProfile{{Name: "Custom1", Description: "Test custom"}}
	defer func() { CustomProfiles = nil }()

	assert.Len(t, AllProfiles(), builtInCount+1)
}

func TestGetProfileFindsCustom(t *testing.T) {
	CustomProfiles = []GCodeProfile{{Name: "MyCustom", RapidMove: "G0", FeedMove: "G1"}}
	defer func() { CustomProfiles = nil }()

	assert.Equal(t, "MyCustom", GetProfile("MyCustom").Name)
}

func TestGetProfileFallsBackToGeneric(t *testing.T) {
	assert.Equal(t, "Generic", GetProfile("NonExistent").Name)
}

func TestPlotterProfileIsPen(t *testing.T) {
	p := GetProfile("Plotter")
	assert.True(t, p.IsPen())
	assert.False(t, GetProfile("Grbl").IsPen())
}

func TestGenomeIsPermutation(t *testing.T) {
	tests := []struct {
		name   string
		genome Genome
		n      int
		want   bool
	}{
		{"identity", Genome{0, 1, 2}, 3, true},
		{"shuffled", Genome{2, 0, 1}, 3, true},
		{"duplicate", Genome{0, 0, 1}, 3, false},
		{"short", Genome{0, 1}, 3, false},
		{"out of range", Genome{0, 1, 3}, 3, false},
		{"empty", Genome{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.genome.IsPermutation(tt.n))
		})
	}
}

func TestGenomeCloneIsIndependent(t *testing.T) {
	g := Genome{0, 1, 2}
	c := g.Clone()
	c[0] = 2
	assert.Equal(t, 0, g[0])
}

func TestNewProblemAssignsIDs(t *testing.T) {
	p := NewProblem("dup", Space{Width: 4, Height: 4}, [][2]int{{2, 2}, {2, 2}, {4, 2}})
	require.Len(t, p.Blocks, 3)
	for i, b := range p.Blocks {
		assert.Equal(t, i, b.ID)
	}
	assert.Equal(t, 16, p.TotalBlockArea())
	require.NoError(t, p.Validate())
}

func TestProblemValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Problem
		code Code
	}{
		{"zero width space", NewProblem("a", Space{Width: 0, Height: 3}, [][2]int{{1, 1}}), ErrCodeInvalidDimension},
		{"negative block", NewProblem("b", Space{Width: 3, Height: 3}, [][2]int{{1, -1}}), ErrCodeInvalidDimension},
		{"no blocks", NewProblem("c", Space{Width: 3, Height: 3}, nil), ErrCodeInvalidInput},
		{"bad ids", Problem{Space: Space{Width: 3, Height: 3}, Blocks: []Block{{ID: 5, Width: 1, Height: 1}}}, ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			require.Error(t, err)
			assert.True(t, IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestRegionDimensions(t *testing.T) {
	r := Region{Label: 1, MinX: 2, MinY: 1, MaxX: 3, MaxY: 3}
	assert.Equal(t, 2, r.Width())
	assert.Equal(t, 3, r.Height())
	assert.Equal(t, 6, r.Area())
}

func TestLayoutResultErrAndDropped(t *testing.T) {
	p := NewProblem("p", Space{Width: 2, Height: 2}, [][2]int{{3, 3}, {1, 1}})
	res := LayoutResult{
		Problem: p,
		Genome:  Genome{1, 0},
		Regions: []Region{{Label: 1, MinX: 0, MinY: 0, MaxX: 0, MaxY: 0}},
		Outcome: OutcomeGenerationCap,
	}

	err := res.Err()
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeNonConvergence))

	dropped := res.Dropped()
	require.Len(t, dropped, 1)
	assert.Equal(t, 0, dropped[0].ID)

	b, ok := res.BlockForLabel(1)
	require.True(t, ok)
	assert.Equal(t, 1, b.ID)

	_, ok = res.BlockForLabel(3)
	assert.False(t, ok)

	res.Outcome = OutcomeConverged
	assert.NoError(t, res.Err())
}

func TestErrorWrapping(t *testing.T) {
	cause := NewError(ErrCodeOutOfBounds, "inner")
	err := WrapError(ErrCodeInvalidInput, cause, "outer %d", 1)
	assert.Equal(t, ErrCodeInvalidInput, ErrorCode(err))
	assert.Contains(t, err.Error(), "outer 1")
	assert.Contains(t, err.Error(), "inner")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Code(""), ErrorCode(nil))
}

func TestCustomProfileRegistry(t *testing.T) {
	CustomProfiles = nil
	defer func() { CustomProfiles = nil }()

	replaced, err := AddCustomProfile(GCodeProfile{Name: "Shop", RapidMove: "G0", FeedMove: "G1", IsBuiltIn: true})
	require.NoError(t, err)
	assert.False(t, replaced)
	require.Len(t, CustomProfiles, 1)
	assert.False(t, CustomProfiles[0].IsBuiltIn)

	replaced, err = AddCustomProfile(GCodeProfile{Name: "Shop", Description: "v2", RapidMove: "G0", FeedMove: "G1"})
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, "v2", GetProfile("Shop").Description)

	_, err = AddCustomProfile(GCodeProfile{Name: "Grbl"})
	assert.True(t, IsCode(err, ErrCodeInvalidConfig))
	_, err = AddCustomProfile(GCodeProfile{})
	assert.Error(t, err)

	assert.Error(t, RemoveCustomProfile("Grbl"))
	assert.Error(t, RemoveCustomProfile("Missing"))
	require.NoError(t, RemoveCustomProfile("Shop"))
	assert.Empty(t, CustomProfiles)
	assert.True(t, IsBuiltInProfile("Plotter"))
	assert.False(t, IsBuiltInProfile("Shop"))
}
