package ui

import (
	"testing"

	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

func TestLayoutFromRun(t *testing.T) {
	run := project.RunRecord{
		Problem:     "shelf",
		Width:       4,
		Height:      2,
		Generations: 3,
		Outcome:     model.OutcomeConverged,
		Seed:        7,
		Grid: [][]int{
			{1, 1, 2, 0},
			{1, 1, 2, 0},
		},
	}

	res, err := layoutFromRun(run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Problem.Name != "shelf" || res.Problem.Space.Width != 4 || res.Problem.Space.Height != 2 {
		t.Errorf("unexpected problem %+v", res.Problem)
	}
	if len(res.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(res.Regions))
	}
	if res.Placed != 2 {
		t.Errorf("expected 2 placed, got %d", res.Placed)
	}
	if res.Efficiency != 0.75 {
		t.Errorf("expected efficiency 0.75, got %v", res.Efficiency)
	}
	if res.Generations != 3 || res.Seed != 7 || !res.Converged() {
		t.Errorf("run metadata not carried over: %+v", res)
	}

	blk, ok := res.BlockForLabel(1)
	if !ok || blk.Width != 2 || blk.Height != 2 {
		t.Errorf("label 1 should map to a 2x2 block, got %+v (%v)", blk, ok)
	}
	blk, ok = res.BlockForLabel(2)
	if !ok || blk.Width != 1 || blk.Height != 2 {
		t.Errorf("label 2 should map to a 1x2 block, got %+v (%v)", blk, ok)
	}
}

func TestLayoutFromRunWithoutGrid(t *testing.T) {
	if _, err := layoutFromRun(project.RunRecord{Problem: "empty"}); err == nil {
		t.Error("expected an error for a run without a stored grid")
	}
}
