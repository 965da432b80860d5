package project

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps run history for the life of the process.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	next        int
	runs        map[uuid.UUID]RunRecord
	seq         map[uuid.UUID]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.next = 0
	s.runs = make(map[uuid.UUID]RunRecord)
	s.seq = make(map[uuid.UUID]int)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	if err := validateRun(run); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	if _, ok := s.seq[run.ID]; !ok {
		s.seq[run.ID] = s.next
		s.next++
	}
	run.Grid = cloneRows(run.Grid)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id uuid.UUID) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if ok {
		run.Grid = cloneRows(run.Grid)
	}
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, problem string, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []RunRecord
	var seq []int
	for id, run := range s.runs {
		if problem != "" && run.Problem != problem {
			continue
		}
		run.Grid = cloneRows(run.Grid)
		runs = append(runs, run)
		seq = append(seq, s.seq[id])
	}
	sortNewestFirst(runs, seq)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) BestRun(ctx context.Context, problem string) (RunRecord, bool, error) {
	runs, err := s.ListRuns(ctx, problem, 0)
	if err != nil || len(runs) == 0 {
		return RunRecord{}, false, err
	}
	// Newest first, so scanning backwards keeps the earliest on ties.
	best := runs[len(runs)-1]
	for i := len(runs) - 2; i >= 0; i-- {
		if runs[i].Efficiency > best.Efficiency {
			best = runs[i]
		}
	}
	return best, true, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return false, nil
	}
	delete(s.runs, id)
	delete(s.seq, id)
	return true, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneRows(rows [][]int) [][]int {
	if rows == nil {
		return nil
	}
	out := make([][]int, len(rows))
	for i, r := range rows {
		out[i] = append([]int(nil), r...)
	}
	return out
}
