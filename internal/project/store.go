package project

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/BlockPack/internal/model"
)

// RunRecord is one finished search kept in the run history.
type RunRecord struct {
	ID          uuid.UUID     `json:"id"`
	Problem     string        `json:"problem"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	BlockCount  int           `json:"block_count"`
	Placed      int           `json:"placed"`
	Efficiency  float64       `json:"efficiency"`
	Generations int           `json:"generations"`
	Outcome     model.Outcome `json:"outcome"`
	Seed        int64         `json:"seed"`
	Elapsed     time.Duration `json:"elapsed"`
	CreatedAt   time.Time     `json:"created_at"`
	Grid        [][]int       `json:"grid,omitempty"`
}

// NewRunRecord captures a layout result under a fresh ID.
func NewRunRecord(res model.LayoutResult) RunRecord {
	r := RunRecord{
		ID:          uuid.New(),
		Problem:     res.Problem.Name,
		Width:       res.Problem.Space.Width,
		Height:      res.Problem.Space.Height,
		BlockCount:  len(res.Problem.Blocks),
		Placed:      res.Placed,
		Efficiency:  res.Efficiency,
		Generations: res.Generations,
		Outcome:     res.Outcome,
		Seed:        res.Seed,
		Elapsed:     res.Elapsed,
		CreatedAt:   time.Now().UTC(),
	}
	if res.Grid != nil {
		r.Grid = res.Grid.Rows()
	}
	return r
}

// Layout rebuilds the stored grid.
func (r RunRecord) Layout() (*model.Grid, error) {
	if len(r.Grid) == 0 {
		return nil, model.NewError(model.ErrCodeInvalidInput, "run %s has no stored grid", r.ID)
	}
	return model.GridFromRows(r.Grid)
}

// Store persists run history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id uuid.UUID) (RunRecord, bool, error)
	// ListRuns returns runs newest first. An empty problem lists every run;
	// limit <= 0 means no limit.
	ListRuns(ctx context.Context, problem string, limit int) ([]RunRecord, error)
	// BestRun returns the most efficient run of a problem, the earliest on ties.
	BestRun(ctx context.Context, problem string) (RunRecord, bool, error)
	DeleteRun(ctx context.Context, id uuid.UUID) (bool, error)
	Close() error
}

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// NewStore returns an uninitialized store of the given kind.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if sqlitePath == "" {
			sqlitePath = DefaultHistoryPath()
		}
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, model.NewError(model.ErrCodeInvalidConfig, "unsupported history backend: %s", kind)
	}
}

// OpenStore creates and initializes a store.
func OpenStore(ctx context.Context, kind, sqlitePath string) (Store, error) {
	store, err := NewStore(kind, sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init %s store: %w", kind, err)
	}
	return store, nil
}

func validateRun(run RunRecord) error {
	if run.ID == uuid.Nil {
		return model.NewError(model.ErrCodeInvalidInput, "run has no id")
	}
	if run.Problem == "" {
		return model.NewError(model.ErrCodeInvalidInput, "run %s has no problem name", run.ID)
	}
	return nil
}

// sortNewestFirst orders runs by CreatedAt descending. seq breaks ties, the
// larger sequence number coming first.
func sortNewestFirst(runs []RunRecord, seq []int) {
	idx := make([]int, len(runs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := runs[idx[a]], runs[idx[b]]
		if !ra.CreatedAt.Equal(rb.CreatedAt) {
			return ra.CreatedAt.After(rb.CreatedAt)
		}
		return seq[idx[a]] > seq[idx[b]]
	})
	sorted := make([]RunRecord, len(runs))
	for i, j := range idx {
		sorted[i] = runs[j]
	}
	copy(runs, sorted)
}
