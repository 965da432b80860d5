package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/piwi3910/BlockPack/internal/model"
)

// SQLiteStore keeps run history in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	if err := validateRun(run); err != nil {
		return err
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	grid, err := json.Marshal(run.Grid)
	if err != nil {
		return fmt.Errorf("encode grid for run %s: %w", run.ID, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, problem, width, height, block_count, placed, efficiency,
			generations, outcome, seed, elapsed_ns, created_at, grid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			problem = excluded.problem,
			width = excluded.width,
			height = excluded.height,
			block_count = excluded.block_count,
			placed = excluded.placed,
			efficiency = excluded.efficiency,
			generations = excluded.generations,
			outcome = excluded.outcome,
			seed = excluded.seed,
			elapsed_ns = excluded.elapsed_ns,
			created_at = excluded.created_at,
			grid = excluded.grid
	`, run.ID.String(), run.Problem, run.Width, run.Height, run.BlockCount, run.Placed, run.Efficiency,
		run.Generations, string(run.Outcome), run.Seed, int64(run.Elapsed), run.CreatedAt.UnixNano(), grid)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id.String())
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, problem string, limit int) ([]RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE ? = '' OR problem = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, problem, problem, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) BestRun(ctx context.Context, problem string) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE ? = '' OR problem = ?
		ORDER BY efficiency DESC, created_at ASC, rowid ASC
		LIMIT 1
	`, problem, problem)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}
	return run, true, nil
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

const runColumns = `id, problem, width, height, block_count, placed, efficiency,
	generations, outcome, seed, elapsed_ns, created_at, grid`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		run       RunRecord
		id        string
		outcome   string
		elapsed   int64
		createdAt int64
		grid      []byte
	)
	err := row.Scan(&id, &run.Problem, &run.Width, &run.Height, &run.BlockCount, &run.Placed,
		&run.Efficiency, &run.Generations, &outcome, &run.Seed, &elapsed, &createdAt, &grid)
	if err != nil {
		return RunRecord{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("decode run id %q: %w", id, err)
	}
	run.ID = parsed
	run.Outcome = model.Outcome(outcome)
	run.Elapsed = time.Duration(elapsed)
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	if len(grid) > 0 {
		if err := json.Unmarshal(grid, &run.Grid); err != nil {
			return RunRecord{}, fmt.Errorf("decode grid for run %s: %w", id, err)
		}
	}
	return run, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			problem TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			block_count INTEGER NOT NULL,
			placed INTEGER NOT NULL,
			efficiency REAL NOT NULL,
			generations INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			seed INTEGER NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			grid BLOB
		);
		CREATE INDEX IF NOT EXISTS runs_problem_created ON runs (problem, created_at);
	`)
	return err
}
