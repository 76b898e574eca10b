package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/darien0/fish/internal/dynamo"
	"github.com/darien0/fish/internal/metrics"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type Run struct {
	ID        string
	Problem   string
	CreatedAt time.Time
	Count     int
}

// RegisterRun records a run. Registering the same id twice is a no-op.
func (s *Store) RegisterRun(ctx context.Context, id, problem string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO runs (id, problem, created_at) VALUES (?, ?, ?)`,
		id, problem, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("register run %s: %w", id, err)
	}
	return nil
}

// Append adds m to the log of runID. The iteration must exceed every
// iteration already stored for the run.
func (s *Store) Append(ctx context.Context, runID string, m metrics.Measurement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(iteration) FROM measurements WHERE run_id = ?`, runID).Scan(&last); err != nil {
		return fmt.Errorf("query last iteration: %w", err)
	}
	if last.Valid && int64(m.Iteration) <= last.Int64 {
		return dynamo.Configurationf("run %s: measurement iteration %d does not follow %d", runID, m.Iteration, last.Int64)
	}

	cons, err := json.Marshal(m.ConservedAvg)
	if err != nil {
		return err
	}
	prim, err := json.Marshal(m.PrimitiveAvg)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO measurements
			(run_id, iteration, time, kinetic, density_min, density_max, conserved_avg, primitive_avg, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, m.Iteration, m.Time, m.Kinetic, m.DensityMin, m.DensityMax, string(cons), string(prim), m.Message,
	); err != nil {
		return fmt.Errorf("insert measurement %d: %w", m.Iteration, err)
	}
	return tx.Commit()
}

// Measurements returns the log of runID in iteration order.
func (s *Store) Measurements(ctx context.Context, runID string) ([]metrics.Measurement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT iteration, time, kinetic, density_min, density_max, conserved_avg, primitive_avg, message
		FROM measurements WHERE run_id = ? ORDER BY iteration`, runID)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	out := make([]metrics.Measurement, 0)
	for rows.Next() {
		var m metrics.Measurement
		var cons, prim string
		if err := rows.Scan(&m.Iteration, &m.Time, &m.Kinetic, &m.DensityMin, &m.DensityMax, &cons, &prim, &m.Message); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		if err := json.Unmarshal([]byte(cons), &m.ConservedAvg); err != nil {
			return nil, fmt.Errorf("decode conserved_avg: %w", err)
		}
		if err := json.Unmarshal([]byte(prim), &m.PrimitiveAvg); err != nil {
			return nil, fmt.Errorf("decode primitive_avg: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Runs lists the registered runs with their measurement counts, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.problem, r.created_at, COUNT(m.iteration)
		FROM runs r LEFT JOIN measurements m ON m.run_id = r.id
		GROUP BY r.id ORDER BY r.created_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Problem, &created, &r.Count); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Recorder appends every observed measurement to a run. It satisfies the
// simulation loop's observer interface; the first failure is kept in Err
// and later measurements are dropped.
type Recorder struct {
	ctx   context.Context
	store *Store
	runID string
	err   error
}

func (s *Store) Recorder(ctx context.Context, runID string) *Recorder {
	return &Recorder{ctx: ctx, store: s, runID: runID}
}

func (r *Recorder) OnStep(_ dynamo.Status, m metrics.Measurement) {
	if r.err != nil {
		return
	}
	r.err = r.store.Append(r.ctx, r.runID, m)
}

func (r *Recorder) Err() error { return r.err }
