// Package store keeps a SQLite history of benchmark runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jannismilz/primes/internal/primes"
)

// ErrNoRuns is returned by Stats when nothing has been recorded yet.
var ErrNoRuns = errors.New("no runs recorded")

// Run is one recorded benchmark run.
type Run struct {
	ID        int64
	Limit     int
	Workers   int
	ChunkSize int
	Count     int
	Hash      string
	Elapsed   time.Duration
	CPU       string
	CreatedAt time.Time
	Chunks    []primes.ChunkResult
}

// Stats summarizes the recorded runs.
type Stats struct {
	Runs        int
	BestElapsed time.Duration
	AvgElapsed  time.Duration
	// Mismatches is the number of limits for which runs reported different counts.
	Mismatches int
}

// Store is a handle on the run history database.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating the schema if it is missing.
func Open(path string) (*Store, error) {
	_, err := os.Stat(path)
	dbExists := !os.IsNotExist(err)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if !dbExists {
		log.Printf("Creating new database %s...", path)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		limit_n INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		chunk_size INTEGER NOT NULL,
		count INTEGER NOT NULL,
		hash TEXT NOT NULL,
		elapsed_ns INTEGER NOT NULL,
		cpu TEXT,
		created_at INTEGER NOT NULL,
		chunks BLOB
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_limit ON runs(limit_n)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	_, err = db.Exec("PRAGMA synchronous=NORMAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts run and returns its id. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	blob, err := cbor.Marshal(run.Chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to encode chunks: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(limit_n, workers, chunk_size, count, hash, elapsed_ns, cpu, created_at, chunks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Limit, run.Workers, run.ChunkSize, run.Count, run.Hash,
		int64(run.Elapsed), run.CPU, run.CreatedAt.UnixNano(), blob)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run for limit %d: %w", run.Limit, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// Latest returns up to n runs, newest first.
func (s *Store) Latest(ctx context.Context, n int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, limit_n, workers, chunk_size, count, hash, elapsed_ns, cpu, created_at, chunks
		FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			elapsed   int64
			createdAt int64
			cpu       sql.NullString
			blob      []byte
		)
		err := rows.Scan(&run.ID, &run.Limit, &run.Workers, &run.ChunkSize, &run.Count,
			&run.Hash, &elapsed, &cpu, &createdAt, &blob)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Elapsed = time.Duration(elapsed)
		run.CPU = cpu.String
		run.CreatedAt = time.Unix(0, createdAt)
		if len(blob) > 0 {
			if err := cbor.Unmarshal(blob, &run.Chunks); err != nil {
				return nil, fmt.Errorf("failed to decode chunks of run %d: %w", run.ID, err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// Stats returns ErrNoRuns if the database is empty.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		best  sql.NullInt64
		avg   sql.NullFloat64
	)

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), MIN(elapsed_ns), AVG(elapsed_ns) FROM runs").
		Scan(&stats.Runs, &best, &avg)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read run stats: %w", err)
	}
	if stats.Runs == 0 {
		return Stats{}, ErrNoRuns
	}
	stats.BestElapsed = time.Duration(best.Int64)
	stats.AvgElapsed = time.Duration(avg.Float64)

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM (
		SELECT limit_n FROM runs GROUP BY limit_n HAVING COUNT(DISTINCT count) > 1
	)`).Scan(&stats.Mismatches)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count mismatches: %w", err)
	}

	return stats, nil
}
