// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuirsvp/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps stored timestamps fixed-width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for reading history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			source TEXT NOT NULL,
			words_total INTEGER NOT NULL,
			words_read INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			completed INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_readings_ended_at ON readings(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertReading stores a finished or interrupted reading.
func (s *Store) InsertReading(ctx context.Context, stats model.ReadingStats) (int64, error) {
	completed := 0
	if stats.Completed {
		completed = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (started_at, ended_at, source, words_total, words_read, wpm, duration_ms, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.UTC().Format(timeLayout),
		stats.EndedAt.UTC().Format(timeLayout),
		stats.Source,
		stats.WordsTotal,
		stats.WordsRead,
		stats.WPM,
		stats.DurationMs,
		completed,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListReadings returns readings filtered by stats config, oldest first.
func (s *Store) ListReadings(ctx context.Context, cfg model.StatsConfig) ([]model.ReadingAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, source, words_total, words_read, wpm, duration_ms, completed
		FROM readings
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var readings []model.ReadingAggregate
	for rows.Next() {
		var agg model.ReadingAggregate
		var endedAt string
		var completed int
		if err := rows.Scan(&agg.ReadingID, &endedAt, &agg.Source, &agg.WordsTotal, &agg.WordsRead, &agg.WPM, &agg.DurationMs, &completed); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Completed = completed != 0
		readings = append(readings, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(readings) > cfg.Last {
		readings = readings[len(readings)-cfg.Last:]
	}
	return readings, nil
}
