package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ytget/yt-mp3/internal/model"
)

// DefaultListLimit caps List when no limit is given
const DefaultListLimit = 50

// Store persists finished runs in SQLite
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts or replaces the row for run.
func (s *Store) Record(ctx context.Context, run *model.Run) error {
	if run == nil || run.ID == "" {
		return errors.New("record run: missing id")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (
            id, url, title, state, bitrate_kbps, temp_path, output_path,
            last_error, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.URL,
		nullableString(run.Title),
		string(run.State),
		run.BitrateKbps,
		nullableString(run.TempPath),
		nullableString(run.OutputPath),
		nullableString(run.LastError),
		formatTime(run.StartedAt),
		nullableTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. limit <= 0 means DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]*model.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, state, bitrate_kbps, temp_path, output_path,
                last_error, started_at, finished_at
           FROM runs
          ORDER BY started_at DESC, id DESC
          LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (*model.Run, error) {
	var (
		run                                    model.Run
		state, startedAt                       string
		title, tempPath, outputPath, lastError sql.NullString
		finishedAt                             sql.NullString
	)
	if err := rows.Scan(
		&run.ID, &run.URL, &title, &state, &run.BitrateKbps, &tempPath,
		&outputPath, &lastError, &startedAt, &finishedAt,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.State = model.State(state)
	run.Title = title.String
	run.TempPath = tempPath.String
	run.OutputPath = outputPath.String
	run.LastError = lastError.String
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
