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
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Connection-scoped pragmas below must apply to every query.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
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

// Path returns the database file location.
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

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, source_file, output_directory, base_name, aspect, failure_policy,
            status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.SourceFile,
		run.OutputDirectory,
		run.BaseName,
		run.Aspect,
		run.FailurePolicy,
		StatusRunning,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordPreset stores the outcome of one preset.
func (s *Store) RecordPreset(ctx context.Context, p Preset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_presets (
            run_id, tier, kbps, status, failed_step, exit_code, duration_ms,
            playlist_path, segments, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID,
		p.Tier,
		p.Kbps,
		p.Status,
		nullableString(p.FailedStep),
		nullableExitCode(p.Status, p.ExitCode),
		p.Duration.Milliseconds(),
		nullableString(p.PlaylistPath),
		p.Segments,
		nullableString(p.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("insert preset %s: %w", p.Tier, err)
	}
	return nil
}

// FinishRun stores the final status and counters of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, variant_path = ?, succeeded = ?, failed = ?,
            finished_at = ?, error_message = ?
        WHERE id = ?`,
		run.Status,
		nullableString(run.VariantPath),
		run.Succeeded,
		run.Failed,
		formatTime(run.FinishedAt),
		nullableString(run.ErrorMessage),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, run.ID)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// Presets returns the preset outcomes of a run in insertion order.
func (s *Store) Presets(ctx context.Context, runID string) ([]Preset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, tier, kbps, status, failed_step, exit_code, duration_ms,
            playlist_path, segments, error_message
        FROM run_presets WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		var (
			p          Preset
			failedStep sql.NullString
			exitCode   sql.NullInt64
			durationMS int64
			playlist   sql.NullString
			errMsg     sql.NullString
		)
		if err := rows.Scan(&p.RunID, &p.Tier, &p.Kbps, &p.Status, &failedStep, &exitCode,
			&durationMS, &playlist, &p.Segments, &errMsg); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		p.FailedStep = failedStep.String
		p.ExitCode = int(exitCode.Int64)
		p.Duration = time.Duration(durationMS) * time.Millisecond
		p.PlaylistPath = playlist.String
		p.ErrorMessage = errMsg.String
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

const runColumns = `id, source_file, output_directory, base_name, aspect, failure_policy,
    status, variant_path, succeeded, failed, started_at, finished_at, error_message`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		variant  sql.NullString
		started  string
		finished sql.NullString
		errMsg   sql.NullString
	)
	if err := row.Scan(&run.ID, &run.SourceFile, &run.OutputDirectory, &run.BaseName, &run.Aspect,
		&run.FailurePolicy, &run.Status, &variant, &run.Succeeded, &run.Failed, &started,
		&finished, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.VariantPath = variant.String
	run.ErrorMessage = errMsg.String
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableExitCode(status string, code int) any {
	if status == PresetSucceeded {
		return nil
	}
	return code
}
