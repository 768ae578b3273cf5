package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pagecraft/docprep/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "docprep.db"

var (
	// ErrRunNotFound is returned when no run matches an ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when an ID prefix matches several runs.
	ErrAmbiguousRunID = errors.New("ambiguous run id")
)

// Kind is the command that produced a run.
type Kind string

// Run kinds.
const (
	KindPreprocess Kind = "preprocess"
	KindExtract    Kind = "extract"
)

// Run is one recorded invocation.
type Run struct {
	ID         string
	Kind       Kind
	InputDir   string
	StartedAt  time.Time
	FinishedAt time.Time
	TotalPages int
	Fallbacks  int

	// Pages holds the per-page diagnostics. It is only loaded by GetRun.
	Pages []model.PageResult

	// Result is the JSON result printed by the run. It is only loaded by GetRun.
	Result json.RawMessage
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewRunID returns a new random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// RunDB provides SQLite-based storage for run history.
type RunDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the run database in dbDir.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

func (rdb *RunDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		input_dir TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		fallbacks INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_dir ON runs(input_dir);

	-- One row per page of a run
	CREATE TABLE IF NOT EXISTS run_pages (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		page INTEGER NOT NULL,
		source TEXT NOT NULL,
		fingerprint TEXT,
		output_file TEXT,
		output_bytes INTEGER DEFAULT 0,
		rotated INTEGER DEFAULT 0,
		unwarped INTEGER DEFAULT 0,
		fallback INTEGER DEFAULT 0,
		error TEXT,
		text_chars INTEGER DEFAULT 0,
		PRIMARY KEY (run_id, page)
	);

	CREATE INDEX IF NOT EXISTS idx_run_pages_fingerprint ON run_pages(fingerprint);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a run and its pages in one transaction.
func (rdb *RunDB) SaveRun(ctx context.Context, run *Run) (err error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // Original error is more useful
		}
	}()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, kind, input_dir, started_at, finished_at, total_pages, fallbacks, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		string(run.Kind),
		run.InputDir,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		run.TotalPages,
		run.Fallbacks,
		string(run.Result),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_pages (run_id, page, source, fingerprint, output_file, output_bytes,
		rotated, unwarped, fallback, error, text_chars)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range run.Pages {
		_, err = stmt.ExecContext(ctx,
			run.ID,
			p.Page,
			p.Source,
			p.Fingerprint,
			p.File,
			p.Bytes,
			p.Rotated,
			p.Unwarped,
			p.Fallback,
			p.Error,
			len([]rune(p.Text)),
		)
		if err != nil {
			return fmt.Errorf("failed to save page %d: %w", p.Page, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, without pages or
// result. A non-positive limit returns every run.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, kind, input_dir, started_at, finished_at, total_pages, fallbacks
	FROM runs
	ORDER BY started_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			kind              string
			started, finished string
		)
		if err := rows.Scan(&run.ID, &kind, &run.InputDir, &started, &finished, &run.TotalPages, &run.Fallbacks); err != nil {
			return nil, err
		}
		run.Kind = Kind(kind)
		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run with its pages and result. id may be a unique prefix
// of the full run ID.
func (rdb *RunDB) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}

	rows, err := rdb.db.QueryContext(ctx, `
	SELECT id, kind, input_dir, started_at, finished_at, total_pages, fallbacks, result_json
	FROM runs
	WHERE substr(id, 1, length(?)) = ?
	LIMIT 2
	`, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var matches []Run
	for rows.Next() {
		var (
			run               Run
			kind              string
			started, finished string
			result            string
		)
		if err := rows.Scan(&run.ID, &kind, &run.InputDir, &started, &finished, &run.TotalPages, &run.Fallbacks, &result); err != nil {
			_ = rows.Close()
			return nil, err
		}
		run.Kind = Kind(kind)
		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		run.Result = json.RawMessage(result)
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, id)
	}

	run := &matches[0]
	run.Pages, err = rdb.runPages(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (rdb *RunDB) runPages(ctx context.Context, runID string) ([]model.PageResult, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT page, source, fingerprint, output_file, output_bytes, rotated, unwarped, fallback, error
	FROM run_pages
	WHERE run_id = ?
	ORDER BY page
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	var results []model.PageResult
	for rows.Next() {
		var (
			p                 model.PageResult
			fingerprint, file sql.NullString
			errMsg            sql.NullString
		)
		if err := rows.Scan(&p.Page, &p.Source, &fingerprint, &file, &p.Bytes, &p.Rotated, &p.Unwarped, &p.Fallback, &errMsg); err != nil {
			return nil, err
		}
		p.Fingerprint = fingerprint.String
		p.File = file.String
		p.Error = errMsg.String
		results = append(results, p)
	}
	return results, rows.Err()
}

// LastFingerprint returns the fingerprint the given page of dir had in the
// most recent earlier run, or "" when the page was never recorded.
func (rdb *RunDB) LastFingerprint(ctx context.Context, dir string, page int) (string, error) {
	var fp sql.NullString
	err := rdb.db.QueryRowContext(ctx, `
	SELECT p.fingerprint
	FROM run_pages p JOIN runs r ON r.id = p.run_id
	WHERE r.input_dir = ? AND p.page = ?
	ORDER BY r.started_at DESC
	LIMIT 1
	`, dir, page).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get fingerprint: %w", err)
	}
	return fp.String, nil
}

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
