// Package index maintains a SQLite index of artefact frontmatter so listing
// and filtering do not reparse every document. The index is a cache, never a
// source of truth: Rebuild rescans the loop directory and replaces all rows.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"ora/internal/artefact"
)

const schemaVersion = 1

var errSchemaVersion = errors.New("index schema version mismatch")

// Index is a SQLite-backed artefact index.
type Index struct {
	db *sql.DB
}

// Entry is one indexed artefact.
type Entry struct {
	UUID       string
	Title      string
	Phase      string
	Workstream string
	Status     string
	Tags       []string
	Path       string
	MTime      time.Time
}

// Open opens or creates the index database at path.
func Open(ctx context.Context, path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("open index: path is empty")
	}

	mkdirErr := os.MkdirAll(filepath.Dir(path), 0o750)
	if mkdirErr != nil {
		return nil, fmt.Errorf("create index directory: %w", mkdirErr)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping index: %w", err)
	}

	err = applyPragmas(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	err = ensureSchema(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Index{db: db}, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	err := ix.db.Close()
	if err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	return nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	statements := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, stmt := range statements {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}

	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	row := db.QueryRowContext(ctx, "PRAGMA user_version")

	var version int

	err := row.Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version == schemaVersion {
		return nil
	}

	if version != 0 {
		return fmt.Errorf("%w: have %d, want %d", errSchemaVersion, version, schemaVersion)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS artefacts (
			uuid       TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			phase      TEXT NOT NULL,
			workstream TEXT NOT NULL,
			status     TEXT NOT NULL,
			tags       TEXT NOT NULL,
			path       TEXT NOT NULL,
			mtime      INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_artefacts_workstream ON artefacts(workstream);
		CREATE INDEX IF NOT EXISTS idx_artefacts_status ON artefacts(status);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	if err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// Rebuild rescans dir and replaces the whole index. Documents without a uuid
// are skipped. Returns the number of indexed artefacts.
func (ix *Index) Rebuild(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		entries = nil
	} else if err != nil {
		return 0, fmt.Errorf("reading loop directory: %w", err)
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin rebuild: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, "DELETE FROM artefacts")
	if err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}

	count := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		row, ok, rowErr := readEntry(path, entry)
		if rowErr != nil {
			return 0, rowErr
		}

		if !ok {
			continue
		}

		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO artefacts
				(uuid, title, phase, workstream, status, tags, path, mtime)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row.UUID, row.Title, row.Phase, row.Workstream, row.Status,
			strings.Join(row.Tags, ","), row.Path, row.MTime.Unix(),
		)
		if err != nil {
			return 0, fmt.Errorf("index %s: %w", entry.Name(), err)
		}

		count++
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("commit rebuild: %w", err)
	}

	return count, nil
}

// readEntry decodes just the frontmatter of one file. Files that cannot be
// read or have no uuid are skipped, not fatal: the index is best effort.
func readEntry(path string, entry os.DirEntry) (Entry, bool, error) {
	info, err := entry.Info()
	if err != nil {
		return Entry{}, false, fmt.Errorf("stat %s: %w", path, err)
	}

	content, err := os.ReadFile(path) //nolint:gosec // path comes from directory listing
	if err != nil {
		return Entry{}, false, nil
	}

	meta, _ := artefact.Decode(string(content))

	id, ok := meta.GetString("uuid")
	if !ok || id == "" {
		return Entry{}, false, nil
	}

	row := Entry{
		UUID:  id,
		Path:  path,
		MTime: info.ModTime(),
	}

	row.Title, _ = meta.GetString("title")
	row.Phase, _ = meta.GetString("phase")
	row.Workstream, _ = meta.GetString("workstream")

	row.Status, ok = meta.GetString("status")
	if !ok || row.Status == "" {
		row.Status = artefact.DefaultStatus
	}

	tags, _ := meta.GetList("tags")
	row.Tags = tags

	return row, true, nil
}

// QueryOptions filters Query results. Empty fields match everything.
type QueryOptions struct {
	Workstream string
	Status     string
}

// Query returns indexed artefacts ordered by phase then title.
func (ix *Index) Query(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	query := `SELECT uuid, title, phase, workstream, status, tags, path, mtime
		FROM artefacts WHERE 1=1`

	var args []any

	if opts.Workstream != "" {
		query += " AND workstream = ?"

		args = append(args, opts.Workstream)
	}

	if opts.Status != "" {
		query += " AND status = ?"

		args = append(args, opts.Status)
	}

	query += " ORDER BY phase, title"

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var out []Entry

	for rows.Next() {
		var (
			row   Entry
			tags  string
			mtime int64
		)

		err = rows.Scan(&row.UUID, &row.Title, &row.Phase, &row.Workstream,
			&row.Status, &tags, &row.Path, &mtime)
		if err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}

		if tags != "" {
			row.Tags = strings.Split(tags, ",")
		}

		row.MTime = time.Unix(mtime, 0)
		out = append(out, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate index rows: %w", err)
	}

	return out, nil
}
