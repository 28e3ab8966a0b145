package fileserve

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned when a file ID has no metadata row.
var ErrNotFound = errors.New("file not found")

// FileMeta describes one stored attachment. The blob itself lives on
// disk under the data directory, keyed by ID.
type FileMeta struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Description string    `json:"description,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens (or creates) the metadata database and the blob
// directory, and runs migrations.
func NewStore(dbPath, dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, dataDir: dataDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemoryStore creates a store with an in-memory database for tests.
// Blobs still land in dataDir.
func NewMemoryStore(dataDir string) (*Store, error) {
	return NewStore(":memory:", dataDir)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS files (
		id           TEXT PRIMARY KEY,
		project_id   TEXT NOT NULL,
		name         TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
		description  TEXT NOT NULL DEFAULT '',
		size         INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Save streams the blob to disk and records the metadata row. The two
// writes are ordered blob-first so a crash can only leave an orphan
// blob, never a dangling row.
func (s *Store) Save(ctx context.Context, meta FileMeta, blob io.Reader) (FileMeta, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	meta.CreatedAt = time.Now().UTC()

	path := s.blobPath(meta.ID)
	f, err := os.Create(path)
	if err != nil {
		return FileMeta{}, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(f, blob)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return FileMeta{}, fmt.Errorf("write blob: %w", err)
	}
	meta.Size = size

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO files (id, project_id, name, content_type, description, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.ProjectID, meta.Name, meta.ContentType, meta.Description,
		meta.Size, meta.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		os.Remove(path)
		return FileMeta{}, fmt.Errorf("insert file row: %w", err)
	}
	return meta, nil
}

// Get returns the metadata for one file.
func (s *Store) Get(ctx context.Context, id string) (FileMeta, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, content_type, description, size, created_at
		FROM files WHERE id = ?`, id)
	return scanMeta(row)
}

// Open returns the metadata and an open reader for the blob.
func (s *Store) Open(ctx context.Context, id string) (FileMeta, io.ReadCloser, error) {
	meta, err := s.Get(ctx, id)
	if err != nil {
		return FileMeta{}, nil, err
	}
	f, err := os.Open(s.blobPath(id))
	if err != nil {
		return FileMeta{}, nil, fmt.Errorf("open blob: %w", err)
	}
	return meta, f, nil
}

// Delete removes the metadata row and the blob.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete file row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := os.Remove(s.blobPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// ListByProject returns all files attached to a project, newest first.
func (s *Store) ListByProject(ctx context.Context, projectID string) ([]FileMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, content_type, description, size, created_at
		FROM files WHERE project_id = ?
		ORDER BY created_at DESC, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []FileMeta
	for rows.Next() {
		meta, err := scanMeta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

func (s *Store) blobPath(id string) string {
	return filepath.Join(s.dataDir, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeta(row rowScanner) (FileMeta, error) {
	var meta FileMeta
	var created string
	err := row.Scan(&meta.ID, &meta.ProjectID, &meta.Name, &meta.ContentType,
		&meta.Description, &meta.Size, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return FileMeta{}, ErrNotFound
	}
	if err != nil {
		return FileMeta{}, fmt.Errorf("scan file row: %w", err)
	}
	meta.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return FileMeta{}, fmt.Errorf("parse created_at: %w", err)
	}
	return meta, nil
}
