// Package sqlite provides a SQLite-backed sheet store. It reuses the
// in-memory implementation for reads and snapshots the full state to a
// single-table JSON bucket scheme after every successful mutation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"aquacore/internal/infra/persistence/memory"
	"aquacore/pkg/domain"
)

// Compile-time contract assertion for the domain persistence interface.
var _ domain.SheetStore = (*Store)(nil)

const (
	bucketProjects = "projects"
	bucketSheets   = "sheets"
)

var sqliteBuckets = []string{bucketProjects, bucketSheets}

// Store persists the in-memory state to SQLite as JSON blobs.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and hydrates the embedded
// memory store from any existing snapshot.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "aquacore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot memory.Snapshot
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		switch bucket {
		case bucketProjects:
			if err := json.Unmarshal(payload, &snapshot.Projects); err != nil {
				return fmt.Errorf("decode projects: %w", err)
			}
		case bucketSheets:
			if err := json.Unmarshal(payload, &snapshot.Sheets); err != nil {
				return fmt.Errorf("decode sheets: %w", err)
			}
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if found {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		var data []byte
		switch bucket {
		case bucketProjects:
			data, err = json.Marshal(snapshot.Projects)
		case bucketSheets:
			data, err = json.Marshal(snapshot.Sheets)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// PutProject writes the project and snapshots to SQLite.
func (s *Store) PutProject(ctx context.Context, project domain.Project) error {
	if err := s.Store.PutProject(ctx, project); err != nil {
		return err
	}
	return s.persist()
}

// DeleteProject removes the project and snapshots to SQLite.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if err := s.Store.DeleteProject(ctx, id); err != nil {
		return err
	}
	return s.persist()
}

// PutSheet writes the sheet and snapshots to SQLite.
func (s *Store) PutSheet(ctx context.Context, projectID string, sections []domain.TableSection) error {
	if err := s.Store.PutSheet(ctx, projectID, sections); err != nil {
		return err
	}
	return s.persist()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
