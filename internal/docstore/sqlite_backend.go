package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration
)

// SQLiteBackend keeps the snapshot as a single blob row in one SQLite file.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the snapshot database at path
// and ensures the snapshots table exists.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	customLog.Printf("Storage: Initializing snapshot database: %s", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", filepath.Dir(path), err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL mode and a busy timeout for 5s if the file is locked by another process
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		customLog.Warnf("Storage: Failed to open snapshot db '%s': %v", path, err)
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping snapshot db '%s': %v", path, err)
		return nil, fmt.Errorf("failed to connect to snapshot db: %w", err)
	}

	createSnapshotsTableSQL := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		body BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err = db.Exec(createSnapshotsTableSQL); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to create snapshots table: %v", err)
		return nil, fmt.Errorf("failed to ensure snapshots table: %w", err)
	}
	customLog.Println("Storage: Snapshots table ensured.")

	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := b.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE id = 1`).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		customLog.Warnf("Storage: Failed to read snapshot from '%s': %v", b.path, err)
		return nil, fmt.Errorf("database error reading snapshot: %w", err)
	}
	return body, nil
}

func (b *SQLiteBackend) Write(ctx context.Context, data []byte) error {
	upsertSQL := `
	INSERT INTO snapshots (id, body, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at;`
	if _, err := b.db.ExecContext(ctx, upsertSQL, data); err != nil {
		customLog.Warnf("Storage: Failed to write snapshot to '%s': %v", b.path, err)
		return fmt.Errorf("database error writing snapshot: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
