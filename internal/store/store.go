package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const dbFileName = "jobtrack.sqlite"

// Store persists applications in a SQLite file under Dir.
type Store struct {
	Dir string
	// Now overrides the clock in tests.
	Now func() time.Time
}

// DefaultDir is <config dir>/data.
func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, dbFileName)
}

func (s Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL lets the web server and the CLI share the file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			company TEXT NOT NULL,
			position TEXT NOT NULL,
			salary_min REAL NOT NULL DEFAULT 0,
			salary_max REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			sort_index REAL NOT NULL,
			created_on_unixms INTEGER NOT NULL,
			updated_on_unixms INTEGER NOT NULL,
			deleted_on_unixms INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_applications_user_status ON applications(user_id, status, sort_index);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
