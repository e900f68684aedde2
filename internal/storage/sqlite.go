package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStorage{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS durations (
		path TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		mod_time_ns INTEGER NOT NULL,
		seconds REAL NOT NULL,
		probed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_durations_probed ON durations(probed_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// GetDuration returns the stored record for path, or nil when there is none.
func (s *SQLiteStorage) GetDuration(path string) (*DurationRecord, error) {
	row := s.db.QueryRow(`
		SELECT path, size, mod_time_ns, seconds, probed_at
		FROM durations WHERE path = ?
	`, path)

	var r DurationRecord
	var modNano int64
	err := row.Scan(&r.Path, &r.Size, &modNano, &r.Seconds, &r.ProbedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.ModTime = time.Unix(0, modNano)
	return &r, nil
}

func (s *SQLiteStorage) PutDuration(r *DurationRecord) error {
	probedAt := r.ProbedAt
	if probedAt.IsZero() {
		probedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO durations (path, size, mod_time_ns, seconds, probed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mod_time_ns = excluded.mod_time_ns,
			seconds = excluded.seconds,
			probed_at = excluded.probed_at
	`, r.Path, r.Size, r.ModTime.UnixNano(), r.Seconds, probedAt)
	return err
}

func (s *SQLiteStorage) DeleteDuration(path string) error {
	_, err := s.db.Exec("DELETE FROM durations WHERE path = ?", path)
	return err
}

func (s *SQLiteStorage) GetAllDurationPaths() ([]string, error) {
	rows, err := s.db.Query("SELECT path FROM durations ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}

	return paths, rows.Err()
}

// CleanupDeletedFiles removes records for files that no longer exist and
// returns how many were removed.
func (s *SQLiteStorage) CleanupDeletedFiles() (int, error) {
	paths, err := s.GetAllDurationPaths()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := s.DeleteDuration(path); err != nil {
				return deleted, err
			}
			deleted++
		}
	}

	return deleted, nil
}
