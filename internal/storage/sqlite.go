package storage

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteFS stores each trace as ordered line rows in a SQLite database.
// Written lines become visible to readers when the file is flushed or closed.
type SQLiteFS struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteFS opens (or creates) the database at path.
func NewSQLiteFS(path string) (*SQLiteFS, error) {
	// Ensure directory exists
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, storageErr("create directory for", path, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, storageErr("open database", path, err)
	}
	// One connection, so ":memory:" databases are shared by every query.
	db.SetMaxOpenConns(1)

	s := &SQLiteFS{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, storageErr("migrate database", path, err)
	}

	return s, nil
}

// migrate creates the necessary tables
func (s *SQLiteFS) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS traces (
		path TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trace_lines (
		path TEXT NOT NULL,
		seq INTEGER NOT NULL,
		line BLOB NOT NULL,
		PRIMARY KEY (path, seq),
		FOREIGN KEY (path) REFERENCES traces(path)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Create registers path and drops any lines previously stored under it.
func (s *SQLiteFS) Create(path string) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storageErr("create", path, err)
	}
	if _, err := tx.Exec("DELETE FROM trace_lines WHERE path = ?", path); err != nil {
		tx.Rollback()
		return nil, storageErr("create", path, err)
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO traces (path) VALUES (?)", path); err != nil {
		tx.Rollback()
		return nil, storageErr("create", path, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("create", path, err)
	}

	return &sqliteFile{fs: s, path: path}, nil
}

// Open reads every stored line of path, newline-terminated, in write order.
func (s *SQLiteFS) Open(path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM traces WHERE path = ?", path).Scan(&exists)
	if err != nil {
		return nil, storageErr("open", path, err)
	}
	if exists == 0 {
		return nil, storageErr("open", path, os.ErrNotExist)
	}

	rows, err := s.db.Query("SELECT line FROM trace_lines WHERE path = ? ORDER BY seq", path)
	if err != nil {
		return nil, storageErr("open", path, err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	for rows.Next() {
		var line []byte
		if err := rows.Scan(&line); err != nil {
			return nil, storageErr("read", path, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read", path, err)
	}

	return io.NopCloser(&buf), nil
}

// Paths lists stored traces in lexical order.
func (s *SQLiteFS) Paths() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT path FROM traces ORDER BY path")
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

// Close closes the database connection
func (s *SQLiteFS) Close() error {
	return s.db.Close()
}

func (s *SQLiteFS) insertLines(path string, firstSeq int64, lines [][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO trace_lines (path, seq, line) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, line := range lines {
		if _, err := stmt.Exec(path, firstSeq+int64(i), line); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert line %d: %w", firstSeq+int64(i), err)
		}
	}
	return tx.Commit()
}

// sqliteFile buffers complete lines until Flush or Close commits them.
type sqliteFile struct {
	fs      *SQLiteFS
	path    string
	seq     int64
	partial []byte
	pending [][]byte
	closed  bool
}

func (f *sqliteFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, storageErr("write", f.path, errFileClosed)
	}

	f.partial = append(f.partial, p...)
	for {
		i := bytes.IndexByte(f.partial, '\n')
		if i < 0 {
			break
		}
		f.pending = append(f.pending, bytes.Clone(f.partial[:i]))
		f.partial = f.partial[i+1:]
	}
	return len(p), nil
}

func (f *sqliteFile) Flush() error {
	if f.closed {
		return storageErr("flush", f.path, errFileClosed)
	}
	return f.commit()
}

func (f *sqliteFile) commit() error {
	if len(f.pending) == 0 {
		return nil
	}
	if err := f.fs.insertLines(f.path, f.seq, f.pending); err != nil {
		return storageErr("flush", f.path, err)
	}
	f.seq += int64(len(f.pending))
	f.pending = nil
	return nil
}

// Close commits pending lines, including an unterminated trailing line.
func (f *sqliteFile) Close() error {
	if f.closed {
		return storageErr("close", f.path, errFileClosed)
	}
	f.closed = true

	if len(f.partial) > 0 {
		f.pending = append(f.pending, bytes.Clone(f.partial))
		f.partial = nil
	}
	return f.commit()
}
