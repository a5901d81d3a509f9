package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"setado/internal/models"
)

// Store wraps access to the SQLite database and exposes the project and task
// operations. Every mutation is committed and then snapshotted into the
// backup directory before the call returns.
type Store struct {
	// mu guards db. Mutations hold it exclusively across commit and backup so
	// readers never see the connection while it is closed for the file copy.
	mu        sync.RWMutex
	db        *sql.DB
	path      string
	backupDir string
	retention int
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Store at Open time.
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps and backup names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBackupRetention keeps only the newest n backup files after each write.
// Zero or a negative n keeps every backup.
func WithBackupRetention(n int) Option {
	return func(s *Store) {
		s.retention = n
	}
}

// Open initializes the SQLite store at dbPath, creating the database and
// backup directories when missing, and brings the schema up to date.
func Open(dbPath, backupDir string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if backupDir == "" {
		return nil, fmt.Errorf("empty backup directory")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	if err := ensureDir(backupDir); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	s := &Store{
		path:      dbPath,
		backupDir: backupDir,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}

	conn, err := openConn(dbPath)
	if err != nil {
		return nil, err
	}
	s.db = conn

	logger.Debug("store opened", slog.String("path", dbPath), slog.String("backups", backupDir))
	return s, nil
}

// Close releases the database resources. Further calls on the store return
// models.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// openConn opens the store's single-connection handle.
func openConn(dbPath string) (*sql.DB, error) {
	conn, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	return conn, nil
}

// openDB opens dbPath with foreign keys enforced and verifies the file is
// usable.
func openDB(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return conn, nil
}

func dsn(dbPath string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// read runs fn against the live connection under the shared lock.
func (s *Store) read(fn func(q querier) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return models.ErrClosed
	}
	return fn(s.db)
}

// mutate runs fn inside a transaction, commits it and writes a backup, all
// under the exclusive lock. A failed backup copy never undoes the commit.
func (s *Store) mutate(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return models.ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.backupLocked(op)
}
