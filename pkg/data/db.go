package data

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "data.db"

	DriverSQLite   string = "sqlite"
	DriverPostgres string = "postgres"

	createVersionSQL = `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`
	selectVersionSQL = `SELECT COALESCE(MAX(version), 0) FROM schema_version`
	insertVersionSQL = `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// Store is the SQL store of posts, reports, score history and the
// processed-creator ledger.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and applies pending migrations. For the
// sqlite driver dsn is a file path whose directory is created.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("dsn not specified")
	}
	if driver == "" {
		driver = DriverSQLite
	}

	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := GetDB(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// single writer
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// GetDB opens a connection pool without touching the schema.
func GetDB(driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return conn, nil
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind converts ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(q) + 8)
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type migration struct {
	version int
	name    string
}

func (s *Store) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errDBNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, createVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, selectVersionSQL).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	list, err := migrations()
	if err != nil {
		return err
	}

	for _, m := range list {
		if m.version <= current {
			continue
		}
		b, err := f.ReadFile("sql/" + m.name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", m.name, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, string(b)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(insertVersionSQL), m.version, now()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.name, err)
		}
		slog.Debug("applied migration", "name", m.name, "driver", s.driver)
	}
	return nil
}

// migrations lists the embedded NNN_name.sql files in version order.
func migrations() ([]migration, error) {
	entries, err := fs.ReadDir(f, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	list := make([]migration, 0, len(entries))
	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid migration name %s: %w", e.Name(), err)
		}
		list = append(list, migration{version: v, name: e.Name()})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].version < list[j].version })
	return list, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
