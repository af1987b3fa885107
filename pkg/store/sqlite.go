package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

func init() {
	Register("sqlite", OpenSQLite)
}

type sqliteBackend struct {
	conn *sql.DB
}

// OpenSQLite opens, creating if needed, the quantities table in the database
// at path. An empty path or ":memory:" keeps the database in memory.
func OpenSQLite(path string) (Store, error) {
	inMemory := path == "" || path == ":memory:"
	if inMemory {
		path = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if inMemory {
		// Every connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	} else if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS quantities (
			name TEXT PRIMARY KEY,
			value TEXT NULL
		)
	`)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create quantities table: %w", err)
	}
	return newCached(&sqliteBackend{conn: conn}), nil
}

func (s *sqliteBackend) get(ctx context.Context, name string) (decimal.NullDecimal, bool, error) {
	var v decimal.NullDecimal
	err := s.conn.QueryRowContext(ctx, "SELECT value FROM quantities WHERE name = ?", name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.NullDecimal{}, false, nil
	}
	if err != nil {
		return decimal.NullDecimal{}, false, err
	}
	return v, true, nil
}

func (s *sqliteBackend) put(ctx context.Context, name string, v decimal.NullDecimal) error {
	var value any
	if v.Valid {
		value = v.Decimal.String()
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO quantities (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, name, value)
	return err
}

func (s *sqliteBackend) names(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT name FROM quantities")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *sqliteBackend) close() error {
	return s.conn.Close()
}
