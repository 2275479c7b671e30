// Package store persists runtime state snapshots through database/sql. The
// same schema and statements work against SQLite, MySQL, and PostgreSQL; only
// placeholder syntax differs between drivers.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Load when no snapshot has the requested name.
var ErrNotFound = errors.New("snapshot not found")

const createTable = `
CREATE TABLE IF NOT EXISTS snapshots (
	name     VARCHAR(255) PRIMARY KEY,
	state    TEXT NOT NULL,
	saved_at VARCHAR(64) NOT NULL
)`

// Store is a named-snapshot table in a SQL database. Each snapshot is a flat
// state map stored as a JSON document.
type Store struct {
	db     *sql.DB
	driver string
}

// Snapshot describes a stored entry without its state payload.
type Snapshot struct {
	Name    string
	SavedAt time.Time
}

// Open connects to the database named by driver and dsn and ensures the
// snapshots table exists. Supported drivers are sqlite3, mysql, and postgres.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	slog.Debug("snapshot store opened", slog.String("driver", driver))
	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes state under name, replacing any previous snapshot with that
// name. Delete-then-insert inside a transaction keeps the upsert portable
// across all three drivers.
func (s *Store) Save(ctx context.Context, name string, state map[string]any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM snapshots WHERE name = ?"), name); err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	_, err = tx.ExecContext(ctx,
		s.rebind("INSERT INTO snapshots (name, state, saved_at) VALUES (?, ?, ?)"),
		name, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}

	slog.Debug("snapshot saved", slog.String("name", name), slog.Int("vars", len(state)))
	return nil
}

// Load reads the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (map[string]any, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT state FROM snapshots WHERE name = ?"), name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load snapshot %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}

	var state map[string]any
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	return state, nil
}

// List returns all stored snapshots ordered by name.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, saved_at FROM snapshots ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		var savedAt string
		if err := rows.Scan(&snap.Name, &savedAt); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		snap.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snapshots, nil
}

// Delete removes the snapshot stored under name, if any.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM snapshots WHERE name = ?"), name)
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $1, $2, ... for the postgres driver.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
