// Package storage keeps local client state in SQLite: the signed-in session
// and the last query of every list page.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/api"
	applog "fintrack/internal/log"

	_ "modernc.org/sqlite"
)

// Location is the saved query of one list page.
type Location struct {
	Resource  string
	Query     string
	UpdatedAt time.Time
}

type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadSession implements api.SessionStore.
func (r *SQLiteRepository) LoadSession(ctx context.Context) (string, string, error) {
	var token, email string
	err := r.db.QueryRowContext(ctx, `SELECT token, email FROM session WHERE id = 1`).Scan(&token, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", api.ErrNoSession
	}
	if err != nil {
		return "", "", fmt.Errorf("load session: %w", err)
	}
	return token, email, nil
}

// SaveSession implements api.SessionStore.
func (r *SQLiteRepository) SaveSession(ctx context.Context, token, email string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, token, email, created_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, email = excluded.email, created_at = excluded.created_at`,
		token, email, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	r.logger.InfoContext(ctx, "Session saved", "email", email)
	return nil
}

// ClearSession implements api.SessionStore.
func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	r.logger.InfoContext(ctx, "Session cleared")
	return nil
}

// LoadLocation returns the saved query of a list page, or "" when none.
func (r *SQLiteRepository) LoadLocation(ctx context.Context, resource string) (string, error) {
	var query string
	err := r.db.QueryRowContext(ctx, `SELECT query FROM locations WHERE resource = ?`, resource).Scan(&query)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load location for %s: %w", resource, err)
	}
	return query, nil
}

// SaveLocation records the current query of a list page.
func (r *SQLiteRepository) SaveLocation(ctx context.Context, resource, query string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO locations (resource, query, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(resource) DO UPDATE SET query = excluded.query, updated_at = excluded.updated_at`,
		resource, query, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save location for %s: %w", resource, err)
	}
	r.logger.DebugContext(ctx, "Location saved", applog.FieldResource, resource, applog.FieldQuery, query)
	return nil
}

// ListLocations returns every saved location, most recent first.
func (r *SQLiteRepository) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT resource, query, updated_at FROM locations ORDER BY updated_at DESC, resource`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.Resource, &loc.Query, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}
