// Package sqlite stores named save files in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/freeeve/global-command/api/internal/model"
	"github.com/freeeve/global-command/api/internal/repository/sqlite/migrations"
)

// Store persists save files in SQLite.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Open opens or creates the save database at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("save db path is required")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create save db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			name       TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`); err != nil {
		return err
	}

	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		var count int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM migrations WHERE name = ?`, name).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return err
		}
		if err := s.apply(name, string(body)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) apply(name, body string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(body); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO migrations (name, applied_at) VALUES (?, ?)`, name, toMillis(time.Now())); err != nil {
		return err
	}
	return tx.Commit()
}

// Put stores a save. An empty slot ID is filled with a new UUID and a zero
// CreatedAt with the current time.
func (s *Store) Put(ctx context.Context, slot *model.SaveSlot, data []byte) error {
	if slot.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if len(data) == 0 {
		return fmt.Errorf("save data is empty")
	}
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saves (id, game_id, name, summary, action_count, created_by, created_at, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		slot.ID, slot.GameID, slot.Name, slot.Summary, slot.ActionCount, slot.CreatedBy, toMillis(slot.CreatedAt), data,
	)
	if err != nil {
		return fmt.Errorf("insert save: %w", err)
	}
	return nil
}

// Get returns a save's metadata and payload, or nils when no save has the ID.
func (s *Store) Get(ctx context.Context, id string) (*model.SaveSlot, []byte, error) {
	var slot model.SaveSlot
	var created int64
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, game_id, name, summary, action_count, created_by, created_at, data
		 FROM saves WHERE id = ?`, id,
	).Scan(&slot.ID, &slot.GameID, &slot.Name, &slot.Summary, &slot.ActionCount, &slot.CreatedBy, &created, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get save: %w", err)
	}
	slot.CreatedAt = fromMillis(created)
	return &slot, data, nil
}

// ListByGame returns a game's saves, newest first, without payloads.
func (s *Store) ListByGame(ctx context.Context, gameID string) ([]model.SaveSlot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, name, summary, action_count, created_by, created_at
		 FROM saves WHERE game_id = ? ORDER BY created_at DESC, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var slots []model.SaveSlot
	for rows.Next() {
		var slot model.SaveSlot
		var created int64
		if err := rows.Scan(&slot.ID, &slot.GameID, &slot.Name, &slot.Summary, &slot.ActionCount, &slot.CreatedBy, &created); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		slot.CreatedAt = fromMillis(created)
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// Delete removes a save. Deleting a missing save is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}
