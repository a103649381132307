package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/freeeve/global-command/api/internal/model"
)

const userColumns = `id, provider, provider_id, display_name, created_at, updated_at`

// UserRepo stores accounts keyed by identity provider.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Provider, &u.ProviderID, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns nil when no user matches. IDs that are not UUIDs
// (for example from a forged token) match nothing.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return u, nil
}

// Upsert creates the user for (provider, providerID), refreshing the
// display name when it already exists.
func (r *UserRepo) Upsert(ctx context.Context, provider, providerID, displayName string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (provider, provider_id, display_name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (provider, provider_id)
		 DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = now()
		 RETURNING `+userColumns,
		provider, providerID, displayName))
	if err != nil {
		return nil, fmt.Errorf("upsert user %s/%s: %w", provider, providerID, err)
	}
	return u, nil
}
