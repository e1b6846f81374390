package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a user by Spotify ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, display_name, created_at, updated_at, last_login_at
		FROM users
		WHERE id = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// RecordLogin creates the user on first login and refreshes the display name
// and login time afterwards.
func (r *UserRepository) RecordLogin(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, display_name, created_at, updated_at, last_login_at)
		VALUES ($1, $2, NOW(), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			updated_at = NOW(),
			last_login_at = NOW()
		RETURNING created_at, updated_at, last_login_at
	`
	err := r.pool.QueryRow(ctx, query, user.ID, user.DisplayName).
		Scan(&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)
	if err != nil {
		return fmt.Errorf("recording login: %w", err)
	}
	return nil
}
