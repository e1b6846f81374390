package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository handles session database operations.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a session.
func (r *SessionRepository) Create(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sessions (id, user_id, access_token, refresh_token, token_expiry, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.pool.Exec(ctx, query,
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.TokenExpiry, s.CreatedAt, s.ExpiresAt,
	); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetWithUser retrieves a live session together with its user's display name.
func (r *SessionRepository) GetWithUser(ctx context.Context, id string) (*Session, string, error) {
	query := `
		SELECT s.id, s.user_id, s.access_token, s.refresh_token, s.token_expiry,
		       s.created_at, s.expires_at, u.display_name
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1 AND s.expires_at > NOW()
	`
	var (
		s    Session
		name string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.TokenExpiry,
		&s.CreatedAt, &s.ExpiresAt, &name,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("querying session: %w", err)
	}
	return &s, name, nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes expired sessions and reports how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
