package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistRepository handles saved playlist operations.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

// Create records a playlist. A zero ID is replaced with a new UUID.
func (r *PlaylistRepository) Create(ctx context.Context, p *Playlist) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.TrackIDs == nil {
		p.TrackIDs = []string{}
	}

	query := `
		INSERT INTO playlists (id, user_id, spotify_id, name, mood, track_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.SpotifyID, p.Name, p.Mood, p.TrackIDs,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting playlist: %w", err)
	}
	return nil
}

// ListForUser returns the user's playlists, newest first.
func (r *PlaylistRepository) ListForUser(ctx context.Context, userID string, limit int) ([]Playlist, error) {
	query := `
		SELECT id, user_id, spotify_id, name, mood, track_ids, created_at
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	var out []Playlist
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.SpotifyID, &p.Name, &p.Mood, &p.TrackIDs, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
