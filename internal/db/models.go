package db

import (
	"time"

	"github.com/google/uuid"
)

// User is a Spotify account that has logged in.
type User struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time // nullable
}

// Session is an authenticated web session with the user's OAuth tokens.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Playlist records a playlist created from a set of recommendations.
type Playlist struct {
	ID        uuid.UUID
	UserID    string
	SpotifyID string
	Name      string
	Mood      string
	TrackIDs  []string
	CreatedAt time.Time
}
