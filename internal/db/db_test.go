package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestSchemaDefinesTables(t *testing.T) {
	for _, table := range []string{"users", "sessions", "playlists"} {
		if !strings.Contains(Schema(), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema missing table %s", table)
		}
	}
}

// TestRepositories runs against a real database when RESONANCE_TEST_DATABASE_URL is set.
func TestRepositories(t *testing.T) {
	url := os.Getenv("RESONANCE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RESONANCE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := New(ctx, url)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	user := &User{ID: "test-user-" + time.Now().Format("150405.000"), DisplayName: "Tester"}
	if err := database.Users().RecordLogin(ctx, user); err != nil {
		t.Fatalf("RecordLogin() error = %v", err)
	}
	if user.LastLoginAt == nil {
		t.Error("LastLoginAt not set")
	}

	now := time.Now()
	sess := &Session{
		ID:          user.ID + "-session",
		UserID:      user.ID,
		AccessToken: "access",
		TokenExpiry: now.Add(time.Hour),
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}
	if err := database.Sessions().Create(ctx, sess); err != nil {
		t.Fatalf("Sessions().Create() error = %v", err)
	}

	got, name, err := database.Sessions().GetWithUser(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetWithUser() error = %v", err)
	}
	if got.AccessToken != "access" || name != "Tester" {
		t.Errorf("GetWithUser() = %+v, %q", got, name)
	}

	p := &Playlist{UserID: user.ID, SpotifyID: "pl1", Name: "Resonance", Mood: "Chill & Happy", TrackIDs: []string{"a", "b"}}
	if err := database.Playlists().Create(ctx, p); err != nil {
		t.Fatalf("Playlists().Create() error = %v", err)
	}
	list, err := database.Playlists().ListForUser(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(list) != 1 || len(list[0].TrackIDs) != 2 {
		t.Errorf("ListForUser() = %+v", list)
	}

	if err := database.Sessions().Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := database.Sessions().GetWithUser(ctx, sess.ID); err != ErrNotFound {
		t.Errorf("GetWithUser() after delete error = %v, want ErrNotFound", err)
	}
}
