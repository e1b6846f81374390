package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/justestif/resonance/internal/auth"
	"github.com/justestif/resonance/internal/db"
	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/spotify"
)

const (
	stateCookieName = "oauth_state"
	recentPlaylists = 5
)

// UserClient is the part of the Spotify API used on behalf of a logged-in user.
type UserClient interface {
	CurrentUser(ctx context.Context) (spotify.User, error)
	CreatePlaylist(ctx context.Context, name, description string, trackIDs []string) (spotify.Playlist, error)
}

// UserClientFunc builds a UserClient for a user's token.
type UserClientFunc func(ctx context.Context, token *oauth2.Token) UserClient

// PlaylistStore records playlists created through the app.
// *db.PlaylistRepository satisfies it.
type PlaylistStore interface {
	Create(ctx context.Context, p *db.Playlist) error
	ListForUser(ctx context.Context, userID string, limit int) ([]db.Playlist, error)
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	analyzer       Analyzer
	auth           *spotifyauth.Authenticator
	sessions       SessionManager
	templates      *Templates
	playlists      PlaylistStore
	userClient     UserClientFunc
	uploadDir      string
	maxUploadBytes int64
}

func defaultUserClient(a *spotifyauth.Authenticator) UserClientFunc {
	return func(ctx context.Context, token *oauth2.Token) UserClient {
		return spotify.NewFromHTTP(a.Client(ctx, token), "")
	}
}

// Home renders the upload page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)

	data := HomePageData{
		PageData: PageData{
			Title:       "Resonance",
			CurrentPath: r.URL.Path,
		},
		Authenticated: session != nil,
		LoginEnabled:  h.auth != nil,
		MaxUploadMB:   h.maxUploadBytes >> 20,
	}

	if session != nil {
		data.User = &UserData{ID: session.UserID, Name: session.UserName}

		if h.playlists != nil {
			saved, err := h.playlists.ListForUser(r.Context(), session.UserID, recentPlaylists)
			if err != nil {
				logging.Logger.WithError(err).Warn("Failed to list playlists")
			}
			for _, p := range saved {
				data.Playlists = append(data.Playlists, PlaylistData{
					Name:       p.Name,
					Mood:       p.Mood,
					URL:        "https://open.spotify.com/playlist/" + p.SpotifyID,
					TrackCount: len(p.TrackIDs),
					CreatedAt:  p.CreatedAt,
				})
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "home", data); err != nil {
		logging.Logger.WithError(err).Error("Failed to render home")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// Health reports liveness (GET /health).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login starts the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Spotify login is not configured", http.StatusNotFound)
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the OAuth flow (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Spotify login is not configured", http.StatusNotFound)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, fmt.Sprintf("Spotify auth error: %s", errMsg), http.StatusBadRequest)
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		logging.Logger.WithError(err).Warn("Token exchange failed")
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		return
	}

	user, err := h.userClient(r.Context(), token).CurrentUser(r.Context())
	if err != nil {
		logging.Logger.WithError(err).Warn("Failed to fetch Spotify profile")
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	session, err := h.sessions.Create(r.Context(), token, user.ID, user.DisplayName)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to create session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	logging.Logger.WithField("user", user.ID).Info("User logged in")
	h.sessions.SetCookie(w, session)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}

	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.WithError(err).Debug("Failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
