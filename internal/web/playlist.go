package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/justestif/resonance/internal/db"
	"github.com/justestif/resonance/internal/logging"
	"github.com/justestif/resonance/internal/recommend"
)

const defaultPlaylistName = "Resonance picks"

// CreatePlaylist saves tracks to a new private playlist in the user's
// account (POST /playlist).
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil || h.auth == nil {
		writeError(w, http.StatusUnauthorized, "Log in with Spotify first")
		return
	}

	var req struct {
		Name     string   `json:"name"`
		Mood     string   `json:"mood"`
		TrackIDs []string `json:"track_ids"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	ids := make([]string, 0, len(req.TrackIDs))
	for _, id := range req.TrackIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 || len(ids) > recommend.MaxLimit {
		writeError(w, http.StatusBadRequest, "Pick between 1 and 100 tracks")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultPlaylistName
	}
	desc := "Made with Resonance"
	if req.Mood != "" {
		desc += " for a " + strings.ToLower(req.Mood) + " video"
	}

	client := h.userClient(r.Context(), session.Token)
	pl, err := client.CreatePlaylist(r.Context(), name, desc, ids)
	if err != nil {
		logging.Logger.WithError(err).WithField("user", session.UserID).Warn("Playlist creation failed")
		writeError(w, http.StatusBadGateway, "Spotify rejected the playlist")
		return
	}

	if h.playlists != nil {
		if err := h.playlists.Create(r.Context(), &db.Playlist{
			UserID:    session.UserID,
			SpotifyID: pl.ID,
			Name:      name,
			Mood:      req.Mood,
			TrackIDs:  ids,
		}); err != nil {
			logging.Logger.WithError(err).Warn("Failed to record playlist")
		}
	}

	logging.Logger.WithFields(logrus.Fields{
		"user":     session.UserID,
		"playlist": pl.ID,
		"tracks":   len(ids),
	}).Info("Playlist created")

	writeJSON(w, http.StatusCreated, map[string]string{"id": pl.ID, "url": pl.URL})
}
