package spotify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/justestif/resonance/internal/clustering"
	"github.com/justestif/resonance/internal/mood"
	"github.com/justestif/resonance/internal/recommend"
)

const fullTrackJSON = `{
	"id": "t1",
	"name": "Anchor",
	"uri": "spotify:track:t1",
	"external_urls": {"spotify": "https://open.spotify.com/track/t1"},
	"artists": [{"id": "a1", "name": "Novo Amor"}, {"id": "a2", "name": "Guest"}],
	"album": {"name": "Birthplace", "images": [{"url": "https://i.scdn.co/image/big", "height": 640, "width": 640}]}
}`

type apiStub struct {
	t        *testing.T
	requests map[string]*http.Request
	bodies   map[string]string
	notFound map[string]bool
}

func newAPIStub(t *testing.T) (*apiStub, *Client) {
	s := &apiStub{t: t, requests: map[string]*http.Request{}, bodies: map[string]string{}, notFound: map[string]bool{}}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, NewFromHTTP(srv.Client(), srv.URL+"/")
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests[r.URL.Path] = r
	body, _ := io.ReadAll(r.Body)
	s.bodies[r.URL.Path] = string(body)

	w.Header().Set("Content-Type", "application/json")
	if s.notFound[r.URL.Path] {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"status":404,"message":"Service not found"}}`)
		return
	}

	switch r.URL.Path {
	case "/recommendations":
		io.WriteString(w, `{"seeds": [], "tracks": [
			{"id": "t1", "name": "Anchor", "uri": "spotify:track:t1", "artists": [{"id": "a1", "name": "Novo Amor"}]},
			{"id": "t2", "name": "Outro", "uri": "spotify:track:t2", "external_urls": {"spotify": "https://open.spotify.com/track/t2"}, "artists": [{"id": "a3", "name": "M83"}]}
		]}`)
	case "/tracks":
		io.WriteString(w, `{"tracks": [`+fullTrackJSON+`, null]}`)
	case "/search":
		io.WriteString(w, `{"tracks": {"href": "", "limit": 2, "offset": 0, "total": 1, "items": [`+fullTrackJSON+`]}}`)
	case "/artists":
		io.WriteString(w, `{"artists": [{"id": "a1", "name": "Novo Amor", "genres": ["indie folk", "chamber pop"]}, {"id": "a3", "name": "M83", "genres": []}]}`)
	case "/audio-features":
		io.WriteString(w, `{"audio_features": [{"id": "t1", "energy": 0.3, "valence": 0.25, "danceability": 0.4, "acousticness": 0.8, "tempo": 92.5}, null]}`)
	case "/me":
		io.WriteString(w, `{"id": "user1", "display_name": "Dana"}`)
	case "/users/user1/playlists":
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": "pl1", "name": "Resonance", "external_urls": {"spotify": "https://open.spotify.com/playlist/pl1"}}`)
	case "/playlists/pl1/tracks":
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"snapshot_id": "snap"}`)
	default:
		s.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func testQuery() recommend.Query {
	sad, _ := mood.Canonical(mood.Sadness)
	return recommend.NewQuery(sad, recommend.StandardDefaults())
}

func TestRecommend(t *testing.T) {
	stub, client := newAPIStub(t)

	got, err := client.Recommend(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := stub.requests["/recommendations"].URL.Query()
	wantParams := map[string]string{
		"seed_genres":         "acoustic,ambient,piano",
		"target_valence":      "0.15",
		"target_energy":       "0.25",
		"target_danceability": "0.3",
		"target_acousticness": "0.65",
		"min_tempo":           "60",
		"max_tempo":           "90",
		"target_tempo":        "75",
		"limit":               "20",
		"market":              "US",
	}
	for k, want := range wantParams {
		if got := params.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}

	if len(got) != 2 {
		t.Fatalf("got %d tracks, want 2", len(got))
	}
	first := got[0]
	if first.Album != "Birthplace" || first.AlbumArt != "https://i.scdn.co/image/big" {
		t.Errorf("album = %q / %q", first.Album, first.AlbumArt)
	}
	if first.Artist != "Novo Amor, Guest" || strings.Join(first.ArtistIDs, ",") != "a1,a2" {
		t.Errorf("artists = %q %v", first.Artist, first.ArtistIDs)
	}
	if first.URL != "https://open.spotify.com/track/t1" || first.URI != "spotify:track:t1" {
		t.Errorf("links = %q %q", first.URL, first.URI)
	}
	if got[1].Name != "Outro" || got[1].Album != "" || got[1].URL == "" {
		t.Errorf("simplified track = %+v", got[1])
	}
}

func TestRecommendFallsBackToSearch(t *testing.T) {
	stub, client := newAPIStub(t)
	stub.notFound["/recommendations"] = true

	got, err := client.Recommend(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 || got[0].ID != "t1" {
		t.Fatalf("got %+v, want search results", got)
	}

	q := stub.requests["/search"].URL.Query()
	if q.Get("type") != "track" || !strings.HasPrefix(q.Get("q"), "genre:") {
		t.Errorf("search params = %v", q)
	}
}

func TestArtistGenres(t *testing.T) {
	stub, client := newAPIStub(t)

	got, err := client.ArtistGenres(context.Background(), []string{"a1", "a3", "a1", ""})
	if err != nil {
		t.Fatal(err)
	}
	if ids := stub.requests["/artists"].URL.Query().Get("ids"); ids != "a1,a3" {
		t.Errorf("ids = %q, want de-duplicated a1,a3", ids)
	}
	if len(got) != 1 || got["a1"][0] != "indie folk" {
		t.Errorf("ArtistGenres() = %v", got)
	}
}

func TestFetchAudioFeatures(t *testing.T) {
	_, client := newAPIStub(t)
	tracks := []clustering.Track{{ID: "t1"}, {ID: "t2"}}

	if err := client.FetchAudioFeatures(context.Background(), tracks); err != nil {
		t.Fatal(err)
	}

	if !tracks[0].HasFeatures() || *tracks[0].Acousticness != 0.8 || *tracks[0].Tempo != 92.5 {
		t.Errorf("t1 features not applied: %+v", tracks[0])
	}
	if tracks[1].HasFeatures() {
		t.Error("t2 has no features upstream and should stay empty")
	}
}

func TestFetchAudioFeaturesEmpty(t *testing.T) {
	_, client := newAPIStub(t)
	if err := client.FetchAudioFeatures(context.Background(), nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCreatePlaylist(t *testing.T) {
	stub, client := newAPIStub(t)

	pl, err := client.CreatePlaylist(context.Background(), "Resonance", "For my reel", []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pl.ID != "pl1" || pl.URL != "https://open.spotify.com/playlist/pl1" {
		t.Errorf("playlist = %+v", pl)
	}

	var created map[string]any
	json.Unmarshal([]byte(stub.bodies["/users/user1/playlists"]), &created)
	if created["name"] != "Resonance" || created["public"] != false {
		t.Errorf("create body = %v", created)
	}
	if body := stub.bodies["/playlists/pl1/tracks"]; !strings.Contains(body, "spotify:track:t1") {
		t.Errorf("add tracks body = %s", body)
	}
}

func TestCurrentUser(t *testing.T) {
	_, client := newAPIStub(t)
	u, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "user1" || u.DisplayName != "Dana" {
		t.Errorf("CurrentUser() = %+v", u)
	}
}
