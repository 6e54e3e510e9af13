package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soundctl/spotmcp/internal/journal"
	"github.com/soundctl/spotmcp/internal/shared"
	"github.com/soundctl/spotmcp/internal/spotify"
)

type staticTokens string

func (s staticTokens) EnsureToken(context.Context) (string, error) {
	return string(s), nil
}

// newTestDeps builds handler deps backed by a fake Spotify API and an
// in-memory journal.
func newTestDeps(t *testing.T, handler http.HandlerFunc) (*Deps, *journal.Journal) {
	t.Helper()

	remote := httptest.NewServer(handler)
	t.Cleanup(remote.Close)

	client := spotify.NewClient(staticTokens("test-token"), spotify.ClientOpts{
		BaseURL:           remote.URL,
		HTTPClient:        remote.Client(),
		Logger:            shared.NewLogger(nil),
		RequestsPerSecond: 1000,
	})

	j, err := journal.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })

	deps := &Deps{
		Gateway: spotify.NewLazy(func() (*spotify.Gateway, error) {
			return &spotify.Gateway{Client: client}, nil
		}),
		Journal: j,
		Logger:  shared.NewLogger(nil),
	}
	return deps, j
}

// unreachableDeps fails the test if any handler builds the gateway.
func unreachableDeps(t *testing.T) *Deps {
	t.Helper()
	return &Deps{
		Gateway: spotify.NewLazy(func() (*spotify.Gateway, error) {
			t.Fatal("gateway must not be constructed for invalid input")
			return nil, nil
		}),
		Logger: shared.NewLogger(nil),
	}
}

func intPtr(n int) *int { return &n }

func TestClampLimit(t *testing.T) {
	cases := []struct {
		name     string
		limit    *int
		fallback int
		want     int
	}{
		{"Absent Uses Default", nil, 10, 10},
		{"Zero Clamps Low", intPtr(0), 10, 1},
		{"Negative Clamps Low", intPtr(-3), 10, 1},
		{"Above Maximum Clamps High", intPtr(200), 10, 50},
		{"In Range Passes Through", intPtr(25), 10, 25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampLimit(tc.limit, tc.fallback); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestValidTimeRange(t *testing.T) {
	for _, valid := range []string{"short_term", "medium_term", "long_term"} {
		if got := validTimeRange(valid); got != valid {
			t.Errorf("%s should pass through, got %s", valid, got)
		}
	}
	for _, invalid := range []string{"", "yearly", "SHORT_TERM"} {
		if got := validTimeRange(invalid); got != "short_term" {
			t.Errorf("%q should fall back to short_term, got %s", invalid, got)
		}
	}
}

func TestGetTopTracks(t *testing.T) {
	t.Run("Applies Defaults And Clamps", func(t *testing.T) {
		var gotQuery map[string]string
		deps, _ := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"limit":      r.URL.Query().Get("limit"),
				"time_range": r.URL.Query().Get("time_range"),
				"offset":     r.URL.Query().Get("offset"),
			}
			w.Write([]byte(`{"items":[{"id":"t1","name":"Song","uri":"spotify:track:t1","artists":[{"name":"Artist"}],"album":{"name":"Album"}}]}`))
		})

		handler := GetTopTracksHandler(deps)
		_, result, err := handler(context.Background(), nil, TopTracksInput{TimeRange: "bogus", Offset: -5})
		if err != nil {
			t.Fatalf("expected tracks, got %v", err)
		}

		if gotQuery["limit"] != "10" || gotQuery["time_range"] != "short_term" || gotQuery["offset"] != "0" {
			t.Errorf("unexpected request parameters: %v", gotQuery)
		}

		if len(result.Tracks) != 1 || result.Tracks[0].Artist != "Artist" {
			t.Errorf("unexpected result: %+v", result.Tracks)
		}
	})

	t.Run("Clamps Explicit Zero Limit", func(t *testing.T) {
		var gotLimit string
		deps, _ := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
			gotLimit = r.URL.Query().Get("limit")
			w.Write([]byte(`{"items":[]}`))
		})

		handler := GetTopTracksHandler(deps)
		if _, _, err := handler(context.Background(), nil, TopTracksInput{Limit: intPtr(0)}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if gotLimit != "1" {
			t.Errorf("limit 0 should clamp to 1, sent %q", gotLimit)
		}
	})
}

func TestSearchTracks(t *testing.T) {
	t.Run("Rejects Empty Query", func(t *testing.T) {
		handler := SearchTracksHandler(unreachableDeps(t))

		_, _, err := handler(context.Background(), nil, SearchTracksInput{Query: "   "})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Returns Simplified Tracks", func(t *testing.T) {
		deps, _ := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("q"); got != "radiohead" {
				t.Errorf("unexpected query %q", got)
			}
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("expected default limit 5, got %q", got)
			}
			w.Write([]byte(`{"tracks":{"items":[{"id":"t1","name":"Creep","uri":"spotify:track:t1","artists":[{"name":"Radiohead"}],"album":{"name":"Pablo Honey"}}]}}`))
		})

		handler := SearchTracksHandler(deps)
		_, result, err := handler(context.Background(), nil, SearchTracksInput{Query: "radiohead"})
		if err != nil {
			t.Fatalf("expected results, got %v", err)
		}

		if len(result.Tracks) != 1 || result.Tracks[0].Name != "Creep" {
			t.Errorf("unexpected result: %+v", result.Tracks)
		}
	})
}

func TestCreatePlaylist(t *testing.T) {
	t.Run("Rejects Empty Name", func(t *testing.T) {
		handler := CreatePlaylistHandler(unreachableDeps(t))

		_, _, err := handler(context.Background(), nil, CreatePlaylistInput{})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Creates And Adds Tracks", func(t *testing.T) {
		deps, j := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/me":
				w.Write([]byte(`{"id":"u1","display_name":"User"}`))
			case r.URL.Path == "/users/u1/playlists":
				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				if body["name"] != "Roadtrip" || body["public"] != false {
					t.Errorf("unexpected creation body: %v", body)
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":"p1","name":"Roadtrip"}`))
			case r.URL.Path == "/playlists/p1/tracks":
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"snapshot_id":"snap"}`))
			default:
				t.Errorf("unexpected request to %s", r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		})

		handler := CreatePlaylistHandler(deps)
		uris := []string{"spotify:track:a", "spotify:track:b"}
		_, result, err := handler(context.Background(), nil, CreatePlaylistInput{Name: "Roadtrip", TrackURIs: uris})
		if err != nil {
			t.Fatalf("expected playlist, got %v", err)
		}

		if result.ID != "p1" || result.Name != "Roadtrip" || result.TracksAdded != 2 {
			t.Errorf("unexpected result: %+v", result)
		}

		entries, err := j.Recent(10)
		if err != nil || len(entries) != 1 {
			t.Fatalf("expected one journal entry, got %v, %v", entries, err)
		}
		if entries[0].PlaylistID != "p1" || entries[0].Requested != 2 || entries[0].Committed != 2 {
			t.Errorf("unexpected journal entry: %+v", entries[0])
		}
	})

	t.Run("No Tracks Means No Mutation Journal", func(t *testing.T) {
		deps, j := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/me":
				w.Write([]byte(`{"id":"u1"}`))
			case "/users/u1/playlists":
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":"p1","name":"Empty"}`))
			default:
				t.Errorf("unexpected request to %s", r.URL.Path)
			}
		})

		handler := CreatePlaylistHandler(deps)
		_, result, err := handler(context.Background(), nil, CreatePlaylistInput{Name: "Empty"})
		if err != nil || result.TracksAdded != 0 {
			t.Fatalf("expected empty playlist, got %+v, %v", result, err)
		}

		if entries, _ := j.Recent(10); len(entries) != 0 {
			t.Errorf("creation without tracks should not be journaled, got %v", entries)
		}
	})
}

func TestAddTracks(t *testing.T) {
	t.Run("Rejects Empty Playlist ID", func(t *testing.T) {
		handler := AddTracksHandler(unreachableDeps(t))

		_, _, err := handler(context.Background(), nil, AddTracksInput{URIs: []string{"spotify:track:a"}})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Empty URI List Short-Circuits", func(t *testing.T) {
		handler := AddTracksHandler(unreachableDeps(t))

		_, result, err := handler(context.Background(), nil, AddTracksInput{PlaylistID: "p1"})
		if err != nil {
			t.Fatalf("expected no-op success, got %v", err)
		}
		if result.PlaylistID != "p1" || result.TracksAdded != 0 {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("Partial Failure Reports Committed Count", func(t *testing.T) {
		calls := 0
		deps, j := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 2 {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":{"status":500,"message":"server error"}}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"snapshot_id":"snap"}`))
		})

		uris := make([]string, 150)
		for i := range uris {
			uris[i] = "spotify:track:x"
		}

		handler := AddTracksHandler(deps)
		_, _, err := handler(context.Background(), nil, AddTracksInput{PlaylistID: "p1", URIs: uris})
		if err == nil {
			t.Fatal("expected the second chunk to fail")
		}
		if !strings.Contains(err.Error(), "100 of 150") {
			t.Errorf("error should report partial progress: %v", err)
		}

		entries, _ := j.Recent(10)
		if len(entries) != 1 || entries[0].Requested != 150 || entries[0].Committed != 100 {
			t.Errorf("partial outcome should be journaled: %v", entries)
		}
	})
}
