// Package spotify implements the API gateway for the Spotify Web API.
//
// Response types are based on https://developer.spotify.com/documentation/web-api/reference/.
// Every outbound call is issued through [Client.doRequest], which paces
// requests, attaches a bearer token from the token provider, and classifies
// every non-2xx response before returning control to the caller.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/soundctl/spotmcp/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// AuthURL is Spotify's OAuth2 authorization endpoint.
	AuthURL = "https://accounts.spotify.com/authorize"
	// TokenURL is Spotify's OAuth2 token endpoint.
	TokenURL = "https://accounts.spotify.com/api/token"
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// defaultRequestsPerSecond paces outbound calls well under Spotify's
	// rolling quota.
	defaultRequestsPerSecond = 5.0
)

// TokenProvider yields a valid bearer token for each outbound call.
type TokenProvider interface {
	EnsureToken(ctx context.Context) (string, error)
}

// User represents the current Spotify user profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ReleaseDate string  `json:"release_date"`
	Images      []Image `json:"images"`
	URI         string  `json:"uri"`
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

// Playlist represents a Spotify playlist.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	URI         string `json:"uri"`
}

// TrackRef is the simplified read-only projection returned to callers; uri
// is the canonical identifier accepted by playlist mutation endpoints.
type TrackRef struct {
	ID     string `json:"id"`
	URI    string `json:"uri"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// PlaylistRef is returned after playlist creation; TracksAdded counts the
// items confirmed committed, which may be less than requested when a later
// chunk failed.
type PlaylistRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TracksAdded int    `json:"tracks_added"`
}

// SimplifyTrack projects a full track object onto its TrackRef.
func SimplifyTrack(t Track) TrackRef {
	ref := TrackRef{
		ID:    t.ID,
		URI:   t.URI,
		Name:  t.Name,
		Album: t.Album.Name,
	}
	if len(t.Artists) > 0 {
		ref.Artist = t.Artists[0].Name
	}
	return ref
}

// SimplifyTracks projects a slice of tracks onto TrackRefs, preserving order.
func SimplifyTracks(tracks []Track) []TrackRef {
	refs := make([]TrackRef, 0, len(tracks))
	for _, t := range tracks {
		refs = append(refs, SimplifyTrack(t))
	}
	return refs
}

// Client issues authenticated, paced requests against the Spotify Web API.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	// sleep performs the single rate-limit grace wait; replaced in tests.
	sleep func(time.Duration)
}

// ClientOpts contains optional Client settings.
type ClientOpts struct {
	BaseURL           string
	HTTPClient        *http.Client
	Logger            *log.Logger
	RequestsPerSecond float64
}

// NewClient creates a Spotify API client backed by the given token provider.
func NewClient(tokens TokenProvider, opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}

	return &Client{
		baseURL:    opts.BaseURL,
		tokens:     tokens,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:     shared.WithLogger(opts.Logger, "component", "spotify"),
		sleep:      time.Sleep,
	}
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// Non-2xx responses never escape unclassified: they are passed through the
// error translator and surface as one of the shared gateway errors.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request pacing interrupted: %w", err)
	}

	token, err := c.tokens.EnsureToken(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrRemoteService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.translate(resp.StatusCode, resp.Header, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Me retrieves the current authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TopTracks retrieves the current user's top tracks for a time range, paged
// by limit and offset.
func (c *Client) TopTracks(ctx context.Context, limit int, timeRange string, offset int) ([]Track, error) {
	query := url.Values{
		"limit":      {strconv.Itoa(limit)},
		"time_range": {timeRange},
		"offset":     {strconv.Itoa(offset)},
	}

	var response struct {
		Items []Track `json:"items"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/me/top/tracks?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// SearchTracks searches the catalog for tracks matching the text query.
func (c *Client) SearchTracks(ctx context.Context, q string, limit, offset int) ([]Track, error) {
	query := url.Values{
		"q":      {q},
		"type":   {"track"},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	var response struct {
		Tracks struct {
			Items []Track `json:"items"`
		} `json:"tracks"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/search?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	return response.Tracks.Items, nil
}

// CreatePlaylist creates an empty playlist owned by userID.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist Playlist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// addPlaylistItems applies one chunk of a playlist mutation.
func (c *Client) addPlaylistItems(ctx context.Context, playlistID string, uris []string) error {
	body := map[string]any{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return c.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}
