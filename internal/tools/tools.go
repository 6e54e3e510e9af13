// Package tools exposes the Spotify gateway to MCP clients as four callable
// tools: get_top_tracks, search_tracks, create_playlist, and
// add_tracks_to_playlist.
//
// Each handler validates its own inputs before touching the gateway, so a
// malformed call never reaches the network. Numeric limits are clamped to
// the documented range rather than rejected; missing required strings fail
// with an invalid-argument error.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/soundctl/spotmcp/internal/journal"
	"github.com/soundctl/spotmcp/internal/shared"
	"github.com/soundctl/spotmcp/internal/spotify"
)

const (
	minLimit         = 1
	maxLimit         = 50
	defaultTopLimit  = 10
	defaultFindLimit = 5
	defaultTimeRange = "short_term"
	timeRangeShort   = "short_term"
	timeRangeMedium  = "medium_term"
	timeRangeLong    = "long_term"
)

// Deps carries the shared resources the tool handlers run against.
type Deps struct {
	Gateway *spotify.Lazy
	Journal *journal.Journal // optional; nil disables mutation journaling
	Logger  *log.Logger
}

// clampLimit bounds a page size to [minLimit, maxLimit]. A nil value means
// the caller omitted it and gets the tool's default.
func clampLimit(limit *int, fallback int) int {
	if limit == nil {
		return fallback
	}
	n := *limit
	if n < minLimit {
		return minLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// validTimeRange falls back to short_term for anything unrecognized.
func validTimeRange(timeRange string) string {
	switch timeRange {
	case timeRangeShort, timeRangeMedium, timeRangeLong:
		return timeRange
	default:
		return defaultTimeRange
	}
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// recordMutation journals a playlist mutation outcome. Best effort: journal
// failures are logged and never affect the operation result.
func (d *Deps) recordMutation(playlistID, playlistName string, requested, committed int) {
	if d.Journal == nil {
		return
	}
	entry := journal.Entry{
		PlaylistID:   playlistID,
		PlaylistName: playlistName,
		Requested:    requested,
		Committed:    committed,
	}
	if err := d.Journal.Record(entry); err != nil {
		d.Logger.Warn("failed to journal playlist mutation", "playlist_id", playlistID, "error", err)
	}
}

// TopTracksInput is the MCP tool input for get_top_tracks.
type TopTracksInput struct {
	Limit     *int   `json:"limit,omitempty" jsonschema:"page size, 1-50, default 10"`
	TimeRange string `json:"time_range,omitempty" jsonschema:"one of short_term (4 weeks), medium_term (6 months), long_term (years); default short_term"`
	Offset    int    `json:"offset,omitempty" jsonschema:"pagination offset"`
}

// TrackListResult is the MCP tool output for track-returning tools.
type TrackListResult struct {
	Tracks []spotify.TrackRef `json:"tracks" jsonschema:"simplified track records"`
}

// GetTopTracksTool defines the MCP tool schema for listing the user's top tracks.
func GetTopTracksTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_top_tracks",
		Description: "Return the current user's top tracks (paged by limit/offset, over a listening time range)",
	}
}

// GetTopTracksHandler executes a top-tracks listing request.
func GetTopTracksHandler(deps *Deps) mcp.ToolHandlerFor[TopTracksInput, TrackListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TopTracksInput) (*mcp.CallToolResult, TrackListResult, error) {
		limit := clampLimit(input.Limit, defaultTopLimit)
		timeRange := validTimeRange(input.TimeRange)
		offset := clampOffset(input.Offset)

		gateway, err := deps.Gateway.Get()
		if err != nil {
			return nil, TrackListResult{}, err
		}

		tracks, err := gateway.Client.TopTracks(ctx, limit, timeRange, offset)
		if err != nil {
			return nil, TrackListResult{}, err
		}

		return nil, TrackListResult{Tracks: spotify.SimplifyTracks(tracks)}, nil
	}
}

// SearchTracksInput is the MCP tool input for search_tracks.
type SearchTracksInput struct {
	Query  string `json:"query" jsonschema:"text query, required"`
	Limit  *int   `json:"limit,omitempty" jsonschema:"page size, 1-50, default 5"`
	Offset int    `json:"offset,omitempty" jsonschema:"pagination offset"`
}

// SearchTracksTool defines the MCP tool schema for track search.
func SearchTracksTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_tracks",
		Description: "Search the Spotify catalog for tracks by text query; returns simplified track metadata",
	}
}

// SearchTracksHandler executes a track search request.
func SearchTracksHandler(deps *Deps) mcp.ToolHandlerFor[SearchTracksInput, TrackListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchTracksInput) (*mcp.CallToolResult, TrackListResult, error) {
		if strings.TrimSpace(input.Query) == "" {
			return nil, TrackListResult{}, fmt.Errorf("%w: query is required", shared.ErrInvalidArgument)
		}

		limit := clampLimit(input.Limit, defaultFindLimit)
		offset := clampOffset(input.Offset)

		gateway, err := deps.Gateway.Get()
		if err != nil {
			return nil, TrackListResult{}, err
		}

		tracks, err := gateway.Client.SearchTracks(ctx, input.Query, limit, offset)
		if err != nil {
			return nil, TrackListResult{}, err
		}

		return nil, TrackListResult{Tracks: spotify.SimplifyTracks(tracks)}, nil
	}
}

// CreatePlaylistInput is the MCP tool input for create_playlist.
type CreatePlaylistInput struct {
	Name        string   `json:"name" jsonschema:"playlist name, required"`
	Description string   `json:"description,omitempty" jsonschema:"playlist description"`
	Public      bool     `json:"public,omitempty" jsonschema:"create as public playlist, default false"`
	TrackURIs   []string `json:"track_uris,omitempty" jsonschema:"optional track URIs to add after creation"`
}

// CreatePlaylistTool defines the MCP tool schema for playlist creation.
func CreatePlaylistTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_playlist",
		Description: "Create a playlist for the current user and optionally add tracks by URI (chunked)",
	}
}

// CreatePlaylistHandler executes a playlist creation request.
func CreatePlaylistHandler(deps *Deps) mcp.ToolHandlerFor[CreatePlaylistInput, spotify.PlaylistRef] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreatePlaylistInput) (*mcp.CallToolResult, spotify.PlaylistRef, error) {
		if strings.TrimSpace(input.Name) == "" {
			return nil, spotify.PlaylistRef{}, fmt.Errorf("%w: name is required", shared.ErrInvalidArgument)
		}

		gateway, err := deps.Gateway.Get()
		if err != nil {
			return nil, spotify.PlaylistRef{}, err
		}

		me, err := gateway.Client.Me(ctx)
		if err != nil {
			return nil, spotify.PlaylistRef{}, err
		}

		playlist, err := gateway.Client.CreatePlaylist(ctx, me.ID, input.Name, input.Description, input.Public)
		if err != nil {
			return nil, spotify.PlaylistRef{}, err
		}

		added := 0
		if len(input.TrackURIs) > 0 {
			added, err = gateway.Client.AddTracks(ctx, playlist.ID, input.TrackURIs)
			deps.recordMutation(playlist.ID, playlist.Name, len(input.TrackURIs), added)
			if err != nil {
				return nil, spotify.PlaylistRef{}, fmt.Errorf("playlist %s created but only %d of %d tracks were added: %w",
					playlist.ID, added, len(input.TrackURIs), err)
			}
		}

		return nil, spotify.PlaylistRef{ID: playlist.ID, Name: playlist.Name, TracksAdded: added}, nil
	}
}

// AddTracksInput is the MCP tool input for add_tracks_to_playlist.
type AddTracksInput struct {
	PlaylistID string   `json:"playlist_id" jsonschema:"target playlist ID, required"`
	URIs       []string `json:"uris" jsonschema:"track URIs to add, in order"`
}

// AddTracksResult is the MCP tool output for add_tracks_to_playlist.
type AddTracksResult struct {
	PlaylistID  string `json:"playlist_id" jsonschema:"target playlist ID"`
	TracksAdded int    `json:"tracks_added" jsonschema:"number of tracks confirmed added"`
}

// AddTracksTool defines the MCP tool schema for appending tracks to a playlist.
func AddTracksTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_tracks_to_playlist",
		Description: "Add track URIs to an existing playlist in order (chunked, sequential)",
	}
}

// AddTracksHandler executes a playlist append request.
func AddTracksHandler(deps *Deps) mcp.ToolHandlerFor[AddTracksInput, AddTracksResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AddTracksInput) (*mcp.CallToolResult, AddTracksResult, error) {
		if strings.TrimSpace(input.PlaylistID) == "" {
			return nil, AddTracksResult{}, fmt.Errorf("%w: playlist_id is required", shared.ErrInvalidArgument)
		}

		if len(input.URIs) == 0 {
			return nil, AddTracksResult{PlaylistID: input.PlaylistID}, nil
		}

		gateway, err := deps.Gateway.Get()
		if err != nil {
			return nil, AddTracksResult{}, err
		}

		added, err := gateway.Client.AddTracks(ctx, input.PlaylistID, input.URIs)
		deps.recordMutation(input.PlaylistID, "", len(input.URIs), added)
		if err != nil {
			return nil, AddTracksResult{}, fmt.Errorf("only %d of %d tracks were added to playlist %s: %w",
				added, len(input.URIs), input.PlaylistID, err)
		}

		return nil, AddTracksResult{PlaylistID: input.PlaylistID, TracksAdded: added}, nil
	}
}
