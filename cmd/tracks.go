package main

import (
	"context"
	"fmt"

	"github.com/soundctl/spotmcp/internal/formatter"
	"github.com/soundctl/spotmcp/internal/shared"
	"github.com/soundctl/spotmcp/internal/spotify"
	"github.com/urfave/cli/v3"
)

// TracksTop lists the current user's top tracks.
func (r *Runner) TracksTop(ctx context.Context, cmd *cli.Command) error {
	limit := clampLimit(cmd.Int("limit"))
	timeRange := cmd.String("time-range")
	offset := cmd.Int("offset")
	if offset < 0 {
		offset = 0
	}

	switch timeRange {
	case "short_term", "medium_term", "long_term":
	default:
		timeRange = "short_term"
	}

	gateway, err := r.gateway.Get()
	if err != nil {
		return err
	}

	r.logger.Info("fetching top tracks", "limit", limit, "time_range", timeRange, "offset", offset)

	tracks, err := gateway.Client.TopTracks(ctx, limit, timeRange, offset)
	if err != nil {
		return err
	}

	return r.writeTracks(spotify.SimplifyTracks(tracks), cmd)
}

// TracksSearch searches the catalog for tracks.
func (r *Runner) TracksSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}

	limit := clampLimit(cmd.Int("limit"))
	offset := cmd.Int("offset")
	if offset < 0 {
		offset = 0
	}

	gateway, err := r.gateway.Get()
	if err != nil {
		return err
	}

	r.logger.Info("searching tracks", "query", query, "limit", limit)

	tracks, err := gateway.Client.SearchTracks(ctx, query, limit, offset)
	if err != nil {
		return err
	}

	return r.writeTracks(spotify.SimplifyTracks(tracks), cmd)
}

func (r *Runner) writeTracks(tracks []spotify.TrackRef, cmd *cli.Command) error {
	switch {
	case cmd.Bool("csv"):
		data, err := formatter.TracksCSV(tracks)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case cmd.Bool("json"):
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	default:
		return r.writePlain("%s\n", formatter.TrackList(tracks))
	}
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 50 {
		return 50
	}
	return limit
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
		&cli.BoolFlag{Name: "csv", Usage: "Output as CSV"},
	}
}

func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Inspect the user's listening history and search the catalog",
		Commands: []*cli.Command{
			{
				Name:  "top",
				Usage: "List the user's top tracks",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Number of tracks (1-50)", Value: 10},
					&cli.StringFlag{Name: "time-range", Aliases: []string{"t"}, Usage: "short_term, medium_term, or long_term", Value: "short_term"},
					&cli.IntFlag{Name: "offset", Usage: "Pagination offset"},
				}, outputFlags()...),
				Action: r.TracksTop,
			},
			{
				Name:      "search",
				Usage:     "Search the catalog for tracks",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Number of results (1-50)", Value: 5},
					&cli.IntFlag{Name: "offset", Usage: "Pagination offset"},
				}, outputFlags()...),
				Action: r.TracksSearch,
			},
		},
	}
}
