package main

import (
	"context"
	"fmt"

	"github.com/soundctl/spotmcp/internal/formatter"
	"github.com/soundctl/spotmcp/internal/shared"
	"github.com/soundctl/spotmcp/internal/spotify"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate creates a playlist for the current user, optionally seeding
// it with tracks.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	uris := cmd.StringSlice("uri")

	gateway, err := r.gateway.Get()
	if err != nil {
		return err
	}

	me, err := gateway.Client.Me(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("creating playlist", "name", name, "owner", me.ID, "tracks", len(uris))

	playlist, err := gateway.Client.CreatePlaylist(ctx, me.ID, name, cmd.String("description"), cmd.Bool("public"))
	if err != nil {
		return err
	}

	added := 0
	if len(uris) > 0 {
		added, err = gateway.Client.AddTracks(ctx, playlist.ID, uris)
		r.recordMutation(playlist.ID, playlist.Name, len(uris), added)
		if err != nil {
			return fmt.Errorf("playlist %s created but only %d of %d tracks were added: %w",
				playlist.ID, added, len(uris), err)
		}
	}

	ref := spotify.PlaylistRef{ID: playlist.ID, Name: playlist.Name, TracksAdded: added}
	if cmd.Bool("json") {
		return r.writeJSON(ref, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.PlaylistSummary(ref))
}

// PlaylistAdd appends tracks to an existing playlist in order.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("playlist-id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID is required", shared.ErrMissingArgument)
	}

	uris := cmd.StringSlice("uri")
	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one --uri is required", shared.ErrMissingArgument)
	}

	gateway, err := r.gateway.Get()
	if err != nil {
		return err
	}

	r.logger.Info("adding tracks", "playlist_id", playlistID, "tracks", len(uris))

	added, err := gateway.Client.AddTracks(ctx, playlistID, uris)
	r.recordMutation(playlistID, "", len(uris), added)
	if err != nil {
		return fmt.Errorf("only %d of %d tracks were added to playlist %s: %w",
			added, len(uris), playlistID, err)
	}

	return r.writePlain("✓ Added %d tracks to %s\n", added, playlistID)
}

// History lists recent playlist mutations from the journal.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.journal == nil {
		return fmt.Errorf("%w: mutation journal is unavailable", shared.ErrInvalidConfig)
	}

	entries, err := r.journal.Recent(cmd.Int("limit"))
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("csv"):
		data, err := formatter.JournalCSV(entries)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case cmd.Bool("json"):
		return r.writeJSON(entries, cmd.Bool("pretty"))
	default:
		return r.writePlain("%s\n", formatter.JournalList(entries))
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Create playlists and add tracks",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a playlist, optionally seeding it with tracks",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Playlist description"},
					&cli.BoolFlag{Name: "public", Usage: "Create as a public playlist"},
					&cli.StringSliceFlag{Name: "uri", Aliases: []string{"u"}, Usage: "Track URI to add (repeatable)"},
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:      "add",
				Usage:     "Add tracks to an existing playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist-id"}},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "uri", Aliases: []string{"u"}, Usage: "Track URI to add (repeatable)"},
				},
				Action: r.PlaylistAdd,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent playlist mutations from the local journal",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Number of entries", Value: 20},
		}, outputFlags()...),
		Action: r.History,
	}
}
