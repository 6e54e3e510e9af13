package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/soundctl/spotmcp/internal/journal"
	"github.com/soundctl/spotmcp/internal/shared"
	"github.com/soundctl/spotmcp/internal/spotify"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	config  *shared.Config
	gateway *spotify.Lazy
	journal *journal.Journal
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Gateway *spotify.Lazy
	Journal *journal.Journal
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Gateway == nil {
		opts.Gateway = spotify.LazyFromConfig(opts.Config, opts.Logger)
	}

	return &Runner{
		config:  opts.Config,
		gateway: opts.Gateway,
		journal: opts.Journal,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, authCommand, tracksCommand, playlistCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// recordMutation journals a playlist mutation outcome. Journal failures are
// logged, never propagated.
func (r *Runner) recordMutation(playlistID, playlistName string, requested, committed int) {
	if r.journal == nil {
		return
	}
	entry := journal.Entry{
		PlaylistID:   playlistID,
		PlaylistName: playlistName,
		Requested:    requested,
		Committed:    committed,
	}
	if err := r.journal.Record(entry); err != nil {
		r.logger.Warn("failed to journal playlist mutation", "playlist_id", playlistID, "error", err)
	}
}
