package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/soundctl/spotmcp/internal/journal"
	"github.com/soundctl/spotmcp/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	godotenv.Load()

	logger := shared.NewLogger(os.Stderr)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	if err := shared.ApplyEnv(config); err != nil {
		logger.Warn("failed to apply environment overrides", "error", err)
	}

	j, err := journal.Open(config.JournalPath())
	if err != nil {
		logger.Warn("mutation journal unavailable", "path", config.JournalPath(), "error", err)
	} else {
		defer j.Close()
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Journal: j,
		Logger:  logger,
	})

	app := newApp(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrInvalidArgument) || errors.Is(err, shared.ErrMissingArgument) {
			logger.Error(err.Error())
			os.Exit(2)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotmcp",
		Usage:   "Spotify credential gateway and MCP tool server",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(r.logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: r.register(),
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config.toml template and the cache directories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
