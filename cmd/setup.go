package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soundctl/spotmcp/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config.toml template and prepares the cache directory.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file already exists", "path", configPath)
	} else {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
	}

	cacheDir := filepath.Dir(r.config.TokenCachePath())
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	r.writePlain("Config: %s\n", configPath)
	r.writePlain("Token cache: %s\n", r.config.TokenCachePath())
	r.writePlain("Mutation journal: %s\n", r.config.JournalPath())
	r.writePlainln("Set your Spotify credentials in %s (or via SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET), then run 'spotmcp auth login'.", configPath)

	return nil
}
