package main

import (
	"context"
	"time"

	"github.com/soundctl/spotmcp/internal/auth"
	"github.com/urfave/cli/v3"
)

// AuthLogin obtains a usable access token, running the interactive browser
// consent flow if the cache holds nothing refreshable.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	gateway, err := r.gateway.Get()
	if err != nil {
		return err
	}

	if _, err := gateway.Auth.EnsureToken(ctx); err != nil {
		return err
	}

	r.writePlain("✓ Authenticated with Spotify\n")
	r.writePlain("Token cache: %s\n", r.config.TokenCachePath())

	return nil
}

// AuthStatus reports the cached token state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	cache := auth.NewTokenCache(r.config.TokenCachePath())

	record, ok := cache.Read()
	if !ok {
		r.writePlain("✗ Not authenticated (no cached token at %s)\n", cache.Path())
		r.writePlain("Run 'spotmcp auth login' to authorize.\n")
		return nil
	}

	if record.Expired(time.Now()) {
		r.writePlain("✓ Cached token present (expired %s, will refresh on next use)\n", record.ExpiresAt.Local().Format(time.DateTime))
	} else {
		r.writePlain("✓ Cached token valid until %s\n", record.ExpiresAt.Local().Format(time.DateTime))
	}
	r.writePlain("Scope: %s\n", record.Scope)

	return nil
}

// AuthLogout removes the cached token, forcing consent on next use.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	cache := auth.NewTokenCache(r.config.TokenCachePath())

	if err := cache.Remove(); err != nil {
		return err
	}

	r.writePlain("✓ Cached token removed\n")
	return nil
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify (opens a browser when needed)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the cached token state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the cached token",
				Action: r.AuthLogout,
			},
		},
	}
}
