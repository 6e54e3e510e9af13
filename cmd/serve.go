package main

import (
	"context"

	"github.com/soundctl/spotmcp/internal/tools"
	"github.com/urfave/cli/v3"
)

// Serve runs the MCP server on stdin/stdout until the client disconnects.
//
// Logs go to stderr so the stdio transport stays clean.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	server := tools.NewServer(&tools.Deps{
		Gateway: r.gateway,
		Journal: r.journal,
		Logger:  r.logger,
	})

	return server.Serve(ctx)
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the playlist tools to an MCP client over stdio",
		Action: r.Serve,
	}
}
