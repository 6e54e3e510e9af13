package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "spotmcp"
	serverVersion = "0.1.0"
)

// Server hosts the MCP tool surface over stdio.
type Server struct {
	mcpServer *mcp.Server
	deps      *Deps
}

// NewServer creates an MCP server with all four playlist tools registered.
// The gateway inside deps is lazy: nothing connects to Spotify until a tool
// is actually called.
func NewServer(deps *Deps) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, deps)
	return &Server{mcpServer: mcpServer, deps: deps}
}

func registerTools(mcpServer *mcp.Server, deps *Deps) {
	mcp.AddTool(mcpServer, GetTopTracksTool(), GetTopTracksHandler(deps))
	mcp.AddTool(mcpServer, SearchTracksTool(), SearchTracksHandler(deps))
	mcp.AddTool(mcpServer, CreatePlaylistTool(), CreatePlaylistHandler(deps))
	mcp.AddTool(mcpServer, AddTracksTool(), AddTracksHandler(deps))
}

// Serve runs the server on stdin/stdout until the client disconnects or the
// context ends. Cancellation is a clean shutdown, not an error.
func (s *Server) Serve(ctx context.Context) error {
	s.deps.Logger.Info("starting MCP server on stdio", "name", serverName, "version", serverVersion)

	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
