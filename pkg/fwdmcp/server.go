// Package fwdmcp exposes logfwd to MCP clients. The server speaks MCP on
// stdio and answers every tool, resource and prompt by calling the REST
// API of a running `logfwd listen --api` process.
package fwdmcp

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps an SDK server wired to an API backend
type Server struct {
	mcpServer *mcp.Server
	version   string
	api       API

	stop     chan struct{}
	stopOnce sync.Once
}

// NewServer registers the logfwd tools, resources and prompts. A nil api
// is allowed; every handler then reports the API as unavailable.
func NewServer(version string, api API) *Server {
	s := &Server{
		version: version,
		api:     api,
		stop:    make(chan struct{}),
	}
	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: "logfwd", Version: version}, nil)
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

func (s *Server) MCPServer() *mcp.Server { return s.mcpServer }

// Serve blocks on t until ctx ends, Stop is called or the peer hangs up
func (s *Server) Serve(ctx context.Context, t mcp.Transport) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	return s.mcpServer.Run(ctx, t)
}

// ServeStdio serves on the process's stdin and stdout
func (s *Server) ServeStdio() error {
	return s.Serve(context.Background(), &mcp.StdioTransport{})
}

// Stop may be called more than once
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
