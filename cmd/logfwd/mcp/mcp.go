// Package mcp provides the MCP (Model Context Protocol) subcommand for logfwd.
// This command starts an MCP server that connects to a running logfwd REST API,
// allowing AI assistants to browse channels and query log events.
package mcp

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/txn2/logfwd/pkg/fwdmcp"
)

var (
	apiURL  string
	verbose bool
)

// Version is set by the main package
var Version string

func init() {
	Cmd.Flags().StringVar(&apiURL, "api-url", fwdmcp.DefaultAPIURL, "URL of the logfwd REST API")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// Cmd is the MCP subcommand
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (connects to logfwd REST API)",
	Long: `Start an MCP (Model Context Protocol) server that connects to a running
logfwd receiver via its REST API.

Architecture:
  ┌─────────────┐    stdio     ┌─────────────┐    HTTP      ┌───────────────┐
  │  AI Client  │ ←──────────→ │ logfwd mcp  │ ←──────────→ │ logfwd listen │
  │ (Claude,etc)│   MCP proto  │  (bridge)   │ REST API     │  (UDP 7071)   │
  └─────────────┘              └─────────────┘              └───────────────┘

The receiver owns the UDP sockets and the channel state; MCP clients
spawn MCP servers as child processes, so the bridge only talks HTTP.

Prerequisites:
  1. Start the receiver in a separate terminal:
     logfwd listen               # Headless, API enabled
     logfwd listen --tui --api   # Viewer and API

  2. Configure your MCP client:
     {
       "mcpServers": {
         "logfwd": {
           "command": "logfwd",
           "args": ["mcp"]
         }
       }
     }

The MCP server provides tools for:
  - Listing channels and their counters
  - Querying events with level filters and include/exclude/regex terms
  - Viewing ingest metrics and logfwd's own logs
  - Restarting or stopping the UDP listeners
  - Exporting a channel to a directory or S3`,
	Example: `  # Start MCP server (connects to logfwd API at http://127.0.0.1:7070)
  logfwd mcp

  # Connect to a custom API URL
  logfwd mcp --api-url http://10.0.0.5:7070

  # With verbose logging (logs go to stderr, not interfering with stdio MCP)
  logfwd mcp --verbose`,
	Run: runMCP,
}

func runMCP(_ *cobra.Command, _ []string) {
	// stdout carries the MCP stdio transport
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	log.Infof("Starting logfwd MCP server (version %s)", Version)
	log.Infof("Connecting to REST API at: %s", apiURL)

	// tools are registered either way so clients can discover them; calls
	// report the API as unavailable until the receiver is up
	if err := verifyAPIConnection(apiURL); err != nil {
		log.Warnf("Cannot connect to logfwd API at %s: %v", apiURL, err)
		log.Warn("MCP server will start but tools require logfwd to be running.")
		log.Warn("Start logfwd in another terminal with: logfwd listen")
	} else {
		log.Info("API connection verified")
	}

	server := fwdmcp.NewServer(Version, fwdmcp.NewHTTPClient(apiURL))

	log.Info("MCP server initialized, starting stdio transport...")

	// blocks until the client disconnects
	if err := server.ServeStdio(); err != nil {
		log.Errorf("MCP server error: %v", err)
		os.Exit(1)
	}

	log.Info("MCP server stopped")
}

// verifyAPIConnection checks if the logfwd API is reachable
func verifyAPIConnection(baseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := fwdmcp.NewHTTPClient(baseURL).Health(ctx); err != nil {
		return errors.Wrap(err, "health check failed")
	}
	return nil
}
