package fwdmcp

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerResources registers all MCP resources
func (s *Server) registerResources() {
	// logfwd://channels - every channel and its fill level
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "logfwd://channels",
		Name:        "Log Channels",
		Description: "Every channel logfwd has created, with buffered and total event counts",
		MIMEType:    "application/json",
	}, s.handleChannelsResource)

	// logfwd://metrics - receive counters
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "logfwd://metrics",
		Name:        "Receive Metrics",
		Description: "Datagram, byte and parse failure counters with the current receive rate",
		MIMEType:    "application/json",
	}, s.handleMetricsResource)

	// logfwd://listeners - bound addresses
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "logfwd://listeners",
		Name:        "UDP Listeners",
		Description: "Addresses logfwd is currently receiving log4j datagrams on",
		MIMEType:    "application/json",
	}, s.handleListenersResource)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleChannelsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if err := s.requireAPI(); err != nil {
		return nil, err
	}
	channels, err := s.api.Channels(ctx)
	if err != nil {
		return nil, s.classify(err, nil)
	}

	list := make([]map[string]interface{}, len(channels))
	for i, ch := range channels {
		list[i] = channelToMap(ch)
	}
	return jsonResource(req.Params.URI, map[string]interface{}{
		"channels":  list,
		"count":     len(list),
		"timestamp": time.Now(),
	})
}

func (s *Server) handleMetricsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if err := s.requireAPI(); err != nil {
		return nil, err
	}
	m, err := s.api.Metrics(ctx, 0)
	if err != nil {
		return nil, s.classify(err, nil)
	}
	return jsonResource(req.Params.URI, m)
}

func (s *Server) handleListenersResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if err := s.requireAPI(); err != nil {
		return nil, err
	}
	l, err := s.api.Listeners(ctx)
	if err != nil {
		return nil, s.classify(err, nil)
	}
	return jsonResource(req.Params.URI, map[string]interface{}{
		"addresses": l.Addresses,
		"timestamp": time.Now(),
	})
}
