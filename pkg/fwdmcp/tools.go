package fwdmcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

// Tool input types

type QueryEventsInput struct {
	Channel   string   `json:"channel" jsonschema:"Channel key as returned by list_channels"`
	Count     int      `json:"count,omitempty" jsonschema:"Maximum number of most recent matching events (default: 100, max: 5000)"`
	Include   []string `json:"include,omitempty" jsonschema:"Terms that must all match the logger name or the message"`
	Exclude   []string `json:"exclude,omitempty" jsonschema:"Terms that hide an event when they match the logger name or the message"`
	Hide      []string `json:"hide,omitempty" jsonschema:"Levels to hide: trace, debug, info, warn, error, fatal, unknown"`
	Regex     bool     `json:"regex,omitempty" jsonschema:"Treat include and exclude terms as regular expressions"`
	Highlight bool     `json:"highlight,omitempty" jsonschema:"Return highlighted message segments for every term"`
}

type GetMetricsInput struct {
	Points int `json:"points,omitempty" jsonschema:"Number of one-second rate samples to include (max: 300)"`
}

type RestartListenersInput struct {
	Addresses []string `json:"addresses" jsonschema:"Listener addresses, e.g. udp://0.0.0.0:7071"`
}

type GetLogsInput struct {
	Count  int    `json:"count,omitempty" jsonschema:"Number of log entries to return (default: 50, max: 500)"`
	Level  string `json:"level,omitempty" jsonschema:"Filter by log level: debug, info, warning, error, or all"`
	Search string `json:"search,omitempty" jsonschema:"Search term to filter log messages"`
}

type ExportChannelInput struct {
	Channel     string `json:"channel" jsonschema:"Channel key to export"`
	Destination string `json:"destination" jsonschema:"Directory path, file:// URL or s3://bucket/prefix"`
}

const (
	defaultQueryCount = 100
	maxQueryCount     = 5000
	defaultLogCount   = 50
	maxLogCount       = 500
	maxRatePoints     = 300
)

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_channels",
		Description: "List every log channel logfwd has created. A channel is one application instance on one sender; the key is used by query_events and export_channel.",
	}, s.handleListChannels)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_events",
		Description: "Return the most recent events of a channel after applying level visibility and include/exclude terms, exactly as the live viewer would show them.",
	}, s.handleQueryEvents)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_metrics",
		Description: "Get receive counters: datagrams, bytes, parse failures, receive errors, dispatched events and receive rate.",
	}, s.handleGetMetrics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_listeners",
		Description: "List the UDP addresses logfwd is currently bound to.",
	}, s.handleListListeners)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "restart_listeners",
		Description: "Stop every listener and bind the given addresses. Succeeds when at least one address binds; the error message names the addresses that failed.",
	}, s.handleRestartListeners)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "stop_listeners",
		Description: "Close every UDP listener. Buffered channels stay readable.",
	}, s.handleStopListeners)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_system_logs",
		Description: "Get logfwd's own recent log entries, e.g. bind failures and datagrams that did not parse.",
	}, s.handleGetLogs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "export_channel",
		Description: "Write a channel's replay buffer as gzipped JSON lines to a directory or an S3 prefix.",
	}, s.handleExportChannel)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_health",
		Description: "Check that the logfwd API is reachable and report its version and uptime.",
	}, s.handleGetHealth)
}

func (s *Server) classify(err error, details map[string]interface{}) error {
	return ClassifyError(err, s.api.BaseURL(), details)
}

func (s *Server) requireAPI() error {
	if s.api == nil {
		return NewAPIUnavailableError(DefaultAPIURL, nil)
	}
	return nil
}

func channelToMap(ch types.ChannelResponse) map[string]interface{} {
	return map[string]interface{}{
		"key":         ch.Key,
		"app":         ch.App,
		"sender":      ch.Sender,
		"count":       ch.Count,
		"total":       ch.Total,
		"maxCount":    ch.MaxCount,
		"capacity":    ch.Capacity,
		"subscribers": ch.Listeners,
	}
}

func (s *Server) handleListChannels(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}

	channels, err := s.api.Channels(ctx)
	if err != nil {
		return nil, nil, s.classify(err, nil)
	}

	list := make([]map[string]interface{}, len(channels))
	var b strings.Builder
	fmt.Fprintf(&b, "%d channels", len(channels))
	for i, ch := range channels {
		list[i] = channelToMap(ch)
		fmt.Fprintf(&b, "\n- %s: %d events (%d total)", ch.Key, ch.Count, ch.Total)
	}

	result := map[string]interface{}{
		"channels": list,
		"count":    len(list),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
	}, result, nil
}

func (s *Server) handleQueryEvents(ctx context.Context, req *mcp.CallToolRequest, input QueryEventsInput) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(input.Channel) == "" {
		return nil, nil, NewInvalidInputError("channel", "", "channel key is required, see list_channels")
	}

	count := input.Count
	if count <= 0 {
		count = defaultQueryCount
	}
	if count > maxQueryCount {
		count = maxQueryCount
	}

	resp, err := s.api.Events(ctx, input.Channel, EventQuery{
		Count:     count,
		Include:   input.Include,
		Exclude:   input.Exclude,
		Hide:      input.Hide,
		Regex:     input.Regex,
		Highlight: input.Highlight,
	})
	if err != nil {
		return nil, nil, s.classify(err, map[string]interface{}{"channel": input.Channel})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d matching events in %s", len(resp.Events), resp.Matching, resp.Channel.Key)
	for _, ev := range resp.Events {
		fmt.Fprintf(&b, "\n%s %-5s %s - %s", ev.Time, ev.Level, ev.Logger, ev.Message)
		if ev.Exception != "" {
			fmt.Fprintf(&b, "\n%s", ev.Exception)
		}
	}

	result := map[string]interface{}{
		"channel":      channelToMap(resp.Channel),
		"events":       resp.Events,
		"matching":     resp.Matching,
		"hiddenLevels": resp.Hidden,
		"terms":        resp.Terms,
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
	}, result, nil
}

func (s *Server) handleGetMetrics(ctx context.Context, req *mcp.CallToolRequest, input GetMetricsInput) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}

	points := input.Points
	if points > maxRatePoints {
		points = maxRatePoints
	}

	m, err := s.api.Metrics(ctx, points)
	if err != nil {
		return nil, nil, s.classify(err, nil)
	}

	result := map[string]interface{}{
		"datagramsReceived": m.DatagramsReceived,
		"bytesReceived":     m.BytesReceived,
		"parseFailures":     m.ParseFailures,
		"receiveErrors":     m.ReceiveErrors,
		"eventsDispatched":  m.EventsDispatched,
		"windowsFlushed":    m.WindowsFlushed,
		"channelsCreated":   m.ChannelsCreated,
		"datagramsPerSec":   m.DatagramsPerSec,
		"bytesPerSec":       m.BytesPerSec,
		"uptime":            m.Uptime,
	}
	if len(m.History) > 0 {
		result["history"] = m.History
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Metrics: %d datagrams, %d parse failures, %d channels, %.1f datagrams/s",
				m.DatagramsReceived, m.ParseFailures, m.ChannelsCreated, m.DatagramsPerSec)},
		},
	}, result, nil
}

func (s *Server) handleListListeners(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}

	resp, err := s.api.Listeners(ctx)
	if err != nil {
		return nil, nil, s.classify(err, nil)
	}

	text := "No listeners bound"
	if len(resp.Addresses) > 0 {
		text = "Listening on " + strings.Join(resp.Addresses, ", ")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, map[string]interface{}{"addresses": resp.Addresses}, nil
}

func (s *Server) handleRestartListeners(ctx context.Context, req *mcp.CallToolRequest, input RestartListenersInput) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}

	var addrs []string
	for _, a := range input.Addresses {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return nil, nil, NewInvalidInputError("addresses", "", "at least one udp://host:port address is required")
	}

	resp, err := s.api.RestartListeners(ctx, addrs)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == "BIND_FAILED" {
			return nil, nil, NewBindFailedError(addrs, apiErr.Message)
		}
		return nil, nil, s.classify(err, map[string]interface{}{"addresses": addrs})
	}

	text := "Listening on " + strings.Join(resp.Addresses, ", ")
	if resp.ErrorMessage != "" {
		text += "\n" + resp.ErrorMessage
	}
	result := map[string]interface{}{
		"anyStarted":   resp.AnyStarted,
		"errorMessage": resp.ErrorMessage,
		"addresses":    resp.Addresses,
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, result, nil
}

func (s *Server) handleStopListeners(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}

	if _, err := s.api.StopListeners(ctx); err != nil {
		return nil, nil, s.classify(err, nil)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "All listeners stopped"}},
	}, map[string]interface{}{"stopped": true}, nil
}

func (s *Server) handleGetLogs(ctx context.Context, req *mcp.CallToolRequest, input GetLogsInput) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}

	count := input.Count
	if count <= 0 {
		count = defaultLogCount
	}
	if count > maxLogCount {
		count = maxLogCount
	}

	resp, err := s.api.SystemLogs(ctx, count)
	if err != nil {
		return nil, nil, s.classify(err, nil)
	}

	level := strings.ToLower(input.Level)
	search := strings.ToLower(input.Search)

	var filtered []map[string]interface{}
	for _, entry := range resp.Logs {
		if level != "" && level != "all" && strings.ToLower(entry.Level) != level {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(entry.Message), search) {
			continue
		}
		filtered = append(filtered, map[string]interface{}{
			"timestamp": entry.Timestamp,
			"level":     entry.Level,
			"message":   entry.Message,
			"fields":    entry.Fields,
		})
	}

	result := map[string]interface{}{
		"logs":  filtered,
		"count": len(filtered),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Retrieved %d log entries", len(filtered))},
		},
	}, result, nil
}

func (s *Server) handleExportChannel(ctx context.Context, req *mcp.CallToolRequest, input ExportChannelInput) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(input.Channel) == "" {
		return nil, nil, NewInvalidInputError("channel", "", "channel key is required, see list_channels")
	}
	if strings.TrimSpace(input.Destination) == "" {
		return nil, nil, NewInvalidInputError("destination", "", "a directory, file:// URL or s3://bucket/prefix is required")
	}

	resp, err := s.api.Export(ctx, input.Channel, input.Destination)
	if err != nil {
		return nil, nil, s.classify(err, map[string]interface{}{
			"channel":     input.Channel,
			"destination": input.Destination,
		})
	}

	result := map[string]interface{}{
		"channel":     resp.Channel,
		"destination": resp.Destination,
		"events":      resp.Events,
		"bytes":       resp.Bytes,
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Exported %d events of %s to %s (%d bytes)",
				resp.Events, resp.Channel, resp.Destination, resp.Bytes)},
		},
	}, result, nil
}

func (s *Server) handleGetHealth(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	if err := s.requireAPI(); err != nil {
		return nil, nil, err
	}

	h, err := s.api.Health(ctx)
	if err != nil {
		return nil, nil, s.classify(err, nil)
	}

	result := map[string]interface{}{
		"status":  h.Status,
		"version": h.Version,
		"uptime":  h.Uptime,
		"apiUrl":  s.api.BaseURL(),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("logfwd %s is %s, up %s", h.Version, h.Status, h.Uptime)},
		},
	}, result, nil
}
