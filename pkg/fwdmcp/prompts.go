package fwdmcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts registers all MCP prompt templates
func (s *Server) registerPrompts() {
	// triage_channel - walk through a channel's warnings and errors
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "triage_channel",
		Description: "Find and explain the warnings and errors of one application's log channel",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "channel",
				Description: "Channel key (optional, the busiest channel is used when empty)",
				Required:    false,
			},
			{
				Name:        "search",
				Description: "Text the interesting events contain, e.g. an order id (optional)",
				Required:    false,
			},
		},
	}, s.handleTriageChannelPrompt)

	// check_ingest - why are no events arriving
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "check_ingest",
		Description: "Diagnose why log events are not showing up in logfwd",
		Arguments:   []*mcp.PromptArgument{},
	}, s.handleCheckIngestPrompt)
}

func promptArg(req *mcp.GetPromptRequest, name string) string {
	if req == nil || req.Params == nil || req.Params.Arguments == nil {
		return ""
	}
	return req.Params.Arguments[name]
}

func (s *Server) handleTriageChannelPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	channel := promptArg(req, "channel")
	search := promptArg(req, "search")

	content := "You are helping a developer read the logs of a running application through logfwd.\n\n"
	if channel != "" {
		content += fmt.Sprintf("Focus on channel: %s\n", channel)
	}
	if search != "" {
		content += fmt.Sprintf("The developer is looking for events containing: %s\n", search)
	}

	content += `
## Steps to Follow

1. **Pick the channel**
   - Use 'list_channels' and choose the requested channel, or the one with the most events

2. **Look at problems first**
   - Use 'query_events' with hide: ["trace", "debug", "info"] to see only warnings and worse
   - Add include terms to narrow down, exclude terms to drop known noise

3. **Get the surrounding context**
   - Repeat 'query_events' without hiding levels, using an include term from the failing event
     (a thread name, a request id or the logger name)

4. **Explain**
   - Summarize what failed, in which logger, and what happened right before it
   - Quote exception text when present

Keep answers short and cite timestamps from the events.`

	return &mcp.GetPromptResult{
		Description: "Triage a logfwd channel",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: content},
			},
		},
	}, nil
}

func (s *Server) handleCheckIngestPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	content := `You are helping a developer find out why log events are not reaching logfwd.

## Steps to Follow

1. Use 'get_health' to confirm the API answers. If it does not, logfwd is not running with --api.
2. Use 'list_listeners' to see which UDP addresses are bound. No addresses means the port was taken
   or the listeners were stopped; 'restart_listeners' can bind again.
3. Use 'get_metrics'. If datagrams stay at zero nothing is reaching the port: check the sender's
   UDPAppender host and port. If parse failures grow, the sender is not emitting log4j XML.
4. Use 'get_system_logs' with level "warning" for bind errors and rejected datagrams.
5. Use 'list_channels' to confirm a channel appears once events arrive.`

	return &mcp.GetPromptResult{
		Description: "Diagnose missing log events",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: content},
			},
		},
	}, nil
}
