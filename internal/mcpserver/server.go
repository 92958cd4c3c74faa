package mcpserver

import (
	"context"
	"errors"

	"github.com/dshills/canon/internal/agents"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "mcpserver")

// New creates an MCP server with the canon tools registered.
func New(svc *Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "canon",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_agents",
		Description: "List the analysis agents available to analyze_diff, with the output each one produces.",
	}, svc.ListAgents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_standards",
		Description: "Show which coding-standards documents apply to a unified diff. Does not call a model.",
	}, svc.ResolveStandards)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_diff",
		Description: "Run one agent over a unified diff with the studio standards that apply to it and return the model's feedback.",
	}, svc.AnalyzeDiff)

	return server
}

// Serve runs the server over stdio until the client disconnects or ctx is
// cancelled.
func Serve(ctx context.Context, svc *Service, version string) error {
	logger.Info("serving MCP over stdio")
	err := New(svc, version).Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func agentInfos(r *agents.Registry) []AgentInfo {
	types := r.Types()
	out := make([]AgentInfo, 0, len(types))
	for _, t := range types {
		def, err := r.Get(t)
		if err != nil {
			continue
		}
		out = append(out, AgentInfo{
			Type:                string(def.Type),
			Description:         def.Description,
			ExpectedOutputShape: def.ExpectedOutputShape,
		})
	}
	return out
}
