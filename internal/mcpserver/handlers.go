package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/canon/internal/agents"
	"github.com/dshills/canon/internal/diff"
	"github.com/dshills/canon/internal/review"
	"github.com/dshills/canon/internal/standards"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Service holds what the tool handlers need. APIKey is the provider key
// used for every analyze_diff call; clients never pass keys as arguments.
type Service struct {
	Registry  *agents.Registry
	Pipeline  *review.Pipeline
	Documents map[string]standards.Document
	Table     standards.Table
	Ignore    []string
	Agent     string
	Model     string
	APIKey    string
}

// ListAgents returns every registered agent.
func (s *Service) ListAgents(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListAgentsInput,
) (*mcp.CallToolResult, ListAgentsOutput, error) {
	return nil, ListAgentsOutput{Agents: agentInfos(s.Registry)}, nil
}

// ResolveStandards parses the diff and resolves its standards.
func (s *Service) ResolveStandards(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResolveStandardsInput,
) (*mcp.CallToolResult, ResolveStandardsOutput, error) {
	files, warnings := diff.Parse(input.Diff)
	files = diff.Filter(files, s.Ignore)

	out := ResolveStandardsOutput{
		Files:     diff.Paths(files),
		Standards: []string{},
	}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	if len(files) > 0 {
		out.Standards = standards.Resolve(files, s.Documents, s.Table).Keys()
	}
	return nil, out, nil
}

// AnalyzeDiff runs the pipeline. A failed run is reported as a tool error
// with the result still attached.
func (s *Service) AnalyzeDiff(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeDiffInput,
) (*mcp.CallToolResult, AnalyzeDiffOutput, error) {
	if strings.TrimSpace(input.Diff) == "" {
		return nil, AnalyzeDiffOutput{}, fmt.Errorf("diff is required")
	}
	req := review.AnalysisRequest{
		AgentType: firstNonEmpty(input.AgentType, s.Agent),
		ModelName: firstNonEmpty(input.ModelName, s.Model),
		Diff:      input.Diff,
		APIKey:    s.APIKey,
	}
	res := s.Pipeline.Run(ctx, req)
	logger.WithField("run", res.RunID).WithField("state", res.State).Debug("analyze_diff finished")

	out := AnalyzeDiffOutput{Result: res}
	if res.Error != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: res.Error.Error()}},
		}, out, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Text}},
	}, out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
