package mcpserver

import "github.com/dshills/canon/internal/review"

// ListAgentsInput takes no arguments.
type ListAgentsInput struct{}

// AgentInfo describes one registered agent.
type AgentInfo struct {
	Type                string `json:"type"`
	Description         string `json:"description"`
	ExpectedOutputShape string `json:"expectedOutputShape"`
}

// ListAgentsOutput is returned by list_agents.
type ListAgentsOutput struct {
	Agents []AgentInfo `json:"agents"`
}

// ResolveStandardsInput is the input for resolve_standards.
type ResolveStandardsInput struct {
	Diff string `json:"diff" jsonschema:"unified diff text, as produced by git diff"`
}

// ResolveStandardsOutput lists the documents that apply to a diff.
type ResolveStandardsOutput struct {
	Files     []string `json:"files"`
	Standards []string `json:"standards"`
	Warnings  []string `json:"warnings,omitempty"`
}

// AnalyzeDiffInput is the input for analyze_diff.
type AnalyzeDiffInput struct {
	Diff      string `json:"diff" jsonschema:"unified diff text to analyze"`
	AgentType string `json:"agentType,omitempty" jsonschema:"agent to run: reviewer, security, documenter or tester (default: reviewer)"`
	ModelName string `json:"modelName,omitempty" jsonschema:"provider-prefixed model, e.g. gpt-4o or anthropic/claude-sonnet-4 (default: configured model)"`
}

// AnalyzeDiffOutput wraps the run result.
type AnalyzeDiffOutput struct {
	Result review.AnalysisResult `json:"result"`
}
