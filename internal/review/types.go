package review

import (
	"context"
	"time"
)

// State is a pipeline stage. A finished run is always Succeeded or Failed.
type State string

const (
	StateStart             State = "start"
	StateDiffParsed        State = "diff_parsed"
	StateStandardsResolved State = "standards_resolved"
	StateAgentSelected     State = "agent_selected"
	StatePromptBuilt       State = "prompt_built"
	StateModelInvoked      State = "model_invoked"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// FailureKind classifies a failed run.
type FailureKind string

const (
	KindUnknownAgent FailureKind = "unknown_agent"
	KindProvider     FailureKind = "provider"
	KindPrompt       FailureKind = "prompt"
	KindInternal     FailureKind = "internal"
)

// Failure describes why a run produced no text.
type Failure struct {
	Kind     FailureKind `json:"kind"`
	Provider string      `json:"provider,omitempty"`
	Message  string      `json:"message"`
	// Auth is set when the provider rejected the credentials.
	Auth    bool `json:"auth,omitempty"`
	Timeout bool `json:"timeout,omitempty"`
}

func (f *Failure) Error() string {
	if f.Provider != "" {
		return string(f.Kind) + ": " + f.Provider + ": " + f.Message
	}
	return string(f.Kind) + ": " + f.Message
}

// AnalysisRequest is the input to one run.
type AnalysisRequest struct {
	AgentType string `json:"agentType"`
	ModelName string `json:"modelName"`
	Diff      string `json:"-"`
	APIKey    string `json:"-"`
}

const (
	DefaultAgent = "reviewer"
	DefaultModel = "gpt-4o"
)

func (r AnalysisRequest) withDefaults() AnalysisRequest {
	if r.AgentType == "" {
		r.AgentType = DefaultAgent
	}
	if r.ModelName == "" {
		r.ModelName = DefaultModel
	}
	return r
}

// Truncation records what the prompt budget left out.
type Truncation struct {
	StandardsDropped []string `json:"standardsDropped,omitempty"`
	StandardsCut     bool     `json:"standardsCut,omitempty"`
	FilesOmitted     []string `json:"filesOmitted,omitempty"`
	DiffCut          bool     `json:"diffCut,omitempty"`
}

// Any reports whether anything was dropped or cut.
func (t Truncation) Any() bool {
	return len(t.StandardsDropped) > 0 || t.StandardsCut || len(t.FilesOmitted) > 0 || t.DiffCut
}

// AnalysisResult is the outcome of one run. Exactly one of Text and Error
// is set, except for an empty diff where Text explains that nothing was
// analysed.
type AnalysisResult struct {
	RunID      string        `json:"runId"`
	AgentType  string        `json:"agentType"`
	ModelName  string        `json:"modelName"`
	Text       string        `json:"text,omitempty"`
	Error      *Failure      `json:"error,omitempty"`
	Empty      bool          `json:"empty,omitempty"`
	State      State         `json:"state"`
	Files      []string      `json:"files,omitempty"`
	Standards  []string      `json:"standards,omitempty"`
	Truncation *Truncation   `json:"truncation,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	Redactions int           `json:"redactions,omitempty"`
	TokensUsed int           `json:"tokensUsed,omitempty"`
	Duration   time.Duration `json:"durationNs"`
}

// OK reports whether the run succeeded.
func (r AnalysisResult) OK() bool {
	return r.Error == nil && r.State == StateSucceeded
}

// DiffSource supplies the raw unified diff for a run.
type DiffSource interface {
	Diff(ctx context.Context) (string, error)
}

// Sink publishes a finished result.
type Sink interface {
	Post(ctx context.Context, res AnalysisResult) error
}
