package agents

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// Type identifies an agent.
type Type string

const (
	Reviewer   Type = "reviewer"
	Security   Type = "security"
	Documenter Type = "documenter"
	Tester     Type = "tester"
)

// ErrUnknownAgent matches any *UnknownAgentError with errors.Is.
var ErrUnknownAgent = errors.New("unknown agent type")

// UnknownAgentError is returned by Get for unregistered types.
type UnknownAgentError struct {
	Type Type
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("unknown agent type %q", string(e.Type))
}

func (e *UnknownAgentError) Is(target error) bool {
	return target == ErrUnknownAgent
}

// Definition is an agent: a pair of prompt templates plus the output shape
// the model is asked for.
type Definition struct {
	Type                Type
	Description         string
	SystemPrompt        string
	UserPrompt          string
	ExpectedOutputShape string
	// NeedsSignatures asks the caller to fill Input.Signatures.
	NeedsSignatures bool

	system *template.Template
	user   *template.Template
}

// Input holds the placeholder values for rendering.
type Input struct {
	Standards  string
	Diff       string
	Signatures string
}

type templateData struct {
	Input
	OutputShape string
}

// Registry maps agent types to definitions. Register is not safe for
// concurrent use; once populated, a Registry may be read from any goroutine.
type Registry struct {
	defs map[Type]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Type]Definition)}
}

// Default returns a registry holding the built-in agents.
func Default() *Registry {
	r := NewRegistry()
	for _, def := range Builtins() {
		if err := r.Register(def); err != nil {
			panic(fmt.Sprintf("agents: built-in %s: %v", def.Type, err))
		}
	}
	return r
}

// Register parses the definition's templates and adds it, replacing any
// definition of the same type.
func (r *Registry) Register(def Definition) error {
	if def.Type == "" {
		return fmt.Errorf("agent type is required")
	}
	def.Type = Type(strings.ToLower(string(def.Type)))

	sys, err := template.New(string(def.Type) + ".system").Option("missingkey=error").Parse(def.SystemPrompt)
	if err != nil {
		return fmt.Errorf("parsing system prompt: %w", err)
	}
	user, err := template.New(string(def.Type) + ".user").Option("missingkey=error").Parse(def.UserPrompt)
	if err != nil {
		return fmt.Errorf("parsing user prompt: %w", err)
	}
	def.system, def.user = sys, user
	r.defs[def.Type] = def
	return nil
}

// Get returns the definition for t.
func (r *Registry) Get(t Type) (Definition, error) {
	def, ok := r.defs[Type(strings.ToLower(strings.TrimSpace(string(t))))]
	if !ok {
		return Definition{}, &UnknownAgentError{Type: t}
	}
	return def, nil
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Render fills the definition's templates.
func Render(def Definition, in Input) (system, user string, err error) {
	if def.system == nil || def.user == nil {
		return "", "", fmt.Errorf("agent %s is not registered", def.Type)
	}
	data := templateData{Input: in, OutputShape: def.ExpectedOutputShape}

	var sb, ub strings.Builder
	if err := def.system.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("rendering system prompt: %w", err)
	}
	if err := def.user.Execute(&ub, data); err != nil {
		return "", "", fmt.Errorf("rendering user prompt: %w", err)
	}
	return sb.String(), ub.String(), nil
}
