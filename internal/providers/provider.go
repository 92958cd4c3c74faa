package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const defaultMaxTokens = 4096

// Call is one model invocation. Model is "provider/model" when it reaches
// the Gateway and the bare model name when it reaches an Invoker.
type Call struct {
	Model        string
	APIKey       string
	SystemPrompt string
	UserContent  string
	MaxTokens    int
	Temperature  float64
}

func (c Call) maxTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

// Response is the text a provider produced.
type Response struct {
	Text       string
	TokensUsed int
	Provider   string
	Model      string
}

// Invoker performs a single request against one provider API.
type Invoker interface {
	Name() string
	Invoke(ctx context.Context, call Call) (Response, error)
}

// ProviderError is the only error type the Gateway returns.
type ProviderError struct {
	Provider   string
	Message    string
	StatusCode int
	Timeout    bool
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// IsAuth reports whether the provider rejected the credentials.
func (e *ProviderError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsAuthError reports whether err, or any error it wraps, is a
// ProviderError caused by bad credentials.
func IsAuthError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.IsAuth()
}
