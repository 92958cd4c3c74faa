package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dshills/canon/internal/redact"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "providers")

const (
	// DefaultProvider handles model names without a "provider/" prefix.
	DefaultProvider = "openai"
	DefaultTimeout  = 120 * time.Second
)

var aliases = map[string]string{
	"google": "gemini",
}

// Options configures the built-in invokers.
type Options struct {
	OpenAIBaseURL    string
	AnthropicBaseURL string
	GeminiBaseURL    string
	OllamaHost       string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

// Gateway routes a Call to the Invoker registered for its model prefix.
// Register must not be called concurrently with Invoke.
type Gateway struct {
	invokers map[string]Invoker
	timeout  time.Duration
}

// NewGateway returns a gateway with no invokers registered.
func NewGateway(timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{invokers: make(map[string]Invoker), timeout: timeout}
}

// New returns a gateway with the openai, anthropic, gemini and ollama
// invokers registered.
func New(opts Options) (*Gateway, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	ollamaInv, err := NewOllama(opts.OllamaHost, client)
	if err != nil {
		return nil, err
	}

	g := NewGateway(opts.Timeout)
	g.Register("openai", NewOpenAI(opts.OpenAIBaseURL, client))
	g.Register("anthropic", NewAnthropic(opts.AnthropicBaseURL, client))
	g.Register("gemini", NewGemini(opts.GeminiBaseURL, client))
	g.Register("ollama", ollamaInv)
	return g, nil
}

// Register binds prefix to inv, replacing any earlier binding.
func (g *Gateway) Register(prefix string, inv Invoker) {
	g.invokers[strings.ToLower(prefix)] = inv
}

// Providers lists the registered prefixes in sorted order.
func (g *Gateway) Providers() []string {
	names := make([]string, 0, len(g.invokers))
	for name := range g.invokers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Timeout is the per-call deadline.
func (g *Gateway) Timeout() time.Duration { return g.timeout }

// Split separates "provider/model" on the first slash. Names without a
// slash belong to DefaultProvider.
func Split(model string) (provider, name string) {
	model = strings.TrimSpace(model)
	if p, n, ok := strings.Cut(model, "/"); ok {
		provider = strings.ToLower(p)
		if canonical, ok := aliases[provider]; ok {
			provider = canonical
		}
		return provider, n
	}
	return DefaultProvider, model
}

// Invoke performs exactly one outbound request. Every error is a
// *ProviderError whose message never contains call.APIKey.
func (g *Gateway) Invoke(ctx context.Context, call Call) (Response, error) {
	provider, name := Split(call.Model)
	inv, ok := g.invokers[provider]
	if !ok {
		return Response{}, &ProviderError{
			Provider: provider,
			Message:  fmt.Sprintf("no invoker registered for provider %q", provider),
		}
	}
	if name == "" {
		return Response{}, &ProviderError{Provider: provider, Message: "model name is empty"}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	call.Model = name
	start := time.Now()
	resp, err := inv.Invoke(ctx, call)
	elapsed := time.Since(start)

	if err != nil {
		pe := g.normalize(ctx, provider, err, call.APIKey)
		logger.WithFields(log.Fields{
			"provider": provider,
			"model":    name,
			"status":   pe.StatusCode,
			"timeout":  pe.Timeout,
			"elapsed":  elapsed.Round(time.Millisecond),
		}).Debug("model call failed")
		return Response{}, pe
	}

	logger.WithFields(log.Fields{
		"provider": provider,
		"model":    name,
		"tokens":   resp.TokensUsed,
		"elapsed":  elapsed.Round(time.Millisecond),
	}).Debug("model call succeeded")
	resp.Provider, resp.Model = provider, name
	return resp, nil
}

func (g *Gateway) normalize(ctx context.Context, provider string, err error, apiKey string) *ProviderError {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		pe = &ProviderError{Provider: provider, Message: err.Error()}
	} else {
		cp := *pe
		pe = &cp
	}
	if pe.Provider == "" {
		pe.Provider = provider
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		pe.Timeout = true
		pe.Message = fmt.Sprintf("request timed out after %s", g.timeout)
	}
	pe.Message = redact.Scrub(pe.Message, apiKey)
	return pe
}
