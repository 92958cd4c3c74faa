package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

const defaultOllamaHost = "http://localhost:11434"

// Ollama talks to a local or remote Ollama server through its Go client.
// No API key is required; when one is supplied it is sent as a bearer token.
type Ollama struct {
	host   *url.URL
	client *http.Client
}

// NewOllama returns an Ollama invoker for host. An empty host uses the
// local default.
func NewOllama(host string, client *http.Client) (*Ollama, error) {
	if host == "" {
		host = defaultOllamaHost
	}
	host = strings.TrimRight(host, "/")
	host = strings.TrimSuffix(host, "/v1/chat/completions")
	host = strings.TrimSuffix(host, "/v1")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama host: %w", err)
	}
	return &Ollama{host: u, client: client}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Invoke(ctx context.Context, call Call) (Response, error) {
	httpClient := o.client
	if call.APIKey != "" {
		httpClient = &http.Client{Transport: &bearerTransport{base: o.client.Transport, token: call.APIKey}}
	}
	client := ollama.NewClient(o.host, httpClient)

	stream := false
	options := map[string]any{"num_predict": call.maxTokens()}
	if call.Temperature > 0 {
		options["temperature"] = call.Temperature
	}
	req := &ollama.ChatRequest{
		Model: call.Model,
		Messages: []ollama.Message{
			{Role: "system", Content: call.SystemPrompt},
			{Role: "user", Content: call.UserContent},
		},
		Stream:  &stream,
		Options: options,
	}

	var sb strings.Builder
	tokens := 0
	err := client.Chat(ctx, req, func(res ollama.ChatResponse) error {
		sb.WriteString(res.Message.Content)
		if res.Done {
			tokens = res.PromptEvalCount + res.EvalCount
		}
		return nil
	})
	if err != nil {
		var se ollama.StatusError
		if errors.As(err, &se) {
			return Response{}, statusError(o.Name(), se.StatusCode, []byte(se.ErrorMessage))
		}
		return Response{}, &ProviderError{Provider: o.Name(), Message: fmt.Sprintf("chat failed: %v", err)}
	}
	if sb.Len() == 0 {
		return Response{}, emptyResponse(o.Name())
	}
	return Response{
		Text:       sb.String(),
		TokensUsed: tokens,
		Provider:   o.Name(),
		Model:      call.Model,
	}, nil
}

type bearerTransport struct {
	base  http.RoundTripper
	token string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
