package providers

import (
	"context"
	"net/http"
	"strings"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic calls the messages endpoint.
type Anthropic struct {
	baseURL string
	client  *http.Client
}

// NewAnthropic returns an Anthropic invoker. An empty baseURL uses the public API.
func NewAnthropic(baseURL string, client *http.Client) *Anthropic {
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}
	return &Anthropic{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Invoke(ctx context.Context, call Call) (Response, error) {
	body := anthropicRequest{
		Model:     call.Model,
		MaxTokens: call.maxTokens(),
		System:    call.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: call.UserContent},
		},
	}
	if call.Temperature > 0 {
		body.Temperature = &call.Temperature
	}

	headers := map[string]string{
		"x-api-key":         call.APIKey,
		"anthropic-version": anthropicAPIVersion,
	}
	var result anthropicResponse
	if err := postJSON(ctx, a.client, a.Name(), a.baseURL+"/messages", headers, body, &result); err != nil {
		return Response{}, err
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return Response{}, emptyResponse(a.Name())
	}
	return Response{
		Text:       sb.String(),
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
		Provider:   a.Name(),
		Model:      call.Model,
	}, nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
