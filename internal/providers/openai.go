package providers

import (
	"context"
	"net/http"
	"strings"
)

const defaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI calls the chat completions endpoint.
type OpenAI struct {
	baseURL string
	client  *http.Client
}

// NewOpenAI returns an OpenAI invoker. An empty baseURL uses the public API.
func NewOpenAI(baseURL string, client *http.Client) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Invoke(ctx context.Context, call Call) (Response, error) {
	body := openaiRequest{
		Model: call.Model,
		Messages: []openaiMessage{
			{Role: "system", Content: call.SystemPrompt},
			{Role: "user", Content: call.UserContent},
		},
		MaxTokens: call.maxTokens(),
	}
	if call.Temperature > 0 {
		body.Temperature = &call.Temperature
	}

	headers := map[string]string{"Authorization": "Bearer " + call.APIKey}
	var result openaiResponse
	if err := postJSON(ctx, o.client, o.Name(), o.baseURL+"/chat/completions", headers, body, &result); err != nil {
		return Response{}, err
	}

	if len(result.Choices) == 0 {
		return Response{}, &ProviderError{Provider: o.Name(), Message: "no choices in response"}
	}
	text := result.Choices[0].Message.Content
	if text == "" {
		return Response{}, emptyResponse(o.Name())
	}
	return Response{
		Text:       text,
		TokensUsed: result.Usage.TotalTokens,
		Provider:   o.Name(),
		Model:      call.Model,
	}, nil
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
