package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini calls generateContent. The key travels in a header so it never
// appears in a URL that an error message could echo.
type Gemini struct {
	baseURL string
	client  *http.Client
}

// NewGemini returns a Gemini invoker. An empty baseURL uses the public API.
func NewGemini(baseURL string, client *http.Client) *Gemini {
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	return &Gemini{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Invoke(ctx context.Context, call Call) (Response, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(call.Model))

	body := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: call.SystemPrompt}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: call.UserContent}}},
		},
		GenerationConfig: &geminiGenConfig{MaxOutputTokens: call.maxTokens()},
	}
	if call.Temperature > 0 {
		body.GenerationConfig.Temperature = &call.Temperature
	}

	headers := map[string]string{"x-goog-api-key": call.APIKey}
	var result geminiResponse
	if err := postJSON(ctx, g.client, g.Name(), endpoint, headers, body, &result); err != nil {
		return Response{}, err
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return Response{}, &ProviderError{Provider: g.Name(), Message: "no content in response"}
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return Response{}, emptyResponse(g.Name())
	}
	return Response{
		Text:       sb.String(),
		TokensUsed: result.UsageMetadata.TotalTokenCount,
		Provider:   g.Name(),
		Model:      call.Model,
	}, nil
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiUsage struct {
	TotalTokenCount int `json:"totalTokenCount"`
}
