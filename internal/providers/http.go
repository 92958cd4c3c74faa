package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed response ends up in a message.
const maxErrorBody = 512

func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ProviderError{Provider: provider, Message: fmt.Sprintf("marshaling request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &ProviderError{Provider: provider, Message: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &ProviderError{Provider: provider, Message: fmt.Sprintf("sending request: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Provider: provider, Message: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(provider, resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &ProviderError{Provider: provider, Message: fmt.Sprintf("parsing response: %v", err)}
	}
	return nil
}

func statusError(provider string, status int, body []byte) *ProviderError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		msg = "authentication failed: " + msg
	case status == http.StatusTooManyRequests:
		msg = "rate limited: " + msg
	case status >= 500:
		msg = "server error: " + msg
	default:
		msg = "API error: " + msg
	}
	return &ProviderError{Provider: provider, Message: msg, StatusCode: status}
}

func emptyResponse(provider string) *ProviderError {
	return &ProviderError{Provider: provider, Message: "empty text content in API response"}
}
