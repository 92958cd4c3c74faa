package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func ollamaServer(t *testing.T, wantAuth string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %q, want %q", got, wantAuth)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "llama3.2" {
			t.Errorf("model = %v", req["model"])
		}
		if req["stream"] != false {
			t.Errorf("stream = %v, want false", req["stream"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"looks fine"},"done":true,"prompt_eval_count":30,"eval_count":12}` + "\n"))
	}))
}

func TestOllama_Invoke(t *testing.T) {
	server := ollamaServer(t, "")
	defer server.Close()

	o, err := NewOllama(server.URL, server.Client())
	if err != nil {
		t.Fatal(err)
	}
	resp, err := o.Invoke(context.Background(), Call{Model: "llama3.2", SystemPrompt: "s", UserContent: "u"})
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if resp.Text != "looks fine" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", resp.TokensUsed)
	}
}

func TestOllama_InvokeWithAPIKey(t *testing.T) {
	server := ollamaServer(t, "Bearer local-key")
	defer server.Close()

	o, err := NewOllama(server.URL+"/v1/", server.Client())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Invoke(context.Background(), Call{Model: "llama3.2", APIKey: "local-key"}); err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
}

func TestOllama_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"nope\" not found"}`))
	}))
	defer server.Close()

	o, _ := NewOllama(server.URL, server.Client())
	_, err := o.Invoke(context.Background(), Call{Model: "nope"})
	pe, ok := err.(*ProviderError)
	if !ok {
		t.Fatalf("error = %T (%v), want *ProviderError", err, err)
	}
	if pe.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", pe.StatusCode)
	}
}

func TestNewOllama_HostNormalization(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "http://localhost:11434"},
		{"localhost:11434", "http://localhost:11434"},
		{"http://gpu-box:11434/", "http://gpu-box:11434"},
		{"http://gpu-box:11434/v1/chat/completions", "http://gpu-box:11434"},
	}
	for _, tt := range tests {
		o, err := NewOllama(tt.in, http.DefaultClient)
		if err != nil {
			t.Fatalf("NewOllama(%q): %v", tt.in, err)
		}
		if got := o.host.String(); got != tt.want {
			t.Errorf("NewOllama(%q) host = %q, want %q", tt.in, got, tt.want)
		}
	}
}
