package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/canon/internal/agents"
	"github.com/dshills/canon/internal/config"
	"github.com/dshills/canon/internal/logging"
	"github.com/dshills/canon/internal/providers"
	"github.com/dshills/canon/internal/review"
	"github.com/dshills/canon/internal/standards"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "cli")

// APIKeyEnv holds the provider API key. It is never written to config.
const APIKeyEnv = "CUSTOM_API_KEY"

// app bundles the collaborators built from the effective config.
type app struct {
	cfg       config.Config
	registry  *agents.Registry
	documents map[string]standards.Document
	table     standards.Table
	gateway   *providers.Gateway
	pipeline  *review.Pipeline
	closer    io.Closer
}

// loadConfig merges config sources, applies flag overrides and sets up logging.
func loadConfig(overrides map[string]string) (config.Config, io.Closer, error) {
	if flagLogLevel != "" {
		if overrides == nil {
			overrides = map[string]string{}
		}
		overrides["log.level"] = flagLogLevel
	}
	cfg, err := config.Load(flagConfig, overrides)
	if err != nil {
		return config.Config{}, nil, err
	}
	closer, err := logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, closer, nil
}

// newApp loads config, standards and providers.
func newApp(overrides map[string]string) (*app, error) {
	cfg, closer, err := loadConfig(overrides)
	if err != nil {
		return nil, err
	}

	docs, err := standards.LoadDir(cfg.StandardsDir)
	if err != nil {
		closer.Close()
		return nil, err
	}
	if len(docs) == 0 {
		logger.WithField("dir", cfg.StandardsDir).Warn("no standards documents loaded")
	}

	gw, err := providers.New(providers.Options{
		OpenAIBaseURL:    cfg.Providers.OpenAIBaseURL,
		AnthropicBaseURL: cfg.Providers.AnthropicBaseURL,
		GeminiBaseURL:    cfg.Providers.GeminiBaseURL,
		OllamaHost:       cfg.Providers.OllamaHost,
		Timeout:          cfg.Timeout(),
	})
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("configuring providers: %w", err)
	}

	registry := agents.Default()
	table := standards.DefaultTable.With(cfg.Extensions)
	return &app{
		cfg:       cfg,
		registry:  registry,
		documents: docs,
		table:     table,
		gateway:   gw,
		pipeline: review.NewPipeline(registry, gw, docs, table, review.Options{
			MaxPromptBytes: cfg.MaxPromptBytes,
			MaxTokens:      cfg.MaxTokens,
			Temperature:    cfg.Temperature,
			Ignore:         cfg.Ignore,
			RedactSecrets:  cfg.Redact(),
		}),
		closer: closer,
	}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

// apiKey reads the provider key from the environment. Only ollama may run
// without one.
func apiKey(model string) (string, error) {
	key := os.Getenv(APIKeyEnv)
	if key == "" {
		if provider, _ := providers.Split(model); provider != "ollama" {
			return "", fmt.Errorf("%s is not set (required for %s)", APIKeyEnv, provider)
		}
	}
	return key, nil
}

// requests builds one request per agent.
func requests(agentTypes []string, model, diff, key string) []review.AnalysisRequest {
	reqs := make([]review.AnalysisRequest, 0, len(agentTypes))
	for _, a := range agentTypes {
		reqs = append(reqs, review.AnalysisRequest{AgentType: a, ModelName: model, Diff: diff, APIKey: key})
	}
	return reqs
}

// exitFor maps results to a process exit code: auth failures win over
// other failures.
func exitFor(results []review.AnalysisResult) int {
	code := ExitSuccess
	for _, res := range results {
		if res.Error == nil {
			continue
		}
		if res.Error.Auth {
			return ExitAuthError
		}
		code = ExitRuntimeError
	}
	return code
}
