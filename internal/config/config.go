package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/canon/internal/diff"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// FileName is the project-level config file looked up in the working directory.
const FileName = ".canon.yaml"

// Config is the effective canon configuration.
type Config struct {
	Agent          string            `yaml:"agent"`
	Model          string            `yaml:"model"`
	Format         string            `yaml:"format"`
	StandardsDir   string            `yaml:"standardsDir"`
	Extensions     map[string]string `yaml:"extensions,omitempty"`
	Ignore         []string          `yaml:"ignore,omitempty"`
	MaxPromptBytes int               `yaml:"maxPromptBytes"`
	MaxTokens      int               `yaml:"maxTokens"`
	Temperature    float64           `yaml:"temperature,omitempty"`
	TimeoutSeconds int               `yaml:"timeoutSeconds"`
	RedactSecrets  *bool             `yaml:"redactSecrets,omitempty"`
	Providers      ProvidersConfig   `yaml:"providers,omitempty"`
	Log            LogConfig         `yaml:"log"`
}

// ProvidersConfig overrides provider endpoints.
type ProvidersConfig struct {
	OpenAIBaseURL    string `yaml:"openaiBaseURL,omitempty"`
	AnthropicBaseURL string `yaml:"anthropicBaseURL,omitempty"`
	GeminiBaseURL    string `yaml:"geminiBaseURL,omitempty"`
	OllamaHost       string `yaml:"ollamaHost,omitempty"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

var formats = map[string]bool{"markdown": true, "text": true, "json": true}

// Default returns a Config with all defaults applied.
func Default() Config {
	redact := true
	return Config{
		Agent:          "reviewer",
		Model:          "gpt-4o",
		Format:         "text",
		StandardsDir:   "standards",
		Ignore:         append([]string(nil), diff.DefaultIgnore...),
		MaxPromptBytes: 100000,
		MaxTokens:      4096,
		TimeoutSeconds: 120,
		RedactSecrets:  &redact,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Timeout is TimeoutSeconds as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Redact reports whether secrets are stripped from diffs.
func (c Config) Redact() bool {
	return c.RedactSecrets == nil || *c.RedactSecrets
}

// Validate checks values that cannot be repaired by defaults.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Agent) == "" {
		errs = append(errs, errors.New("agent must not be empty"))
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if !formats[c.Format] {
		errs = append(errs, fmt.Errorf("format %q is not one of markdown, text, json", c.Format))
	}
	if c.MaxPromptBytes < 0 {
		errs = append(errs, errors.New("maxPromptBytes must not be negative"))
	}
	if c.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("timeoutSeconds must not be negative"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// UserConfigPath returns the per-user config file location.
func UserConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "canon", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "canon", "config.yaml"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "canon", "config.yaml"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "canon", "config.yaml"), nil
	default:
		return filepath.Join(home, ".config", "canon", "config.yaml"), nil
	}
}

// Resolve picks the config file: explicit wins, then FileName in the
// working directory, then the user config. The second result is false
// when no file exists.
func Resolve(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName, true
	}
	if p, err := UserConfigPath(); err == nil {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return FileName, false
}

// LoadFile reads a YAML config. A missing file yields a zero Config and
// no error.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// path may be empty; see Resolve. The overrides map comes from CLI flags.
func Load(path string, overrides map[string]string) (Config, error) {
	cfg := Default()

	if p, ok := Resolve(path); ok {
		fileCfg, err := LoadFile(p)
		if err != nil {
			return Config{}, err
		}
		mergeFile(&cfg, fileCfg)
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(&cfg, key, value); err != nil {
			return Config{}, fmt.Errorf("flag override: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	setString(&dst.Agent, src.Agent)
	setString(&dst.Model, src.Model)
	setString(&dst.Format, src.Format)
	setString(&dst.StandardsDir, src.StandardsDir)
	if len(src.Extensions) > 0 {
		dst.Extensions = src.Extensions
	}
	if src.Ignore != nil {
		dst.Ignore = src.Ignore
	}
	if src.MaxPromptBytes > 0 {
		dst.MaxPromptBytes = src.MaxPromptBytes
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.RedactSecrets != nil {
		dst.RedactSecrets = src.RedactSecrets
	}
	setString(&dst.Providers.OpenAIBaseURL, src.Providers.OpenAIBaseURL)
	setString(&dst.Providers.AnthropicBaseURL, src.Providers.AnthropicBaseURL)
	setString(&dst.Providers.GeminiBaseURL, src.Providers.GeminiBaseURL)
	setString(&dst.Providers.OllamaHost, src.Providers.OllamaHost)
	setString(&dst.Log.Level, src.Log.Level)
	setString(&dst.Log.Format, src.Log.Format)
	setString(&dst.Log.File, src.Log.File)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// envFields maps environment variables to SetField keys.
var envFields = []struct{ env, key string }{
	{"AGENT_TYPE", "agent"},
	{"MODEL_NAME", "model"},
	{"CANON_FORMAT", "format"},
	{"CANON_STANDARDS_DIR", "standardsDir"},
	{"CANON_MAX_PROMPT_BYTES", "maxPromptBytes"},
	{"CANON_TIMEOUT_SECONDS", "timeoutSeconds"},
	{"CANON_LOG_LEVEL", "log.level"},
	{"OLLAMA_HOST", "providers.ollamaHost"},
}

func mergeEnv(cfg *Config) error {
	for _, f := range envFields {
		v := strings.TrimSpace(os.Getenv(f.env))
		if v == "" {
			continue
		}
		if err := SetField(cfg, f.key, v); err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
	}
	return nil
}

// Keys lists the keys accepted by SetField, except the extensions.<ext> form.
func Keys() []string {
	return []string{
		"agent", "model", "format", "standardsDir", "ignore",
		"maxPromptBytes", "maxTokens", "temperature", "timeoutSeconds", "redactSecrets",
		"providers.openaiBaseURL", "providers.anthropicBaseURL", "providers.geminiBaseURL", "providers.ollamaHost",
		"log.level", "log.format", "log.file",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
// "extensions.<ext>" maps an extension to a standards key; an empty value
// removes the mapping.
func SetField(cfg *Config, key, value string) error {
	if ext, ok := strings.CutPrefix(key, "extensions."); ok {
		if ext == "" {
			return fmt.Errorf("extension is empty")
		}
		if cfg.Extensions == nil {
			cfg.Extensions = map[string]string{}
		}
		cfg.Extensions[ext] = value
		return nil
	}

	switch key {
	case "agent":
		cfg.Agent = strings.ToLower(value)
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "standardsDir":
		cfg.StandardsDir = value
	case "ignore":
		cfg.Ignore = splitList(value)
	case "maxPromptBytes":
		return setInt(&cfg.MaxPromptBytes, key, value)
	case "maxTokens":
		return setInt(&cfg.MaxTokens, key, value)
	case "timeoutSeconds":
		return setInt(&cfg.TimeoutSeconds, key, value)
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("redactSecrets must be true or false: %w", err)
		}
		cfg.RedactSecrets = &b
	case "providers.openaiBaseURL":
		cfg.Providers.OpenAIBaseURL = value
	case "providers.anthropicBaseURL":
		cfg.Providers.AnthropicBaseURL = value
	case "providers.geminiBaseURL":
		cfg.Providers.GeminiBaseURL = value
	case "providers.ollamaHost":
		cfg.Providers.OllamaHost = value
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	case "log.file":
		cfg.Log.File = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
