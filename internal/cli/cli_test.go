package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/canon/internal/config"
	"github.com/dshills/canon/internal/gitctx"
	"github.com/dshills/canon/internal/providers"
	"github.com/dshills/canon/internal/review"
)

const pyDiff = `diff --git a/src/app.py b/src/app.py
index 83db48f..bf269f4 100644
--- a/src/app.py
+++ b/src/app.py
@@ -1,2 +1,2 @@
 import os
-print("old")
+print("new")
`

// resetFlags resets all package-level flag variables to their defaults.
func resetFlags() {
	flagConfig = ""
	flagLogLevel = ""
	flagAgent = ""
	flagModel = ""
	flagFormat = ""
	flagOut = ""
	flagStandardsDir = ""
	flagMaxPromptBytes = 0
	flagTimeout = 0
	flagNoRedact = false
	flagDiffFile = ""
	flagStaged = false
	flagUnstaged = false
	flagRange = ""
	flagCommit = ""
	flagMergeBase = true
	flagContext = 0
	flagRepo = ""
	flagDryRun = false
	flagUserConfig = false
	flagShowMerged = false
	flagAgentsVerbose = false
}

// isolate points every config and env lookup at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, env := range []string{"AGENT_TYPE", "MODEL_NAME", "CANON_FORMAT", "CANON_STANDARDS_DIR", "CANON_LOG_LEVEL", APIKeyEnv, "GITHUB_REPOSITORY", "GITHUB_REF"} {
		t.Setenv(env, "")
	}
	saved := exitCode
	exitCode = ExitSuccess
	t.Cleanup(func() { exitCode = saved })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// --- splitComma tests ---

func TestSplitComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single value", "reviewer", []string{"reviewer"}},
		{"multiple values", "reviewer,security,tester", []string{"reviewer", "security", "tester"}},
		{"whitespace trimmed", " a , b ", []string{"a", "b"}},
		{"empty parts skipped", "a,,b", []string{"a", "b"}},
		{"repeats dropped", "reviewer,security,reviewer", []string{"reviewer", "security"}},
		{"repeats ignore case", "Security, security ,SECURITY", []string{"Security"}},
		{"all empty", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitComma(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitComma(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitComma(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	if m := buildOverrides(); len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagAgent = "security"
	flagModel = "anthropic/claude-sonnet-4-5"
	flagFormat = "json"
	flagStandardsDir = "docs/standards"
	flagMaxPromptBytes = 5000
	flagTimeout = 30
	flagNoRedact = true

	m := buildOverrides()
	expected := map[string]string{
		"agent":          "security",
		"model":          "anthropic/claude-sonnet-4-5",
		"format":         "json",
		"standardsDir":   "docs/standards",
		"maxPromptBytes": "5000",
		"timeoutSeconds": "30",
		"redactSecrets":  "false",
	}
	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}

	// every override must be a key config accepts
	cfg := config.Default()
	for k, v := range m {
		if err := config.SetField(&cfg, k, v); err != nil {
			t.Errorf("SetField(%q): %v", k, err)
		}
	}
}

// --- helpers ---

func TestExitFor(t *testing.T) {
	ok := review.AnalysisResult{State: review.StateSucceeded}
	runtimeFail := review.AnalysisResult{State: review.StateFailed, Error: &review.Failure{Kind: review.KindProvider}}
	authFail := review.AnalysisResult{State: review.StateFailed, Error: &review.Failure{Kind: review.KindProvider, Auth: true}}

	tests := []struct {
		name    string
		results []review.AnalysisResult
		want    int
	}{
		{"none", nil, ExitSuccess},
		{"all ok", []review.AnalysisResult{ok, ok}, ExitSuccess},
		{"one failure", []review.AnalysisResult{ok, runtimeFail}, ExitRuntimeError},
		{"auth wins", []review.AnalysisResult{runtimeFail, authFail}, ExitAuthError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitFor(tt.results); got != tt.want {
				t.Errorf("exitFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequests(t *testing.T) {
	reqs := requests([]string{"reviewer", "tester"}, "gpt-4o", "diff", "k")
	if len(reqs) != 2 {
		t.Fatalf("got %d requests", len(reqs))
	}
	if reqs[1].AgentType != "tester" || reqs[1].ModelName != "gpt-4o" || reqs[1].APIKey != "k" || reqs[1].Diff != "diff" {
		t.Errorf("unexpected request: %+v", reqs[1])
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	if _, err := apiKey("gpt-4o"); err == nil {
		t.Error("expected error without key for openai")
	}
	if _, err := apiKey("ollama/llama3.1"); err != nil {
		t.Errorf("ollama should not need a key: %v", err)
	}

	t.Setenv(APIKeyEnv, "sk-abc")
	key, err := apiKey("anthropic/claude-sonnet-4-5")
	if err != nil || key != "sk-abc" {
		t.Errorf("apiKey() = %q, %v", key, err)
	}
}

// --- diff sources ---

func TestLocalSource(t *testing.T) {
	savedPiped := stdinPiped
	t.Cleanup(func() { stdinPiped = savedPiped })

	t.Run("diff file", func(t *testing.T) {
		resetFlags()
		path := filepath.Join(t.TempDir(), "change.diff")
		if err := os.WriteFile(path, []byte(pyDiff), 0o644); err != nil {
			t.Fatal(err)
		}
		flagDiffFile = path
		src, err := localSource()
		if err != nil {
			t.Fatal(err)
		}
		got, err := src.Diff(context.Background())
		if err != nil || got != pyDiff {
			t.Errorf("Diff() = %q, %v", got, err)
		}
	})

	t.Run("conflicting modes", func(t *testing.T) {
		resetFlags()
		flagStaged = true
		flagRange = "main..HEAD"
		if _, err := localSource(); err == nil {
			t.Error("expected error for two modes")
		}
	})

	t.Run("range", func(t *testing.T) {
		resetFlags()
		flagRange = "main..HEAD"
		src, err := localSource()
		if err != nil {
			t.Fatal(err)
		}
		gs, ok := src.(*gitctx.Source)
		if !ok || gs.Mode != gitctx.ModeRange || gs.Rev != "main..HEAD" || !gs.MergeBase {
			t.Errorf("unexpected source: %#v", src)
		}
	})

	t.Run("piped stdin", func(t *testing.T) {
		resetFlags()
		stdinPiped = func() bool { return true }
		src, err := localSource()
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := src.(*readerSource); !ok {
			t.Errorf("expected stdin reader, got %T", src)
		}
	})

	t.Run("terminal defaults to staged", func(t *testing.T) {
		resetFlags()
		stdinPiped = func() bool { return false }
		src, err := localSource()
		if err != nil {
			t.Fatal(err)
		}
		gs, ok := src.(*gitctx.Source)
		if !ok || gs.Mode != gitctx.ModeStaged {
			t.Errorf("expected staged source, got %#v", src)
		}
	})
}

func TestReaderSource_MissingFile(t *testing.T) {
	src := &readerSource{path: filepath.Join(t.TempDir(), "nope.diff")}
	if _, err := src.Diff(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

// --- pull request resolution ---

func TestResolvePR(t *testing.T) {
	isolate(t)

	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	t.Setenv("GITHUB_REF", "refs/pull/42/merge")
	pr, err := resolvePR(nil)
	if err != nil {
		t.Fatalf("resolvePR from env: %v", err)
	}
	if pr.String() != "acme/widgets#42" {
		t.Errorf("pr = %s", pr)
	}

	flagRepo = "other/repo"
	pr, err = resolvePR([]string{"7"})
	if err != nil {
		t.Fatalf("resolvePR with number: %v", err)
	}
	if pr.String() != "other/repo#7" {
		t.Errorf("pr = %s", pr)
	}

	if _, err := resolvePR([]string{"abc"}); err == nil {
		t.Error("expected error for invalid number")
	}
}

func TestReviewPRCmd_InvalidPRNumber(t *testing.T) {
	isolate(t)

	if _, err := execute(t, "review", "pr", "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != ExitUsageError {
		t.Errorf("exitCode = %d, want %d (ExitUsageError)", exitCode, ExitUsageError)
	}
}

func TestReviewPRCmd_TooManyArgs(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "review", "pr", "1", "2"); err == nil {
		t.Error("review pr with two args should return error")
	}
}

// --- end to end review ---

func fakeOpenAI(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
			return
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}],"usage":{"total_tokens":9}}`, text)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeProject(t *testing.T, dir, openaiURL string) (cfgPath, diffPath string) {
	t.Helper()
	stdDir := filepath.Join(dir, "standards")
	if err := os.MkdirAll(stdDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{"global.md": "Be consistent.", "python.md": "Follow PEP 8."} {
		if err := os.WriteFile(filepath.Join(stdDir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.StandardsDir = stdDir
	cfg.Providers.OpenAIBaseURL = openaiURL
	cfg.Log.Level = "error"
	cfgPath = filepath.Join(dir, "canon.yaml")
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatal(err)
	}

	diffPath = filepath.Join(dir, "change.diff")
	if err := os.WriteFile(diffPath, []byte(pyDiff), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, diffPath
}

func TestReviewLocal_EndToEnd(t *testing.T) {
	dir := isolate(t)
	server := fakeOpenAI(t, http.StatusOK, "1. Use logging instead of print")
	cfgPath, diffPath := writeProject(t, dir, server.URL)
	t.Setenv(APIKeyEnv, "sk-test")

	outPath := filepath.Join(dir, "result.json")
	if _, err := execute(t, "review", "local", "--config", cfgPath, "--diff-file", diffPath,
		"--agent", "reviewer,security", "--format", "json", "--out", outPath); err != nil {
		t.Fatalf("review local: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d, want success", exitCode)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var results []review.AnalysisResult
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, data)
	}
	if len(results) != 2 || results[0].AgentType != "reviewer" || results[1].AgentType != "security" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Text != "1. Use logging instead of print" {
		t.Errorf("Text = %q", results[0].Text)
	}
	if strings.Join(results[0].Standards, ",") != "global,python" {
		t.Errorf("Standards = %v", results[0].Standards)
	}
	if strings.Contains(string(data), "sk-test") {
		t.Error("API key leaked into output")
	}
}

func TestReviewLocal_AuthFailure(t *testing.T) {
	dir := isolate(t)
	server := fakeOpenAI(t, http.StatusUnauthorized, "")
	cfgPath, diffPath := writeProject(t, dir, server.URL)
	t.Setenv(APIKeyEnv, "sk-wrong")

	if _, err := execute(t, "review", "local", "--config", cfgPath, "--diff-file", diffPath,
		"--out", filepath.Join(dir, "out.txt")); err != nil {
		t.Fatalf("review local: %v", err)
	}
	if exitCode != ExitAuthError {
		t.Errorf("exitCode = %d, want %d (ExitAuthError)", exitCode, ExitAuthError)
	}
}

func TestReviewLocal_MissingKey(t *testing.T) {
	dir := isolate(t)
	cfgPath, diffPath := writeProject(t, dir, "http://127.0.0.1:1")

	if _, err := execute(t, "review", "local", "--config", cfgPath, "--diff-file", diffPath); err != nil {
		t.Fatalf("review local: %v", err)
	}
	if exitCode != ExitAuthError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitAuthError)
	}
}

func TestStandardsCmd(t *testing.T) {
	dir := isolate(t)
	cfgPath, diffPath := writeProject(t, dir, "")

	out, err := execute(t, "standards", "--config", cfgPath, "--diff-file", diffPath)
	if err != nil {
		t.Fatalf("standards: %v", err)
	}
	if !strings.Contains(out, "src/app.py\tpython") {
		t.Errorf("missing file mapping in %q", out)
	}
	if !strings.Contains(out, "Standards: global, python") {
		t.Errorf("missing standards line in %q", out)
	}
}

// --- simple commands ---

func TestVersionCmd_Execute(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command returned error: %v", err)
	}
	if !strings.Contains(out, "canon version "+version) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAgentsCmd(t *testing.T) {
	isolate(t)
	out, err := execute(t, "agents", "-v")
	if err != nil {
		t.Fatalf("agents: %v", err)
	}
	for _, name := range []string{"reviewer", "security", "documenter", "tester", "output:"} {
		if !strings.Contains(out, name) {
			t.Errorf("agents output missing %q", name)
		}
	}
}

func TestModelsListCmd_Execute(t *testing.T) {
	isolate(t)
	out, err := execute(t, "models", "list")
	if err != nil {
		t.Fatalf("models list command returned error: %v", err)
	}
	if !strings.Contains(out, "anthropic/claude-sonnet-4-5") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestKnownModels_RouteToTheirProvider(t *testing.T) {
	seen := map[string]bool{}
	for _, info := range knownModels {
		seen[info.Provider] = true
		if len(info.Models) == 0 {
			t.Errorf("provider %s has no models", info.Provider)
		}
		for _, m := range info.Models {
			if p, _ := providers.Split(m); p != info.Provider {
				t.Errorf("model %q routes to %q, listed under %q", m, p, info.Provider)
			}
		}
	}
	for _, p := range []string{"openai", "anthropic", "gemini", "ollama"} {
		if !seen[p] {
			t.Errorf("expected provider %q not found in knownModels", p)
		}
	}
}

// --- config command tests ---

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "canon.yaml")

	if _, err := execute(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("cannot read config file: %v", err)
	}
	if cfg.Model != "gpt-4o" || cfg.Agent != "reviewer" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "canon.yaml")
	if err := os.WriteFile(path, []byte("model: ollama/llama3.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init with existing file returned error: %v", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "ollama/llama3.1" {
		t.Errorf("config init overwrote existing file: model = %q", cfg.Model)
	}
}

func TestConfigSet_UserFile(t *testing.T) {
	dir := isolate(t)

	if _, err := execute(t, "config", "set", "--user", "extensions..vue", "vue"); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}
	cfg, err := config.LoadFile(filepath.Join(dir, "canon", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Extensions[".vue"] != "vue" {
		t.Errorf("extensions = %v", cfg.Extensions)
	}
}

func TestConfigSet_InvalidKey(t *testing.T) {
	dir := isolate(t)
	if _, err := execute(t, "config", "set", "--config", filepath.Join(dir, "c.yaml"), "unknownKey", "value"); err == nil {
		t.Error("config set with invalid key should return error")
	}
}

func TestConfigSet_MissingArgs(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "config", "set", "model"); err == nil {
		t.Error("config set with 1 arg should return error (requires 2)")
	}
}

func TestConfigShow_Execute(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "canon.yaml")
	if err := os.WriteFile(path, []byte("agent: tester\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if !strings.Contains(out, "agent: tester") {
		t.Errorf("config show output missing file value: %q", out)
	}
}

func TestReviewCmd_HasSubcommands(t *testing.T) {
	expected := map[string]bool{"local": false, "pr": false}
	for _, sub := range reviewCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("review subcommand %q not found", name)
		}
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitUsageError", ExitUsageError, 2},
		{"ExitAuthError", ExitAuthError, 3},
		{"ExitRuntimeError", ExitRuntimeError, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}
