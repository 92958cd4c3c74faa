package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/canon/internal/github"
	"github.com/dshills/canon/internal/output"
	"github.com/dshills/canon/internal/review"
	"github.com/spf13/cobra"
)

// Shared review flags
var (
	flagAgent          string
	flagModel          string
	flagFormat         string
	flagOut            string
	flagStandardsDir   string
	flagMaxPromptBytes int
	flagTimeout        int
	flagNoRedact       bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagAgent, "agent", "", "Agent type, or a comma-separated list run concurrently (env AGENT_TYPE)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model, optionally provider-prefixed: gpt-4o, anthropic/claude-sonnet-4-5 (env MODEL_NAME)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagStandardsDir, "standards-dir", "", "Directory of standards documents")
	cmd.Flags().IntVar(&flagMaxPromptBytes, "max-prompt-bytes", 0, "Budget for standards plus diff in the prompt")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Model call timeout in seconds")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagAgent != "" {
		m["agent"] = flagAgent
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagStandardsDir != "" {
		m["standardsDir"] = flagStandardsDir
	}
	if flagMaxPromptBytes > 0 {
		m["maxPromptBytes"] = strconv.Itoa(flagMaxPromptBytes)
	}
	if flagTimeout > 0 {
		m["timeoutSeconds"] = strconv.Itoa(flagTimeout)
	}
	if flagNoRedact {
		m["redactSecrets"] = "false"
	}
	return m
}

// splitComma splits a comma list, dropping blanks and repeats. Repeats are
// matched case-insensitively and the first spelling wins.
func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		key := strings.ToLower(p)
		if p == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, p)
	}
	return result
}

// runReview reads the diff, runs every configured agent, writes the results
// and hands each non-empty result to the sinks.
func runReview(ctx context.Context, a *app, src review.DiffSource, sinks ...review.Sink) {
	if !a.cfg.Redact() {
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	key, err := apiKey(a.cfg.Model)
	if err != nil {
		fail(ExitAuthError, "%v", err)
		return
	}

	raw, err := src.Diff(ctx)
	if err != nil {
		fail(ExitRuntimeError, "%v", err)
		return
	}

	results := a.pipeline.RunAll(ctx, requests(splitComma(a.cfg.Agent), a.cfg.Model, raw, key))

	if err := output.WriteResults(a.cfg.Format, flagOut, results...); err != nil {
		fail(ExitRuntimeError, "writing output: %v", err)
		return
	}

	code := exitFor(results)
	for _, res := range results {
		if res.Empty || len(sinks) == 0 {
			continue
		}
		if err := review.Post(ctx, res, sinks...); err != nil {
			fmt.Fprintf(os.Stderr, "Error posting %s result: %v\n", res.AgentType, err)
			if code == ExitSuccess {
				code = ExitRuntimeError
			}
		}
	}
	exitCode = code
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Analyze a diff with one or more agents",
	Long:  "Analyze a pull request or local changes. Use subcommands to choose where the diff comes from.",
}

var reviewLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Analyze local changes, a diff file or stdin",
	Long: "Analyze a local diff. Without source flags, a piped stdin is read; " +
		"otherwise the staged changes of the current repository are used.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := localSource()
		if err != nil {
			return err
		}
		a, err := newApp(buildOverrides())
		if err != nil {
			return err
		}
		defer a.Close()

		runReview(cmd.Context(), a, src)
		return nil
	},
}

// Pull request flags
var (
	flagRepo   string
	flagDryRun bool
)

var reviewPRCmd = &cobra.Command{
	Use:   "pr [number]",
	Short: "Analyze a GitHub pull request and post the result as a comment",
	Long: "Fetch a pull request diff from GitHub, run the agents, and post one comment per agent. " +
		"Without arguments the pull request is taken from GITHUB_REPOSITORY and GITHUB_REF, as set by GitHub Actions. " +
		"Requires GITHUB_TOKEN and " + APIKeyEnv + ".",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := resolvePR(args)
		if err != nil {
			fail(ExitUsageError, "%v", err)
			return nil
		}

		a, err := newApp(buildOverrides())
		if err != nil {
			return err
		}
		defer a.Close()

		client, err := github.NewClient(os.Getenv("GITHUB_TOKEN"), os.Getenv("GITHUB_API_URL"))
		if err != nil {
			fail(ExitAuthError, "%v", err)
			return nil
		}

		fmt.Fprintf(os.Stderr, "Fetching %s...\n", pr)
		var sinks []review.Sink
		if flagDryRun {
			fmt.Fprintln(os.Stderr, "Dry run: results will not be posted to GitHub.")
		} else {
			sinks = append(sinks, &github.CommentSink{Client: client, PR: pr, Render: markdown})
		}
		runReview(cmd.Context(), a, &github.PRSource{Client: client, PR: pr}, sinks...)
		return nil
	},
}

func markdown(res review.AnalysisResult) string {
	return output.Render(&output.MarkdownWriter{}, res)
}

// resolvePR builds the pull request from the positional number and --repo,
// falling back to the GitHub Actions environment.
func resolvePR(args []string) (github.PullRequest, error) {
	if len(args) == 0 {
		return github.FromEnv(os.Getenv)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return github.PullRequest{}, fmt.Errorf("invalid PR number %q", args[0])
	}

	repo := flagRepo
	if repo == "" {
		repo = os.Getenv("GITHUB_REPOSITORY")
	}
	var owner, name string
	if repo != "" {
		owner, name, err = github.ParseRepository(repo)
	} else {
		owner, name, err = github.DetectRepo()
	}
	if err != nil {
		return github.PullRequest{}, fmt.Errorf("%w; use --repo owner/repo", err)
	}
	return github.PullRequest{Owner: owner, Repo: name, Number: n}, nil
}

func init() {
	reviewCmd.AddCommand(reviewLocalCmd)
	reviewCmd.AddCommand(reviewPRCmd)

	for _, cmd := range []*cobra.Command{reviewLocalCmd, reviewPRCmd} {
		addReviewFlags(cmd)
	}
	addLocalSourceFlags(reviewLocalCmd)

	reviewPRCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository as owner/repo (default: GITHUB_REPOSITORY or the origin remote)")
	reviewPRCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Run the agents but don't post to GitHub")
}
