// Canon runs standards-aware AI agents over pull request diffs.
//
// For each diff it picks the studio coding standards that apply to the
// changed files, builds a bounded prompt for the chosen agent (reviewer,
// security, documenter or tester) and sends it to the configured LLM
// provider (openai, anthropic, gemini or ollama).
//
// Usage:
//
//	canon review pr                       # in GitHub Actions: analyze the PR and comment
//	canon review pr 42 --repo acme/app    # analyze a specific PR
//	canon review local                    # analyze staged changes
//	git diff main | canon review local    # analyze a piped diff
//	canon standards --range main..HEAD    # show which standards apply
//	canon mcp                             # serve tools over MCP stdio
//
// The provider API key is read from CUSTOM_API_KEY.
package main
