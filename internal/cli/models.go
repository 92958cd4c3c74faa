package cli

import (
	"fmt"

	"github.com/dshills/canon/internal/providers"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

type modelInfo struct {
	Provider string
	Models   []string
}

// knownModels are examples; any model the provider accepts can be passed.
// Names without a prefix go to openai.
var knownModels = []modelInfo{
	{
		Provider: "openai",
		Models: []string{
			"gpt-4o",
			"gpt-4o-mini",
			"gpt-4.1",
			"o3-mini",
		},
	},
	{
		Provider: "anthropic",
		Models: []string{
			"anthropic/claude-sonnet-4-5",
			"anthropic/claude-opus-4-1",
			"anthropic/claude-haiku-4-5",
		},
	},
	{
		Provider: "gemini",
		Models: []string{
			"gemini/gemini-2.5-pro",
			"gemini/gemini-2.5-flash",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"ollama/llama3.1",
			"ollama/qwen2.5-coder",
			"ollama/codellama",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers and example models",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, info := range knownModels {
			fmt.Fprintf(out, "%s:\n", info.Provider)
			for _, m := range info.Models {
				fmt.Fprintf(out, "  - %s\n", m)
			}
			fmt.Fprintln(out)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured model responds",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]string{}
		if flagModel != "" {
			overrides["model"] = flagModel
		}
		a, err := newApp(overrides)
		if err != nil {
			return err
		}
		defer a.Close()

		model := a.cfg.Model
		provider, _ := providers.Split(model)
		fmt.Fprintf(cmd.OutOrStdout(), "Checking %s (%s)...\n", model, provider)

		key, err := apiKey(model)
		if err != nil {
			fail(ExitAuthError, "FAIL: %v", err)
			return nil
		}

		_, err = a.gateway.Invoke(cmd.Context(), providers.Call{
			Model:        model,
			APIKey:       key,
			SystemPrompt: "Respond with exactly: ok",
			UserContent:  "ping",
			MaxTokens:    10,
		})
		if err != nil {
			if providers.IsAuthError(err) {
				fail(ExitAuthError, "FAIL: %v", err)
			} else {
				fail(ExitRuntimeError, "FAIL: %v", err)
			}
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s is configured and responding\n", provider)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
