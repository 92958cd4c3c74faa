package cli

import (
	"os"

	"github.com/dshills/canon/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve canon tools over MCP (stdio)",
	Long: "Start a Model Context Protocol server on stdin/stdout exposing list_agents, " +
		"resolve_standards and analyze_diff. The provider key is read from " + APIKeyEnv + ".",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		svc := &mcpserver.Service{
			Registry:  a.registry,
			Pipeline:  a.pipeline,
			Documents: a.documents,
			Table:     a.table,
			Ignore:    a.cfg.Ignore,
			Agent:     a.cfg.Agent,
			Model:     a.cfg.Model,
			APIKey:    os.Getenv(APIKeyEnv),
		}
		if err := mcpserver.Serve(cmd.Context(), svc, version); err != nil {
			fail(ExitRuntimeError, "%v", err)
		}
		return nil
	},
}
