package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dshills/canon/internal/agents"
	"github.com/spf13/cobra"
)

var flagAgentsVerbose bool

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the available agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := agents.Default()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, t := range r.Types() {
			def, err := r.Get(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\n", def.Type, def.Description)
			if flagAgentsVerbose {
				fmt.Fprintf(tw, "\toutput: %s\n", def.ExpectedOutputShape)
			}
		}
		return tw.Flush()
	},
}

func init() {
	agentsCmd.Flags().BoolVarP(&flagAgentsVerbose, "verbose", "v", false, "Show the expected output of each agent")
}
