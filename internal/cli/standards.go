package cli

import (
	"fmt"
	"strings"

	"github.com/dshills/canon/internal/diff"
	"github.com/dshills/canon/internal/standards"
	"github.com/spf13/cobra"
)

var flagShowMerged bool

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "Show which standards documents apply to a diff",
	Long: "Resolve the standards for a local diff without calling a model. " +
		"Accepts the same source flags as 'review local'.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := localSource()
		if err != nil {
			return err
		}
		overrides := map[string]string{}
		if flagStandardsDir != "" {
			overrides["standardsDir"] = flagStandardsDir
		}
		cfg, closer, err := loadConfig(overrides)
		if err != nil {
			return err
		}
		defer closer.Close()

		docs, err := standards.LoadDir(cfg.StandardsDir)
		if err != nil {
			return err
		}
		raw, err := src.Diff(cmd.Context())
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		files, warnings := diff.Parse(raw)
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		files = diff.Filter(files, cfg.Ignore)

		out := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintln(out, "No reviewable files in the diff.")
			return nil
		}
		table := standards.DefaultTable.With(cfg.Extensions)
		rc := standards.Resolve(files, docs, table)

		fmt.Fprintf(out, "Files (%d):\n", len(files))
		for _, f := range files {
			key, ok := table.Lookup(f.Extension)
			if !ok {
				key = "-"
			}
			fmt.Fprintf(out, "  %s\t%s\n", f.Path, key)
		}
		fmt.Fprintf(out, "Standards: %s\n", strings.Join(rc.Keys(), ", "))
		if flagShowMerged {
			fmt.Fprintln(out, rc.MergedText)
		}
		return nil
	},
}

func init() {
	addLocalSourceFlags(standardsCmd)
	standardsCmd.Flags().StringVar(&flagStandardsDir, "standards-dir", "", "Directory of standards documents")
	standardsCmd.Flags().BoolVar(&flagShowMerged, "merged", false, "Print the merged standards text")
}
