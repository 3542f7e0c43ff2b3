package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"loadmap/internal/rules"
	"loadmap/internal/service"

	"github.com/spf13/cobra"
)

// NewCheckCommand loads a rule table and reports its size, or every problem found.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "check",
		Short:        "Validate a rule table",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rules.Load(cmd.Context(), nil, rootOpts.Rules)
			if err != nil {
				return err
			}
			stats := service.RuleStats{
				Abbreviations:      t.Abbreviations(),
				Categories:         t.Categories(),
				UnloadedCategories: t.Unloaded(),
			}
			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Fprintf(out, "%s: ok\n", rootOpts.Rules)
			fmt.Fprintf(out, "  abbreviations: %d\n", stats.Abbreviations)
			fmt.Fprintf(out, "  categories:    %d\n", stats.Categories)
			if len(stats.UnloadedCategories) > 0 {
				fmt.Fprintf(out, "  without load:  %s\n", strings.Join(stats.UnloadedCategories, ", "))
			}
			return nil
		},
	}
}
