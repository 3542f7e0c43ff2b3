package cli

import (
	"encoding/json"
	"fmt"

	"loadmap/internal/rules"
	"loadmap/internal/service"

	"github.com/spf13/cobra"
)

// NewMapCommand classifies labels given on the command line.
func NewMapCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "map <label>...",
		Short:        "Show the category and load a label maps to",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rules.Load(cmd.Context(), nil, rootOpts.Rules)
			if err != nil {
				return err
			}
			svc := service.NewRuleService(rules.NewStaticProvider(t))
			out := cmd.OutOrStdout()

			if rootOpts.Format == "json" {
				mappings := make([]service.LabelMapping, 0, len(args))
				for _, label := range args {
					mappings = append(mappings, svc.MapLabel(label))
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(mappings)
			}
			for _, label := range args {
				m := svc.MapLabel(label)
				switch {
				case m.Category == nil:
					fmt.Fprintf(out, "%s\tunknown (needs review)\n", label)
				case m.Mapping == nil:
					fmt.Fprintf(out, "%s\t%s\tno load rule (needs review)\n", label, *m.Category)
				case m.Mapping.UniformPSF == nil:
					fmt.Fprintf(out, "%s\t%s\t-\t%s\n", label, *m.Category, m.Mapping.CodeRef)
				default:
					fmt.Fprintf(out, "%s\t%s\t%g psf\t%s\n", label, *m.Category, *m.Mapping.UniformPSF, m.Mapping.CodeRef)
				}
			}
			return nil
		},
	}
}
