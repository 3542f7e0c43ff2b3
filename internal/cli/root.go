// Package cli implements loadmap-rules, the offline rule table tool.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions global flags for all commands.
type RootOptions struct {
	Rules  string
	Format string // "json" | "text"
}

var validFormats = []string{"text", "json"}

// NewRootCommand creates the loadmap-rules command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "loadmap-rules",
		Short: "Inspect and check LoadMap rule tables",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Rules, "rules", "rules/asce7-22.yml", "rule table file or http(s) URL")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewMapCommand(opts))
	return cmd
}
