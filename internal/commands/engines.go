package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/cipherbench/internal/config"
	"github.com/idelchi/cipherbench/internal/engines"
	"github.com/idelchi/cipherbench/internal/logic"
)

// NewEnginesCommand creates the engines subcommand.
func NewEnginesCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "engines",
		Aliases: []string{"ls"},
		Short:   "List engines and whether they can run on this host",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.ListEngines(cfg, engines.Default(), cmd.OutOrStdout())
		},
	}
}
