package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/cipherbench/internal/config"
	"github.com/idelchi/cipherbench/internal/engines"
	"github.com/idelchi/cipherbench/internal/logic"
)

// NewCheckCommand creates a new cobra command for the check subcommand.
func NewCheckCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate that include/exclude patterns match engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.RunCheck(cfg, engines.Default(), cmd.OutOrStdout())
		},
	}
}
