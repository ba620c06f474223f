package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/wscontext/pkg/database"
)

// NewInitCommand creates the descriptor and Casbin databases when missing.
// Run it once before system migrate.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configured databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if err := database.InitializeDatabases(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("failed to initialize databases: %w", err)
			}
			fmt.Println("databases ready")
			return nil
		},
	}
}
