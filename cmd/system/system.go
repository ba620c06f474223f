// Package system holds the maintenance commands: database setup, schema
// migration, role management and document upload.
package system

import "github.com/spf13/cobra"

func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Maintenance and tooling commands",
	}
	cmd.AddCommand(
		NewInitCommand(),
		NewMigrateCommand(),
		NewRBACCommand(),
		NewDocumentCommand(),
		NewGenDocsCommand(),
	)
	return cmd
}
