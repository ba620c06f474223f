package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/wscontext/pkg/authorize"
)

func NewRBACCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rbac",
		Short: "Manage role assignments and operation grants",
	}

	cmd.AddCommand(newAssignCommand())
	cmd.AddCommand(newUnassignCommand())
	cmd.AddCommand(newGrantCommand())

	return cmd
}

func newAssignCommand() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "assign <subject> <role>",
		Short: "Give a subject a role on one endpoint, or system-wide without --endpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			auth, done, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer done()

			subject, role := args[0], authorize.Role(args[1])
			if endpoint == "" {
				err = authorize.AssignSystemRole(cmd.Context(), auth, subject, role)
			} else {
				err = authorize.AssignEndpointRole(cmd.Context(), auth, subject, endpoint, role)
			}
			if err != nil {
				return fmt.Errorf("failed to assign role: %w", err)
			}
			fmt.Printf("assigned %s to %s\n", role, subject)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Endpoint the role applies to")

	return cmd
}

func newUnassignCommand() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "unassign <subject> <role>",
		Short: "Remove a role from a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			auth, done, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer done()

			subject, role := args[0], authorize.Role(args[1])
			if endpoint == "" {
				err = authorize.RemoveSystemRole(cmd.Context(), auth, subject, role)
			} else {
				err = authorize.RemoveEndpointRole(cmd.Context(), auth, subject, endpoint, role)
			}
			if err != nil {
				return fmt.Errorf("failed to remove role: %w", err)
			}
			fmt.Printf("removed %s from %s\n", role, subject)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Endpoint the role applies to")

	return cmd
}

func newGrantCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant <role> <endpoint> <operation|*>",
		Short: "Allow a role to invoke an operation",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			auth, done, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer done()

			if err := authorize.GrantOperation(cmd.Context(), auth, authorize.Role(args[0]), args[1], args[2]); err != nil {
				return fmt.Errorf("failed to grant operation: %w", err)
			}
			fmt.Printf("granted %s invoke on %s/%s\n", args[0], args[1], args[2])
			return nil
		},
	}

	return cmd
}
