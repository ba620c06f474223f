package token

import (
	"fmt"

	"github.com/spf13/cobra"

	pasetotoken "github.com/Alijeyrad/wscontext/pkg/paseto"
)

func NewKeygenCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate token keys for the authentication.paseto config section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := pasetotoken.NewKeys(pasetotoken.Mode(mode))
			if err != nil {
				return err
			}

			h := keys.Hex()
			fmt.Printf("mode: %s\n", h.Mode)
			if h.SymmetricHex != "" {
				fmt.Printf("local_key_hex: %s\n", h.SymmetricHex)
			}
			if h.SecretHex != "" {
				fmt.Printf("secret_key_hex: %s\n", h.SecretHex)
			}
			if h.PublicHex != "" {
				fmt.Printf("public_key_hex: %s\n", h.PublicHex)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(pasetotoken.ModeLocal), "Key mode: local or public")

	return cmd
}
