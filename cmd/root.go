package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	servecmd "github.com/Alijeyrad/wscontext/cmd/serve"
	systemcmd "github.com/Alijeyrad/wscontext/cmd/system"
	tokencmd "github.com/Alijeyrad/wscontext/cmd/token"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "wsctx",
	Short: "Endpoint host exposing per-request context to handlers.",
	Long: `wsctx hosts endpoints over HTTP and NATS. Every request is served inside
its own scope, from which handlers read message properties, the caller
identity, role membership and the endpoint's own reference.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(servecmd.NewServeCommand())
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(tokencmd.NewTokenCommand())
}
