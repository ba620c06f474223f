package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/pkg/authorize"
	"github.com/Alijeyrad/wscontext/pkg/database"
)

func readConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

// openAuthorization opens the Casbin store without the audit wrapper. With
// policy sync enabled, running hosts reload after every change made here.
// The returned cleanup must be called when done.
func openAuthorization(cfg *config.Config) (authorize.IAuthorization, func(), error) {
	acfg := authorize.FromCentralConfig(cfg.Authorization)
	enforcer, cleanup, err := authorize.NewEnforcer(acfg, database.NewDSN(cfg.CasbinDatabase), slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	done := func() { cleanup(context.Background()) }

	auth, err := authorize.NewAuthorization(enforcer, acfg.Options()...)
	if err != nil {
		done()
		return nil, nil, fmt.Errorf("failed to create authorization: %w", err)
	}
	return auth, done, nil
}
