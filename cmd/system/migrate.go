package system

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/wscontext/internal/descriptor"
	"github.com/Alijeyrad/wscontext/pkg/authorize"
	"github.com/Alijeyrad/wscontext/pkg/database"
	s3pkg "github.com/Alijeyrad/wscontext/pkg/s3"
)

func NewMigrateCommand() *cobra.Command {
	var skipSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the descriptor table, import configured endpoints and seed RBAC policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			// descriptor db
			fmt.Println("Running Migrations For Descriptor DB.")
			drv, err := database.NewEntDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open descriptor database: %w", err)
			}
			defer drv.Close()

			store := descriptor.NewSQL(drv)
			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to create descriptor table: %w", err)
			}

			var objects descriptor.ObjectGetter
			if cfg.S3.Bucket != "" {
				client, err := s3pkg.New(ctx, cfg.S3)
				if err != nil {
					return fmt.Errorf("failed to create s3 client: %w", err)
				}
				objects = client
			}
			static := descriptor.NewStatic(cfg.Endpoints, descriptor.NewDocumentLoader(objects))
			for _, name := range static.Names() {
				rec, err := static.Lookup(ctx, name)
				if err != nil {
					return fmt.Errorf("failed to load endpoint %q: %w", name, err)
				}
				if err := store.Upsert(ctx, *rec); err != nil {
					return fmt.Errorf("failed to store endpoint %q: %w", name, err)
				}
				slog.Info("imported endpoint descriptor", "endpoint", name)
			}

			if skipSeed {
				fmt.Println("Migrations executed successfully.")
				return nil
			}

			// casbin db
			fmt.Println("Running Migrations For Casbin DB.")
			auth, done, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer done()

			slog.Info("Seeding Casbin policies...")
			if err := authorize.SeedDefaultPolicies(ctx, auth, slog.Default()); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "Do not seed the default RBAC policies")

	return cmd
}
