package token

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/internal/service/session"
	pasetotoken "github.com/Alijeyrad/wscontext/pkg/paseto"
	redispkg "github.com/Alijeyrad/wscontext/pkg/redis"
)

func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Caller token commands",
	}

	cmd.AddCommand(NewIssueCommand())
	cmd.AddCommand(NewKeygenCommand())

	return cmd
}

func NewIssueCommand() *cobra.Command {
	var (
		withSession bool
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "issue <subject>",
		Short: "Issue an access token for a subject",
		Long: `Issue a PASETO token naming <subject> as the caller. With --session a
session is created in Redis and bound to the token, which is then only
accepted while the session exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			mgr, err := pasetotoken.NewPasetoManager(cfg)
			if err != nil {
				return fmt.Errorf("failed to create token manager: %w", err)
			}

			subject := pasetotoken.Subject{Name: args[0]}
			if withSession {
				rdb, err := redispkg.NewFromCentral(cmd.Context(), cfg.Redis)
				if err != nil {
					return fmt.Errorf("failed to connect to redis: %w", err)
				}
				defer rdb.Close()

				ttl := time.Duration(cfg.Authentication.SessionTTLMinutes) * time.Minute
				id, err := session.New(rdb, ttl).Create(cmd.Context(), subject.Name)
				if err != nil {
					return fmt.Errorf("failed to create session: %w", err)
				}
				subject.SessionID = &id
			}

			issue := mgr.IssueAccess
			if refresh {
				issue = mgr.IssueRefresh
			}
			tok, err := issue(subject)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Println(tok)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withSession, "session", false, "Bind the token to a new Redis session")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Issue a refresh token instead of an access token")

	return cmd
}
