package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/backoffice/internal/app"
	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Close() error
}

type registrar interface {
	Register(ctx context.Context, input auth.RegisterInput) (*auth.User, error)
}

// deps opens the resources a command needs. Tests replace them with fakes.
type deps struct {
	openMigrator  func() (migrator, error)
	openRegistrar func(ctx context.Context) (registrar, func(), error)
}

func defaultDeps() deps {
	return deps{
		openMigrator: func() (migrator, error) {
			cfg, err := app.LoadConfig()
			if err != nil {
				return nil, err
			}
			m, err := db.NewMigrator(cfg.PGDSN)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
		openRegistrar: func(ctx context.Context) (registrar, func(), error) {
			cfg, err := app.LoadConfig()
			if err != nil {
				return nil, nil, err
			}
			pool, err := db.New(ctx, cfg.PGDSN)
			if err != nil {
				return nil, nil, err
			}
			svc, err := app.NewAuthService(cfg, pool)
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
			return svc, pool.Close, nil
		},
	}
}

// NewRootCmd creates the root command for the back-office CLI.
func NewRootCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "backofficectl",
		Short:        "Operational commands for the back-office API",
		SilenceUsage: true,
	}
	cmd.AddCommand(NewMigrateCmd(d))
	cmd.AddCommand(NewUsersCmd(d))
	return cmd
}
