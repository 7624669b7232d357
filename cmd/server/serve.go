package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/sakif/daily-real/internal/auth"
	"github.com/sakif/daily-real/internal/logging"
	"github.com/sakif/daily-real/internal/observability"
	"github.com/sakif/daily-real/internal/server"
	"github.com/sakif/daily-real/internal/service"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Pending migrations are applied first. The server
stops gracefully on SIGINT or SIGTERM.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.Setup("daily-real", version, cfg.LogFormat, cfg.LogLevel, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.close(); err != nil {
			logger.Warn("closing database", slog.String("error", err.Error()))
		}
	}()

	if err := be.migrate(ctx); err != nil {
		return oops.Code("MIGRATION_FAILED").With("driver", be.name).Wrap(err)
	}

	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService(cfg.BcryptCost)
	metrics := observability.NewMetrics()

	srv, err := server.New(cfg.Addr, logger, server.Deps{
		Auth:     service.NewAuthService(be.users, tokens, passwords, metrics, logger),
		Accounts: service.NewAccountService(be.accounts, metrics, logger),
		Metrics:  metrics,
	})
	if err != nil {
		return err
	}

	logger.Info("configuration loaded",
		slog.String("addr", cfg.Addr),
		slog.String("database", be.name),
		slog.Duration("token_ttl", cfg.TokenTTL),
	)
	return srv.Run(ctx)
}

