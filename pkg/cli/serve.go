package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/revlens-lab/revlens/pkg/cli/config"
	httpctrl "github.com/revlens-lab/revlens/pkg/controller/http"
	"github.com/revlens-lab/revlens/pkg/domain/types"
	"github.com/revlens-lab/revlens/pkg/service/worker"
	"github.com/revlens-lab/revlens/pkg/usecase"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var refreshTenants []string
	var refreshInterval time.Duration
	var repoCfg config.Repository
	var slackCfg config.Slack
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("REVLENS_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "refresh-tenant",
			Usage:       "Tenant IDs whose rollups and benchmarks are refreshed in the background (can be specified multiple times)",
			Sources:     cli.EnvVars("REVLENS_REFRESH_TENANTS"),
			Destination: &refreshTenants,
		},
		&cli.DurationFlag{
			Name:        "refresh-interval",
			Usage:       "Interval between background refresh runs",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("REVLENS_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ucOpts := []usecase.Option{}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack notifier")
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logging.Default().Info("Slack notifier enabled", "slack", slackCfg)
			}

			archiver, err := archiveCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure snapshot archiver")
			}
			if archiver != nil {
				ucOpts = append(ucOpts, usecase.WithArchiver(archiver))
				defer func() {
					if err := archiver.Close(); err != nil {
						logging.Default().Error("failed to close archiver", "error", err.Error())
					}
				}()
			}

			uc := usecase.New(repo, ucOpts...)

			// Background refresh keeps quota rollups and benchmark caches
			// fresh for the configured tenants.
			var refreshWorker *worker.RefreshWorker
			if len(refreshTenants) > 0 {
				tenants := make([]types.TenantID, len(refreshTenants))
				for i, id := range refreshTenants {
					tenants[i] = types.TenantID(id)
				}
				refreshWorker = worker.NewRefreshWorker(repo, tenants, refreshInterval)
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start refresh worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if refreshWorker != nil {
					refreshWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
