package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/iwvelando/admin-cost/internal/server"
	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(opts *options) *cobra.Command {
	var (
		serverConfigPath string
		address          string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the estimate API and the web wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}

			logger, err := opts.newLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			srv := &http.Server{
				Addr:              cfg.Address,
				Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), version),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening",
					zap.String("op", "main.serve"),
					zap.String("address", cfg.Address),
					zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
					zap.String("version", version),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				logger.Error("server stopped",
					zap.String("op", "main.serve"),
					zap.Error(err),
				)
				return err
			case <-cmd.Context().Done():
			}

			logger.Info("shutting down",
				zap.String("op", "main.serve"),
				zap.Duration("timeout", cfg.ShutdownTimeoutDuration()),
			)
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to the server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")
	return cmd
}
