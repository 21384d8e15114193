package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/config"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/di"
	"github.com/Alexislovesarchitecture/contact-bubbles/interfaces/http/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return Serve(cmd.Context(), cfg)
		},
	}
}

// Serve wires the container and runs the API until ctx is cancelled
func Serve(ctx context.Context, cfg *config.Config) error {
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger := container.Logger
	if cfg.File != "" {
		watcher, err := config.NewWatcher(cfg.File, container.LogLevel, logger)
		if err != nil {
			logger.Warn("Config watcher disabled", zap.Error(err))
		} else {
			watcher.OnChange(func(next *config.Config) {
				logger.Info("Configuration reloaded", zap.String("logLevel", next.LogLevel))
			})
			defer watcher.Close()
		}
	}

	logger.Info("Starting contact-bubbles API",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
		zap.Bool("auth", cfg.EnableAuth),
	)

	srv := server.New(cfg.ServerAddress, container.Router.Setup(), logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
