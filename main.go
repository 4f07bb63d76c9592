package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogotex/guestbook/internal/app"
	"github.com/gogotex/guestbook/internal/config"
	"github.com/gogotex/guestbook/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "guestbook",
		Short:        "Guestbook web service",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), purgeCmd())
	return root
}

func serveCmd() *cobra.Command {
	var noWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve HTTP and process purge tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(ctx, !noWorker)
		},
	}
	cmd.Flags().BoolVar(&noWorker, "no-worker", false, "do not run the task worker in this process")
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete every greeting in the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.Service.PurgeAll(ctx)
			logger.Infof("purge removed %d greetings", n)
			return err
		},
	}
}

func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	logger.Infof("config loaded: mongo=%v redis=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "")
	return app.New(ctx, cfg)
}
