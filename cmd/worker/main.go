// Command worker processes queued guestbook tasks without serving HTTP.
// It is only useful with a shared Redis queue.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogotex/guestbook/internal/app"
	"github.com/gogotex/guestbook/internal/config"
	"github.com/gogotex/guestbook/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	if cfg.Redis.Host == "" || cfg.MongoDB.URI == "" {
		logger.Fatalf("REDIS_HOST and MONGODB_URI are required for a standalone worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer a.Close()
	if err := a.CheckStandalone(); err != nil {
		a.Close()
		logger.Fatalf("%v", err)
	}

	if err := a.Worker.Run(ctx); err != nil {
		logger.Errorf("worker: %v", err)
	}
}
