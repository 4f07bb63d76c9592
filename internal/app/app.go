// Package app assembles the guestbook server from configuration: the greeting
// store, the task queue and worker, the HTTP router, and their lifecycles.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/guestbook/handlers"
	"github.com/gogotex/guestbook/internal/config"
	"github.com/gogotex/guestbook/internal/database"
	"github.com/gogotex/guestbook/internal/guestbook/handler"
	"github.com/gogotex/guestbook/internal/guestbook/repository"
	"github.com/gogotex/guestbook/internal/guestbook/service"
	"github.com/gogotex/guestbook/internal/tasks"
	"github.com/gogotex/guestbook/pkg/logger"
	"github.com/gogotex/guestbook/pkg/metrics"
	"github.com/gogotex/guestbook/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// App is a wired guestbook instance.
type App struct {
	Config  *config.Config
	Service *service.Service
	Queue   tasks.Queue
	Worker  *tasks.Worker
	Router  *gin.Engine

	mongo *mongo.Client
	redis *redis.Client
}

// New connects the configured backends and builds the router. MongoDB and
// Redis are optional: without them greetings and tasks live in memory.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var repo repository.Repository
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Warnf("cannot connect to MongoDB (%v), using memory-backed greetings", err)
		} else {
			a.mongo = client
			repo = repository.NewMongoRepo(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
			logger.Infof("greetings stored in MongoDB %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
		}
	}
	if repo == nil {
		repo = repository.NewMemoryRepo()
	}

	if cfg.Redis.Host != "" {
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, 5*time.Second)
		if err != nil {
			logger.Warnf("cannot connect to Redis at %s (%v), using in-process task queue", cfg.Redis.Addr(), err)
		} else {
			a.redis = client
			a.Queue = tasks.NewRedisQueue(client, cfg.Tasks.QueueKey)
			logger.Infof("tasks queued in Redis list %s", cfg.Tasks.QueueKey)
		}
	}
	if a.Queue == nil {
		a.Queue = tasks.NewMemoryQueue(0)
	}

	a.Service = service.NewService(repo, a.Queue)
	a.Worker = tasks.NewWorker(a.Queue, tasks.WorkerOptions{MaxAttempts: cfg.Tasks.MaxAttempts, Poll: cfg.Tasks.Poll})
	a.Service.RegisterTasks(a.Worker)
	a.Router = a.router()
	return a, nil
}

func (a *App) router() *gin.Engine {
	cfg := a.Config
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	rl := cfg.RateLimit
	if rl.Enabled {
		if rl.UseRedis && a.redis != nil {
			r.Use(middleware.RedisRateLimitMiddleware(a.redis, rl.RPS, rl.Burst, time.Duration(rl.WindowSeconds)*time.Second, middleware.ByClientIP))
		} else {
			r.Use(middleware.RateLimitMiddleware(rl.RPS, rl.Burst, middleware.ByClientIP))
		}
	}
	var signLimit []gin.HandlerFunc
	if rl.SignEnabled {
		signLimit = append(signLimit, middleware.RateLimitMiddleware(rl.SignRPS, 1, middleware.ByGuestbook))
	}

	handlers.RegisterHealth(r, map[string]handlers.Check{
		"storage": a.Service.Ping,
		"queue": func(ctx context.Context) error {
			_, err := a.Queue.Len(ctx)
			return err
		},
	})
	handlers.RegisterSwagger(r)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handler.RegisterRoutes(r, a.Service, signLimit...)
	return r
}

// ErrNoDrain is returned by Serve when the worker is disabled but tasks would
// go to an in-process queue that nothing else reads.
var ErrNoDrain = errors.New("task worker disabled with an in-process queue: purge continuations would never run")

// Serve runs the HTTP server and, when withWorker is set, the task worker,
// until ctx is cancelled or one of them fails.
func (a *App) Serve(ctx context.Context, withWorker bool) error {
	if _, inProcess := a.Queue.(*tasks.MemoryQueue); inProcess && !withWorker {
		return ErrNoDrain
	}
	srv := &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("guestbook listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if withWorker {
		g.Go(func() error { return a.Worker.Run(ctx) })
	}
	return g.Wait()
}

// CheckStandalone reports whether this App can run as a worker separate from
// the server: both the queue and the greeting store must be shared.
func (a *App) CheckStandalone() error {
	if _, ok := a.Queue.(*tasks.RedisQueue); !ok {
		return fmt.Errorf("standalone worker needs the Redis queue (REDIS_HOST=%q)", a.Config.Redis.Host)
	}
	if a.mongo == nil {
		return fmt.Errorf("standalone worker needs the MongoDB store (MONGODB_URI set: %v)", a.Config.MongoDB.URI != "")
	}
	return nil
}

// Close releases backend connections.
func (a *App) Close() {
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Disconnect(ctx); err != nil {
			logger.Warnf("mongo disconnect: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warnf("redis close: %v", err)
		}
	}
}
