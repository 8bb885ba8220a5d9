package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"github.com/socialchef/recipegen/internal/config"
	"github.com/socialchef/recipegen/internal/logger"
	"github.com/socialchef/recipegen/internal/metrics"
	"github.com/socialchef/recipegen/internal/sentry"
	"github.com/socialchef/recipegen/internal/telemetry"
	"github.com/socialchef/recipegen/internal/utils"
	"github.com/socialchef/recipegen/internal/worker"
)

func main() {
	defer sentry.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Invalid worker config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName+"-worker", cfg.ServiceVersion, cfg.Env,
			cfg.OtelExporterOTLPEndpoint, telemetry.ParseHeaders(cfg.OtelExporterOTLPHeaders))
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName+"-worker", cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	slog.SetDefault(logger.New(cfg.Env))

	if _, err := worker.ParseRedisURL(cfg.RedisURL); err != nil {
		log.Fatalf("Invalid worker config: %v", err)
	}
	if _, err := utils.WithRetry(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, worker.PingRedis(ctx, cfg.RedisURL)
	}, utils.StartupRetryConfig()); err != nil {
		log.Fatalf("Failed to reach Redis: %v", err)
	}

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	srv, err := worker.NewServer(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create worker: %v", err)
	}
	scheduler, err := worker.NewScheduler(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	task, err := worker.NewCleanupAudioTask(worker.CleanupAudioPayload{
		Dir:    cfg.TempAudioDir,
		MaxAge: cfg.Janitor.MaxAge,
	})
	if err != nil {
		log.Fatalf("Failed to build cleanup task: %v", err)
	}
	if _, err := scheduler.Register(cfg.Janitor.Interval, task); err != nil {
		log.Fatalf("Failed to schedule cleanup: %v", err)
	}

	// Sweep once at startup instead of waiting a full interval.
	client, err := worker.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create queue client: %v", err)
	}
	defer client.Close()
	if _, err := client.EnqueueContext(ctx, task, asynq.Unique(cfg.Janitor.MaxAge)); err != nil {
		slog.Warn("Failed to enqueue startup sweep", "error", err)
	}

	mux := worker.NewMux(worker.NewAudioJanitor(workerMetrics))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(mux)
	})
	g.Go(func() error {
		return scheduler.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down worker...")
		scheduler.Shutdown()
		srv.Shutdown()
		return nil
	})

	slog.Info("Starting worker", "dir", cfg.TempAudioDir, "interval", cfg.Janitor.Interval, "max_age", cfg.Janitor.MaxAge)

	if err := g.Wait(); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
