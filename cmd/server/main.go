package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"github.com/socialchef/recipegen/internal/api"
	"github.com/socialchef/recipegen/internal/cache"
	"github.com/socialchef/recipegen/internal/config"
	"github.com/socialchef/recipegen/internal/logger"
	"github.com/socialchef/recipegen/internal/metrics"
	"github.com/socialchef/recipegen/internal/sentry"
	"github.com/socialchef/recipegen/internal/services/recipe"
	"github.com/socialchef/recipegen/internal/services/transcription"
	"github.com/socialchef/recipegen/internal/services/youtube"
	"github.com/socialchef/recipegen/internal/telemetry"
)

func main() {
	defer sentry.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env,
			cfg.OtelExporterOTLPEndpoint, telemetry.ParseHeaders(cfg.OtelExporterOTLPHeaders))
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	slog.SetDefault(logger.New(cfg.Env))

	if cfg.RecipeAPIKey() == "" {
		slog.Warn("No API key for recipe provider", "provider", cfg.RecipeGeneration.Provider)
	}

	generator := recipe.NewProvider(cfg.RecipeGeneration, cfg.RecipeAPIKey())

	var extractor api.VideoExtractor = transcription.NewVideoExtractor(
		youtube.NewDownloader(cfg.YtDlpPath, cfg.TempAudioDir),
		transcription.NewProvider(cfg.Transcription, cfg.TranscriptionAPIKey()),
	)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to create Redis client: %v", err)
		}
		defer rdb.Close()
		extractor = cache.NewCachedExtractor(extractor, cache.NewExtractionCache(rdb), cfg.Cache.TTL)
		slog.Info("Extraction cache enabled", "ttl", cfg.Cache.TTL)
	}

	apiServer := api.NewServer(cfg, generator, extractor)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting server", "port", cfg.Port, "provider", generator.Name(), "model", generator.Model())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
