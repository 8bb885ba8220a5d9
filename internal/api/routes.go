package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"github.com/socialchef/recipegen/internal/middleware"
	"github.com/socialchef/recipegen/internal/sentry"
	"go.opentelemetry.io/otel"
)

// Routes builds the HTTP router with the full middleware stack.
func (s *Server) Routes() http.Handler {
	serviceName := s.cfg.ServiceName
	if serviceName == "" {
		serviceName = "recipegen"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(serviceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(middleware.Logger(slog.Default()))
	r.Use(sentry.HTTPMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	r.Get("/health", s.HandleHealth)

	r.Get("/", s.HandleHome)
	r.Get("/recipe-generator", s.HandleRecipeGeneratorPage)
	r.Post("/generate-recipe", s.HandleGenerateRecipe)
	r.Get("/youtube_extractor", s.HandleYouTubeExtractor)
	r.Post("/youtube_extractor", s.HandleYouTubeExtractor)

	return r
}
