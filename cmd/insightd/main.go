package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/config"
	"github.com/sathizz7/Street-View-Analysis/internal/db"
	dbValkey "github.com/sathizz7/Street-View-Analysis/internal/db/valkey"
	logpkg "github.com/sathizz7/Street-View-Analysis/internal/logger"
	"github.com/sathizz7/Street-View-Analysis/internal/metrics"
	"github.com/sathizz7/Street-View-Analysis/internal/repository/footprint"
	"github.com/sathizz7/Street-View-Analysis/internal/repository/insightcache"
	chiTransport "github.com/sathizz7/Street-View-Analysis/internal/transport/chi"
	"github.com/sathizz7/Street-View-Analysis/internal/transport/gemini"
	"github.com/sathizz7/Street-View-Analysis/internal/transport/streetview"
	healthuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/health"
	insightuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/insight"
	resolveuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/resolve"
	"github.com/sathizz7/Street-View-Analysis/internal/version"
)

func main() {
	// Optional .env for local development; real deployments set env vars directly.
	_ = godotenv.Load()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting insightd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("footprints_path", cfg.Data.FootprintsPath),
	)

	// Register insight metrics explicitly (no init())
	metrics.RegisterInsightMetrics()

	// Load the footprint dataset once at startup; everything resolves against it.
	footprints, err := footprint.New(logger).Load(cfg.Data.FootprintsPath)
	if err != nil {
		logger.Fatal("Failed to load footprint dataset", zap.Error(err))
	}
	logger.Info("Footprint dataset loaded",
		zap.Int("buildings", footprints.Len()),
		zap.Int("skipped", footprints.Skipped()),
	)

	// Optional cache store for insight responses.
	ctx := context.Background()
	var store db.Store
	if cfg.Cache.Enabled {
		valkeyStore, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer valkeyStore.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := valkeyStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Cache.Addrs))
		store = valkeyStore
	}

	// Build analyzer chain — composition root
	var analyzer insightuc.Analyzer = gemini.NewAnalyzer(&gemini.Config{
		APIKey:  cfg.Insights.APIKey,
		BaseURL: cfg.Insights.BaseURL,
		Model:   cfg.Insights.Model,
		Logger:  logger,
	})
	if store != nil {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		analyzer = insightcache.New(analyzer, store, ttl, metrics.InsightCacheTotal, logger)
	}

	// Street View imagery is optional; without an API key insights fall back
	// to text-only analysis.
	var imagery insightuc.ImagerySource
	if cfg.StreetView.APIKey != "" {
		imagery = &streetViewImagery{client: streetview.NewClient(&streetview.Config{
			APIKey:     cfg.StreetView.APIKey,
			BaseURL:    cfg.StreetView.BaseURL,
			Size:       cfg.StreetView.Size,
			FOV:        cfg.StreetView.FOV,
			Pitch:      cfg.StreetView.Pitch,
			TimeoutSec: cfg.StreetView.TimeoutSec,
			Logger:     logger,
		})}
	} else {
		logger.Warn("Street View API key not configured, imagery disabled")
	}

	// Create use case services
	resolveSvc := resolveuc.New(footprints, logger)
	retry := insightuc.RetryPolicy{
		MaxAttempts: cfg.Insights.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Insights.Retry.BaseDelayMS) * time.Millisecond,
		Multiplier:  cfg.Insights.Retry.Multiplier,
	}
	insightSvc := insightuc.New(footprints, imagery, analyzer, retry, logger)

	// Pass nil interface (not typed nil pointer!) if the cache is not configured.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(footprints, cachePinger)

	// Create chi server
	server := chiTransport.NewServer(resolveSvc, insightSvc, imagery, healthSvc,
		chiTransport.DistanceBounds{
			DefaultMeters: cfg.Resolver.DefaultMaxDistance,
			CapMeters:     cfg.Resolver.MaxDistanceCap,
		}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// streetViewImagery adapts streetview.Client to insight.ImagerySource.
type streetViewImagery struct {
	client *streetview.Client
}

func (s *streetViewImagery) Panorama(ctx context.Context, lat, lon float64) (insightuc.Panorama, error) {
	meta, err := s.client.Metadata(ctx, lat, lon)
	if err != nil {
		return insightuc.Panorama{}, fmt.Errorf("panorama lookup: %w", err)
	}
	return insightuc.Panorama{
		Found: meta.OK(),
		Lat:   meta.Location.Lat,
		Lon:   meta.Location.Lng,
	}, nil
}

func (s *streetViewImagery) Fetch(ctx context.Context, lat, lon, heading float64) ([]byte, error) {
	return s.client.Fetch(ctx, lat, lon, heading) //nolint:wrapcheck // thin adapter
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
