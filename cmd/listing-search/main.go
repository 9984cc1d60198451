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
	"go.uber.org/zap"

	"github.com/bazaarhq/listing-search/internal/config"
	"github.com/bazaarhq/listing-search/internal/db/memory"
	dbPostgres "github.com/bazaarhq/listing-search/internal/db/postgres"
	dbValkey "github.com/bazaarhq/listing-search/internal/db/valkey"
	logpkg "github.com/bazaarhq/listing-search/internal/logger"
	"github.com/bazaarhq/listing-search/internal/metrics"
	"github.com/bazaarhq/listing-search/internal/repository/citycache"
	chiTransport "github.com/bazaarhq/listing-search/internal/transport/chi"
	"github.com/bazaarhq/listing-search/internal/transport/geocoder"
	healthuc "github.com/bazaarhq/listing-search/internal/usecase/health"
	locationuc "github.com/bazaarhq/listing-search/internal/usecase/location"
	searchuc "github.com/bazaarhq/listing-search/internal/usecase/search"
	"github.com/bazaarhq/listing-search/internal/version"
)

// listingsDB is what a listings database driver provides.
type listingsDB interface {
	searchuc.ListingStore
	searchuc.Catalog
	healthuc.DBPinger
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting listing-search API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("geocoder_enabled", cfg.Geocoder.Enabled),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	ctx := context.Background()

	// Create listings store based on driver
	var store listingsDB
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := dbPostgres.NewStore(dbPostgres.Config{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer pg.Close()

		readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := pg.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		store = pg
	case config.DriverMemory:
		mem, err := memory.Load(cfg.Database.SeedFile)
		if err != nil {
			logger.Fatal("Failed to load seed file", zap.String("path", cfg.Database.SeedFile), zap.Error(err))
		}
		store = mem
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	logger.Info("Connected to database")

	// City cache. Pass nil interfaces (not typed nil pointers) when disabled.
	var (
		cityCache   locationuc.Cache
		cachePinger healthuc.CachePinger
	)
	if cfg.Cache.Enabled {
		kv, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer kv.Close()

		readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := kv.WaitForReady(ctx, readiness); err != nil {
			// Search works without the cache; health reports degraded.
			logger.Warn("Cache not ready", zap.Error(err))
		}
		cityCache = citycache.New(kv, cfg.Cache.KeyPrefix, metrics.CityCacheTotal, logger)
		cachePinger = kv
	}

	var cityGeocoder locationuc.Geocoder
	if cfg.Geocoder.Enabled {
		cityGeocoder = geocoder.NewClient(&geocoder.Config{
			BaseURL:   cfg.Geocoder.BaseURL,
			UserAgent: cfg.Geocoder.UserAgent,
			Timeout:   cfg.Geocoder.Timeout(),
			Logger:    logger,
		})
	}

	// Create use case services
	searchSvc := searchuc.New(store, store, searchuc.Config{
		Timeout:         cfg.Search.Timeout(),
		DefaultLimit:    cfg.Search.DefaultPageSize,
		GeoStrategy:     searchuc.GeoStrategy(cfg.Search.GeoStrategy),
		PopularTerms:    cfg.Search.PopularTerms,
		SourceLimit:     cfg.Search.SourceLimit,
		SuggestionLimit: cfg.Search.AutocompleteLimit,
	}, searchuc.Metrics{
		SearchDuration: metrics.SearchDuration,
		FacetDuration:  metrics.FacetDuration,
		SourceErrors:   metrics.AutocompleteSourceErrors,
	}, logger)

	locationSvc := locationuc.New(cityCache, cityGeocoder, locationuc.Config{
		Limit:          cfg.Locations.Limit,
		LocalThreshold: cfg.Locations.LocalThreshold,
		WriteTimeout:   cfg.Locations.WriteTimeout(),
	}, metrics.CityCacheWriteErrors, logger)

	healthSvc := healthuc.New(store, cachePinger)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, locationSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.APIKeyMiddleware(cfg.Auth.APIKeys))
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
	// Pending city cache writes finish before the cache client closes.
	if err := locationSvc.Drain(shutdownCtx); err != nil {
		logger.Warn("City cache writes still pending", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logpkg.FromContext(r.Context(), logger).Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if viewer := r.Header.Get("X-Viewer-ID"); viewer != "" {
				fields = append(fields, zap.String("viewer_id", viewer))
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
