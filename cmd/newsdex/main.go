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

	"github.com/corvusec/newsdex/internal/cache"
	cacheRedis "github.com/corvusec/newsdex/internal/cache/redis"
	"github.com/corvusec/newsdex/internal/config"
	"github.com/corvusec/newsdex/internal/domain/search/dates"
	logpkg "github.com/corvusec/newsdex/internal/logger"
	"github.com/corvusec/newsdex/internal/metrics"
	minioSource "github.com/corvusec/newsdex/internal/source/minio"
	chiTransport "github.com/corvusec/newsdex/internal/transport/chi"
	mcpTransport "github.com/corvusec/newsdex/internal/transport/mcp"
	fulltextuc "github.com/corvusec/newsdex/internal/usecase/fulltext"
	healthuc "github.com/corvusec/newsdex/internal/usecase/health"
	queryuc "github.com/corvusec/newsdex/internal/usecase/query"
	schemauc "github.com/corvusec/newsdex/internal/usecase/schema"
	valuesuc "github.com/corvusec/newsdex/internal/usecase/values"
	"github.com/corvusec/newsdex/internal/version"
)

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

	logger.Info("Starting newsdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("source_endpoint", cfg.Source.Endpoint),
		zap.String("source_bucket", cfg.Source.Bucket),
	)

	// Document source
	source, err := minioSource.New(minioSource.Config{
		Endpoint:  cfg.Source.Endpoint,
		AccessKey: cfg.Source.AccessKey,
		SecretKey: cfg.Source.SecretKey,
		UseSSL:    cfg.Source.UseSSL,
		Bucket:    cfg.Source.Bucket,
		Object:    cfg.Source.Object,
	})
	if err != nil {
		logger.Fatal("Failed to create document source", zap.Error(err))
	}

	// Optional spill store
	cacheOpts := []cache.Option{
		cache.WithTTL(time.Duration(cfg.Cache.TTLSec) * time.Second),
	}
	var spill *cacheRedis.Store
	if len(cfg.Cache.Redis.Addrs) > 0 {
		spill, err = cacheRedis.NewStore(cacheRedis.Config{
			Addrs:     cfg.Cache.Redis.Addrs,
			Password:  cfg.Cache.Redis.Password,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
			TTL:       time.Duration(cfg.Cache.Redis.TTLSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create spill store", zap.Error(err))
		}
		defer spill.Close()
		cacheOpts = append(cacheOpts, cache.WithSpill(spill))
		logger.Info("Spill store enabled", zap.Strings("addrs", cfg.Cache.Redis.Addrs))
	}

	snapshots := cache.New(source, logger, cacheOpts...)

	datePolicy := dates.NewPolicy(cfg.Search.BadDateValues, cfg.Search.BadDateSubstrings)

	// Create use case services
	schemaSvc := schemauc.New(snapshots).
		WithSampling(cfg.Search.SampleSize, cfg.Search.MaxExamples)
	valuesSvc := valuesuc.New(snapshots)
	querySvc := queryuc.New(snapshots, datePolicy)
	fulltextSvc := fulltextuc.New(snapshots, datePolicy)

	// Health service. The spill pinger must stay a nil interface when the
	// store is not configured, not a typed nil pointer.
	var spillPinger healthuc.Pinger
	if spill != nil {
		spillPinger = spill
	}
	healthSvc := healthuc.New(snapshots, spillPinger)

	// Create chi server
	server := chiTransport.NewServer(schemaSvc, valuesSvc, querySvc, fulltextSvc, healthSvc, logger)

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

	mcpCtx, stopMCP := context.WithCancel(context.Background())
	defer stopMCP()

	// Optional MCP transport alongside the HTTP API
	if cfg.MCP.Transport != "off" {
		mcpSrv := mcpTransport.NewServer(schemaSvc, valuesSvc, querySvc, fulltextSvc, logger)
		go func() {
			var err error
			switch cfg.MCP.Transport {
			case "stdio":
				logger.Info("Starting MCP server on stdio")
				err = mcpSrv.Run(mcpCtx)
			case "http":
				mcpAddr := fmt.Sprintf(":%d", cfg.MCP.Port)
				logger.Info("Starting MCP server", zap.String("addr", mcpAddr))
				err = mcpSrv.RunHTTP(mcpCtx, mcpAddr)
			}
			if err != nil {
				logger.Error("MCP server error", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	stopMCP()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
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
