package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nomen-research/nomen/internal/config"
	dbRedis "github.com/nomen-research/nomen/internal/db/redis"
	logpkg "github.com/nomen-research/nomen/internal/logger"
	"github.com/nomen-research/nomen/internal/metrics"
	"github.com/nomen-research/nomen/internal/repository/datafile"
	"github.com/nomen-research/nomen/internal/repository/dataredis"
	chiTransport "github.com/nomen-research/nomen/internal/transport/chi"
	"github.com/nomen-research/nomen/internal/usecase/analyze"
	"github.com/nomen-research/nomen/internal/usecase/compose"
	"github.com/nomen-research/nomen/internal/usecase/extract"
	"github.com/nomen-research/nomen/internal/usecase/pipeline"
	"github.com/nomen-research/nomen/internal/version"
)

// contextBackend is what the server needs from a storage driver: feature
// lookups for the pipeline plus schema metadata for the read endpoints.
type contextBackend interface {
	pipeline.ContextAdapter
	chiTransport.SchemaReader
}

func main() {
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

	logger.Info("Starting nomen API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()

	// Create context backend based on driver
	var backend contextBackend
	switch cfg.Storage.Driver {
	case "file":
		repo, err := datafile.New(cfg.Storage.DataDir)
		if err != nil {
			logger.Fatal("Failed to load datasets", zap.Error(err))
		}
		backend = repo
		logger.Info("Loaded dataset directory", zap.String("dir", cfg.Storage.DataDir))
	case "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Storage.Addrs,
			Password: cfg.Storage.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Storage.Addrs))

		backend = dataredis.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)
	default:
		logger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()
	metrics.RegisterHTTPMetrics()

	// Build the pipeline — composition root
	engine := analyze.New().
		WithResamples(cfg.Analysis.BootstrapResamples).
		WithSeed(cfg.Analysis.BootstrapSeed).
		WithCVFolds(cfg.Analysis.CVFolds).
		WithRegression(cfg.Analysis.Regression)

	runner := pipeline.New(extract.New(), compose.New(), engine, backend, logger).
		WithStrictMode(cfg.Analysis.StrictMode).
		WithParallelism(cfg.Analysis.Parallelism)

	server := chiTransport.NewServer(pipeline.NewInstrumented(runner), backend, logger)
	handler := chiMiddleware.RequestID(wideEventMiddleware(logger)(server.Router()))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
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

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
