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

	"github.com/biblioteca-labs/acervo/internal/config"
	"github.com/biblioteca-labs/acervo/internal/elastic"
	logpkg "github.com/biblioteca-labs/acervo/internal/logger"
	"github.com/biblioteca-labs/acervo/internal/metrics"
	chiTransport "github.com/biblioteca-labs/acervo/internal/transport/chi"
	healthuc "github.com/biblioteca-labs/acervo/internal/usecase/health"
	ingestuc "github.com/biblioteca-labs/acervo/internal/usecase/ingest"
	searchuc "github.com/biblioteca-labs/acervo/internal/usecase/search"
	statusuc "github.com/biblioteca-labs/acervo/internal/usecase/status"
	"github.com/biblioteca-labs/acervo/internal/version"
)

func main() {
	// Optional .env for local development; ignored when absent
	_ = godotenv.Load()

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

	logger.Info("Starting acervo API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("es_url", cfg.Elastic.URL),
		zap.String("es_index", cfg.Elastic.Index),
	)

	// The resolver memoizes the backend client; nothing touches the network
	// until the first request, so a misconfigured backend does not stop the
	// process. Admins see the problem on /api/v1/status.
	resolver := elastic.NewResolver(cfg.Elastic)

	// Best-effort index bootstrap with the catalog mapping. Failure is logged
	// and the server starts anyway: writes will surface the same error
	// per-request, and the backend may simply not be up yet.
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 15*time.Second)
	if err := resolver.EnsureIndex(bootCtx, cfg.Elastic.Index, elastic.CatalogMapping()); err != nil {
		logger.Warn("Index bootstrap failed, continuing", zap.Error(err))
	} else {
		logger.Info("Index ready", zap.String("index", cfg.Elastic.Index))
	}
	cancelBoot()

	// Create use case services
	searchSvc := searchuc.New(resolver, cfg.Elastic.Index).
		WithMaxPageSize(cfg.Search.MaxPageSize)
	ingestSvc := ingestuc.New(resolver, cfg.Elastic.Index)
	statusSvc := statusuc.New(resolver, cfg.Elastic.Index)
	healthSvc := healthuc.New(resolver)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, ingestSvc, statusSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

			// Canonical log line, one line per request
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
