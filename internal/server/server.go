// Package server собирает центральный сервер синхронизации: справочник центров,
// роутер тенантов, пул проверки подписей и HTTP слой.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/centersync/internal/config"
	"github.com/iudanet/centersync/internal/server/handlers"
	"github.com/iudanet/centersync/internal/server/middleware"
	"github.com/iudanet/centersync/internal/server/storage"
	"github.com/iudanet/centersync/internal/server/storage/sqlite"
	"github.com/iudanet/centersync/internal/server/tenant"
	"github.com/iudanet/centersync/internal/workpool"
	"github.com/iudanet/centersync/pkg/api"
)

// Server центральный сервер
type Server struct {
	logger      *slog.Logger
	directory   *sqlite.Storage
	router      *tenant.Router
	applier     *tenant.Applier
	pool        *workpool.Pool
	ipLimit     *middleware.RateLimiter
	centerLimit *middleware.RateLimiter
	handler     http.Handler
	ready       chan struct{}
	addr        net.Addr
	cfg         config.Server
}

// New открывает справочник центров и каталог тенантов и собирает HTTP обработчик.
// version отдается в /health.
func New(ctx context.Context, cfg *config.Server, version string, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	policy, err := tenant.ParseDeletePolicy(cfg.DeletePolicy)
	if err != nil {
		return nil, err
	}

	directory, err := sqlite.New(ctx, cfg.DirectoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open center directory: %w", err)
	}

	router, err := tenant.NewRouter(cfg.TenantsDir, cfg.TenantIdleTimeout, logger)
	if err != nil {
		_ = directory.Close()
		return nil, err
	}

	s := &Server{
		logger:    logger,
		directory: directory,
		router:    router,
		applier:   tenant.NewApplier(router, policy, logger),
		pool:      workpool.New(cfg.CryptoWorkers, logger),
		ready:     make(chan struct{}),
		cfg:       *cfg,
	}
	if cfg.RateLimit.IPRequests > 0 {
		s.ipLimit = middleware.NewRateLimiter(cfg.RateLimit.IPRequests, cfg.RateLimit.Window, logger)
	}
	if cfg.RateLimit.Requests > 0 {
		s.centerLimit = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)
	}
	s.handler = s.routes(version)

	logger.Info("Server initialized",
		"directory_db", cfg.DirectoryDB,
		"tenants_dir", cfg.TenantsDir,
		"delete_policy", string(policy),
		"crypto_workers", s.pool.Size())

	return s, nil
}

// routes собирает mux и цепочку middleware
func (s *Server) routes(version string) http.Handler {
	syncHandler := handlers.NewSyncHandler(s.logger, s.directory, s.applier, s.pool)
	healthHandler := handlers.NewHealthHandler(s.logger, version)
	signature := middleware.SignatureMiddleware(s.directory, s.pool, s.cfg.MaxChunkBytes, s.logger)

	// лимит на центр считается только после проверки подписи
	var upload http.Handler = http.HandlerFunc(syncHandler.UploadChunk)
	if s.centerLimit != nil {
		upload = middleware.RateLimitMiddleware(s.centerLimit, middleware.CenterKey, s.logger)(upload)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.PathCheckSyncAvailability, syncHandler.CheckSyncAvailability)
	mux.Handle("POST "+api.PathUploadChunk, signature(upload))
	mux.HandleFunc("GET "+api.PathHealth, healthHandler.Health)

	var handler http.Handler = mux
	if s.ipLimit != nil {
		keyFn := middleware.ClientIPKey(s.cfg.RateLimit.TrustProxyHeaders)
		handler = middleware.RateLimitMiddleware(s.ipLimit, keyFn, s.logger)(handler)
	}
	handler = middleware.LoggingMiddleware(s.logger, api.PathHealth)(handler)
	handler = middleware.RequestIDMiddleware()(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

// Handler возвращает HTTP обработчик сервера
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Centers справочник центров
func (s *Server) Centers() storage.CenterStorage {
	return s.directory
}

// Router роутер namespace тенантов
func (s *Server) Router() *tenant.Router {
	return s.router
}

// Ready закрывается, когда сервер начал принимать соединения
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr фактический адрес прослушивания; валиден после Ready
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Run слушает listen_addr до отмены ctx, затем ждет завершения
// активных запросов не дольше shutdown_timeout
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("HTTP server listening", "address", s.addr.String())

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutting down")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Close освобождает пул, namespace тенантов и справочник
func (s *Server) Close() error {
	for _, limiter := range []*middleware.RateLimiter{s.ipLimit, s.centerLimit} {
		if limiter != nil {
			limiter.Stop()
		}
	}
	s.pool.Close()

	return errors.Join(s.router.Close(), s.directory.Close())
}
