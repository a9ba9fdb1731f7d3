// Package server exposes the steganography pipeline over HTTP and a
// WebSocket analysis stream.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/stegtext/internal/config"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/logging"
	"github.com/conneroisu/stegtext/internal/services"
)

const (
	// ShutdownTimeout bounds how long in-flight requests may run after the
	// server context is cancelled.
	ShutdownTimeout = 30 * time.Second

	readHeaderTimeout = 10 * time.Second
)

// Server serves the JSON API and the WebSocket endpoint.
type Server struct {
	config  config.ServerConfig
	stego   *services.StegoService
	logger  logging.Logger
	errors  *errors.ErrorHandler
	limiter *RateLimiter
	handler http.Handler
	upSince time.Time

	serverMutex sync.RWMutex // protects httpServer and boundAddr
	httpServer  *http.Server
	boundAddr   string

	shutdownOnce  sync.Once
	shutdownMutex sync.RWMutex
	isShutdown    bool
}

// New creates a server for stego. The handler chain is built once here.
func New(cfg *config.ServerConfig, stego *services.StegoService, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("server")

	s := &Server{
		config:  *cfg,
		stego:   stego,
		logger:  logger,
		errors:  errors.NewErrorHandler(logger),
		upSince: time.Now(),
	}
	if s.config.MaxBodyBytes <= 0 {
		s.config.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	if s.config.RateLimit > 0 {
		s.limiter = NewRateLimiter(&RateLimitConfig{
			RequestsPerMinute: s.config.RateLimit,
			BurstSize:         burstFor(s.config.RateLimit),
		}, logger)
	}

	s.handler = s.addMiddleware(s.routes())
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("GET /api/wordlists", s.handleWordLists)
	mux.HandleFunc("GET /api/capacity", s.handleCapacity)
	mux.HandleFunc("POST /api/hide", s.handleHide)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("GET /ws/analyze", s.handleWebSocket)
	return mux
}

// Handler returns the fully wrapped handler, for embedding or httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the bound address once listening, else the configured one.
func (s *Server) Addr() string {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	if s.boundAddr != "" {
		return s.boundAddr
	}
	return s.config.Addr()
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.shutdownMutex.RLock()
	closed := s.isShutdown
	s.shutdownMutex.RUnlock()
	if closed {
		ln.Close()
		return http.ErrServerClosed
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.boundAddr = ln.Addr().String()
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Listening", "addr", s.boundAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		s.shutdownMutex.Lock()
		s.isShutdown = true
		s.shutdownMutex.Unlock()

		if s.limiter != nil {
			s.limiter.Stop()
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// burstFor sizes the token bucket at a tenth of the per-minute rate.
func burstFor(perMinute int) int {
	if b := perMinute / 10; b > 1 {
		return b
	}
	return 1
}
