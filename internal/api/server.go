package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/purezhi/mcu/internal/action"
	"github.com/purezhi/mcu/internal/auth"
	"github.com/purezhi/mcu/internal/fault"
	"github.com/purezhi/mcu/internal/metrics"
)

// Server represents the HTTP gateway server.
type Server struct {
	mu             sync.Mutex
	httpServer     *http.Server
	stopped        bool
	dispatcher     DispatcherPort
	router         *action.Router
	translator     *fault.Translator
	authMiddleware *auth.Middleware
	metrics        *metrics.Metrics
	logger         *zap.Logger
	corsOrigins    []string
	version        string
	startTime      time.Time
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

// NewServer creates a new gateway server.
func NewServer(dispatcher DispatcherPort, router *action.Router, translator *fault.Translator, readTimeout, writeTimeout, idleTimeout time.Duration) *Server {
	return &Server{
		dispatcher:   dispatcher,
		router:       router,
		translator:   translator,
		logger:       zap.NewNop(),
		version:      "dev",
		startTime:    time.Now(),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		idleTimeout:  idleTimeout,
	}
}

// SetAuthMiddleware enables bearer-token authentication on the gateway routes.
func (s *Server) SetAuthMiddleware(m *auth.Middleware) {
	s.authMiddleware = m
}

// SetMetrics enables request metrics and the /metrics route.
func (s *Server) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetLogger sets the access and error logger.
func (s *Server) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetCORSOrigins enables CORS for the given origins.
func (s *Server) SetCORSOrigins(origins []string) {
	s.corsOrigins = origins
}

// SetVersion sets the version reported by /health.
func (s *Server) SetVersion(version string) {
	s.version = version
}

// AuthFailure renders an authentication failure as a failure envelope.
func (s *Server) AuthFailure(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Info("request rejected",
		zap.String("requestId", requestIDFrom(r)),
		zap.Error(err),
	)
	WriteFailure(w, s.authMessage(err))
}

// Handler returns the complete handler chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Register all routes
	s.RegisterRoutes(mux)

	var h http.Handler = mux
	h = s.corsMiddleware(h)
	h = s.recoverMiddleware(h)
	h = s.metricsMiddleware(h)
	h = s.accessLogMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ln.Close()
	}
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("gateway listening", zap.String("addr", ln.Addr().String()))

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.stopped = true
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}
