// Package server exposes the flows over HTTP and a WebSocket channel.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/chriscow/musickly/internal/config"
	"github.com/chriscow/musickly/internal/flow"
	"github.com/chriscow/musickly/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the JSON API.
type Server struct {
	cfg      config.ServerConfig
	flows    *flow.Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader

	httpServer *http.Server
	startTime  time.Time

	// WebSocket sessions are hijacked, so http.Server.Shutdown does not
	// wait for them. sessionCtx is their parent and is cancelled on shutdown.
	sessionCtx     context.Context
	cancelSessions context.CancelFunc
	mu             sync.Mutex
	closing        bool
	sessions       sync.WaitGroup
}

// New creates a server. gatherer backs /metrics and should be the registry
// m was registered with.
func New(cfg config.ServerConfig, svc *flow.Service, logger *slog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		cfg:       cfg,
		flows:     svc,
		logger:    logger,
		metrics:   m,
		gatherer:  gatherer,
		startTime: time.Now(),
	}
	s.sessionCtx, s.cancelSessions = context.WithCancel(context.Background())

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	if len(cfg.AllowedOrigins) > 0 {
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(cfg.AllowedOrigins, "*") || slices.Contains(cfg.AllowedOrigins, origin)
		}
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.withMetrics("/health", s.handleHealth))
	mux.HandleFunc("GET /api/flows", s.withMetrics("/api/flows", s.handleListFlows))
	mux.HandleFunc("POST /api/flows/{name}", s.withMetrics("/api/flows/{name}", s.handleRunFlow))
	mux.HandleFunc("POST /api/wav", s.withMetrics("/api/wav", s.handleEncodeWav))

	// Not wrapped: the upgrade needs the raw ResponseWriter's Hijacker.
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return mux
}

// withMetrics wraps an HTTP handler with metrics collection
func (s *Server) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		s.metrics.RecordHTTPRequest(r.Method, endpoint, fmt.Sprintf("%d", ww.statusCode), duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			s.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting HTTP API server", slog.String("address", s.httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Stopping HTTP API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	if serr := s.shutdownSessions(shutdownCtx); err == nil {
		err = serr
	}
	return err
}

// shutdownSessions refuses new WebSocket upgrades, cancels the runs of every
// open session and waits for the sessions to close or ctx to expire.
func (s *Server) shutdownSessions(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.cancelSessions()

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("websocket sessions still open: %w", ctx.Err())
	}
}
