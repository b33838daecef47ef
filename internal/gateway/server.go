// Package gateway exposes statement execution over a small JSON HTTP API.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/querykit/internal/history"
	"github.com/leapstack-labs/querykit/pkg/query"
	"golang.org/x/sync/errgroup"
)

const (
	// maxRows caps query responses so a stray SELECT cannot exhaust the
	// process.
	maxRows = 1000

	queryTimeout = 30 * time.Second
)

// Config holds configuration for the gateway server.
type Config struct {
	DB      *query.Database
	History *history.Store // nil disables recording
	Addr    string
	Logger  *slog.Logger
}

// Server serves the querykit HTTP API.
type Server struct {
	db      *query.Database
	history *history.Store
	addr    string
	logger  *slog.Logger
}

// NewServer creates a new gateway server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8765"
	}
	return &Server{
		db:      cfg.DB,
		history: cfg.History,
		addr:    addr,
		logger:  logger,
	}
}

// Routes builds the HTTP handler, exported for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/exec", s.handleExec)
		r.Get("/tables/{table}/count", s.handleTableCount)
	})

	return r
}

// Serve starts the gateway and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting gateway", slog.String("addr", s.addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("gateway error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down gateway...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger logs one line per request through the server's logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
