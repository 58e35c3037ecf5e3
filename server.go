package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/xplshn/tracerr2"
)

const shutdownTimeout = 5 * time.Second

// Server owns the handler chain and the listen/serve/shutdown lifecycle.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	handler http.Handler

	// OnReady, when set, runs once the listener is bound, right before
	// requests are served.
	OnReady func()
}

// NewServer builds the handler chain for cfg. Everything shared between
// requests is parsed here, once.
func NewServer(cfg Config, logger, access *slog.Logger) (*Server, error) {
	types, err := loadMimeTable()
	if err != nil {
		return nil, err
	}

	root := http.Dir(cfg.Root)
	listing, err := newListing(root, cfg.Theme, logger)
	if err != nil {
		return nil, err
	}

	responder := &Responder{
		root:    root,
		types:   types,
		listing: listing,
		logger:  logger,
	}
	handler := withAccessLog(access, withBaseHeaders(withRecovery(logger, responder)))

	return &Server{cfg: cfg, logger: logger, handler: handler}, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then drains in-flight requests and
// returns. A nil return means a clean stop.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use, try another one, e.g.: pserve %d",
				s.cfg.Port, suggestPort(s.cfg.Port))
		}
		return tracerr.Wrapf(err, "failed to listen on %s", s.cfg.Addr())
	}

	if s.OnReady != nil {
		s.OnReady()
	}
	srv := &http.Server{Handler: s.handler}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("serving", "addr", s.cfg.Addr(), "root", s.cfg.Root)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("graceful shutdown incomplete, closing", "error", err)
			srv.Close()
		}
		<-errCh
		s.logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return tracerr.Wrapf(err, "server failed")
		}
		return nil
	}
}

func suggestPort(p int) int {
	if p < maxPort {
		return p + 1
	}
	return p - 1
}

// withRecovery turns handler panics into logged 500s. http.ErrAbortHandler
// is the server's own client-gone signal; it is re-raised and stays silent.
func withRecovery(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.Error("handler panicked", "path", r.URL.Path, "panic", v)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures what the chain wrote for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// withAccessLog writes one line per completed request.
func withAccessLog(access *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		defer func() {
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			access.Info("request",
				"remote", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rec.bytes,
				"duration", time.Since(start),
			)
		}()
		next.ServeHTTP(rec, r)
	})
}
