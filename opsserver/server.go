package opsserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ruteri/tee-bls-signer/kms"
)

// Config configures the ops sidecar.
type Config struct {
	ListenAddr               string
	Log                      *slog.Logger
	ZapLogger                *zap.Logger
	GracefulShutdownDuration time.Duration
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
}

// Server is the ops sidecar. It holds a reference to the keystore store
// purely to report its size on /healthz, never to mutate it.
type Server struct {
	cfg     *Config
	isReady atomic.Bool
	store   *kms.Store
	srv     *http.Server
}

// New builds an ops sidecar server. It starts marked ready.
func New(cfg *Config, store *kms.Store) *Server {
	srv := &Server{cfg: cfg, store: store}
	srv.isReady.Store(true)
	srv.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.getRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return srv
}

func (s *Server) getRouter() http.Handler {
	mux := chi.NewRouter()
	mux.With(s.httpLogger).Get("/healthz", s.handleHealthz)
	mux.With(s.httpLogger).Get("/readyz", s.handleReadyz)
	mux.With(s.httpLogger).Get("/drain", s.handleDrain)
	mux.With(s.httpLogger).Get("/undrain", s.handleUndrain)
	return mux
}

func (s *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(s.cfg.Log, next)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	size := 0
	if s.store != nil {
		size = s.store.Size()
	}
	w.Write([]byte(`{"status":"alive","keystoreSize":` + strconv.Itoa(size) + `}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !s.isReady.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (s *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	s.isReady.Store(false)
	s.cfg.Log.Info("ops sidecar marked not ready")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"draining"}`))
}

func (s *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	s.isReady.Store(true)
	s.cfg.Log.Info("ops sidecar marked ready")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// RunInBackground starts the sidecar listener without blocking.
func (s *Server) RunInBackground() {
	go func() {
		s.cfg.Log.Info("starting ops sidecar", "listenAddress", s.cfg.ListenAddr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.cfg.Log.Error("ops sidecar failed", "err", err)
		}
	}()
}

// Shutdown gracefully stops the sidecar listener.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.GracefulShutdownDuration)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.cfg.Log.Error("ops sidecar graceful shutdown failed", "err", err)
	} else {
		s.cfg.Log.Info("ops sidecar stopped")
	}
}
