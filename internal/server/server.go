// Package server provides the HTTP server for TakeBook.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/server/api"
	"github.com/ayusman/takebook/internal/session"
	"github.com/ayusman/takebook/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	// Runner enables the session, stream and game endpoints.
	Runner *session.Runner
	// SessionDefaults fills what a start request leaves unset.
	SessionDefaults session.Config
}

// Server represents the HTTP server for the TakeBook application.
type Server struct {
	config Config
	router *mux.Router
	start  time.Time

	ctx    context.Context
	cancel context.CancelFunc
	game   *GameHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		start:  time.Now(),
		ctx:    ctx,
		cancel: cancel,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if s.config.Store != nil {
		api.NewUserHandler(s.config.Store).Register(s.router)
		api.NewPostHandler(s.config.Store).Register(s.router)
		api.NewScoreHandler(s.config.Store).Register(s.router)
	}

	if s.config.Runner != nil {
		api.NewSessionHandler(s.ctx, s.config.Runner, s.config.SessionDefaults).Register(s.router)

		mailbox := s.config.Runner.Mailbox()
		s.router.Handle("/api/stream", NewStreamHandler(mailbox)).Methods(http.MethodGet)

		s.game = NewGameHandler(mailbox)
		s.router.Handle("/api/game", s.game)
	}

	if s.config.StaticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Runner != nil {
		response["session_active"] = s.config.Runner.Active() != nil
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close stops sessions started over HTTP and the game broadcaster.
func (s *Server) Close() {
	s.cancel()
	if s.config.Runner != nil {
		s.config.Runner.Stop()
	}
	if s.game != nil {
		s.game.Close()
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
