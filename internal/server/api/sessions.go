package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/filter"
	"github.com/ayusman/takebook/internal/session"
)

// SessionHandler starts and stops camera sessions over HTTP.
type SessionHandler struct {
	runner   *session.Runner
	defaults session.Config
	// base outlives any single request; sessions are stopped through the API
	// or when base is cancelled.
	base context.Context
}

// NewSessionHandler creates a SessionHandler. defaults supplies everything a
// start request leaves unset.
func NewSessionHandler(ctx context.Context, runner *session.Runner, defaults session.Config) *SessionHandler {
	return &SessionHandler{runner: runner, defaults: defaults, base: ctx}
}

// Register adds the session routes to r.
func (h *SessionHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/sessions", h.start).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/current", h.current).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/current", h.stop).Methods(http.MethodDelete)
	r.HandleFunc("/api/sessions/current/mode", h.setMode).Methods(http.MethodPut)
}

type startSessionRequest struct {
	Kind             string `json:"kind"`
	User             string `json:"user,omitempty"`
	Mode             string `json:"mode,omitempty"`
	IndependentHands *bool  `json:"independent_hands,omitempty"`
}

type sessionResponse struct {
	ID   string       `json:"id"`
	Kind session.Kind `json:"kind"`
	Mode string       `json:"mode,omitempty"`
}

type setModeRequest struct {
	Mode string `json:"mode"`
}

func toSessionResponse(s *session.Session) sessionResponse {
	resp := sessionResponse{ID: s.ID(), Kind: s.Kind()}
	if s.Kind() == session.Filter {
		resp.Mode = s.Mode().String()
	}
	return resp
}

// start handles POST /api/sessions.
func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decode(w, r, &req) {
		return
	}

	kind, err := session.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := h.defaults
	cfg.Kind = kind
	cfg.User = req.User
	if req.IndependentHands != nil {
		cfg.IndependentHands = *req.IndependentHands
	}
	if req.Mode != "" {
		mode, err := filter.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.FilterMode = mode
	}

	s, err := h.runner.Start(h.base, cfg)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.WithError(err).Warn("start session")
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(s))
}

// current handles GET /api/sessions/current.
func (h *SessionHandler) current(w http.ResponseWriter, r *http.Request) {
	s := h.runner.Active()
	if s == nil {
		writeError(w, http.StatusNotFound, "No session running")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// stop handles DELETE /api/sessions/current and returns the outcome.
func (h *SessionHandler) stop(w http.ResponseWriter, r *http.Request) {
	out, ok := h.runner.Stop()
	if !ok {
		writeError(w, http.StatusNotFound, "No session running")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// setMode handles PUT /api/sessions/current/mode.
func (h *SessionHandler) setMode(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if !decode(w, r, &req) {
		return
	}

	mode, err := filter.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s := h.runner.Active()
	if s == nil {
		writeError(w, http.StatusNotFound, "No session running")
		return
	}
	if err := s.SetMode(mode); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(s))
}
