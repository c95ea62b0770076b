package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/store"
)

// UserHandler handles sign-up and login.
type UserHandler struct {
	store *store.Store
}

// NewUserHandler creates a new UserHandler with the given store.
func NewUserHandler(s *store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// Register adds the account routes to r.
func (h *UserHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/users", h.signup).Methods(http.MethodPost)
	r.HandleFunc("/api/login", h.login).Methods(http.MethodPost)
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Confirm must match Password when set.
	Confirm string `json:"confirm,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Email string `json:"email"`
}

// signup handles POST /api/users.
func (h *UserHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decode(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if req.Confirm != "" && req.Confirm != req.Password {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	created, err := h.store.CreateUser(email, req.Password)
	if err != nil {
		log.WithError(err).Error("create user")
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if !created {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{Email: email})
}

// login handles POST /api/login.
func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ok, err := h.store.VerifyUser(req.Email, req.Password)
	if err != nil {
		log.WithError(err).Error("verify user")
		writeError(w, http.StatusInternalServerError, "Failed to verify user")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Email: strings.TrimSpace(req.Email)})
}
