package api

import (
	"net/http"
	"testing"
)

func TestUserHandler_Signup(t *testing.T) {
	s := newTestStore(t)
	r := newRouter(NewUserHandler(s))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"creates user", `{"email": "a@b.c", "password": "pw"}`, http.StatusCreated},
		{"duplicate email", `{"email": "a@b.c", "password": "other"}`, http.StatusConflict},
		{"duplicate after trim", `{"email": "  a@b.c ", "password": "pw"}`, http.StatusConflict},
		{"missing password", `{"email": "x@b.c"}`, http.StatusBadRequest},
		{"missing email", `{"password": "pw"}`, http.StatusBadRequest},
		{"confirm mismatch", `{"email": "y@b.c", "password": "pw", "confirm": "wp"}`, http.StatusBadRequest},
		{"invalid json", `{"email":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/api/users", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateUser("a@b.c", "pw"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	r := newRouter(NewUserHandler(s))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid credentials", `{"email": "a@b.c", "password": "pw"}`, http.StatusOK},
		{"wrong password", `{"email": "a@b.c", "password": "nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email": "z@b.c", "password": "pw"}`, http.StatusUnauthorized},
		{"empty fields", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/api/login", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	t.Run("GET is not allowed", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/login", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}
