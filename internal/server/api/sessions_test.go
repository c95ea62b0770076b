package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/takebook/internal/capture"
	"github.com/ayusman/takebook/internal/detector"
	"github.com/ayusman/takebook/internal/session"
)

func newSessionRouter(t *testing.T, cam *capture.MockCamera) (*session.Runner, http.Handler) {
	t.Helper()
	runner := session.NewRunner(session.Options{
		Camera:      cam,
		NewDetector: func() (detector.Detector, error) { return detector.NewMockDetector(), nil },
	})
	t.Cleanup(func() { runner.Stop() })
	return runner, newRouter(NewSessionHandler(context.Background(), runner, session.Config{}))
}

func loopingCamera(t *testing.T) *capture.MockCamera {
	t.Helper()
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return capture.NewMockCamera([]*gocv.Mat{&frame}, true)
}

func TestSessionHandler_Start(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   string
		wantMode   string
	}{
		{"snake", `{"kind": "snake", "user": "a@b.c"}`, http.StatusCreated, "snake", ""},
		{"filter with mode", `{"kind": "filters", "mode": "cartoon"}`, http.StatusCreated, "filter", "Cartoon"},
		{"filter default mode", `{"kind": "filter"}`, http.StatusCreated, "filter", "Normal"},
		{"unknown kind", `{"kind": "tetris"}`, http.StatusBadRequest, "", ""},
		{"unknown mode", `{"kind": "filter", "mode": "vaporwave"}`, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r := newSessionRouter(t, loopingCamera(t))

			rec := do(t, r, http.MethodPost, "/api/sessions", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}

			var resp struct {
				ID   string `json:"id"`
				Kind string `json:"kind"`
				Mode string `json:"mode"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.ID == "" || resp.Kind != tt.wantKind || resp.Mode != tt.wantMode {
				t.Errorf("session = %+v, want kind %s mode %q", resp, tt.wantKind, tt.wantMode)
			}
		})
	}
}

func TestSessionHandler_StartBusy(t *testing.T) {
	_, r := newSessionRouter(t, loopingCamera(t))

	if rec := do(t, r, http.MethodPost, "/api/sessions", `{"kind": "filter"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first start status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/sessions", `{"kind": "snake"}`); rec.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestSessionHandler_CameraUnavailable(t *testing.T) {
	cam := loopingCamera(t)
	cam.SetOpenError(errors.New("no device"))
	_, r := newSessionRouter(t, cam)

	rec := do(t, r, http.MethodPost, "/api/sessions", `{"kind": "filter"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestSessionHandler_CurrentAndStop(t *testing.T) {
	_, r := newSessionRouter(t, loopingCamera(t))

	if rec := do(t, r, http.MethodGet, "/api/sessions/current", ""); rec.Code != http.StatusNotFound {
		t.Errorf("idle GET status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	do(t, r, http.MethodPost, "/api/sessions", `{"kind": "snake"}`)

	if rec := do(t, r, http.MethodGet, "/api/sessions/current", ""); rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec := do(t, r, http.MethodDelete, "/api/sessions/current", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, want %d", rec.Code, http.StatusOK)
	}
	var out struct {
		Kind   string `json:"kind"`
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode outcome: %v", err)
	}
	if out.Kind != "snake" || out.Status != "quit" || out.Reason != session.ReasonQuit {
		t.Errorf("outcome = %+v", out)
	}

	if rec := do(t, r, http.MethodGet, "/api/sessions/current", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET after stop status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionHandler_SetMode(t *testing.T) {
	runner, r := newSessionRouter(t, loopingCamera(t))

	if rec := do(t, r, http.MethodPut, "/api/sessions/current/mode", `{"mode": "blur"}`); rec.Code != http.StatusNotFound {
		t.Errorf("idle PUT status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	do(t, r, http.MethodPost, "/api/sessions", `{"kind": "filter"}`)

	if rec := do(t, r, http.MethodPut, "/api/sessions/current/mode", `{"mode": "blur"}`); rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := runner.Active().Mode().String(); got != "Blur" {
		t.Errorf("mode = %s, want Blur", got)
	}

	if rec := do(t, r, http.MethodPut, "/api/sessions/current/mode", `{"mode": "neon"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad mode status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	runner.Stop()
	do(t, r, http.MethodPost, "/api/sessions", `{"kind": "snake"}`)
	if rec := do(t, r, http.MethodPut, "/api/sessions/current/mode", `{"mode": "blur"}`); rec.Code != http.StatusConflict {
		t.Errorf("snake PUT status = %d, want %d", rec.Code, http.StatusConflict)
	}
}
