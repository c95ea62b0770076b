package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/takebook/internal/capture"
	"github.com/ayusman/takebook/internal/session"
	"github.com/ayusman/takebook/internal/store"
)

func post(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	return resp
}

func TestAPI_AccountAndFeedWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Sign up
	resp := post(t, client, ts.URL+"/api/users", `{"email": "asha@example.com", "password": "pw"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/users status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	// 2. Duplicate sign up
	resp = post(t, client, ts.URL+"/api/users", `{"email": "asha@example.com", "password": "other"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate sign up status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	// 3. Log in
	resp = post(t, client, ts.URL+"/api/login", `{"email": "asha@example.com", "password": "pw"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// 4. Post twice
	for _, content := range []string{"first", "second"} {
		resp = post(t, client, ts.URL+"/api/posts", `{"author": "asha@example.com", "content": "`+content+`"}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("POST /api/posts status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	}

	// 5. Feed is newest first
	resp, err = client.Get(ts.URL + "/api/posts")
	if err != nil {
		t.Fatalf("GET /api/posts error = %v", err)
	}
	var feed struct {
		Posts []struct {
			Author  string `json:"author"`
			Content string `json:"content"`
		} `json:"posts"`
	}
	json.NewDecoder(resp.Body).Decode(&feed)
	resp.Body.Close()

	if len(feed.Posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(feed.Posts))
	}
	if feed.Posts[0].Content != "second" {
		t.Errorf("posts[0].content = %q, want second", feed.Posts[0].Content)
	}

	// 6. Leaderboard starts empty
	resp, err = client.Get(ts.URL + "/api/scores")
	if err != nil {
		t.Fatalf("GET /api/scores error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/scores status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

// loopingRunner returns a runner over a camera that repeats one white frame.
func loopingRunner(t *testing.T) *session.Runner {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 120, 160, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	return session.NewRunner(session.Options{Camera: cam})
}

func TestAPI_FilterSessionWorkflow(t *testing.T) {
	runner := loopingRunner(t)
	srv := New(Config{Runner: runner})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Start a filter session
	resp := post(t, client, ts.URL+"/api/sessions", `{"kind": "filters", "mode": "Invert"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/sessions status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	// 2. A second start is refused
	resp = post(t, client, ts.URL+"/api/sessions", `{"kind": "mood"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second start status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	// 3. Switch mode
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/sessions/current/mode", strings.NewReader(`{"mode": "sepia"}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT mode error = %v", err)
	}
	var current struct {
		Kind string `json:"kind"`
		Mode string `json:"mode"`
	}
	json.NewDecoder(resp.Body).Decode(&current)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT mode status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if current.Kind != "filter" || current.Mode != "Sepia" {
		t.Errorf("current = %+v, want filter/Sepia", current)
	}

	// 4. Read one MJPEG part
	resp, err = client.Get(ts.URL + "/api/stream")
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q", ct)
	}
	reader := bufio.NewReader(resp.Body)
	boundary, _ := reader.ReadString('\n')
	if strings.TrimSpace(boundary) != "--frame" {
		t.Errorf("boundary = %q, want --frame", boundary)
	}
	header, err := textproto.NewReader(reader).ReadMIMEHeader()
	if err != nil {
		t.Fatalf("read part header: %v", err)
	}
	if header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("part Content-Type = %q", header.Get("Content-Type"))
	}
	resp.Body.Close()

	// 5. Stop returns the outcome
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/current", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE error = %v", err)
	}
	var outcome struct {
		Kind   string `json:"kind"`
		Reason string `json:"reason"`
	}
	json.NewDecoder(resp.Body).Decode(&outcome)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if outcome.Reason != "quit" {
		t.Errorf("reason = %q, want quit", outcome.Reason)
	}

	// 6. Nothing left to stop
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/current", nil)
	resp, _ = client.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second DELETE status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestAPI_GameWebSocket(t *testing.T) {
	runner := loopingRunner(t)
	srv := New(Config{Runner: runner})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/game"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	resp := post(t, ts.Client(), ts.URL+"/api/sessions", `{"kind": "filter"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/sessions status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame struct {
		Seq  uint64 `json:"seq"`
		Kind string `json:"kind"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Seq == 0 || frame.Kind != "filter" {
		t.Errorf("frame = %+v, want a filter frame", frame)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
