package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ayusman/takebook/internal/store"
)

func TestScoreHandler_List(t *testing.T) {
	s := newTestStore(t)
	for _, email := range []string{"a@b.c", "d@e.f"} {
		if _, err := s.CreateUser(email, "pw"); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
	}
	for _, sc := range []store.Score{
		{Email: "a@b.c", Score: 3, Status: "collided", Duration: 2 * time.Second},
		{Email: "d@e.f", Score: 7, Status: "quit"},
		{Email: "a@b.c", Score: 5, Status: "collided"},
	} {
		sc := sc
		if err := s.Scores().Record(&sc); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	r := newRouter(NewScoreHandler(s))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		want       []int
	}{
		{"leaderboard", "/api/scores", http.StatusOK, []int{7, 5, 3}},
		{"top two", "/api/scores?limit=2", http.StatusOK, []int{7, 5}},
		{"one player", "/api/scores?email=a@b.c", http.StatusOK, []int{5, 3}},
		{"zero limit", "/api/scores?limit=0", http.StatusBadRequest, nil},
		{"bad limit", "/api/scores?limit=ten", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.want == nil {
				return
			}

			var resp listScoresResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Scores) != len(tt.want) {
				t.Fatalf("len(scores) = %d, want %d", len(resp.Scores), len(tt.want))
			}
			for i, sc := range resp.Scores {
				if sc.Score != tt.want[i] {
					t.Errorf("scores[%d] = %d, want %d", i, sc.Score, tt.want[i])
				}
			}
		})
	}
}
