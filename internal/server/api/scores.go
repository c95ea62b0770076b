package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/store"
)

// DefaultScoreLimit is the leaderboard size when no limit is given.
const DefaultScoreLimit = 10

// ScoreHandler serves the snake leaderboard.
type ScoreHandler struct {
	store *store.Store
}

// NewScoreHandler creates a new ScoreHandler with the given store.
func NewScoreHandler(s *store.Store) *ScoreHandler {
	return &ScoreHandler{store: s}
}

// Register adds the score routes to r.
func (h *ScoreHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/scores", h.list).Methods(http.MethodGet)
}

type scoreResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Score      int    `json:"score"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

type listScoresResponse struct {
	Scores []scoreResponse `json:"scores"`
}

// list handles GET /api/scores. Without ?email= it returns the top ?limit=
// scores; with it, that player's games newest first.
func (h *ScoreHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultScoreLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	var (
		scores []store.Score
		err    error
	)
	if email := q.Get("email"); email != "" {
		scores, err = h.store.Scores().ForUser(email)
		if len(scores) > limit {
			scores = scores[:limit]
		}
	} else {
		scores, err = h.store.Scores().Top(limit)
	}
	if err != nil {
		log.WithError(err).Error("list scores")
		writeError(w, http.StatusInternalServerError, "Failed to list scores")
		return
	}

	resp := listScoresResponse{Scores: make([]scoreResponse, 0, len(scores))}
	for _, sc := range scores {
		resp.Scores = append(resp.Scores, scoreResponse{
			ID:         sc.ID,
			Email:      sc.Email,
			Score:      sc.Score,
			Status:     sc.Status,
			DurationMs: sc.Duration.Milliseconds(),
			CreatedAt:  formatTime(sc.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
