package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/store"
)

// PostHandler serves the feed.
type PostHandler struct {
	store *store.Store
}

// NewPostHandler creates a new PostHandler with the given store.
func NewPostHandler(s *store.Store) *PostHandler {
	return &PostHandler{store: s}
}

// Register adds the feed routes to r.
func (h *PostHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/posts", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/posts", h.create).Methods(http.MethodPost)
}

type createPostRequest struct {
	Author    string `json:"author"`
	Content   string `json:"content"`
	ImagePath string `json:"image_path,omitempty"`
}

type postResponse struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	ImagePath string `json:"image_path,omitempty"`
	CreatedAt string `json:"created_at"`
}

type listPostsResponse struct {
	Posts []postResponse `json:"posts"`
}

func toPostResponse(p store.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Author:    p.Author,
		Content:   p.Content,
		ImagePath: p.ImagePath,
		CreatedAt: formatTime(p.CreatedAt),
	}
}

// list handles GET /api/posts, newest first. ?author= filters by author and
// ?limit= caps the count.
func (h *PostHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	var (
		posts []store.Post
		err   error
	)
	if author := q.Get("author"); author != "" {
		posts, err = h.store.Posts().ListByAuthor(author)
		if limit > 0 && len(posts) > limit {
			posts = posts[:limit]
		}
	} else {
		posts, err = h.store.Posts().List(limit)
	}
	if err != nil {
		log.WithError(err).Error("list posts")
		writeError(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}

	resp := listPostsResponse{Posts: make([]postResponse, 0, len(posts))}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// create handles POST /api/posts.
func (h *PostHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}
	if req.Author == "" {
		writeError(w, http.StatusBadRequest, "Author is required")
		return
	}

	post, err := h.store.AddPost(req.Author, req.Content, req.ImagePath)
	if err != nil {
		if errors.Is(err, store.ErrUnknownUser) {
			writeError(w, http.StatusBadRequest, "Unknown author")
			return
		}
		log.WithError(err).Error("add post")
		writeError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	writeJSON(w, http.StatusCreated, toPostResponse(*post))
}
