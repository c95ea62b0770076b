package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = time.Second

// GameHandler broadcasts the state of the running session via WebSocket.
type GameHandler struct {
	mailbox *session.Mailbox
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewGameHandler creates a GameHandler and starts its broadcaster.
func NewGameHandler(mailbox *session.Mailbox) *GameHandler {
	h := &GameHandler{
		mailbox: mailbox,
		clients: make(map[*websocket.Conn]bool),
		stop:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *GameHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcaster.
func (h *GameHandler) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// broadcast sends each new frame's state to all connected clients.
func (h *GameHandler) broadcast() {
	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		frame, ok := h.mailbox.Latest()
		if !ok || frame.Seq == seq {
			continue
		}
		seq = frame.Seq

		msg, err := json.Marshal(frame)
		if err != nil {
			log.WithError(err).Warn("encode game frame")
			continue
		}

		h.send(msg)
	}
}

// send writes msg to every client. A client whose write fails is dropped
// and closed so later ticks do not wait on it again.
func (h *GameHandler) send(msg []byte) {
	var failed []*websocket.Conn

	h.mu.RLock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.WithError(err).Debug("websocket write")
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	if len(failed) == 0 {
		return
	}
	h.mu.Lock()
	for _, conn := range failed {
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	for _, conn := range failed {
		conn.Close()
	}
}
