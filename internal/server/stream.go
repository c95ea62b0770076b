package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/takebook/internal/session"
)

// streamInterval caps the MJPEG stream at about 15 FPS.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the rendered session frames as MJPEG.
type StreamHandler struct {
	mailbox *session.Mailbox
}

// NewStreamHandler creates a new StreamHandler reading from mailbox.
func NewStreamHandler(mailbox *session.Mailbox) *StreamHandler {
	return &StreamHandler{mailbox: mailbox}
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	var seq uint64
	for {
		frame, err := h.mailbox.Next(ctx, seq)
		if err != nil {
			return
		}
		seq = frame.Seq
		if len(frame.JPEG) == 0 {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame.JPEG))
		if _, err := w.Write(frame.JPEG); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(streamInterval):
		}
	}
}
