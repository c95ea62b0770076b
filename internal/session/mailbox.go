package session

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/ayusman/takebook/internal/game"
)

// Frame is one rendered frame handed from a session to the display layers.
type Frame struct {
	Seq       uint64       `json:"seq"`
	SessionID string       `json:"session_id"`
	Kind      Kind         `json:"kind"`
	Image     image.Image  `json:"-"`
	JPEG      []byte       `json:"-"`
	States    []game.State `json:"states,omitempty"`
	Status    game.Status  `json:"status"`
	Score     int          `json:"score"`
	Label     string       `json:"label,omitempty"`
	At        time.Time    `json:"at"`
}

// Mailbox is a single-slot, latest-wins handoff. Put never blocks; readers
// either peek at the latest frame or wait for a newer one.
type Mailbox struct {
	mu      sync.Mutex
	latest  Frame
	has     bool
	seq     uint64
	changed chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{changed: make(chan struct{})}
}

// Put replaces the held frame, stamps it with the next sequence number and
// wakes every waiting reader.
func (m *Mailbox) Put(f Frame) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	f.Seq = m.seq
	m.latest = f
	m.has = true

	close(m.changed)
	m.changed = make(chan struct{})
	return f.Seq
}

// Latest returns the held frame, if any.
func (m *Mailbox) Latest() (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.has
}

// Next waits for a frame with a sequence number greater than after.
// Frames put in between are skipped.
func (m *Mailbox) Next(ctx context.Context, after uint64) (Frame, error) {
	for {
		m.mu.Lock()
		if m.has && m.latest.Seq > after {
			f := m.latest
			m.mu.Unlock()
			return f, nil
		}
		ch := m.changed
		m.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		}
	}
}
