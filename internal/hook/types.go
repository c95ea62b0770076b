// Package hook runs external executables when game events happen.
//
// A hooks directory holds one subdirectory per hook. Each contains a
// hook.json manifest naming the executable and the events it wants. The
// executable receives the Event as JSON on stdin and answers with a Response
// on stdout.
package hook

import (
	"encoding/json"
	"slices"
)

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.json"

// Event names.
const (
	EventGameOver = "game_over"
)

// Manifest describes a hook and the events it subscribes to.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
}

// Event is the payload sent to a hook.
type Event struct {
	Event      string `json:"event"`
	User       string `json:"user,omitempty"`
	Score      int    `json:"score"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// Response is what a hook writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Wants reports whether the hook subscribed to event.
func (h *Hook) Wants(event string) bool {
	return slices.Contains(h.Manifest.Events, event)
}
