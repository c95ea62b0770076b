// Package main is a game_over hook that shows a desktop notification with
// the final snake score.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Event is the payload TakeBook writes to stdin.
type Event struct {
	Event      string `json:"event"`
	User       string `json:"user"`
	Score      int    `json:"score"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

const title = "TakeBook Snake"

func main() {
	var ev Event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode event: %v", err))
		return
	}

	if ev.Event != "game_over" {
		writeErrorResponse(fmt.Sprintf("unknown event: %s", ev.Event))
		return
	}

	msg := message(ev)
	if os.Getenv("TAKEBOOK_NOTIFY_DRY_RUN") == "" {
		if err := notify(title, msg); err != nil {
			writeErrorResponse(fmt.Sprintf("notify failed: %v", err))
			return
		}
	}

	data, _ := json.Marshal(map[string]string{"message": msg})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

// message builds the notification body.
func message(ev Event) string {
	var b strings.Builder
	switch ev.Status {
	case "collided":
		b.WriteString("GAME OVER! ")
	case "quit":
		b.WriteString("Game quit. ")
	}
	b.WriteString("Score: " + strconv.Itoa(ev.Score))
	if ev.User != "" {
		b.WriteString(" (" + ev.User + ")")
	}
	return b.String()
}

// notify shows a desktop notification with the platform's own tool.
func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", title, body)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
