package hook

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// scriptHook writes a shell script hook into dir and returns it.
func scriptHook(t *testing.T, dir, name, script string, events ...string) *Hook {
	t.Helper()
	hookDir := writeHook(t, dir, Manifest{Name: name, Version: "1.0.0", Executable: "run.sh", Events: events})
	path := filepath.Join(hookDir, "run.sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Hook{
		Manifest:   Manifest{Name: name, Executable: "run.sh", Events: events},
		Path:       hookDir,
		Executable: path,
	}
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	skipOnWindows(t)

	h := scriptHook(t, t.TempDir(), "echo", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`, EventGameOver)

	ev := Event{Event: EventGameOver, User: "asha@example.com", Score: 12, Status: "collided"}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, ev)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}

	var data struct {
		Received Event `json:"received"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data.Received != ev {
		t.Errorf("hook received %+v, want %+v", data.Received, ev)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	skipOnWindows(t)

	h := scriptHook(t, t.TempDir(), "slow", `#!/bin/sh
exec sleep 10
`, EventGameOver)

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), h, Event{Event: EventGameOver})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:    "non-zero exit with stderr",
			script:  "#!/bin/sh\necho boom >&2\nexit 3\n",
			wantErr: "stderr: boom",
		},
		{
			name:    "invalid json",
			script:  "#!/bin/sh\necho not-json\n",
			wantErr: "failed to parse hook response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := scriptHook(t, t.TempDir(), "bad", tt.script, EventGameOver)
			_, err := NewExecutor(time.Second).Execute(context.Background(), h, Event{Event: EventGameOver})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewExecutor_DefaultTimeout(t *testing.T) {
	if e := NewExecutor(0); e.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", e.timeout, DefaultTimeout)
	}
}

func TestDispatcher_Fire(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "fired")

	scriptHook(t, dir, "a-ok", "#!/bin/sh\ncat > "+marker+"\necho '{\"success\":true}'\n", EventGameOver)
	scriptHook(t, dir, "b-refuses", "#!/bin/sh\necho '{\"success\":false,\"error\":\"nope\"}'\n", EventGameOver)
	scriptHook(t, dir, "c-crashes", "#!/bin/sh\nexit 1\n", EventGameOver)
	scriptHook(t, dir, "d-other", "#!/bin/sh\necho '{\"success\":true}'\n", "other")

	manager := NewManager(dir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	d := NewDispatcher(manager, NewExecutor(2*time.Second))
	got := d.Fire(context.Background(), Event{Event: EventGameOver, User: "a@example.com", Score: 4, Status: "collided"})
	if got != 1 {
		t.Errorf("Fire() = %d successful hooks, want 1", got)
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("subscribed hook did not run: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("hook stdin was not an event: %v", err)
	}
	if ev.Score != 4 || ev.User != "a@example.com" {
		t.Errorf("hook received %+v", ev)
	}
}
