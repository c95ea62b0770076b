package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when a hook does not finish in time.
var ErrTimeout = errors.New("hook timed out")

// Executor runs hooks with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor. A non-positive timeout uses DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Execute sends ev to h on stdin and parses its stdout as a Response.
func (e *Executor) Execute(ctx context.Context, h *Hook, ev Event) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.Executable)
	cmd.Dir = h.Path
	// Children of a killed hook may hold stdout open.
	cmd.WaitDelay = time.Second

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %v", ErrTimeout, e.timeout)
	}

	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("hook execution failed: %w, stderr: %s", err, s)
		}
		return nil, fmt.Errorf("hook execution failed: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hook response: %w, stdout: %s", err, stdout.String())
	}
	return &resp, nil
}

// Dispatcher fires events at every subscribed hook.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
}

// NewDispatcher pairs a Manager with an Executor.
func NewDispatcher(manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{manager: manager, executor: executor}
}

// Fire runs each hook subscribed to ev.Event in name order. Failures are
// logged and do not stop the remaining hooks. It returns how many hooks
// reported success.
func (d *Dispatcher) Fire(ctx context.Context, ev Event) int {
	ok := 0
	for _, h := range d.manager.Subscribers(ev.Event) {
		entry := log.WithFields(log.Fields{"hook": h.Manifest.Name, "event": ev.Event})

		resp, err := d.executor.Execute(ctx, h, ev)
		if err != nil {
			entry.Warnf("hook failed: %v", err)
			continue
		}
		if !resp.Success {
			entry.Warnf("hook reported an error: %s", resp.Error)
			continue
		}
		entry.Debug("hook ran")
		ok++
	}
	return ok
}
