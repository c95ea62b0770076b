package session

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/capture"
	"github.com/ayusman/takebook/internal/detector"
)

// Options are the resources a Runner hands to its sessions.
type Options struct {
	// Camera is opened at session start and closed when the session ends.
	Camera capture.Camera
	// NewDetector builds the hand detector for a snake session. The session owns and closes it.
	NewDetector func() (detector.Detector, error)
	// NewClassifier builds the classifier for a mood session. The session owns and closes it.
	NewClassifier func() (Classifier, error)
	// Scores records finished games. Optional.
	Scores ScoreRecorder
	// Hooks is notified when a game ends. Optional.
	Hooks Notifier
}

// Runner starts sessions one at a time over a single camera.
type Runner struct {
	opts    Options
	mailbox *Mailbox

	mu     sync.Mutex
	active *Session
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts, mailbox: NewMailbox()}
}

// Mailbox returns the mailbox every session of this runner publishes to.
func (r *Runner) Mailbox() *Mailbox {
	return r.mailbox
}

// Start opens the camera and begins a session. It returns ErrBusy while
// another session is running, and the camera error if the device cannot be
// opened. Cancelling ctx stops the session.
func (r *Runner) Start(ctx context.Context, cfg Config) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && !closed(r.active.done) {
		return nil, ErrBusy
	}

	if err := r.opts.Camera.Open(); err != nil {
		return nil, fmt.Errorf("start %s session: %w", cfg.Kind, err)
	}

	s := &Session{
		id:      newID(),
		cfg:     cfg,
		camera:  r.opts.Camera,
		scores:  r.opts.Scores,
		hooks:   r.opts.Hooks,
		mailbox: r.mailbox,
		done:    make(chan struct{}),
	}
	s.mode.Store(int32(cfg.FilterMode))

	switch cfg.Kind {
	case Snake:
		if r.opts.NewDetector == nil {
			r.opts.Camera.Close()
			return nil, fmt.Errorf("start snake session: no hand detector configured")
		}
		det, err := r.opts.NewDetector()
		if err != nil {
			r.opts.Camera.Close()
			return nil, fmt.Errorf("start snake session: %w", err)
		}
		s.det = det
	case Mood:
		if r.opts.NewClassifier == nil {
			r.opts.Camera.Close()
			return nil, fmt.Errorf("start mood session: no classifier configured")
		}
		cls, err := r.opts.NewClassifier()
		if err != nil {
			r.opts.Camera.Close()
			return nil, fmt.Errorf("start mood session: %w", err)
		}
		s.cls = cls
	case Filter:
	default:
		r.opts.Camera.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(cfg.Kind))
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	r.active = s

	log.WithFields(log.Fields{"session": s.id, "kind": cfg.Kind, "user": cfg.User}).Info("session started")
	go func() {
		defer cancel()
		s.run(ctx)
	}()
	return s, nil
}

// Active returns the running session, or nil.
func (r *Runner) Active() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil || closed(r.active.done) {
		return nil
	}
	return r.active
}

// Stop ends the running session and waits for it. It reports false when no
// session was running.
func (r *Runner) Stop() (Outcome, bool) {
	s := r.Active()
	if s == nil {
		return Outcome{}, false
	}
	s.Stop()
	return s.Wait(), true
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
