// Package session runs one camera session (snake game, live filter or mood
// detector) on its own goroutine and publishes rendered frames to a Mailbox.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/takebook/internal/capture"
	"github.com/ayusman/takebook/internal/detector"
	"github.com/ayusman/takebook/internal/filter"
	"github.com/ayusman/takebook/internal/game"
	"github.com/ayusman/takebook/internal/hook"
	"github.com/ayusman/takebook/internal/mood"
	"github.com/ayusman/takebook/internal/render"
	"github.com/ayusman/takebook/internal/store"
)

// Kind selects what a session does with each frame.
type Kind int

const (
	Snake Kind = iota
	Filter
	Mood
)

// Reasons a session ended.
const (
	ReasonCollision = "collision"
	ReasonQuit      = "quit"
	ReasonStreamEnd = "stream end"
)

var (
	// ErrBusy is returned when a runner already has an active session.
	ErrBusy = errors.New("a session is already running")
	// ErrUnknownKind is returned when parsing an unknown session kind.
	ErrUnknownKind = errors.New("unknown session kind")
	// ErrWrongKind is returned by operations that only apply to another kind.
	ErrWrongKind = errors.New("operation not supported by this session kind")
)

func (k Kind) String() string {
	switch k {
	case Snake:
		return "snake"
	case Filter:
		return "filter"
	case Mood:
		return "mood"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind looks a kind up by name.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "snake":
		return Snake, nil
	case "filter", "filters":
		return Filter, nil
	case "mood":
		return Mood, nil
	}
	return Snake, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Config describes one session.
type Config struct {
	Kind Kind
	// User is the logged-in email the snake score is recorded for. Empty skips recording.
	User string
	// Game seeds and configures snake games.
	Game game.Config
	// IndependentHands gives every hand its own snake instead of one shared snake.
	IndependentHands bool
	// ShowLandmarks draws the hand skeleton over snake frames.
	ShowLandmarks bool
	// FilterMode is the initial mode of a filter session.
	FilterMode filter.Mode
	// Dwell is how long the GAME OVER frame stays up. Zero uses game.GameOverDwell.
	Dwell time.Duration
}

// Outcome is the result of a finished session.
type Outcome struct {
	SessionID string        `json:"session_id"`
	Kind      Kind          `json:"kind"`
	Status    game.Status   `json:"status"`
	Score     int           `json:"score"`
	Frames    int           `json:"frames"`
	Reason    string        `json:"reason"`
	Duration  time.Duration `json:"duration"`
}

// Classifier labels a frame by mood. *mood.Classifier satisfies it.
type Classifier interface {
	Classify(frame gocv.Mat) mood.Result
	Close() error
}

// ScoreRecorder persists finished games. *store.ScoreRepository satisfies it.
type ScoreRecorder interface {
	Record(sc *store.Score) error
}

// Notifier delivers game events. *hook.Dispatcher satisfies it.
type Notifier interface {
	Fire(ctx context.Context, ev hook.Event) int
}

// Session is one running camera session.
type Session struct {
	id      string
	cfg     Config
	camera  capture.Camera
	det     detector.Detector
	cls     Classifier
	scores  ScoreRecorder
	hooks   Notifier
	mailbox *Mailbox

	mode   atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	outcome Outcome
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Kind returns what the session does.
func (s *Session) Kind() Kind { return s.cfg.Kind }

// Done is closed when the session has ended and released the camera.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stop asks the session to end. It returns immediately; use Wait for the outcome.
func (s *Session) Stop() { s.cancel() }

// Wait blocks until the session ends and returns its outcome.
func (s *Session) Wait() Outcome {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// SetMode switches a filter session's mode from the next frame on.
func (s *Session) SetMode(m filter.Mode) error {
	if s.cfg.Kind != Filter {
		return ErrWrongKind
	}
	if _, err := m.MarshalText(); err != nil {
		return err
	}
	s.mode.Store(int32(m))
	return nil
}

// Mode returns the current filter mode.
func (s *Session) Mode() filter.Mode {
	return filter.Mode(s.mode.Load())
}

// run is the per-frame loop. It owns the camera, detector and classifier and
// releases them before closing done.
func (s *Session) run(ctx context.Context) {
	logger := log.WithFields(log.Fields{"session": s.id, "kind": s.cfg.Kind})
	start := time.Now()

	var engine game.Engine
	out := Outcome{SessionID: s.id, Kind: s.cfg.Kind, Status: game.Running}

	defer func() {
		out.Duration = time.Since(start)
		if engine != nil {
			out.Score = engine.Score()
		}
		s.release(logger)
		s.finish(ctx, logger, out)
	}()

	for {
		if ctx.Err() != nil {
			if engine != nil {
				engine.Quit()
			}
			out.Status = game.Quit
			out.Reason = ReasonQuit
			return
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			logger.Debugf("camera read: %v", err)
			out.Reason = ReasonStreamEnd
			return
		}

		if s.cfg.Kind == Snake && engine == nil {
			cfg := s.cfg.Game
			cfg.Bounds = image.Rect(0, 0, frame.Cols(), frame.Rows())
			engine = game.NewEngine(cfg, s.cfg.IndependentHands)
		}

		status := s.processFrame(logger, frame, engine)
		frame.Close()
		out.Frames++

		if status == game.Collided {
			out.Status = game.Collided
			out.Reason = ReasonCollision
			s.dwell(ctx)
			return
		}
	}
}

// processFrame renders one frame and publishes it. It returns the game status
// after the frame, which is always Running for filter and mood sessions.
func (s *Session) processFrame(logger *log.Entry, frame *gocv.Mat, engine game.Engine) game.Status {
	defer instrument(s.cfg.Kind)()
	framesProcessed.WithLabelValues(s.cfg.Kind.String()).Inc()

	pub := Frame{SessionID: s.id, Kind: s.cfg.Kind, Status: game.Running, At: time.Now()}
	shown := frame

	switch s.cfg.Kind {
	case Snake:
		hands, err := s.det.Detect(frame)
		if err != nil {
			logger.Warnf("hand detection: %v", err)
			hands = nil
		}
		handsDetected.Add(float64(len(hands)))

		width, height := frame.Cols(), frame.Rows()
		obs := make([]game.Hand, len(hands))
		for i := range hands {
			obs[i] = game.Hand{Label: hands[i].Handedness, Tip: hands[i].Fingertip(width, height)}
		}

		before := engine.Score()
		cmds, status := engine.Advance(obs, image.Rect(0, 0, width, height))
		if eaten := engine.Score() - before; eaten > 0 {
			foodEaten.Add(float64(eaten))
		}

		render.Draw(frame, cmds)
		if s.cfg.ShowLandmarks && status == game.Running {
			for i := range hands {
				render.DrawHand(frame, &hands[i])
			}
		}
		pub.Status = status
		pub.Score = engine.Score()
		pub.States = engine.States()

	case Filter:
		mode := s.Mode()
		out := gocv.NewMat()
		defer out.Close()
		if err := filter.Apply(mode, *frame, &out); err != nil {
			logger.Warnf("filter %s: %v", mode, err)
			frame.CopyTo(&out)
		}
		shown = &out
		pub.Label = mode.String()

	case Mood:
		res := s.cls.Classify(*frame)
		if res.FaceFound {
			render.DrawFace(frame, res.Face, res.Label)
		} else {
			render.DrawLabel(frame, res.Label)
		}
		pub.Label = res.Label
	}

	if err := encode(shown, &pub); err != nil {
		logger.Warnf("encode frame: %v", err)
		return pub.Status
	}
	s.mailbox.Put(pub)
	return pub.Status
}

// dwell keeps the final frame up for the configured time or until cancelled.
func (s *Session) dwell(ctx context.Context) {
	d := s.cfg.Dwell
	if d <= 0 {
		d = game.GameOverDwell
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (s *Session) release(logger *log.Entry) {
	if err := s.camera.Close(); err != nil {
		logger.Warnf("close camera: %v", err)
	}
	if s.det != nil {
		if err := s.det.Close(); err != nil {
			logger.Warnf("close detector: %v", err)
		}
	}
	if s.cls != nil {
		if err := s.cls.Close(); err != nil {
			logger.Warnf("close classifier: %v", err)
		}
	}
}

// finish records the outcome, persists snake scores, fires hooks and
// finally unblocks Wait.
func (s *Session) finish(ctx context.Context, logger *log.Entry, out Outcome) {
	logger.WithFields(log.Fields{
		"status": out.Status,
		"score":  out.Score,
		"frames": out.Frames,
		"reason": out.Reason,
	}).Info("session ended")

	if s.cfg.Kind == Snake {
		gamesFinished.WithLabelValues(out.Status.String()).Inc()

		if s.scores != nil && s.cfg.User != "" {
			err := s.scores.Record(&store.Score{
				Email:    s.cfg.User,
				Score:    out.Score,
				Status:   out.Status.String(),
				Duration: out.Duration,
			})
			if err != nil {
				logger.Warnf("record score: %v", err)
			}
		}

		if s.hooks != nil {
			// The session context is already cancelled when the player quit.
			hookCtx := context.WithoutCancel(ctx)
			s.hooks.Fire(hookCtx, hook.Event{
				Event:      hook.EventGameOver,
				User:       s.cfg.User,
				Score:      out.Score,
				Status:     out.Status.String(),
				DurationMs: out.Duration.Milliseconds(),
			})
		}
	}

	s.mu.Lock()
	s.outcome = out
	s.mu.Unlock()
	close(s.done)
}

// encode fills the image and JPEG fields of f from mat.
func encode(mat *gocv.Mat, f *Frame) error {
	img, err := mat.ToImage()
	if err != nil {
		return err
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *mat)
	if err != nil {
		return err
	}
	defer buf.Close()

	f.Image = img
	f.JPEG = append([]byte(nil), buf.GetBytes()...)
	return nil
}

func newID() string {
	return uuid.New().String()
}
