// Package app wires TakeBook's components together from a config.Config:
// the post store, the camera session runner and the game-over hooks.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/capture"
	"github.com/ayusman/takebook/internal/config"
	"github.com/ayusman/takebook/internal/detector"
	"github.com/ayusman/takebook/internal/game"
	"github.com/ayusman/takebook/internal/hook"
	"github.com/ayusman/takebook/internal/mood"
	"github.com/ayusman/takebook/internal/session"
	"github.com/ayusman/takebook/internal/store"
)

// Option overrides a component New would otherwise build from the config.
type Option func(*App)

// WithCamera replaces the gocv camera.
func WithCamera(c capture.Camera) Option {
	return func(a *App) { a.camera = c }
}

// WithDetector replaces the MediaPipe hand detector factory.
func WithDetector(fn func() (detector.Detector, error)) Option {
	return func(a *App) { a.newDetector = fn }
}

// WithClassifier replaces the cascade mood classifier factory.
func WithClassifier(fn func() (session.Classifier, error)) Option {
	return func(a *App) { a.newClassifier = fn }
}

// App is the assembled application.
type App struct {
	config        config.Config
	store         *store.Store
	camera        capture.Camera
	newDetector   func() (detector.Detector, error)
	newClassifier func() (session.Classifier, error)
	hooks         *hook.Manager
	dispatcher    *hook.Dispatcher
	runner        *session.Runner
}

// New opens the store, discovers hooks and builds the session runner.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		config: cfg,
		store:  st,
		camera: capture.NewCamera(cfg.CaptureConfig()),
		newDetector: func() (detector.Detector, error) {
			return detector.NewMediaPipeDetector(cfg.DetectorConfig())
		},
		newClassifier: func() (session.Classifier, error) {
			return mood.Load(cfg.MoodConfig())
		},
		hooks: hook.NewManager(cfg.Hooks.Dir),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.hooks.Discover(); err != nil {
		log.WithError(err).WithField("dir", cfg.Hooks.Dir).Warn("hooks unavailable")
	} else {
		log.WithField("count", len(a.hooks.List())).Debug("hooks discovered")
	}
	a.dispatcher = hook.NewDispatcher(a.hooks, hook.NewExecutor(cfg.Hooks.Timeout))

	a.runner = session.NewRunner(session.Options{
		Camera:        a.camera,
		NewDetector:   a.newDetector,
		NewClassifier: a.newClassifier,
		Scores:        st.Scores(),
		Hooks:         a.dispatcher,
	})
	return a, nil
}

// SessionDefaults is the session configuration every launcher starts from.
func (a *App) SessionDefaults() session.Config {
	return session.Config{
		Game:             game.Config{Seed: a.config.Game.Seed},
		IndependentHands: a.config.Game.IndependentHands,
		ShowLandmarks:    a.config.Game.ShowLandmarks,
		FilterMode:       a.config.FilterMode(),
		Dwell:            a.config.Game.Dwell,
	}
}

// Config returns the configuration the app was built from.
func (a *App) Config() config.Config {
	return a.config
}

// Store returns the post store.
func (a *App) Store() *store.Store {
	return a.store
}

// Runner returns the session runner.
func (a *App) Runner() *session.Runner {
	return a.runner
}

// Hooks returns the hook manager.
func (a *App) Hooks() *hook.Manager {
	return a.hooks
}

// Close stops any running session and closes the store.
func (a *App) Close() error {
	var errs []error
	if out, ok := a.runner.Stop(); ok {
		log.WithField("session", out.SessionID).Info("session stopped on shutdown")
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
