package game

import (
	"fmt"
	"image"
)

// Hand is one fingertip observation, tagged with the detector's hand label
// ("Left", "Right", or empty when unknown).
type Hand struct {
	Label string
	Tip   image.Point
}

// Engine advances one or more snakes from the hands seen in a frame.
type Engine interface {
	Advance(hands []Hand, bounds image.Rectangle) ([]Command, Status)
	Quit()
	Status() Status
	Score() int
	States() []State
}

// NewEngine returns the engine for the configured multi-hand policy: a single
// shared snake, or one independent snake per hand label.
func NewEngine(cfg Config, independentHands bool) Engine {
	if independentHands {
		return NewArena(cfg)
	}
	return New(cfg)
}

// Arena gives every tracked hand its own snake. Snakes are created the first
// time a label is seen and keep their own trail, food and score. The arena is
// over as soon as any snake collides.
type Arena struct {
	cfg    Config
	rng    Rand
	games  map[string]*Game
	order  []string
	status Status
}

// NewArena creates an empty arena. Snakes share cfg's random source.
func NewArena(cfg Config) *Arena {
	rng := cfg.Rand
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}
	return &Arena{
		cfg:    cfg,
		rng:    rng,
		games:  make(map[string]*Game),
		status: Running,
	}
}

// Advance steps the snake of each hand once, in detector order. Hands without
// a label are keyed by their position in the frame.
func (a *Arena) Advance(hands []Hand, bounds image.Rectangle) ([]Command, Status) {
	if a.status.Terminal() {
		return nil, a.status
	}

	var cmds []Command
	for i, h := range hands {
		key := h.Label
		if key == "" {
			key = fmt.Sprintf("Hand %d", i+1)
		}

		g := a.game(key, bounds)
		tip := h.Tip
		stepCmds, status := g.Step(&tip, bounds)
		cmds = append(cmds, stepCmds...)
		if status == Collided {
			a.status = Collided
			break
		}
	}
	return cmds, a.status
}

func (a *Arena) game(key string, bounds image.Rectangle) *Game {
	if g, ok := a.games[key]; ok {
		return g
	}
	g := New(Config{
		Bounds:      bounds,
		Rand:        a.rng,
		Label:       key,
		ScoreOrigin: image.Pt(10, 40+40*len(a.order)),
	})
	a.games[key] = g
	a.order = append(a.order, key)
	return g
}

// Quit ends the arena and every snake in it.
func (a *Arena) Quit() {
	if a.status.Terminal() {
		return
	}
	a.status = Quit
	for _, g := range a.games {
		g.Quit()
	}
}

// Status returns the arena status.
func (a *Arena) Status() Status { return a.status }

// Score returns the total food eaten across all snakes.
func (a *Arena) Score() int {
	total := 0
	for _, g := range a.games {
		total += g.Score()
	}
	return total
}

// States returns one snapshot per snake, in the order hands were first seen.
func (a *Arena) States() []State {
	states := make([]State, 0, len(a.order))
	for _, key := range a.order {
		states = append(states, a.games[key].State())
	}
	return states
}
