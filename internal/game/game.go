// Package game implements the hand-tracked snake: a bounded fingertip trail
// chasing randomly placed food, advanced by one observation per camera frame.
package game

import (
	"fmt"
	"image"
	"math"
	"time"

	"golang.org/x/exp/rand"
)

// Game tuning constants.
const (
	// InitialCapacity is the trail length a new snake may reach before eviction starts.
	InitialCapacity = 10
	// CapacityGrowth is added to the trail capacity for every food eaten.
	CapacityGrowth = 5
	// EatDistance is the fingertip-to-food distance (pixels) below which food is eaten.
	EatDistance = 25.0
	// CollisionDistance is the head-to-body distance (pixels) below which the snake collides.
	CollisionDistance = 10.0
	// SafeHeadLength is the number of most recent trail points excluded from self-collision.
	SafeHeadLength = 10
	// FoodMargin keeps food this many pixels away from every frame edge.
	FoodMargin = 50
	// GameOverDwell is how long the final frame stays visible after a collision.
	GameOverDwell = 1500 * time.Millisecond
)

// Status is the lifecycle state of a game.
type Status int

const (
	// Running is the initial state.
	Running Status = iota
	// Collided means the head ran into the body.
	Collided
	// Quit means the player cancelled the game.
	Quit
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Collided:
		return "collided"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further steps can change the game.
func (s Status) Terminal() bool {
	return s == Collided || s == Quit
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Rand is the source of food placement. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Config holds the parameters of a new game.
type Config struct {
	// Bounds is the frame rectangle used for the initial food placement.
	Bounds image.Rectangle
	// Rand overrides the random source. When nil a generator seeded with Seed is used.
	Rand Rand
	// Seed seeds the default generator. Zero means seed from the clock.
	Seed uint64
	// Label prefixes the score text, e.g. "Left: 3". Empty renders "Score: 3".
	Label string
	// ScoreOrigin positions the score text. Zero means (10, 40).
	ScoreOrigin image.Point
}

// NewRand returns the default food generator for seed, seeding from the clock when seed is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// State is a snapshot of a game, safe to hand to other goroutines.
type State struct {
	Label    string        `json:"label,omitempty"`
	Trail    []image.Point `json:"trail"`
	Capacity int           `json:"capacity"`
	Food     image.Point   `json:"food"`
	Score    int           `json:"score"`
	Status   Status        `json:"status"`
}

// Game is a single snake. It is not safe for concurrent use; frames are
// expected to be stepped strictly in order by one goroutine.
type Game struct {
	trail       []image.Point
	capacity    int
	food        image.Point
	score       int
	status      Status
	rng         Rand
	label       string
	scoreOrigin image.Point
}

// New creates a running game with an empty trail and food placed inside cfg.Bounds.
func New(cfg Config) *Game {
	rng := cfg.Rand
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}

	origin := cfg.ScoreOrigin
	if origin == (image.Point{}) {
		origin = image.Pt(10, 40)
	}

	g := &Game{
		trail:       make([]image.Point, 0, InitialCapacity+1),
		capacity:    InitialCapacity,
		status:      Running,
		rng:         rng,
		label:       cfg.Label,
		scoreOrigin: origin,
	}
	g.food = g.placeFood(cfg.Bounds)
	return g
}

// Step advances the game by one fingertip observation. A nil tip means no
// hand was seen this frame: the state is left untouched and no commands are
// produced. Stepping a finished game is a no-op that reports its final status.
func (g *Game) Step(tip *image.Point, bounds image.Rectangle) ([]Command, Status) {
	if tip == nil || g.status.Terminal() {
		return nil, g.status
	}
	head := *tip

	g.trail = append(g.trail, head)
	if len(g.trail) > g.capacity {
		copy(g.trail, g.trail[1:])
		g.trail = g.trail[:len(g.trail)-1]
	}

	if distance(head, g.food) < EatDistance {
		g.score++
		g.capacity += CapacityGrowth
		g.food = g.placeFood(bounds)
	}

	cmds := []Command{
		bodyCommand(g.trail),
		markerCommand(head, HeadColor),
		markerCommand(g.food, FoodColor),
		textCommand(g.scoreOrigin, g.scoreText(), 1, ScoreColor, 2),
	}

	if g.hitsBody(head) {
		g.status = Collided
		cmds = append(cmds, textCommand(image.Pt(180, 250), "GAME OVER", 2, GameOverColor, 3))
	}

	return cmds, g.status
}

// StepAll steps the game once per fingertip, in order, against the shared
// trail, food and score. It stops at the first collision. With no tips it
// behaves like Step(nil).
func (g *Game) StepAll(tips []image.Point, bounds image.Rectangle) ([]Command, Status) {
	if len(tips) == 0 {
		return g.Step(nil, bounds)
	}

	var cmds []Command
	for i := range tips {
		stepCmds, status := g.Step(&tips[i], bounds)
		cmds = append(cmds, stepCmds...)
		if status.Terminal() {
			break
		}
	}
	return cmds, g.status
}

// Advance implements Engine using the shared-trail policy.
func (g *Game) Advance(hands []Hand, bounds image.Rectangle) ([]Command, Status) {
	tips := make([]image.Point, len(hands))
	for i, h := range hands {
		tips[i] = h.Tip
	}
	return g.StepAll(tips, bounds)
}

// Quit ends a running game. It has no effect on a finished game.
func (g *Game) Quit() {
	if !g.status.Terminal() {
		g.status = Quit
	}
}

// Status returns the current status.
func (g *Game) Status() Status { return g.status }

// Score returns the number of foods eaten.
func (g *Game) Score() int { return g.score }

// Capacity returns the current maximum trail length.
func (g *Game) Capacity() int { return g.capacity }

// Food returns the current food position.
func (g *Game) Food() image.Point { return g.food }

// Trail returns a copy of the trail, oldest point first.
func (g *Game) Trail() []image.Point {
	out := make([]image.Point, len(g.trail))
	copy(out, g.trail)
	return out
}

// State returns a snapshot of the game.
func (g *Game) State() State {
	return State{
		Label:    g.label,
		Trail:    g.Trail(),
		Capacity: g.capacity,
		Food:     g.food,
		Score:    g.score,
		Status:   g.status,
	}
}

// States implements Engine.
func (g *Game) States() []State {
	return []State{g.State()}
}

// hitsBody checks head against every trail point outside the safe head region.
func (g *Game) hitsBody(head image.Point) bool {
	if len(g.trail) <= SafeHeadLength {
		return false
	}
	for i := 0; i < len(g.trail)-SafeHeadLength; i++ {
		if distance(head, g.trail[i]) < CollisionDistance {
			return true
		}
	}
	return false
}

func (g *Game) scoreText() string {
	if g.label == "" {
		return fmt.Sprintf("Score: %d", g.score)
	}
	return fmt.Sprintf("%s: %d", g.label, g.score)
}

// placeFood picks a point with each coordinate in [min+FoodMargin, max-FoodMargin].
// Frames too small for the margin get the centre of the available range.
func (g *Game) placeFood(b image.Rectangle) image.Point {
	return image.Pt(
		randBetween(g.rng, b.Min.X+FoodMargin, b.Max.X-FoodMargin),
		randBetween(g.rng, b.Min.Y+FoodMargin, b.Max.Y-FoodMargin),
	)
}

func randBetween(r Rand, lo, hi int) int {
	if hi < lo {
		return (lo + hi) / 2
	}
	return lo + r.Intn(hi-lo+1)
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
