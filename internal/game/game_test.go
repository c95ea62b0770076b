package game

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frame = image.Rect(0, 0, 640, 480)

// seqRand replays a fixed sequence of values, reduced modulo n.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

// maxRand always returns the largest allowed value.
type maxRand struct{}

func (maxRand) Intn(n int) int { return n - 1 }

func pt(x, y int) *image.Point {
	p := image.Pt(x, y)
	return &p
}

// newFixedGame returns a game whose first food is at (100,100) and whose
// second food is at (300,200).
func newFixedGame() *Game {
	return New(Config{Bounds: frame, Rand: &seqRand{vals: []int{50, 50, 250, 150}}})
}

// fillTrail steps ten points along y=400, far from the fixed foods.
func fillTrail(t *testing.T, g *Game) {
	t.Helper()
	for i := 0; i < 10; i++ {
		_, status := g.Step(pt(400+i*15, 400), frame)
		require.Equal(t, Running, status)
	}
	require.Len(t, g.Trail(), 10)
}

func TestNewGame(t *testing.T) {
	g := newFixedGame()

	assert.Equal(t, Running, g.Status())
	assert.Equal(t, 0, g.Score())
	assert.Equal(t, InitialCapacity, g.Capacity())
	assert.Empty(t, g.Trail())
	assert.Equal(t, image.Pt(100, 100), g.Food())
}

func TestStepWithoutFingertipIsNoop(t *testing.T) {
	g := newFixedGame()
	fillTrail(t, g)
	before := g.State()

	for i := 0; i < 5; i++ {
		cmds, status := g.Step(nil, frame)
		require.Nil(t, cmds)
		require.Equal(t, Running, status)
	}

	assert.Equal(t, before, g.State())
}

func TestTrailNeverExceedsCapacity(t *testing.T) {
	g := New(Config{Bounds: frame, Seed: 7})

	// Walk a raster of points at least 11px apart so the head never
	// revisits the body.
	for i := 0; i < 300; i++ {
		x := (i % 58) * 11
		y := (i / 58) * 20
		_, status := g.Step(pt(x, y), frame)
		require.Equal(t, Running, status)
		require.LessOrEqual(t, len(g.Trail()), g.Capacity())
	}
}

func TestTrailEvictsOldestFirst(t *testing.T) {
	g := newFixedGame()
	fillTrail(t, g)

	g.Step(pt(400, 300), frame)

	trail := g.Trail()
	require.Len(t, trail, 10)
	assert.Equal(t, image.Pt(415, 400), trail[0])
	assert.Equal(t, image.Pt(400, 300), trail[9])
}

func TestEatingFood(t *testing.T) {
	g := newFixedGame()
	fillTrail(t, g)

	cmds, status := g.Step(pt(100, 100), frame)

	require.Equal(t, Running, status)
	assert.Equal(t, 1, g.Score())
	assert.Equal(t, 15, g.Capacity())
	assert.Equal(t, image.Pt(300, 200), g.Food())
	require.Len(t, cmds, 4)
	assert.Equal(t, "Score: 1", cmds[3].Text)
	assert.Equal(t, image.Pt(300, 200), cmds[2].Center)
}

func TestEatDistanceIsStrict(t *testing.T) {
	tests := []struct {
		name      string
		tip       image.Point
		wantScore int
	}{
		{name: "on the food", tip: image.Pt(100, 100), wantScore: 1},
		{name: "just inside", tip: image.Pt(124, 100), wantScore: 1},
		{name: "exactly on the radius", tip: image.Pt(125, 100), wantScore: 0},
		{name: "diagonal outside", tip: image.Pt(118, 118), wantScore: 0},
		{name: "far away", tip: image.Pt(600, 400), wantScore: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFixedGame()
			tip := tt.tip
			g.Step(&tip, frame)
			assert.Equal(t, tt.wantScore, g.Score())
		})
	}
}

func TestScoreIncrementsOncePerFrame(t *testing.T) {
	g := newFixedGame()

	g.Step(pt(100, 100), frame)
	require.Equal(t, 1, g.Score())

	// The next food is at (300,200); sitting still must not score again.
	g.Step(pt(100, 100), frame)
	assert.Equal(t, 1, g.Score())

	g.Step(pt(300, 200), frame)
	assert.Equal(t, 2, g.Score())
	assert.Equal(t, InitialCapacity+2*CapacityGrowth, g.Capacity())
}

func TestFoodStaysInsideMargin(t *testing.T) {
	t.Run("lowest values", func(t *testing.T) {
		g := New(Config{Bounds: frame, Rand: &seqRand{vals: []int{0}}})
		assert.Equal(t, image.Pt(50, 50), g.Food())
	})

	t.Run("highest values", func(t *testing.T) {
		g := New(Config{Bounds: frame, Rand: maxRand{}})
		assert.Equal(t, image.Pt(590, 430), g.Food())
	})

	t.Run("seeded regeneration", func(t *testing.T) {
		g := New(Config{Bounds: frame, Seed: 42})
		for i := 0; i < 50; i++ {
			food := g.Food()
			g.Step(&food, frame)

			next := g.Food()
			require.GreaterOrEqual(t, next.X, 50)
			require.LessOrEqual(t, next.X, 590)
			require.GreaterOrEqual(t, next.Y, 50)
			require.LessOrEqual(t, next.Y, 430)
			if g.Status().Terminal() {
				break
			}
		}
	})

	t.Run("frame smaller than the margin", func(t *testing.T) {
		g := New(Config{Bounds: image.Rect(0, 0, 80, 60), Rand: maxRand{}})
		assert.Equal(t, image.Pt(40, 30), g.Food())
	})
}

func TestNoCollisionCheckAtOrBelowSafeLength(t *testing.T) {
	g := newFixedGame()

	// Ten frames on the same spot: the trail is full of duplicates but
	// never longer than the safe head region.
	for i := 0; i < 20; i++ {
		_, status := g.Step(pt(5, 5), frame)
		require.Equal(t, Running, status)
	}
	assert.Len(t, g.Trail(), 10)
}

func TestStationaryFingertipCollides(t *testing.T) {
	g := newFixedGame()
	fillTrail(t, g)
	g.Step(pt(100, 100), frame)
	require.Equal(t, 15, g.Capacity())

	var cmds []Command
	var status Status
	for k := 1; k <= 10; k++ {
		cmds, status = g.Step(pt(5, 5), frame)
		require.Equal(t, Running, status, "frame %d", k)
	}

	// On the eleventh frame the first stationary point leaves the safe
	// head region: [p7 p8 p9 food P P ...] checks indices 0..4.
	cmds, status = g.Step(pt(5, 5), frame)
	require.Equal(t, Collided, status)
	require.Len(t, cmds, 5)
	assert.Equal(t, Text, cmds[4].Kind)
	assert.Equal(t, "GAME OVER", cmds[4].Text)
	assert.Equal(t, image.Pt(180, 250), cmds[4].Origin)
}

func TestFinishedGameIgnoresSteps(t *testing.T) {
	g := newFixedGame()
	g.Quit()
	require.Equal(t, Quit, g.Status())
	before := g.State()

	cmds, status := g.Step(pt(100, 100), frame)

	assert.Nil(t, cmds)
	assert.Equal(t, Quit, status)
	assert.Equal(t, before, g.State())
}

func TestQuitDoesNotOverrideCollision(t *testing.T) {
	g := newFixedGame()
	fillTrail(t, g)
	g.Step(pt(100, 100), frame)
	for i := 0; i < 11; i++ {
		g.Step(pt(5, 5), frame)
	}
	require.Equal(t, Collided, g.Status())

	g.Quit()
	assert.Equal(t, Collided, g.Status())
}

func TestDrawCommands(t *testing.T) {
	g := newFixedGame()
	g.Step(pt(400, 400), frame)
	cmds, _ := g.Step(pt(410, 400), frame)

	require.Len(t, cmds, 4)

	assert.Equal(t, Polyline, cmds[0].Kind)
	assert.Equal(t, []image.Point{image.Pt(400, 400), image.Pt(410, 400)}, cmds[0].Points)
	assert.Equal(t, 15, cmds[0].Thickness)

	assert.Equal(t, Circle, cmds[1].Kind)
	assert.Equal(t, image.Pt(410, 400), cmds[1].Center)
	assert.Equal(t, HeadColor, cmds[1].Color)
	assert.Equal(t, Filled, cmds[1].Thickness)

	assert.Equal(t, Circle, cmds[2].Kind)
	assert.Equal(t, image.Pt(100, 100), cmds[2].Center)
	assert.Equal(t, FoodColor, cmds[2].Color)

	assert.Equal(t, Text, cmds[3].Kind)
	assert.Equal(t, "Score: 0", cmds[3].Text)
	assert.Equal(t, image.Pt(10, 40), cmds[3].Origin)
}

func TestDeterministicReplay(t *testing.T) {
	tips := make([]image.Point, 0, 120)
	for i := 0; i < 120; i++ {
		tips = append(tips, image.Pt(60+(i*37)%520, 60+(i*53)%360))
	}

	run := func() []State {
		g := New(Config{Bounds: frame, Seed: 99})
		states := make([]State, 0, len(tips))
		for i := range tips {
			g.Step(&tips[i], frame)
			states = append(states, g.State())
		}
		return states
	}

	assert.Equal(t, run(), run())
}

func TestStepAllSharesState(t *testing.T) {
	g := newFixedGame()

	cmds, status := g.StepAll([]image.Point{image.Pt(400, 400), image.Pt(100, 100)}, frame)

	require.Equal(t, Running, status)
	assert.Len(t, cmds, 8)
	assert.Equal(t, []image.Point{image.Pt(400, 400), image.Pt(100, 100)}, g.Trail())
	assert.Equal(t, 1, g.Score())
}

func TestStepAllWithNoTips(t *testing.T) {
	g := newFixedGame()
	before := g.State()

	cmds, status := g.StepAll(nil, frame)

	assert.Nil(t, cmds)
	assert.Equal(t, Running, status)
	assert.Equal(t, before, g.State())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "collided", Collided.String())
	assert.Equal(t, "quit", Quit.String())
	assert.False(t, Running.Terminal())
	assert.True(t, Collided.Terminal())
	assert.True(t, Quit.Terminal())
}
