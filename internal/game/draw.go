package game

import (
	"image"
	"image/color"
)

// CommandKind identifies the shape a draw command paints.
type CommandKind int

const (
	// Polyline connects consecutive Points with line segments.
	Polyline CommandKind = iota
	// Circle paints a circle at Center.
	Circle
	// Text paints Text with its baseline starting at Origin.
	Text
)

// Filled is the thickness value that paints a solid circle.
const Filled = -1

// Colors used by the snake overlay. gocv converts these to BGR when drawing.
var (
	BodyColor     = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	HeadColor     = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	FoodColor     = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	ScoreColor    = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	GameOverColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// Command is a single drawing instruction produced by a game step.
// Only the fields relevant to Kind are set.
type Command struct {
	Kind      CommandKind
	Points    []image.Point
	Center    image.Point
	Radius    int
	Origin    image.Point
	Text      string
	Scale     float64
	Color     color.RGBA
	Thickness int
}

func bodyCommand(trail []image.Point) Command {
	points := make([]image.Point, len(trail))
	copy(points, trail)
	return Command{Kind: Polyline, Points: points, Color: BodyColor, Thickness: 15}
}

func markerCommand(center image.Point, c color.RGBA) Command {
	return Command{Kind: Circle, Center: center, Radius: 10, Color: c, Thickness: Filled}
}

func textCommand(origin image.Point, text string, scale float64, c color.RGBA, thickness int) Command {
	return Command{Kind: Text, Origin: origin, Text: text, Scale: scale, Color: c, Thickness: thickness}
}
