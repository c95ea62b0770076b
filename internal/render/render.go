// Package render paints game overlays onto camera frames and shows them in a
// highgui window.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/takebook/internal/detector"
	"github.com/ayusman/takebook/internal/game"
)

// KeyEscape is the key code WaitKey reports for the escape key.
const KeyEscape = 27

var (
	landmarkColor   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	connectionColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	labelColor      = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	faceColor       = color.RGBA{R: 0, G: 0, B: 255, A: 0}
)

// Draw paints cmds onto frame in order.
func Draw(frame *gocv.Mat, cmds []game.Command) {
	for _, c := range cmds {
		switch c.Kind {
		case game.Polyline:
			for i := 1; i < len(c.Points); i++ {
				gocv.Line(frame, c.Points[i-1], c.Points[i], c.Color, c.Thickness)
			}
		case game.Circle:
			gocv.Circle(frame, c.Center, c.Radius, c.Color, c.Thickness)
		case game.Text:
			gocv.PutText(frame, c.Text, c.Origin, gocv.FontHersheySimplex, c.Scale, c.Color, c.Thickness)
		}
	}
}

// DrawHand paints the hand skeleton: connections as thin lines, landmarks as dots.
func DrawHand(frame *gocv.Mat, hand *detector.HandLandmarks) {
	width, height := frame.Cols(), frame.Rows()
	for _, conn := range detector.HandConnections {
		gocv.Line(frame, hand.Pixel(conn[0], width, height), hand.Pixel(conn[1], width, height), connectionColor, 2)
	}
	for i := 0; i < detector.NumLandmarks; i++ {
		gocv.Circle(frame, hand.Pixel(i, width, height), 3, landmarkColor, game.Filled)
	}
}

// DrawLabel paints a caption in the top-left corner.
func DrawLabel(frame *gocv.Mat, text string) {
	gocv.PutText(frame, text, image.Pt(10, 40), gocv.FontHersheySimplex, 1, labelColor, 2)
}

// DrawFace outlines a detected face and writes label above it.
func DrawFace(frame *gocv.Mat, face image.Rectangle, label string) {
	gocv.Rectangle(frame, face, faceColor, 2)
	origin := image.Pt(face.Min.X, face.Min.Y-10)
	if origin.Y < 20 {
		origin.Y = face.Max.Y + 30
	}
	gocv.PutText(frame, label, origin, gocv.FontHersheySimplex, 1, faceColor, 2)
}
