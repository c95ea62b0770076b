package render

import (
	"image"
	"time"

	"gocv.io/x/gocv"
)

// Window shows frames in a native highgui window.
// All methods must be called from the same OS thread.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window titled title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays frame and waits up to delay for a key press.
// It returns the key code, or -1 when no key was pressed.
func (w *Window) Show(frame gocv.Mat, delay time.Duration) int {
	w.win.IMShow(frame)
	ms := int(delay / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return w.win.WaitKey(ms)
}

// ShowImage converts img to a Mat and displays it like Show.
func (w *Window) ShowImage(img image.Image, delay time.Duration) (int, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return -1, err
	}
	defer mat.Close()
	return w.Show(mat, delay), nil
}

// IsOpen reports whether the user has not closed the window.
func (w *Window) IsOpen() bool {
	return w.win.IsOpen()
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
