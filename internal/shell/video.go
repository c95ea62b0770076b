package shell

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// VideoDisplay shows the latest session frame.
type VideoDisplay struct {
	widget.BaseWidget

	// mu guards image between the pump goroutine and the renderer
	mu    sync.Mutex
	image *canvas.Image
}

// NewVideoDisplay creates an empty VideoDisplay.
func NewVideoDisplay() *VideoDisplay {
	v := &VideoDisplay{}
	v.ExtendBaseWidget(v)

	v.image = canvas.NewImageFromImage(nil)
	v.image.FillMode = canvas.ImageFillContain
	v.image.SetMinSize(fyne.NewSize(640, 480))
	return v
}

// UpdateFrame replaces the displayed image. Call it on the fyne thread.
func (v *VideoDisplay) UpdateFrame(img image.Image) {
	v.mu.Lock()
	v.image.Image = img
	v.mu.Unlock()

	v.Refresh()
}

// frame returns the displayed image.
func (v *VideoDisplay) frame() image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.image.Image
}

// Clear blanks the display.
func (v *VideoDisplay) Clear() {
	v.UpdateFrame(nil)
}

// CreateRenderer implements [fyne.Widget].
func (v *VideoDisplay) CreateRenderer() fyne.WidgetRenderer {
	return &videoRenderer{v}
}

type videoRenderer struct {
	v *VideoDisplay
}

// Destroy implements [fyne.WidgetRenderer].
func (r *videoRenderer) Destroy() {}

// MinSize implements [fyne.WidgetRenderer].
func (r *videoRenderer) MinSize() fyne.Size {
	return r.v.image.MinSize()
}

// Objects implements [fyne.WidgetRenderer].
func (r *videoRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.v.image}
}

// Refresh implements [fyne.WidgetRenderer].
func (r *videoRenderer) Refresh() {
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	r.v.image.Refresh()
}

func (r *videoRenderer) Layout(s fyne.Size) {
	r.v.image.Resize(s)
}
