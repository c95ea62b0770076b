// Package filter implements the live video filters.
package filter

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"
)

// Mode selects the transform applied to each frame.
type Mode int

const (
	Normal Mode = iota
	Grayscale
	Sepia
	Invert
	Blur
	Cartoon
)

// ErrUnknownMode is returned when parsing a name that is not a filter mode.
var ErrUnknownMode = errors.New("unknown filter mode")

var modeNames = [...]string{
	Normal:    "Normal",
	Grayscale: "Grayscale",
	Sepia:     "Sepia",
	Invert:    "Invert",
	Blur:      "Blur",
	Cartoon:   "Cartoon",
}

// sepiaKernel maps each output channel to a weighted sum of the input channels.
var sepiaKernel = [3][3]float32{
	{0.272, 0.534, 0.131},
	{0.349, 0.686, 0.168},
	{0.393, 0.769, 0.189},
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name case-insensitively.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Modes returns every mode in menu order.
func Modes() []Mode {
	return []Mode{Normal, Grayscale, Sepia, Invert, Blur, Cartoon}
}

// Names returns the display names of every mode in menu order.
func Names() []string {
	names := make([]string, len(modeNames))
	copy(names, modeNames[:])
	return names
}

// ParseMode looks a mode up by name, ignoring case and surrounding space.
func ParseMode(name string) (Mode, error) {
	name = strings.TrimSpace(name)
	for i, n := range modeNames {
		if strings.EqualFold(n, name) {
			return Mode(i), nil
		}
	}
	return Normal, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Apply writes the filtered version of src into dst. src must be a BGR frame;
// dst comes back BGR with the same size.
func Apply(mode Mode, src gocv.Mat, dst *gocv.Mat) error {
	switch mode {
	case Normal:
		src.CopyTo(dst)
	case Grayscale:
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
		gocv.CvtColor(gray, dst, gocv.ColorGrayToBGR)
	case Sepia:
		kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
		defer kernel.Close()
		for r, row := range sepiaKernel {
			for c, v := range row {
				kernel.SetFloatAt(r, c, v)
			}
		}
		gocv.Transform(src, dst, kernel)
	case Invert:
		gocv.BitwiseNot(src, dst)
	case Blur:
		gocv.GaussianBlur(src, dst, image.Pt(15, 15), 0, 0, gocv.BorderDefault)
	case Cartoon:
		cartoon(src, dst)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	return nil
}

// cartoon keeps the smoothed colors only where the adaptive threshold of the
// blurred gray image is set, which darkens the edges.
func cartoon(src gocv.Mat, dst *gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	gocv.MedianBlur(gray, &gray, 5)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.AdaptiveThreshold(gray, &edges, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary, 9, 9)

	smooth := gocv.NewMat()
	defer smooth.Close()
	gocv.BilateralFilter(src, &smooth, 9, 250, 250)

	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), src.Rows(), src.Cols(), src.Type())
	defer out.Close()
	gocv.BitwiseAndWithMask(smooth, smooth, &out, edges)
	out.CopyTo(dst)
}
