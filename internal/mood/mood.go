// Package mood labels a frame by whether the first visible face is smiling.
package mood

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Labels reported by Classify.
const (
	Happy   = "kush"
	Default = "BT"
)

// Detection parameters for the stock Haar cascades.
const (
	FaceScale           = 1.3
	FaceMinNeighbors    = 5
	SmileScale          = 1.8
	SmileMinNeighbors   = 20
	DefaultFaceCascade  = "haarcascade_frontalface_default.xml"
	DefaultSmileCascade = "haarcascade_smile.xml"
)

// ErrCascadeLoad is returned when a cascade XML file cannot be loaded.
var ErrCascadeLoad = errors.New("failed to load cascade")

// RegionDetector finds object regions in a single-channel image.
type RegionDetector interface {
	Detect(gray gocv.Mat) []image.Rectangle
	Close() error
}

// Cascade is a RegionDetector backed by an OpenCV Haar cascade.
type Cascade struct {
	classifier   gocv.CascadeClassifier
	scale        float64
	minNeighbors int
}

// LoadCascade loads the cascade XML at path.
func LoadCascade(path string, scale float64, minNeighbors int) (*Cascade, error) {
	cc := gocv.NewCascadeClassifier()
	if !cc.Load(path) {
		cc.Close()
		return nil, fmt.Errorf("%w: %s", ErrCascadeLoad, path)
	}
	return &Cascade{classifier: cc, scale: scale, minNeighbors: minNeighbors}, nil
}

func (c *Cascade) Detect(gray gocv.Mat) []image.Rectangle {
	return c.classifier.DetectMultiScaleWithParams(gray, c.scale, c.minNeighbors, 0, image.Point{}, image.Point{})
}

func (c *Cascade) Close() error {
	return c.classifier.Close()
}

// Config names the cascade files a Classifier loads.
type Config struct {
	FaceCascade  string
	SmileCascade string
}

// DefaultConfig looks for the stock cascades in the working directory.
func DefaultConfig() Config {
	return Config{FaceCascade: DefaultFaceCascade, SmileCascade: DefaultSmileCascade}
}

// Result is the outcome of classifying one frame.
type Result struct {
	Label string
	// Face is the first detected face; zero when FaceFound is false.
	Face      image.Rectangle
	FaceFound bool
	Smiles    int
}

// Classifier owns a face and a smile detector.
type Classifier struct {
	face  RegionDetector
	smile RegionDetector
}

// New returns a Classifier that takes ownership of both detectors.
func New(face, smile RegionDetector) *Classifier {
	return &Classifier{face: face, smile: smile}
}

// Load builds a Classifier from the cascade files named in cfg.
func Load(cfg Config) (*Classifier, error) {
	face, err := LoadCascade(cfg.FaceCascade, FaceScale, FaceMinNeighbors)
	if err != nil {
		return nil, fmt.Errorf("face cascade: %w", err)
	}
	smile, err := LoadCascade(cfg.SmileCascade, SmileScale, SmileMinNeighbors)
	if err != nil {
		face.Close()
		return nil, fmt.Errorf("smile cascade: %w", err)
	}
	return New(face, smile), nil
}

// Classify labels a BGR frame. Without a face the label is Default.
func (c *Classifier) Classify(frame gocv.Mat) Result {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	res := Result{Label: Default}
	faces := c.face.Detect(gray)
	if len(faces) == 0 {
		return res
	}

	res.Face = faces[0].Intersect(image.Rect(0, 0, gray.Cols(), gray.Rows()))
	res.FaceFound = !res.Face.Empty()
	if !res.FaceFound {
		return res
	}

	roi := gray.Region(res.Face)
	defer roi.Close()
	res.Smiles = len(c.smile.Detect(roi))
	if res.Smiles > 0 {
		res.Label = Happy
	}
	return res
}

// Close releases both detectors.
func (c *Classifier) Close() error {
	return errors.Join(c.face.Close(), c.smile.Close())
}
