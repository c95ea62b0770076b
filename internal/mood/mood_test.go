package mood

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type fakeDetector struct {
	regions  []image.Rectangle
	calls    int
	lastSize image.Point
	closed   bool
	closeErr error
}

func (f *fakeDetector) Detect(gray gocv.Mat) []image.Rectangle {
	f.calls++
	f.lastSize = image.Pt(gray.Cols(), gray.Rows())
	return f.regions
}

func (f *fakeDetector) Close() error {
	f.closed = true
	return f.closeErr
}

func blankFrame() gocv.Mat {
	return gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
}

func TestClassify(t *testing.T) {
	face := image.Rect(100, 100, 300, 320)

	tests := []struct {
		name       string
		faces      []image.Rectangle
		smiles     []image.Rectangle
		wantLabel  string
		wantFound  bool
		smileCalls int
	}{
		{
			name:      "no face",
			wantLabel: Default,
		},
		{
			name:       "face without smile",
			faces:      []image.Rectangle{face},
			wantLabel:  Default,
			wantFound:  true,
			smileCalls: 1,
		},
		{
			name:       "smiling face",
			faces:      []image.Rectangle{face},
			smiles:     []image.Rectangle{image.Rect(20, 120, 80, 160)},
			wantLabel:  Happy,
			wantFound:  true,
			smileCalls: 1,
		},
		{
			name:       "only first face is checked",
			faces:      []image.Rectangle{face, image.Rect(400, 50, 500, 150)},
			smiles:     []image.Rectangle{image.Rect(10, 10, 30, 30), image.Rect(40, 10, 60, 30)},
			wantLabel:  Happy,
			wantFound:  true,
			smileCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces := &fakeDetector{regions: tt.faces}
			smiles := &fakeDetector{regions: tt.smiles}
			c := New(faces, smiles)

			frame := blankFrame()
			defer frame.Close()

			res := c.Classify(frame)
			assert.Equal(t, tt.wantLabel, res.Label)
			assert.Equal(t, tt.wantFound, res.FaceFound)
			assert.Equal(t, 1, faces.calls)
			assert.Equal(t, tt.smileCalls, smiles.calls)
			assert.Equal(t, len(tt.smiles), res.Smiles)
			if tt.wantFound {
				assert.Equal(t, tt.faces[0], res.Face)
				assert.Equal(t, tt.faces[0].Size(), smiles.lastSize, "smile search runs on the face region")
			}
		})
	}
}

func TestClassify_FaceClippedToFrame(t *testing.T) {
	faces := &fakeDetector{regions: []image.Rectangle{image.Rect(600, 400, 700, 520)}}
	smiles := &fakeDetector{}
	c := New(faces, smiles)

	frame := blankFrame()
	defer frame.Close()

	res := c.Classify(frame)
	require.True(t, res.FaceFound)
	assert.Equal(t, image.Rect(600, 400, 640, 480), res.Face)
}

func TestClassify_FaceOutsideFrame(t *testing.T) {
	faces := &fakeDetector{regions: []image.Rectangle{image.Rect(700, 500, 800, 600)}}
	smiles := &fakeDetector{}
	c := New(faces, smiles)

	frame := blankFrame()
	defer frame.Close()

	res := c.Classify(frame)
	assert.False(t, res.FaceFound)
	assert.Equal(t, Default, res.Label)
	assert.Zero(t, smiles.calls)
}

func TestClassifier_Close(t *testing.T) {
	faceErr := errors.New("face close")
	faces := &fakeDetector{closeErr: faceErr}
	smiles := &fakeDetector{}
	c := New(faces, smiles)

	err := c.Close()
	assert.ErrorIs(t, err, faceErr)
	assert.True(t, faces.closed)
	assert.True(t, smiles.closed, "smile detector is closed even when the face detector fails")
}

func TestLoad_MissingCascade(t *testing.T) {
	_, err := Load(Config{FaceCascade: "/nonexistent/face.xml", SmileCascade: "/nonexistent/smile.xml"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCascadeLoad)
}
