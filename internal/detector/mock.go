package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either as a fixed set
// of hands returned on every call or as a per-frame script.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	calls    int
	err      error
	closed   bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence scripts the result of successive Detect calls. Once the script
// is exhausted Detect reports no hands.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	if m.sequence != nil {
		i := m.calls
		m.calls++
		if i >= len(m.sequence) {
			return nil, nil
		}
		return m.sequence[i], nil
	}

	m.calls++
	return m.hands, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PointingLandmarks returns a right hand with the index finger extended and
// its tip at the normalized position (x, y). The other fingers are curled
// around the palm below the tip.
func PointingLandmarks(x, y float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Offsets relative to the fingertip; the palm sits below it.
	offsets := [NumLandmarks][2]float64{
		Wrist:     {0.00, 0.30},
		ThumbCMC:  {0.05, 0.26},
		ThumbMCP:  {0.08, 0.21},
		ThumbIP:   {0.09, 0.17},
		ThumbTip:  {0.08, 0.14},
		IndexMCP:  {0.02, 0.18},
		IndexPIP:  {0.01, 0.11},
		IndexDIP:  {0.00, 0.05},
		IndexTip:  {0.00, 0.00},
		MiddleMCP: {-0.02, 0.18},
		MiddlePIP: {-0.02, 0.15},
		MiddleDIP: {-0.01, 0.17},
		MiddleTip: {-0.01, 0.19},
		RingMCP:   {-0.05, 0.19},
		RingPIP:   {-0.05, 0.16},
		RingDIP:   {-0.04, 0.18},
		RingTip:   {-0.04, 0.20},
		PinkyMCP:  {-0.08, 0.21},
		PinkyPIP:  {-0.08, 0.18},
		PinkyDIP:  {-0.07, 0.20},
		PinkyTip:  {-0.07, 0.22},
	}

	for i, o := range offsets {
		landmarks.Points[i] = Point3D{X: x + o[0], Y: y + o[1]}
	}

	return landmarks
}

// WithHandedness returns a copy of h labelled as handedness.
func WithHandedness(h HandLandmarks, handedness string) HandLandmarks {
	h.Handedness = handedness
	return h
}
