package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// idleShutdown is how long the sidecar may sit unused before it is stopped.
const idleShutdown = 30 * time.Second

const scriptName = "mediapipe_service.py"

// ErrScriptNotFound is returned when no sidecar script can be located.
var ErrScriptNotFound = errors.New(scriptName + " not found")

// MediaPipeDetector implements Detector on top of a Python MediaPipe sidecar.
// The sidecar is started on the first Detect and stopped after idleShutdown
// without frames, or on Close.
type MediaPipeDetector struct {
	config Config
	python string
	script string

	mu   sync.Mutex
	proc *sidecar
	idle *time.Timer
}

// NewMediaPipeDetector resolves the interpreter and script for config. It
// does not start Python.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = searchInstall(filepath.Join("scripts", scriptName))
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("mediapipe script: %w", err)
	}

	python := config.PythonPath
	if python == "" {
		python = searchInstall(filepath.Join("venv", "bin", "python"))
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{config: config, python: python, script: script}, nil
}

// Detect sends frame to the sidecar and waits for its landmarks. A failed
// exchange stops the sidecar so the next call restarts it.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.proc == nil {
		proc, err := startSidecar(d.python, d.script, d.args())
		if err != nil {
			return nil, err
		}
		d.proc = proc
		log.WithField("script", d.script).Debug("mediapipe sidecar started")
	}

	jpeg, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer jpeg.Close()

	line, err := d.proc.roundTrip(jpeg.GetBytes())
	if err != nil {
		// The pipe is unusable after a failed exchange; the next frame
		// starts a fresh sidecar.
		if stopErr := d.stop(); stopErr != nil {
			log.Debugf("mediapipe sidecar exited: %v", stopErr)
		}
		return nil, err
	}

	hands, err := parseResponse(line)
	if err != nil {
		return nil, err
	}

	d.touch()
	return hands, nil
}

// Close stops the sidecar if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

func (d *MediaPipeDetector) args() []string {
	return []string{
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	}
}

// stop must be called with d.mu held.
func (d *MediaPipeDetector) stop() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.proc == nil {
		return nil
	}
	err := d.proc.close()
	d.proc = nil
	return err
}

// touch restarts the idle countdown. Must be called with d.mu held.
func (d *MediaPipeDetector) touch() {
	if d.idle != nil {
		d.idle.Reset(idleShutdown)
		return
	}
	d.idle = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.idle = nil
		if err := d.stop(); err != nil {
			log.Debugf("mediapipe sidecar exited: %v", err)
		}
	})
}

// sidecar is one running Python process.
type sidecar struct {
	cmd *exec.Cmd
	in  io.WriteCloser
	out *bufio.Reader
}

func startSidecar(python, script string, args []string) (*sidecar, error) {
	cmd := exec.Command(python, append([]string{script}, args...)...)
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mediapipe service: %w", err)
	}

	return &sidecar{cmd: cmd, in: in, out: bufio.NewReader(out)}, nil
}

// roundTrip sends one frame and returns the raw response line.
func (s *sidecar) roundTrip(jpeg []byte) ([]byte, error) {
	if err := writeFrame(s.in, jpeg); err != nil {
		return nil, err
	}
	line, err := s.out.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// close ends the sidecar's input and waits for it to exit.
func (s *sidecar) close() error {
	s.in.Close()
	return s.cmd.Wait()
}

// writeFrame writes payload with its big-endian uint32 length prefix.
func writeFrame(w io.Writer, payload []byte) error {
	msg := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(msg, uint32(len(payload)))
	copy(msg[4:], payload)
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// searchInstall looks for rel in the working directory, next to the
// executable and under ~/.takebook, returning the first absolute match.
func searchInstall(rel string) string {
	roots := []string{".", ".."}
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".takebook"))
	}

	for _, root := range roots {
		path := filepath.Join(root, rel)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

type wireHand struct {
	Points []struct {
		X, Y, Z float64
	} `json:"points"`
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}

// parseResponse decodes one sidecar response line, keeping the hand order.
func parseResponse(line []byte) ([]HandLandmarks, error) {
	var resp struct {
		Hands []wireHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", resp.Error)
	}

	hands := make([]HandLandmarks, len(resp.Hands))
	for i, w := range resp.Hands {
		hands[i] = HandLandmarks{Handedness: w.Handedness, Score: w.Score}
		for j := 0; j < NumLandmarks && j < len(w.Points); j++ {
			p := w.Points[j]
			hands[i].Points[j] = Point3D{X: p.X, Y: p.Y, Z: p.Z}
		}
	}
	return hands, nil
}
