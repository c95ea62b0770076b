// Package config loads TakeBook settings: built-in defaults, then an optional
// TOML file, then TAKEBOOK_* environment variables. Command-line flags are
// applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/capture"
	"github.com/ayusman/takebook/internal/detector"
	"github.com/ayusman/takebook/internal/filter"
	"github.com/ayusman/takebook/internal/game"
	"github.com/ayusman/takebook/internal/hook"
	"github.com/ayusman/takebook/internal/mood"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TAKEBOOK_"

// Config is the full application configuration.
type Config struct {
	LogLevel string         `toml:"log_level"`
	DBPath   string         `toml:"db_path"`
	Camera   CameraConfig   `toml:"camera"`
	Detector DetectorConfig `toml:"detector"`
	Mood     MoodConfig     `toml:"mood"`
	Game     GameConfig     `toml:"game"`
	Filter   FilterConfig   `toml:"filter"`
	Hooks    HooksConfig    `toml:"hooks"`
	Server   ServerConfig   `toml:"server"`
}

type CameraConfig struct {
	Device int  `toml:"device"`
	Width  int  `toml:"width"`
	Height int  `toml:"height"`
	FPS    int  `toml:"fps"`
	Mirror bool `toml:"mirror"`
}

type DetectorConfig struct {
	MaxHands     int     `toml:"max_hands"`
	MinDetection float64 `toml:"min_detection"`
	MinTracking  float64 `toml:"min_tracking"`
	Script       string  `toml:"script"`
	Python       string  `toml:"python"`
}

type MoodConfig struct {
	FaceCascade  string `toml:"face_cascade"`
	SmileCascade string `toml:"smile_cascade"`
}

type GameConfig struct {
	Seed             uint64        `toml:"seed"`
	IndependentHands bool          `toml:"independent_hands"`
	ShowLandmarks    bool          `toml:"show_landmarks"`
	Dwell            time.Duration `toml:"dwell"`
}

type FilterConfig struct {
	Mode string `toml:"mode"`
}

type HooksConfig struct {
	Dir     string        `toml:"dir"`
	Timeout time.Duration `toml:"timeout"`
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

// DataDir returns ~/.takebook, or .takebook when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".takebook"
	}
	return filepath.Join(home, ".takebook")
}

// DefaultPath is the config file loaded when none is named.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// Default returns the built-in configuration.
func Default() Config {
	cam := capture.DefaultConfig()
	det := detector.DefaultConfig()
	cascades := mood.DefaultConfig()
	dataDir := DataDir()

	return Config{
		LogLevel: "info",
		DBPath:   filepath.Join(dataDir, "takebook.db"),
		Camera: CameraConfig{
			Device: cam.DeviceID,
			Width:  cam.Width,
			Height: cam.Height,
			FPS:    cam.FPS,
			Mirror: cam.Mirror,
		},
		Detector: DetectorConfig{
			MaxHands:     det.MaxHands,
			MinDetection: det.MinConfidence,
			MinTracking:  det.MinTrackingConf,
		},
		Mood: MoodConfig{
			FaceCascade:  cascades.FaceCascade,
			SmileCascade: cascades.SmileCascade,
		},
		Game: GameConfig{
			ShowLandmarks: true,
			Dwell:         game.GameOverDwell,
		},
		Filter: FilterConfig{Mode: filter.Normal.String()},
		Hooks: HooksConfig{
			Dir:     filepath.Join(dataDir, "hooks"),
			Timeout: hook.DefaultTimeout,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load builds the configuration. An explicitly named file must exist; when
// path is empty the default file is read only if present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			log.WithField("file", path).Warnf("unknown config keys: %v", undecoded)
		}
	} else if explicit {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	var errs []error
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DBPath = getEnv("DB", c.DBPath)
	c.Camera.Device = getEnvInt("CAMERA", c.Camera.Device, &errs)
	c.Camera.Width = getEnvInt("CAMERA_WIDTH", c.Camera.Width, &errs)
	c.Camera.Height = getEnvInt("CAMERA_HEIGHT", c.Camera.Height, &errs)
	c.Camera.FPS = getEnvInt("CAMERA_FPS", c.Camera.FPS, &errs)
	c.Camera.Mirror = getEnvBool("CAMERA_MIRROR", c.Camera.Mirror, &errs)
	c.Detector.MaxHands = getEnvInt("MAX_HANDS", c.Detector.MaxHands, &errs)
	c.Detector.Script = getEnv("MEDIAPIPE_SCRIPT", c.Detector.Script)
	c.Detector.Python = getEnv("PYTHON", c.Detector.Python)
	c.Mood.FaceCascade = getEnv("FACE_CASCADE", c.Mood.FaceCascade)
	c.Mood.SmileCascade = getEnv("SMILE_CASCADE", c.Mood.SmileCascade)
	c.Game.Seed = getEnvUint64("SEED", c.Game.Seed, &errs)
	c.Game.IndependentHands = getEnvBool("INDEPENDENT_HANDS", c.Game.IndependentHands, &errs)
	c.Filter.Mode = getEnv("FILTER", c.Filter.Mode)
	c.Hooks.Dir = getEnv("HOOKS_DIR", c.Hooks.Dir)
	c.Server.Addr = getEnv("ADDR", c.Server.Addr)
	return errors.Join(errs...)
}

// Validate reports settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := filter.ParseMode(c.Filter.Mode); err != nil {
		errs = append(errs, fmt.Errorf("filter.mode: %w", err))
	}
	if c.Detector.MaxHands < 1 {
		errs = append(errs, fmt.Errorf("detector.max_hands must be at least 1, got %d", c.Detector.MaxHands))
	}
	confidences := []struct {
		name  string
		value float64
	}{
		{"detector.min_detection", c.Detector.MinDetection},
		{"detector.min_tracking", c.Detector.MinTracking},
	}
	for _, conf := range confidences {
		if conf.value < 0 || conf.value > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", conf.name, conf.value))
		}
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	return errors.Join(errs...)
}

// CaptureConfig returns the camera settings.
func (c Config) CaptureConfig() capture.Config {
	return capture.Config{
		DeviceID: c.Camera.Device,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		FPS:      c.Camera.FPS,
		Mirror:   c.Camera.Mirror,
	}
}

// DetectorConfig returns the hand detector settings.
func (c Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetection,
		MinTrackingConf: c.Detector.MinTracking,
		ScriptPath:      c.Detector.Script,
		PythonPath:      c.Detector.Python,
	}
}

// MoodConfig returns the cascade paths.
func (c Config) MoodConfig() mood.Config {
	return mood.Config{FaceCascade: c.Mood.FaceCascade, SmileCascade: c.Mood.SmileCascade}
}

// FilterMode returns the configured initial filter. Validate has checked it.
func (c Config) FilterMode() filter.Mode {
	m, _ := filter.ParseMode(c.Filter.Mode)
	return m
}

func getEnv(name, fallback string) string {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(name string, fallback int, errs *[]error) int {
	v := getEnv(name, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return fallback
	}
	return n
}

func getEnvUint64(name string, fallback uint64, errs *[]error) uint64 {
	v := getEnv(name, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return fallback
	}
	return n
}

func getEnvBool(name string, fallback bool, errs *[]error) bool {
	v := getEnv(name, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return fallback
	}
	return b
}
