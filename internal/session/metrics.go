package session

import "github.com/prometheus/client_golang/prometheus"

var (
	framesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "takebook",
			Subsystem: "session",
			Name:      "frames_total",
			Help:      "Frames processed, by session kind.",
		},
		[]string{"kind"},
	)
	handsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "takebook",
			Subsystem: "snake",
			Name:      "hands_total",
			Help:      "Hands reported by the landmark detector.",
		},
	)
	foodEaten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "takebook",
			Subsystem: "snake",
			Name:      "food_eaten_total",
			Help:      "Food items eaten across all games.",
		},
	)
	gamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "takebook",
			Subsystem: "snake",
			Name:      "games_total",
			Help:      "Finished games, by final status.",
		},
		[]string{"status"},
	)
	frameSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "takebook",
			Subsystem: "session",
			Name:      "frame_seconds",
			Help:      "Time spent processing one frame.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(framesProcessed, handsDetected, foodEaten, gamesFinished, frameSeconds)
}

func instrument(kind Kind) func() {
	t := prometheus.NewTimer(frameSeconds.WithLabelValues(kind.String()))
	return func() { t.ObserveDuration() }
}
