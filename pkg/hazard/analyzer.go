package hazard

import (
	"log/slog"
	"sync"
	"time"
)

// Result is the outcome of analyzing a single frame.
// It is consumed by the feedback scheduler and the dashboard; not persisted.
type Result struct {
	Level             Level
	Obstacles         []Obstacle
	ProcessingLatency time.Duration
	FrameTimestamp    time.Time
}

// RequiresAlert reports whether this result should produce a safety alert.
func (r Result) RequiresAlert() bool {
	return r.Level == Warning || r.Level == Critical
}

// PrimaryObstacle returns the obstacle with the largest area, or nil when the
// frame was empty. Note this is the display-highlight selection; the hazard
// level itself is driven by the tallest obstacle, which can be a different box.
func (r Result) PrimaryObstacle() *Obstacle {
	if len(r.Obstacles) == 0 {
		return nil
	}
	primary := &r.Obstacles[0]
	for i := range r.Obstacles[1:] {
		if r.Obstacles[i+1].Area() > primary.Area() {
			primary = &r.Obstacles[i+1]
		}
	}
	return primary
}

// AnalyzerStats holds cumulative performance counters.
type AnalyzerStats struct {
	FramesAnalyzed uint64
	GeometryErrors uint64
	TotalLatency   time.Duration
}

// Analyzer wraps the classifier for per-frame use.
// It never returns an error into the frame pipeline: a classification failure
// degrades to a Safe result with no obstacles.
type Analyzer struct {
	classifier *Classifier
	logger     *slog.Logger

	mu    sync.Mutex
	stats AnalyzerStats
}

// NewAnalyzer creates an analyzer around the given classifier.
// A nil classifier gets default thresholds.
func NewAnalyzer(classifier *Classifier) *Analyzer {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Analyzer{
		classifier: classifier,
		logger:     slog.Default().With("component", "hazard.analyzer"),
	}
}

// Analyze classifies one frame's obstacles and records processing latency.
//
// Fail-safe, not fail-open: on malformed geometry the result is Safe with an
// empty obstacle list, because a false Critical desensitizes the user while a
// crashed safety loop helps nobody. The error is logged and counted.
func (a *Analyzer) Analyze(obstacles []Obstacle, frameWidth, frameHeight float64) Result {
	start := time.Now()

	level, err := a.classifier.Classify(obstacles, frameWidth, frameHeight)
	if err != nil {
		a.logger.Warn("classification failed, degrading to safe", "error", err)
		a.mu.Lock()
		a.stats.GeometryErrors++
		a.mu.Unlock()
		return Result{
			Level:             Safe,
			Obstacles:         nil,
			ProcessingLatency: time.Since(start),
			FrameTimestamp:    start,
		}
	}

	latency := time.Since(start)

	a.mu.Lock()
	a.stats.FramesAnalyzed++
	a.stats.TotalLatency += latency
	a.mu.Unlock()

	return Result{
		Level:             level,
		Obstacles:         obstacles,
		ProcessingLatency: latency,
		FrameTimestamp:    start,
	}
}

// Stats returns a copy of the cumulative counters.
func (a *Analyzer) Stats() AnalyzerStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
