package hazard

// Default classifier thresholds.
const (
	// DefaultCriticalHeightRatio: a centered obstacle taller than 40% of the
	// frame is treated as an imminent collision.
	DefaultCriticalHeightRatio = 0.40

	// DefaultSafeHeightRatio: obstacles shorter than 10% of the frame are far
	// enough to ignore.
	DefaultSafeHeightRatio = 0.10

	// DefaultCenterFraction: the middle third of the frame counts as the
	// walking corridor.
	DefaultCenterFraction = 1.0 / 3.0
)

// Classifier turns obstacle geometry into a Level.
// Thresholds are constructor-time parameters so tests and field tuning can
// adjust them without touching call sites.
type Classifier struct {
	criticalHeightRatio float64
	safeHeightRatio     float64
	centerFraction      float64
}

// ClassifierOption is a functional option for NewClassifier.
type ClassifierOption func(*Classifier)

// WithCriticalHeightRatio overrides the critical height threshold.
func WithCriticalHeightRatio(r float64) ClassifierOption {
	return func(c *Classifier) {
		c.criticalHeightRatio = r
	}
}

// WithSafeHeightRatio overrides the safe height threshold.
func WithSafeHeightRatio(r float64) ClassifierOption {
	return func(c *Classifier) {
		c.safeHeightRatio = r
	}
}

// WithCenterFraction overrides the centered-corridor width fraction.
func WithCenterFraction(f float64) ClassifierOption {
	return func(c *Classifier) {
		c.centerFraction = f
	}
}

// NewClassifier creates a classifier with default thresholds, adjusted by opts.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		criticalHeightRatio: DefaultCriticalHeightRatio,
		safeHeightRatio:     DefaultSafeHeightRatio,
		centerFraction:      DefaultCenterFraction,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifyRatio classifies from a pre-computed height ratio and centering flag.
//
// Decision order matters for boundary correctness: exactly-at-threshold values
// resolve to Warning, never Critical nor Safe. The thresholds are strict
// inequalities on the dangerous side, inclusive on the safe/default side.
func (c *Classifier) ClassifyRatio(heightRatio float64, centered bool) Level {
	if heightRatio < c.safeHeightRatio {
		return Safe
	}
	if heightRatio > c.criticalHeightRatio && centered {
		return Critical
	}
	// Large but off-center obstacles are presumed avoidable by stepping aside.
	return Warning
}

// Classify classifies a full frame's obstacle list.
//
// The obstacle with the greatest bounding-box height is selected: tallest in
// frame is treated as nearest, independent of width, matching a pedestrian
// silhouette. An empty list is Safe.
func (c *Classifier) Classify(obstacles []Obstacle, frameWidth, frameHeight float64) (Level, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return Safe, &GeometryError{FrameWidth: frameWidth, FrameHeight: frameHeight, Detail: "non-positive frame dimensions"}
	}
	if len(obstacles) == 0 {
		return Safe, nil
	}

	tallest := obstacles[0]
	for _, o := range obstacles[1:] {
		if o.Height() > tallest.Height() {
			tallest = o
		}
	}
	if tallest.Height() < 0 || tallest.Width() < 0 {
		return Safe, &GeometryError{FrameWidth: frameWidth, FrameHeight: frameHeight, Detail: "malformed bounding box " + tallest.String()}
	}

	heightRatio := tallest.Height() / frameHeight
	return c.ClassifyRatio(heightRatio, c.isCentered(tallest.CenterX(), frameWidth)), nil
}

// isCentered reports whether centerX falls within the middle corridor of the
// frame, inclusive on both edges.
func (c *Classifier) isCentered(centerX, frameWidth float64) bool {
	margin := frameWidth * c.centerFraction
	return centerX >= margin && centerX <= frameWidth-margin
}
