// Package hazard classifies camera-detected obstacles into discrete danger levels.
//
// The classifier is a deliberately simple geometric heuristic: the tallest
// bounding box in the frame is treated as the nearest obstacle, and its height
// relative to the frame decides the level. It is deterministic, stateless, and
// cheap enough to run on every frame.
package hazard

import "fmt"

// Obstacle is a single detected object in frame pixel space.
// Instances are immutable and live for one analyzed frame.
type Obstacle struct {
	// Bounding box in pixels. Right/Bottom are exclusive of nothing in
	// particular; only the differences and the horizontal center matter.
	Left, Top, Right, Bottom float64

	// Label is the detector's class name, if any ("person", "bicycle", ...).
	Label string

	// Confidence is the detector score in [0,1].
	Confidence float64

	// TrackingID is the detector's cross-frame track ID, or 0 when untracked.
	TrackingID int
}

// Width returns the box width in pixels.
func (o Obstacle) Width() float64 {
	return o.Right - o.Left
}

// Height returns the box height in pixels.
func (o Obstacle) Height() float64 {
	return o.Bottom - o.Top
}

// CenterX returns the horizontal center of the box in pixels.
func (o Obstacle) CenterX() float64 {
	return (o.Left + o.Right) / 2
}

// Area returns the box area in square pixels.
func (o Obstacle) Area() float64 {
	return o.Width() * o.Height()
}

func (o Obstacle) String() string {
	label := o.Label
	if label == "" {
		label = "object"
	}
	return fmt.Sprintf("%s[%.0f,%.0f,%.0f,%.0f c=%.2f]", label, o.Left, o.Top, o.Right, o.Bottom, o.Confidence)
}

// Level is the discrete danger classification of a frame.
type Level int

// Levels are ordered: Safe < Warning < Critical.
const (
	Safe Level = iota
	Warning
	Critical
)

func (l Level) String() string {
	switch l {
	case Safe:
		return "SAFE"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// AnnouncementText returns the spoken phrase for a level.
// Safe has no announcement.
func (l Level) AnnouncementText() string {
	switch l {
	case Warning:
		return "Obstacle ahead"
	case Critical:
		return "Stop. Obstacle directly ahead"
	default:
		return ""
	}
}
