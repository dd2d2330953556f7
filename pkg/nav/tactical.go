package nav

import (
	"fmt"
	"math"

	"github.com/dlaveaga/go-guidedog/pkg/geo"
)

// AheadToleranceDeg is the half-angle within which a target counts as dead
// ahead for the clock-hour helper. This is deliberately tighter than the 20°
// on-course check in the waypoint state machine; the two thresholds serve
// different layers and are kept distinct.
const AheadToleranceDeg = 15.0

// TacticalDirection describes where a target lies relative to the user's
// heading, in the analog-clock metaphor (12 = dead ahead).
type TacticalDirection struct {
	ClockHour       int     // 1..12
	DistanceMeters  float64
	AbsoluteBearing float64 // [0,360)
	RelativeBearing float64 // (-180,180]
	IsAhead         bool
}

// ComputeDirection derives the clock-hour direction from the user's position
// and heading toward a target.
func ComputeDirection(headingDeg, userLat, userLon, targetLat, targetLon float64) TacticalDirection {
	abs := geo.Bearing(userLat, userLon, targetLat, targetLon)
	rel := geo.NormalizeRelative(abs - headingDeg)

	// 30° per clock hour, round half up at the 15°/45°/... boundaries.
	hour := int(math.Floor(geo.NormalizeAbsolute(rel)/30 + 0.5))
	if hour == 0 {
		hour = 12
	}
	for hour > 12 {
		hour -= 12
	}

	return TacticalDirection{
		ClockHour:       hour,
		DistanceMeters:  geo.Distance(userLat, userLon, targetLat, targetLon),
		AbsoluteBearing: abs,
		RelativeBearing: rel,
		IsAhead:         math.Abs(rel) <= AheadToleranceDeg,
	}
}

// SpokenText renders the direction as a guidance phrase.
func (d TacticalDirection) SpokenText() string {
	if d.IsAhead {
		return fmt.Sprintf("Straight ahead, %s", PhraseDistance(d.DistanceMeters))
	}
	return fmt.Sprintf("%d o'clock, %s", d.ClockHour, PhraseDistance(d.DistanceMeters))
}

// PhraseDistance buckets a distance into coarse spoken tiers so guidance never
// speaks false precision like "47.3 meters": exact meters under 10m, nearest
// 5m up to 99m, nearest 10m beyond.
func PhraseDistance(meters float64) string {
	if meters < 0 {
		meters = 0
	}
	var rounded int
	switch {
	case meters < 10:
		rounded = int(math.Round(meters))
	case meters < 100:
		rounded = int(math.Round(meters/5)) * 5
	default:
		rounded = int(math.Round(meters/10)) * 10
	}
	if rounded == 1 {
		return "1 meter"
	}
	return fmt.Sprintf("%d meters", rounded)
}
