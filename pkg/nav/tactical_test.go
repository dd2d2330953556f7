package nav_test

import (
	"math"
	"testing"

	"github.com/dlaveaga/go-guidedog/pkg/nav"
)

// target drops a target at a given relative bearing and distance from a
// user at the origin heading north. Small offsets keep the spherical math
// effectively planar.
func target(relDeg, meters float64) (lat, lon float64) {
	const metersPerDegLat = 111194.9
	rad := relDeg * math.Pi / 180
	dLat := meters * math.Cos(rad) / metersPerDegLat
	dLon := meters * math.Sin(rad) / metersPerDegLat // cos(lat)=1 at equator
	return dLat, dLon
}

func TestComputeDirectionClockHours(t *testing.T) {
	tests := []struct {
		name      string
		relDeg    float64
		wantHour  int
		wantAhead bool
	}{
		{"dead ahead", 0, 12, true},
		{"slightly right inside tolerance", 14, 12, true},
		{"past tolerance edge", 16, 1, false},
		{"one o'clock", 30, 1, false},
		{"three o'clock", 90, 3, false},
		{"six o'clock behind", 179, 6, false},
		{"nine o'clock", -90, 9, false},
		{"eleven o'clock", -30, 11, false},
		{"just left of ahead", -14, 12, true},
		{"rounds up past hour boundary", 46, 2, false},
		{"rounds down below boundary", 44, 1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lat, lon := target(tc.relDeg, 50)
			dir := nav.ComputeDirection(0, 0, 0, lat, lon)
			if dir.ClockHour != tc.wantHour {
				t.Errorf("ClockHour = %d, want %d (rel %.1f)", dir.ClockHour, tc.wantHour, dir.RelativeBearing)
			}
			if dir.IsAhead != tc.wantAhead {
				t.Errorf("IsAhead = %v, want %v", dir.IsAhead, tc.wantAhead)
			}
		})
	}
}

func TestComputeDirectionRespectsHeading(t *testing.T) {
	// Target due east of the user; user already facing east.
	lat, lon := target(90, 40)
	dir := nav.ComputeDirection(90, 0, 0, lat, lon)
	if dir.ClockHour != 12 {
		t.Errorf("ClockHour = %d, want 12 when heading at target", dir.ClockHour)
	}
	if !dir.IsAhead {
		t.Error("IsAhead = false, want true when heading at target")
	}
	if math.Abs(dir.AbsoluteBearing-90) > 1 {
		t.Errorf("AbsoluteBearing = %.2f, want ~90", dir.AbsoluteBearing)
	}
}

func TestComputeDirectionDistance(t *testing.T) {
	lat, lon := target(0, 120)
	dir := nav.ComputeDirection(0, 0, 0, lat, lon)
	if math.Abs(dir.DistanceMeters-120) > 2 {
		t.Errorf("DistanceMeters = %.2f, want ~120", dir.DistanceMeters)
	}
}

func TestSpokenText(t *testing.T) {
	lat, lon := target(90, 47)
	dir := nav.ComputeDirection(0, 0, 0, lat, lon)
	if got, want := dir.SpokenText(), "3 o'clock, 45 meters"; got != want {
		t.Errorf("SpokenText() = %q, want %q", got, want)
	}

	lat, lon = target(0, 8)
	dir = nav.ComputeDirection(0, 0, 0, lat, lon)
	if got, want := dir.SpokenText(), "Straight ahead, 8 meters"; got != want {
		t.Errorf("SpokenText() = %q, want %q", got, want)
	}
}

func TestPhraseDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "0 meters"},
		{1.2, "1 meter"},
		{7.4, "7 meters"},
		{9.9, "10 meters"},
		{12, "10 meters"},
		{13, "15 meters"},
		{47.3, "45 meters"},
		{48, "50 meters"},
		{99, "100 meters"},
		{104, "100 meters"},
		{105, "110 meters"},
		{523, "520 meters"},
		{-5, "0 meters"},
	}
	for _, tc := range tests {
		if got := nav.PhraseDistance(tc.meters); got != tc.want {
			t.Errorf("PhraseDistance(%.1f) = %q, want %q", tc.meters, got, tc.want)
		}
	}
}
