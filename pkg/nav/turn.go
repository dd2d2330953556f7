package nav

import (
	"fmt"
	"math"
)

// Turn bucket edges in degrees of absolute bearing difference.
// Anything beyond the sharp edge stays "sharp"; the u-turn concept belongs
// only to the clock-hour helper, not to this vocabulary.
const (
	onCourseDeg   = 20.0
	slightTurnDeg = 45.0
	normalTurnDeg = 90.0
)

// TurnCategory is the seven-way turn instruction vocabulary.
type TurnCategory int

const (
	TurnContinue TurnCategory = iota
	TurnSlightLeft
	TurnLeft
	TurnSharpLeft
	TurnSlightRight
	TurnRight
	TurnSharpRight
)

func (c TurnCategory) String() string {
	switch c {
	case TurnContinue:
		return "continue"
	case TurnSlightLeft:
		return "slight-left"
	case TurnLeft:
		return "left"
	case TurnSharpLeft:
		return "sharp-left"
	case TurnSlightRight:
		return "slight-right"
	case TurnRight:
		return "right"
	case TurnSharpRight:
		return "sharp-right"
	default:
		return fmt.Sprintf("TurnCategory(%d)", int(c))
	}
}

// Instruction returns the spoken phrase for the category.
func (c TurnCategory) Instruction() string {
	switch c {
	case TurnContinue:
		return "Continue straight"
	case TurnSlightLeft:
		return "Turn slightly left"
	case TurnLeft:
		return "Turn left"
	case TurnSharpLeft:
		return "Turn sharply left"
	case TurnSlightRight:
		return "Turn slightly right"
	case TurnRight:
		return "Turn right"
	case TurnSharpRight:
		return "Turn sharply right"
	default:
		return "Continue straight"
	}
}

// ClassifyTurn buckets a relative bearing (degrees, (-180,180], negative =
// left) into the seven-way vocabulary. The buckets are mirrored for left and
// right with edges at 20°, 45° and 90°.
func ClassifyTurn(relativeBearingDeg float64) TurnCategory {
	abs := math.Abs(relativeBearingDeg)
	left := relativeBearingDeg < 0

	switch {
	case abs < onCourseDeg:
		return TurnContinue
	case abs < slightTurnDeg:
		if left {
			return TurnSlightLeft
		}
		return TurnSlightRight
	case abs <= normalTurnDeg:
		if left {
			return TurnLeft
		}
		return TurnRight
	default:
		if left {
			return TurnSharpLeft
		}
		return TurnSharpRight
	}
}
