package guidance

import (
	"math"
)

type TurnDirection int8

const (
	UTurnLeft        TurnDirection = -4
	TurnSharpLeft    TurnDirection = -3
	TurnLeft         TurnDirection = -2
	TurnSlightLeft   TurnDirection = -1
	ContinueOnStreet TurnDirection = 0
	TurnSlightRight  TurnDirection = 1
	TurnRight        TurnDirection = 2
	TurnSharpRight   TurnDirection = 3
	UTurnRight       TurnDirection = 4
)

// directions API modifier of every turn direction
var modifiers = map[TurnDirection]string{
	UTurnLeft:        "uturn",
	TurnSharpLeft:    "sharp left",
	TurnLeft:         "left",
	TurnSlightLeft:   "slight left",
	ContinueOnStreet: "straight",
	TurnSlightRight:  "slight right",
	TurnRight:        "right",
	TurnSharpRight:   "sharp right",
	UTurnRight:       "uturn",
}

func (td TurnDirection) Modifier() string {
	return modifiers[td]
}

/*
alignBearing. handle the case where after-before > 180° or after-before < -180°.

e.g. before 20°, after 350°: the vehicle turns left by 30°, not right by 330°. fix: before + 360°.
before 340°, after 10°: the vehicle turns right by 30°. fix: after + 360°.
*/
func alignBearing(before, after float64) (float64, float64) {
	dif := after - before
	if dif > 180 {
		before += 360
	} else if dif < -180 {
		after += 360
	}
	return before, after
}

// DeltaBearing returns the heading change from before to after in (-180, 180], in degrees. Positive is a right
// turn.
func DeltaBearing(before, after float64) float64 {
	before = math.Mod(math.Mod(before, 360)+360, 360)
	after = math.Mod(math.Mod(after, 360)+360, 360)
	before, after = alignBearing(before, after)
	return after - before
}

// TurnDirectionFromBearings classifies the turn between the heading arriving at a maneuver and the heading
// leaving it (degrees clockwise from north).
func TurnDirectionFromBearings(before, after float64) TurnDirection {
	delta := DeltaBearing(before, after)
	deltaDegree := math.Abs(delta)

	switch {
	case deltaDegree < 12:
		return ContinueOnStreet
	case deltaDegree < 40:
		if delta < 0 {
			return TurnSlightLeft
		}
		return TurnSlightRight
	case deltaDegree < 105:
		if delta < 0 {
			return TurnLeft
		}
		return TurnRight
	case deltaDegree < 170:
		if delta < 0 {
			return TurnSharpLeft
		}
		return TurnSharpRight
	case delta < 0:
		return UTurnLeft
	default:
		return UTurnRight
	}
}

func ModifierFromBearings(before, after float64) string {
	return TurnDirectionFromBearings(before, after).Modifier()
}
