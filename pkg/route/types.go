package route

import (
	"fmt"
	"strings"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
)

type Route struct {
	Legs     []Leg
	Duration float64 // seconds
}

type Leg struct {
	Steps []Step
}

type Step struct {
	Maneuver StepManeuver
	Geometry string // encoded polyline6, empty when the step carries no geometry
}

type StepManeuver struct {
	Location geo.Coordinate
	Type     string
	Modifier string
}

// Sign selects the turn sign image drawn for a maneuver.
type Sign uint8

const (
	SignLeft Sign = iota
	SignRight
	SignUTurn
)

func (s Sign) String() string {
	switch s {
	case SignRight:
		return "right"
	case SignUTurn:
		return "uturn"
	default:
		return "left"
	}
}

func (s Sign) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Sign) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*s = SignLeft
	case "right":
		*s = SignRight
	case "uturn":
		*s = SignUTurn
	default:
		return fmt.Errorf("unknown sign %q", text)
	}
	return nil
}

// SignFromModifier resolves the free-text maneuver modifier ("sharp right", "uturn", ...). Anything that is
// neither a u-turn nor a right turn gets the left sign.
func SignFromModifier(modifier string) Sign {
	m := strings.ToLower(modifier)
	switch {
	case strings.Contains(m, "uturn"):
		return SignUTurn
	case strings.Contains(m, "right"):
		return SignRight
	default:
		return SignLeft
	}
}

type Maneuver struct {
	Location geo.Coordinate `json:"location"`
	Modifier string         `json:"modifier,omitempty"`
	Sign     Sign           `json:"sign"`
}

func NewManeuver(location geo.Coordinate, modifier string) Maneuver {
	return Maneuver{
		Location: location,
		Modifier: modifier,
		Sign:     SignFromModifier(modifier),
	}
}

type ManeuverType uint8

// ManeuverTypeNone marks an untagged route point.
const (
	ManeuverTypeNone ManeuverType = iota
	ManeuverTypeDepart
	ManeuverTypeArrive
	ManeuverTypeTurn
	ManeuverTypeContinue
	ManeuverTypeNewName
	ManeuverTypeMerge
	ManeuverTypeOnRamp
	ManeuverTypeOffRamp
	ManeuverTypeFork
	ManeuverTypeEndOfRoad
	ManeuverTypeRoundabout
	ManeuverTypeRoundaboutTurn
	ManeuverTypeRotary
	ManeuverTypeExitRoundabout
	ManeuverTypeExitRotary
	ManeuverTypeNotification
)

var maneuverTypeNames = map[string]ManeuverType{
	"depart":          ManeuverTypeDepart,
	"arrive":          ManeuverTypeArrive,
	"turn":            ManeuverTypeTurn,
	"continue":        ManeuverTypeContinue,
	"new name":        ManeuverTypeNewName,
	"merge":           ManeuverTypeMerge,
	"on ramp":         ManeuverTypeOnRamp,
	"off ramp":        ManeuverTypeOffRamp,
	"fork":            ManeuverTypeFork,
	"end of road":     ManeuverTypeEndOfRoad,
	"roundabout":      ManeuverTypeRoundabout,
	"roundabout turn": ManeuverTypeRoundaboutTurn,
	"rotary":          ManeuverTypeRotary,
	"exit roundabout": ManeuverTypeExitRoundabout,
	"exit rotary":     ManeuverTypeExitRotary,
	"notification":    ManeuverTypeNotification,
}

// ManeuverTypeFromString maps a directions maneuver type, unknown types map to ManeuverTypeNone.
func ManeuverTypeFromString(s string) ManeuverType {
	if t, ok := maneuverTypeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t
	}
	return ManeuverTypeNone
}

func (t ManeuverType) String() string {
	for name, mt := range maneuverTypeNames {
		if mt == t {
			return name
		}
	}
	return "none"
}

func (t ManeuverType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type RoutePoint struct {
	Coordinate   geo.Coordinate `json:"coordinate"`
	ManeuverType ManeuverType   `json:"maneuver_type"`
}

func (rp RoutePoint) IsManeuver() bool {
	return rp.ManeuverType != ManeuverTypeNone
}
