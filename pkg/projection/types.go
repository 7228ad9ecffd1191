package projection

import "github.com/lintang-b-s/navigatorx-ar/pkg/geo"

// WorldPoint is a vehicle-relative point in meters: X forward, Y left, Z up.
type WorldPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PixelPoint is a point in reference camera frame pixels.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projection is the positioning/vision service. ok is false when no pose or calibration is available.
type Projection interface {
	GeoToWorld(c geo.Coordinate) (WorldPoint, bool)
	WorldToPixel(p WorldPoint) (PixelPoint, bool)
}

type ScreenRect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Outcome of projecting a sign.
type Outcome uint8

const (
	// OutcomeUnavailable means nothing can be drawn this tick.
	OutcomeUnavailable Outcome = iota
	// OutcomeBehind means the sign is behind the camera, the maneuver has been passed.
	OutcomeBehind
	OutcomeVisible
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBehind:
		return "behind"
	case OutcomeVisible:
		return "visible"
	default:
		return "unavailable"
	}
}

// PartialPolicy decides what happens when only one of the two sign corners projects to a pixel.
type PartialPolicy uint8

const (
	// RetainStaleEdges keeps the edges of the failed corner from the previous projection.
	RetainStaleEdges PartialPolicy = iota
	// SuppressPartial reports OutcomeUnavailable and leaves the rectangle untouched.
	SuppressPartial
)
