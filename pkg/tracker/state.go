package tracker

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
)

type VehicleLocation struct {
	Coordinate geo.Coordinate `json:"coordinate"`
}

type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseTracking
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseTracking:
		return "tracking"
	case PhaseCompleted:
		return "completed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, phase := range []Phase{PhaseIdle, PhaseTracking, PhaseCompleted} {
		if phase.String() == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is the whole tracking state of one maneuver list. CurrentManeuverIndex never decreases and stops
// at the number of maneuvers.
type State struct {
	CurrentManeuverIndex     int              `json:"current_maneuver_index"`
	LastVehicleLocation      *VehicleLocation `json:"last_vehicle_location,omitempty"`
	IncreasingDistanceStreak int              `json:"increasing_distance_streak"`
}

func (s State) Phase(maneuverCount int) Phase {
	switch {
	case maneuverCount == 0:
		return PhaseIdle
	case s.CurrentManeuverIndex >= maneuverCount:
		return PhaseCompleted
	default:
		return PhaseTracking
	}
}

type RenderInstruction struct {
	Rect          projection.ScreenRect `json:"rect"`
	Alpha         uint8                 `json:"alpha"`
	Image         route.Sign            `json:"image"`
	ManeuverIndex int                   `json:"maneuver_index"`
}

type AdvanceReason uint8

const (
	AdvanceNone AdvanceReason = iota
	// AdvanceBehindCamera: the sign of the current maneuver projected behind the camera.
	AdvanceBehindCamera
	// AdvanceHysteresis: the distance to the maneuver kept increasing close to it.
	AdvanceHysteresis
)

func (r AdvanceReason) String() string {
	switch r {
	case AdvanceBehindCamera:
		return "behind_camera"
	case AdvanceHysteresis:
		return "hysteresis"
	default:
		return "none"
	}
}

func (r AdvanceReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *AdvanceReason) UnmarshalText(text []byte) error {
	for _, reason := range []AdvanceReason{AdvanceNone, AdvanceBehindCamera, AdvanceHysteresis} {
		if reason.String() == string(text) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown advance reason %q", text)
}

// Tick is the outcome of one location update.
type Tick struct {
	Render    RenderInstruction
	HasRender bool
	// Distance from the new location to the maneuver tracked at the start of the tick, meters. Zero when
	// nothing was measured.
	Distance float64
	Advance  AdvanceReason
}
