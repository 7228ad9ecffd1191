package tracker

import (
	"math"

	"github.com/lintang-b-s/navigatorx-ar/pkg"
	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
	"go.uber.org/zap"
)

type SignProjector interface {
	Project(target geo.Coordinate) (projection.ScreenRect, projection.Outcome)
}

type OverlayProjector interface {
	SignProjector
	Resize(width, height int)
}

// SignAlpha fades the sign in over the first ALPHA_FADE_DISTANCE_METERS after it becomes drawable.
func SignAlpha(distance float64) uint8 {
	m := math.Min(pkg.DRAW_TURN_MIN_DISTANCE_METERS-distance, pkg.ALPHA_FADE_DISTANCE_METERS)
	alpha := math.Round(pkg.MAX_ALPHA * m / pkg.ALPHA_FADE_DISTANCE_METERS)
	return uint8(math.Max(0, math.Min(pkg.MAX_ALPHA, alpha)))
}

// Step applies one vehicle location to state. It is pure apart from the projector, which may keep the last
// sign rectangle.
func Step(state State, maneuvers []route.Maneuver, loc VehicleLocation, projector SignProjector) (State, Tick) {
	if state.Phase(len(maneuvers)) != PhaseTracking {
		return state, Tick{}
	}

	if state.LastVehicleLocation == nil {
		state.LastVehicleLocation = &loc
		return state, Tick{}
	}

	maneuver := maneuvers[state.CurrentManeuverIndex]
	distPrev := geo.GreatCircleDistance(maneuver.Location, state.LastVehicleLocation.Coordinate)
	distNew := geo.GreatCircleDistance(maneuver.Location, loc.Coordinate)

	tick := Tick{Distance: distNew}

	if distNew <= pkg.DRAW_TURN_MIN_DISTANCE_METERS {
		rect, outcome := projector.Project(maneuver.Location)
		switch outcome {
		case projection.OutcomeBehind:
			state.CurrentManeuverIndex++
			state.IncreasingDistanceStreak = 0
			state.LastVehicleLocation = &loc
			tick.Advance = AdvanceBehindCamera
			return state, tick
		case projection.OutcomeVisible:
			tick.Render = RenderInstruction{
				Rect:          rect,
				Alpha:         SignAlpha(distNew),
				Image:         maneuver.Sign,
				ManeuverIndex: state.CurrentManeuverIndex,
			}
			tick.HasRender = true
		}
	}

	if distNew > distPrev && distNew < pkg.ADVANCE_DISTANCE_METERS {
		state.IncreasingDistanceStreak++

		if state.IncreasingDistanceStreak >= pkg.ADVANCE_STREAK {
			state.IncreasingDistanceStreak = 0
			state.CurrentManeuverIndex++
			tick.Advance = AdvanceHysteresis
		}
	} else {
		state.IncreasingDistanceStreak = 0
	}

	state.LastVehicleLocation = &loc
	return state, tick
}

// Tracker owns the state of one maneuver list. It is not safe for concurrent use, callers deliver
// locations one at a time in arrival order.
type Tracker struct {
	log       *zap.Logger
	projector OverlayProjector
	maneuvers []route.Maneuver
	state     State
}

func NewTracker(projector OverlayProjector, log *zap.Logger) *Tracker {
	return &Tracker{
		log:       log,
		projector: projector,
	}
}

func (t *Tracker) InstallManeuvers(maneuvers []route.Maneuver) {
	t.maneuvers = make([]route.Maneuver, len(maneuvers))
	copy(t.maneuvers, maneuvers)
	t.state = State{}

	t.log.Info("maneuvers installed", zap.Int("maneuvers", len(maneuvers)),
		zap.Stringer("phase", t.Phase()))
}

// OnVehicleLocation returns the sign to draw for this location, ok is false when nothing is drawn.
func (t *Tracker) OnVehicleLocation(loc VehicleLocation) (RenderInstruction, bool) {
	tick := t.Update(loc)
	return tick.Render, tick.HasRender
}

// Update is OnVehicleLocation with the tick diagnostics.
func (t *Tracker) Update(loc VehicleLocation) Tick {
	prevIndex := t.state.CurrentManeuverIndex

	var tick Tick
	t.state, tick = Step(t.state, t.maneuvers, loc, t.projector)

	if tick.Advance != AdvanceNone {
		t.log.Debug("maneuver passed",
			zap.Int("maneuver_index", prevIndex),
			zap.Stringer("reason", tick.Advance),
			zap.Float64("distance", tick.Distance),
			zap.Stringer("phase", t.Phase()))
	}
	return tick
}

func (t *Tracker) OnViewportResize(width, height int) {
	t.projector.Resize(width, height)
}

func (t *Tracker) State() State {
	return t.state
}

func (t *Tracker) Phase() Phase {
	return t.state.Phase(len(t.maneuvers))
}

func (t *Tracker) Maneuvers() []route.Maneuver {
	return t.maneuvers
}

func (t *Tracker) CurrentManeuver() (route.Maneuver, bool) {
	if t.Phase() != PhaseTracking {
		return route.Maneuver{}, false
	}
	return t.maneuvers[t.state.CurrentManeuverIndex], true
}
