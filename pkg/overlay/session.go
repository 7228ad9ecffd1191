package overlay

import (
	"sync"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
	"github.com/lintang-b-s/navigatorx-ar/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-ar/pkg/tracker"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
	"go.uber.org/zap"
)

const (
	// fixes closer than this do not give a usable heading
	minHeadingMoveMeters = 0.5

	routeIndexLeafRadiusKM = 0.05
)

type SessionConfig struct {
	Frame              projection.ImageSize
	FocalLengthPx      float64
	CameraHeightM      float64
	OffRouteThresholdM float64
	PartialPolicy      projection.PartialPolicy
}

func NewSessionConfig(cfg util.OverlayConfig) SessionConfig {
	policy := projection.RetainStaleEdges
	if cfg.SuppressPartialProjection {
		policy = projection.SuppressPartial
	}
	return SessionConfig{
		Frame:              projection.ImageSize{Width: cfg.FrameWidth, Height: cfg.FrameHeight},
		FocalLengthPx:      cfg.CameraFocalLengthPx,
		CameraHeightM:      cfg.CameraHeightM,
		OffRouteThresholdM: cfg.OffRouteThresholdM,
		PartialPolicy:      policy,
	}
}

type LocationUpdate struct {
	Coordinate geo.Coordinate
	// Bearing in degrees clockwise from north, nil to derive it from the previous fix.
	Bearing *float64
}

// Frame is what the overlay view needs after one location update.
type Frame struct {
	Render             *tracker.RenderInstruction `json:"render,omitempty"`
	ManeuverIndex      int                        `json:"maneuver_index"`
	Phase              tracker.Phase              `json:"phase"`
	DistanceToManeuver float64                    `json:"distance_to_maneuver"`
	Advance            tracker.AdvanceReason      `json:"advance"`
	OffRoute           bool                       `json:"off_route"`
	DistanceToRoute    *float64                   `json:"distance_to_route,omitempty"`
}

type Status struct {
	ID            string               `json:"id"`
	Phase         tracker.Phase        `json:"phase"`
	ManeuverIndex int                  `json:"maneuver_index"`
	Maneuvers     []route.Maneuver     `json:"maneuvers"`
	RoutePoints   int                  `json:"route_points"`
	Duration      float64              `json:"duration"`
	Viewport      projection.ImageSize `json:"viewport"`
	Geometry      string               `json:"geometry"`
	Updates       int                  `json:"updates"`
}

// Session drives the turn sign overlay of one vehicle on one route. All methods are serialized, so location
// updates from several goroutines are applied one at a time.
type Session struct {
	mu  sync.Mutex
	id  string
	log *zap.Logger
	cfg SessionConfig

	route       *route.Route
	routePoints []route.RoutePoint
	index       *spatialindex.Rtree

	camera    *projection.PinholeCamera
	projector *projection.Projector
	tracker   *tracker.Tracker

	lastFix    *geo.Coordinate
	heading    float64
	hasHeading bool
	updates    int
}

func NewSession(id string, r *route.Route, viewport projection.ImageSize, cfg SessionConfig, log *zap.Logger) *Session {
	log = log.With(zap.String("session", id))

	camera := projection.NewPinholeCamera(cfg.FocalLengthPx, cfg.CameraHeightM, cfg.Frame)
	projector := projection.NewProjector(camera, cfg.Frame, cfg.PartialPolicy)
	projector.Resize(viewport.Width, viewport.Height)

	routePoints := route.ExtractRoutePoints(r)
	index := spatialindex.NewRtree()
	index.Build(route.Coordinates(routePoints), routeIndexLeafRadiusKM, log)

	tr := tracker.NewTracker(projector, log)
	tr.InstallManeuvers(route.ExtractManeuvers(r))

	return &Session{
		id:          id,
		log:         log,
		cfg:         cfg,
		route:       r,
		routePoints: routePoints,
		index:       index,
		camera:      camera,
		projector:   projector,
		tracker:     tr,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Update moves the camera to the new fix and runs the maneuver tracker.
func (s *Session) Update(u LocationUpdate) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates++
	s.updatePose(u)

	tick := s.tracker.Update(tracker.VehicleLocation{Coordinate: u.Coordinate})
	state := s.tracker.State()

	frame := Frame{
		ManeuverIndex:      state.CurrentManeuverIndex,
		Phase:              s.tracker.Phase(),
		DistanceToManeuver: tick.Distance,
		Advance:            tick.Advance,
	}
	if tick.HasRender {
		render := tick.Render
		frame.Render = &render
	}

	if s.index.Len() > 0 {
		dist, _, found := s.index.DistanceToRoute(u.Coordinate, 2*s.cfg.OffRouteThresholdM/1000)
		if found {
			frame.DistanceToRoute = &dist
		}
		frame.OffRoute = !found || dist > s.cfg.OffRouteThresholdM
		if frame.OffRoute {
			s.log.Debug("vehicle off route", zap.Float64("lat", u.Coordinate.Lat),
				zap.Float64("lon", u.Coordinate.Lon))
		}
	}
	return frame
}

func (s *Session) updatePose(u LocationUpdate) {
	switch {
	case u.Bearing != nil:
		s.heading = *u.Bearing
		s.hasHeading = true
	case s.lastFix != nil && geo.GreatCircleDistance(*s.lastFix, u.Coordinate) >= minHeadingMoveMeters:
		s.heading = geo.Bearing(*s.lastFix, u.Coordinate)
		s.hasHeading = true
	}

	fix := u.Coordinate
	s.lastFix = &fix

	if s.hasHeading {
		s.camera.SetPose(u.Coordinate, s.heading)
	}
}

func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.OnViewportResize(width, height)
}

func (s *Session) RoutePoints() []route.RoutePoint {
	return s.routePoints
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		ID:            s.id,
		Phase:         s.tracker.Phase(),
		ManeuverIndex: s.tracker.State().CurrentManeuverIndex,
		Maneuvers:     s.tracker.Maneuvers(),
		RoutePoints:   len(s.routePoints),
		Duration:      s.route.Duration,
		Viewport:      s.projector.Viewport(),
		Geometry:      geo.EncodePolyline(route.Coordinates(s.routePoints), geo.PolylinePrecision6),
		Updates:       s.updates,
	}
}
