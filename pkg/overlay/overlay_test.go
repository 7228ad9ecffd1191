package overlay

import (
	"errors"
	"sync"
	"testing"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
	"github.com/lintang-b-s/navigatorx-ar/pkg/tracker"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	start  = geo.NewCoordinate(-7.7956, 110.3695)
	turn   = geo.Offset(start, 0, 200)
	finish = geo.Offset(turn, 90, 300)
)

// depart north, turn right after 200 m, arrive 300 m east of the turn
func testRoute() *route.Route {
	return &route.Route{
		Duration: 42,
		Legs: []route.Leg{{Steps: []route.Step{
			{
				Maneuver: route.StepManeuver{Location: start, Type: "depart"},
				Geometry: geo.EncodePolyline([]geo.Coordinate{start, turn}, geo.PolylinePrecision6),
			},
			{
				Maneuver: route.StepManeuver{Location: turn, Type: "turn", Modifier: "right"},
				Geometry: geo.EncodePolyline([]geo.Coordinate{turn, finish}, geo.PolylinePrecision6),
			},
			{
				Maneuver: route.StepManeuver{Location: finish, Type: "arrive"},
			},
		}}},
	}
}

func testConfig() SessionConfig {
	return SessionConfig{
		Frame:              projection.ImageSize{Width: 1280, Height: 720},
		FocalLengthPx:      1000,
		CameraHeightM:      1.3,
		OffRouteThresholdM: 50,
		PartialPolicy:      projection.RetainStaleEdges,
	}
}

func north(meters float64) geo.Coordinate {
	return geo.Offset(start, 0, meters)
}

func bearing(deg float64) *float64 {
	return &deg
}

func TestSessionRendersUpcomingTurn(t *testing.T) {
	svc := NewOverlayService(zap.NewNop(), testConfig())
	session, err := svc.CreateSession(testRoute(), projection.ImageSize{})
	require.NoError(t, err)

	frame := session.Update(LocationUpdate{Coordinate: start, Bearing: bearing(0)})
	assert.Nil(t, frame.Render)
	assert.Equal(t, tracker.PhaseTracking, frame.Phase)
	assert.False(t, frame.OffRoute)

	// the depart maneuver is now behind the camera
	frame = session.Update(LocationUpdate{Coordinate: north(20), Bearing: bearing(0)})
	assert.Equal(t, tracker.AdvanceBehindCamera, frame.Advance)
	assert.Equal(t, 1, frame.ManeuverIndex)
	assert.Nil(t, frame.Render)

	frame = session.Update(LocationUpdate{Coordinate: north(50), Bearing: bearing(0)})
	require.NotNil(t, frame.Render)
	assert.Equal(t, route.SignRight, frame.Render.Image)
	assert.Equal(t, uint8(255), frame.Render.Alpha)
	assert.Equal(t, 1, frame.Render.ManeuverIndex)
	assert.InDelta(t, 150, frame.DistanceToManeuver, 0.5)

	rect := frame.Render.Rect
	assert.Less(t, rect.Left, rect.Right)
	assert.Less(t, rect.Top, rect.Bottom)
	assert.Less(t, rect.Left, 640)
	assert.Greater(t, rect.Right, 640)
	assert.GreaterOrEqual(t, rect.Top, 0)
	assert.LessOrEqual(t, rect.Bottom, 720)

	assert.False(t, frame.OffRoute)
	require.NotNil(t, frame.DistanceToRoute)
	assert.InDelta(t, 0, *frame.DistanceToRoute, 0.5)
}

func TestSessionDerivesHeadingFromFixes(t *testing.T) {
	session := NewSession("1", testRoute(), projection.ImageSize{Width: 1280, Height: 720}, testConfig(), zap.NewNop())

	session.Update(LocationUpdate{Coordinate: north(0)})
	_, _, hasPose := session.camera.Pose()
	assert.False(t, hasPose)

	session.Update(LocationUpdate{Coordinate: north(20)})
	_, heading, hasPose := session.camera.Pose()
	require.True(t, hasPose)
	assert.InDelta(t, 0, heading, 0.1)

	frame := session.Update(LocationUpdate{Coordinate: north(50)})
	require.NotNil(t, frame.Render)
	assert.Equal(t, route.SignRight, frame.Render.Image)
}

func TestSessionKeepsHeadingWhenStationary(t *testing.T) {
	session := NewSession("1", testRoute(), projection.ImageSize{Width: 1280, Height: 720}, testConfig(), zap.NewNop())

	session.Update(LocationUpdate{Coordinate: north(10), Bearing: bearing(30)})
	session.Update(LocationUpdate{Coordinate: north(10)})

	_, heading, hasPose := session.camera.Pose()
	require.True(t, hasPose)
	assert.Equal(t, 30.0, heading)
}

func TestSessionOffRoute(t *testing.T) {
	testCases := []struct {
		name         string
		location     geo.Coordinate
		wantOffRoute bool
		wantDistance bool
	}{
		{
			name:         "on the route",
			location:     north(100),
			wantOffRoute: false,
			wantDistance: true,
		},
		{
			name:         "beside the route within the threshold",
			location:     geo.Offset(north(100), 270, 30),
			wantOffRoute: false,
			wantDistance: true,
		},
		{
			name:         "beside the route past the threshold",
			location:     geo.Offset(north(100), 270, 80),
			wantOffRoute: true,
			wantDistance: true,
		},
		{
			name:         "far from the route",
			location:     geo.Offset(north(100), 270, 2000),
			wantOffRoute: true,
			wantDistance: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			session := NewSession("1", testRoute(), projection.ImageSize{Width: 1280, Height: 720}, testConfig(),
				zap.NewNop())

			frame := session.Update(LocationUpdate{Coordinate: tc.location, Bearing: bearing(0)})
			assert.Equal(t, tc.wantOffRoute, frame.OffRoute)
			assert.Equal(t, tc.wantDistance, frame.DistanceToRoute != nil)
		})
	}
}

func TestSessionResize(t *testing.T) {
	session := NewSession("1", testRoute(), projection.ImageSize{Width: 1280, Height: 720}, testConfig(), zap.NewNop())

	session.Resize(1080, 1920)

	status := session.Status()
	assert.Equal(t, projection.ImageSize{Width: 1080, Height: 1920}, status.Viewport)
}

func TestSessionStatus(t *testing.T) {
	session := NewSession("7", testRoute(), projection.ImageSize{Width: 1280, Height: 720}, testConfig(), zap.NewNop())
	session.Update(LocationUpdate{Coordinate: start, Bearing: bearing(0)})

	status := session.Status()
	assert.Equal(t, "7", status.ID)
	assert.Equal(t, tracker.PhaseTracking, status.Phase)
	assert.Len(t, status.Maneuvers, 3)
	assert.Equal(t, len(session.RoutePoints()), status.RoutePoints)
	assert.Equal(t, 42.0, status.Duration)
	assert.Equal(t, 1, status.Updates)

	decoded := geo.DecodePolyline(status.Geometry, geo.PolylinePrecision6)
	require.Len(t, decoded, status.RoutePoints)
	assert.InDelta(t, start.Lat, decoded[0].Lat, 1e-6)
	assert.InDelta(t, finish.Lon, decoded[len(decoded)-1].Lon, 1e-6)
}

func TestOverlayServiceLifecycle(t *testing.T) {
	svc := NewOverlayService(zap.NewNop(), testConfig())

	first, err := svc.CreateSession(testRoute(), projection.ImageSize{})
	require.NoError(t, err)
	second, err := svc.CreateSession(testRoute(), projection.ImageSize{Width: 720, Height: 1280})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())

	status, err := svc.Status(first.ID())
	require.NoError(t, err)
	assert.Equal(t, projection.ImageSize{Width: 1280, Height: 720}, status.Viewport)

	_, err = svc.UpdateLocation(second.ID(), LocationUpdate{Coordinate: start})
	require.NoError(t, err)
	require.NoError(t, svc.Resize(second.ID(), 100, 100))

	require.NoError(t, svc.Delete(first.ID()))

	testCases := []struct {
		name string
		call func() error
	}{
		{name: "get", call: func() error { _, err := svc.Get(first.ID()); return err }},
		{name: "delete", call: func() error { return svc.Delete(first.ID()) }},
		{name: "resize", call: func() error { return svc.Resize(first.ID(), 1, 1) }},
		{name: "status", call: func() error { _, err := svc.Status(first.ID()); return err }},
		{name: "update", call: func() error {
			_, err := svc.UpdateLocation(first.ID(), LocationUpdate{Coordinate: start})
			return err
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			assert.True(t, errors.Is(util.ErrorCode(err), util.ErrNotFound))
		})
	}
}

func TestCreateSessionWithoutRoute(t *testing.T) {
	svc := NewOverlayService(zap.NewNop(), testConfig())

	_, err := svc.CreateSession(nil, projection.ImageSize{})
	require.Error(t, err)
	assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))
}

func TestSessionConcurrentUpdates(t *testing.T) {
	session := NewSession("1", testRoute(), projection.ImageSize{Width: 1280, Height: 720}, testConfig(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				session.Update(LocationUpdate{Coordinate: north(float64(i + j)), Bearing: bearing(0)})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 160, session.Status().Updates)
}

func TestNewSessionConfig(t *testing.T) {
	cfg := NewSessionConfig(util.OverlayConfig{
		FrameWidth:                1920,
		FrameHeight:               1080,
		CameraFocalLengthPx:       1400,
		CameraHeightM:             1.5,
		OffRouteThresholdM:        30,
		SuppressPartialProjection: true,
	})

	assert.Equal(t, projection.ImageSize{Width: 1920, Height: 1080}, cfg.Frame)
	assert.Equal(t, projection.SuppressPartial, cfg.PartialPolicy)
	assert.Equal(t, 30.0, cfg.OffRouteThresholdM)
}
