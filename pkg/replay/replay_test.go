package replay

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/overlay"
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

func testRoute() *route.Route {
	return &route.Route{
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

func testConfig() overlay.SessionConfig {
	return overlay.SessionConfig{
		Frame:              projection.ImageSize{Width: 1280, Height: 720},
		FocalLengthPx:      1000,
		CameraHeightM:      1.3,
		OffRouteThresholdM: 50,
	}
}

// drive north to the turn, turn right and drive past the finish
func drive() []Fix {
	fixes := make([]Fix, 0)
	for m := 0.0; m <= 180; m += 10 {
		north := 0.0
		fixes = append(fixes, Fix{Coordinate: geo.Offset(start, 0, m), Bearing: &north})
	}
	for m := 10.0; m <= 310; m += 10 {
		east := 90.0
		fixes = append(fixes, Fix{Coordinate: geo.Offset(turn, 90, m), Bearing: &east})
	}
	return fixes
}

func TestReplayDrive(t *testing.T) {
	rp := NewReplayer(zap.NewNop(), testConfig())

	var frames []overlay.Frame
	summary, err := rp.Replay(context.Background(), Job{Name: "drive", Route: testRoute(), Fixes: drive()},
		func(f overlay.Frame) error {
			frames = append(frames, f)
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, len(drive()), summary.Fixes)
	assert.Len(t, frames, summary.Fixes)
	assert.Equal(t, 3, summary.Advances)
	assert.Equal(t, 3, summary.ManeuverIndex)
	assert.Equal(t, tracker.PhaseCompleted, summary.Phase)
	assert.Zero(t, summary.OffRoute)
	assert.Greater(t, summary.Rendered, 0)

	var lastAlpha uint8
	for _, f := range frames {
		if f.Render == nil || f.Render.ManeuverIndex != 1 {
			continue
		}
		assert.Equal(t, route.SignRight, f.Render.Image)
		assert.GreaterOrEqual(t, f.Render.Alpha, lastAlpha)
		lastAlpha = f.Render.Alpha
	}
	assert.Equal(t, uint8(255), lastAlpha)
}

func TestReplayStopsOnEmitError(t *testing.T) {
	rp := NewReplayer(zap.NewNop(), testConfig())
	stop := errors.New("stop")

	calls := 0
	summary, err := rp.Replay(context.Background(), Job{Name: "drive", Route: testRoute(), Fixes: drive()},
		func(overlay.Frame) error {
			calls++
			if calls == 3 {
				return stop
			}
			return nil
		})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, summary.Fixes)
}

func TestReplayCanceled(t *testing.T) {
	rp := NewReplayer(zap.NewNop(), testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := rp.Replay(ctx, Job{Name: "drive", Route: testRoute(), Fixes: drive()}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Fixes)
}

func TestReplayAll(t *testing.T) {
	rp := NewReplayer(zap.NewNop(), testConfig())

	full := drive()
	jobs := []Job{
		{Name: "full", Route: testRoute(), Fixes: full},
		{Name: "half", Route: testRoute(), Fixes: full[:10]},
		{Name: "empty", Route: testRoute()},
	}

	results := rp.ReplayAll(context.Background(), jobs, 2, true)
	require.Len(t, results, 3)

	assert.Equal(t, "full", results[0].Name)
	assert.Equal(t, tracker.PhaseCompleted, results[0].Summary.Phase)
	assert.Len(t, results[0].Frames, len(full))

	assert.Equal(t, "half", results[1].Name)
	assert.Equal(t, 10, results[1].Summary.Fixes)
	assert.Equal(t, tracker.PhaseTracking, results[1].Summary.Phase)

	assert.Equal(t, "empty", results[2].Name)
	assert.Zero(t, results[2].Summary.Fixes)
	assert.Empty(t, results[2].Frames)

	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestReadTrace(t *testing.T) {
	input := `# recorded 2024-05-01
lat,lon,bearing
-7.7956,110.3695,0
 -7.7950, 110.3695
-7.7940,110.3695,
`
	fixes, err := ReadTrace(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, fixes, 3)

	assert.Equal(t, geo.NewCoordinate(-7.7956, 110.3695), fixes[0].Coordinate)
	require.NotNil(t, fixes[0].Bearing)
	assert.Equal(t, 0.0, *fixes[0].Bearing)
	assert.Nil(t, fixes[1].Bearing)
	assert.Equal(t, -7.7950, fixes[1].Coordinate.Lat)
	assert.Nil(t, fixes[2].Bearing)
}

func TestReadTraceErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "single field", input: "-7.79\n"},
		{name: "too many fields", input: "-7.79,110.36,0,1\n"},
		{name: "not a number", input: "-7.79,east\n"},
		{name: "bad bearing", input: "-7.79,110.36,north\n"},
		{name: "latitude out of range", input: "-97.79,110.36\n"},
		{name: "header after data", input: "-7.79,110.36\nlat,lon\n"},
		{name: "broken quote", input: "\"-7.79,110.36\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTrace(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))
		})
	}
}

func TestWriteTraceReadBack(t *testing.T) {
	fixes := drive()[:5]
	fixes[2].Bearing = nil

	var buf bytes.Buffer
	require.NoError(t, WriteTrace(&buf, fixes))

	got, err := ReadTrace(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(fixes))
	for i := range fixes {
		assert.InDelta(t, fixes[i].Coordinate.Lat, got[i].Coordinate.Lat, 1e-12)
		assert.InDelta(t, fixes[i].Coordinate.Lon, got[i].Coordinate.Lon, 1e-12)
		assert.Equal(t, fixes[i].Bearing == nil, got[i].Bearing == nil)
	}
}
