package spatialindex

import (
	"testing"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDistanceToRoute(t *testing.T) {
	start := geo.NewCoordinate(-7.797068, 110.370529)
	corner := geo.Offset(start, 0, 300)
	end := geo.Offset(corner, 90, 300)

	rt := NewRtree()
	rt.Build([]geo.Coordinate{start, corner, end}, 0.05, zap.NewNop())
	require.Equal(t, 2, rt.Len())

	testCases := []struct {
		name      string
		query     geo.Coordinate
		wantFound bool
		wantDist  float64
		wantIndex int
	}{
		{
			name:      "on the first segment",
			query:     geo.Offset(start, 0, 100),
			wantFound: true,
			wantDist:  0,
			wantIndex: 0,
		},
		{
			name:      "20m right of the first segment",
			query:     geo.Offset(geo.Offset(start, 0, 150), 90, 20),
			wantFound: true,
			wantDist:  20,
			wantIndex: 0,
		},
		{
			name:      "30m south of the second segment",
			query:     geo.Offset(geo.Offset(corner, 90, 200), 180, 30),
			wantFound: true,
			wantDist:  30,
			wantIndex: 1,
		},
		{
			name:      "far away",
			query:     geo.Offset(start, 180, 2000),
			wantFound: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			dist, seg, found := rt.DistanceToRoute(tt.query, 0.2)
			require.Equal(t, tt.wantFound, found)
			if !found {
				return
			}
			assert.InDelta(t, tt.wantDist, dist, 0.5)
			assert.Equal(t, tt.wantIndex, seg.GetIndex())
		})
	}
}

func TestBuildSinglePoint(t *testing.T) {
	p := geo.NewCoordinate(53.9447667, 27.6897746)
	rt := NewRtree()
	rt.Build([]geo.Coordinate{p}, 0.05, zap.NewNop())
	require.Equal(t, 1, rt.Len())

	dist, _, found := rt.DistanceToRoute(geo.Offset(p, 0, 40), 0.1)
	require.True(t, found)
	assert.InDelta(t, 40, dist, 1e-3)
}
