package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolylineRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		coords []Coordinate
	}{
		{
			name: "minsk street",
			coords: []Coordinate{
				NewCoordinate(53.944766, 27.689774),
				NewCoordinate(53.945012, 27.690101),
				NewCoordinate(53.946480, 27.688523),
			},
		},
		{
			name: "negative coordinates",
			coords: []Coordinate{
				NewCoordinate(-25.363882, 131.044922),
				NewCoordinate(-25.364001, 131.045123),
			},
		},
		{
			name:   "single point",
			coords: []Coordinate{NewCoordinate(-7.797068, 110.370529)},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodePolyline(tt.coords, PolylinePrecision6)
			decoded := DecodePolyline(encoded, PolylinePrecision6)

			require.Len(t, decoded, len(tt.coords))
			for i, c := range tt.coords {
				assert.InDelta(t, c.Lat, decoded[i].Lat, 1e-6)
				assert.InDelta(t, c.Lon, decoded[i].Lon, 1e-6)
			}
		})
	}
}

func TestDecodePolylineMalformed(t *testing.T) {
	valid := EncodePolyline([]Coordinate{
		NewCoordinate(53.944766, 27.689774),
		NewCoordinate(53.945012, 27.690101),
	}, PolylinePrecision6)

	testCases := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "truncated", encoded: valid[:len(valid)-1]},
		{name: "byte below alphabet", encoded: "\x01\x02\x03"},
		{name: "dangling continuation byte", encoded: valid + "_"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				got := DecodePolyline(tt.encoded, PolylinePrecision6)
				assert.Empty(t, got)
			})
		})
	}
}

func TestDecodePolylineNegativePrecisionPanics(t *testing.T) {
	assert.Panics(t, func() {
		DecodePolyline("_p~iF~ps|U", -1)
	})
}

func TestDecodePolylinePrecision5(t *testing.T) {
	// reference string from the encoded polyline algorithm format documentation
	got := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@", 5)
	require.Len(t, got, 3)
	assert.InDelta(t, 38.5, got[0].Lat, 1e-5)
	assert.InDelta(t, -120.2, got[0].Lon, 1e-5)
	assert.InDelta(t, 43.252, got[2].Lat, 1e-5)
	assert.InDelta(t, -126.453, got[2].Lon, 1e-5)
}

func TestGreatCircleDistance(t *testing.T) {
	origin := NewCoordinate(53.9447667, 27.6897746)

	testCases := []struct {
		name    string
		bearing float64
		dist    float64
	}{
		{name: "north 50m", bearing: 0, dist: 50},
		{name: "east 250m", bearing: 90, dist: 250},
		{name: "south-west 1km", bearing: 225, dist: 1000},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			dst := Offset(origin, tt.bearing, tt.dist)
			assert.InDelta(t, tt.dist, GreatCircleDistance(origin, dst), 1e-6)
		})
	}
}

func TestBearing(t *testing.T) {
	origin := NewCoordinate(-7.797068, 110.370529)
	for _, b := range []float64{0, 45, 90, 180, 270} {
		dst := Offset(origin, b, 100)
		got := Bearing(origin, dst)
		if b == 0 && got > 359 {
			got -= 360
		}
		assert.InDelta(t, b, got, 1e-6)
	}
}

func TestPointLinePerpendicularDistance(t *testing.T) {
	a := NewCoordinate(53.9447667, 27.6897746)
	b := Offset(a, 0, 200)
	mid := Offset(a, 0, 100)
	p := Offset(mid, 90, 30)

	assert.InDelta(t, 30, PointLinePerpendicularDistance(a, b, p), 0.05)
	assert.InDelta(t, GreatCircleDistance(a, p), PointLinePerpendicularDistance(a, a, p), 1e-6)
}
