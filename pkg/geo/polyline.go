package geo

import (
	"math"

	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
	"github.com/twpayne/go-polyline"
)

// PolylinePrecision6 is the precision of step geometries returned by the directions API (polyline6).
const PolylinePrecision6 = 6

func polylineCodec(precision int) polyline.Codec {
	util.AssertPanic(precision >= 0, "polyline precision must not be negative")
	return polyline.Codec{Dim: 2, Scale: math.Pow10(precision)}
}

// DecodePolyline decodes an encoded polyline into lat/lon coordinates. Malformed or truncated input
// yields an empty slice.
func DecodePolyline(encoded string, precision int) []Coordinate {
	codec := polylineCodec(precision)
	if encoded == "" {
		return []Coordinate{}
	}

	coords, rest, err := codec.DecodeCoords([]byte(encoded))
	if err != nil || len(rest) != 0 {
		return []Coordinate{}
	}

	points := make([]Coordinate, 0, len(coords))
	for _, c := range coords {
		points = append(points, NewCoordinate(c[0], c[1]))
	}
	return points
}

func EncodePolyline(coords []Coordinate, precision int) string {
	codec := polylineCodec(precision)

	flat := make([][]float64, len(coords))
	for i, c := range coords {
		flat[i] = []float64{c.Lat, c.Lon}
	}
	return string(codec.EncodeCoords(nil, flat))
}
