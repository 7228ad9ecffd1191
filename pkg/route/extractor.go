package route

import (
	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
)

// ExtractRoutePoints flattens the route into the point sequence consumed by the AR renderer: for every step
// its maneuver location (tagged with the maneuver type) followed by the decoded step geometry.
func ExtractRoutePoints(r *Route) []RoutePoint {
	util.AssertPanic(r != nil, "route must not be nil")

	routePoints := make([]RoutePoint, 0)
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			routePoints = append(routePoints, RoutePoint{
				Coordinate:   step.Maneuver.Location,
				ManeuverType: ManeuverTypeFromString(step.Maneuver.Type),
			})

			if step.Geometry == "" {
				continue
			}
			for _, c := range geo.DecodePolyline(step.Geometry, geo.PolylinePrecision6) {
				routePoints = append(routePoints, RoutePoint{Coordinate: c})
			}
		}
	}
	return routePoints
}

// ExtractManeuvers returns the step maneuvers in traversal order.
func ExtractManeuvers(r *Route) []Maneuver {
	util.AssertPanic(r != nil, "route must not be nil")

	maneuvers := make([]Maneuver, 0)
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			maneuvers = append(maneuvers, NewManeuver(step.Maneuver.Location, step.Maneuver.Modifier))
		}
	}
	return maneuvers
}

// Coordinates returns only the coordinates of the route points, in order.
func Coordinates(points []RoutePoint) []geo.Coordinate {
	coords := make([]geo.Coordinate, len(points))
	for i, p := range points {
		coords[i] = p.Coordinate
	}
	return coords
}
