package spatialindex

import (
	"math"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type Rtree struct {
	tr *rtree.RTreeG[RouteSegment]
}

// RouteSegment is the piece of route between two consecutive route points.
type RouteSegment struct {
	from  geo.Coordinate
	to    geo.Coordinate
	index int
}

func (rs RouteSegment) GetIndex() int {
	return rs.index
}

func newRouteSegment(from, to geo.Coordinate, index int) RouteSegment {
	return RouteSegment{
		from:  from,
		to:    to,
		index: index,
	}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[RouteSegment]
	return &Rtree{
		tr: &tr,
	}
}

// Build. build r-tree over the route polyline, with each leaf having bounding box with radius
// boundingBoxRadius (in km) around the segment endpoints
func (rt *Rtree) Build(points []geo.Coordinate, boundingBoxRadius float64, log *zap.Logger) {
	if len(points) == 1 {
		rt.insert(newRouteSegment(points[0], points[0], 0), boundingBoxRadius)
	}
	for i := 1; i < len(points); i++ {
		rt.insert(newRouteSegment(points[i-1], points[i], i-1), boundingBoxRadius)
	}

	log.Info("R-tree spatial index built.", zap.Int("segments", rt.tr.Len()))
}

func (rt *Rtree) insert(seg RouteSegment, boundingBoxRadius float64) {
	lowerFromLat, lowerFromLon := geo.GetDestinationPoint(seg.from.Lat, seg.from.Lon, 225, boundingBoxRadius)
	upperFromLat, upperFromLon := geo.GetDestinationPoint(seg.from.Lat, seg.from.Lon, 45, boundingBoxRadius)

	lowerToLat, lowerToLon := geo.GetDestinationPoint(seg.to.Lat, seg.to.Lon, 225, boundingBoxRadius)
	upperToLat, upperToLon := geo.GetDestinationPoint(seg.to.Lat, seg.to.Lon, 45, boundingBoxRadius)

	minLat := math.Min(lowerFromLat, lowerToLat)
	minLon := math.Min(lowerFromLon, lowerToLon)
	maxLat := math.Max(upperFromLat, upperToLat)
	maxLon := math.Max(upperFromLon, upperToLon)

	rt.tr.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, seg)
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius search for all route segments whose bounding box intersects the box of radius (in km)
// around the query point (qLat, qLon)
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []RouteSegment {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]RouteSegment, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data RouteSegment) bool {
			results = append(results, data)
			return true
		})
	return results
}

// DistanceToRoute returns the distance in meters from c to the closest route segment within radius (km).
// ok is false when no segment is that close.
func (rt *Rtree) DistanceToRoute(c geo.Coordinate, radius float64) (float64, RouteSegment, bool) {
	var (
		best    = math.Inf(1)
		nearest RouteSegment
		found   bool
	)
	for _, seg := range rt.SearchWithinRadius(c.Lat, c.Lon, radius) {
		dist := geo.PointLinePerpendicularDistance(seg.from, seg.to, c)
		if dist < best {
			best = dist
			nearest = seg
			found = true
		}
	}
	return best, nearest, found
}
