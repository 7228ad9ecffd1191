package projection

import (
	"math"
	"sync"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
)

const (
	minDepthMeters  = 0.1
	metersPerDegLat = math.Pi / 180 * 6371000.0
)

// PinholeCamera is a Projection for a forward looking camera mounted on the vehicle. It stands in for the
// vision SDK when replaying recorded traces: the pose comes from the location stream and the world frame is
// a local tangent plane around the vehicle.
type PinholeCamera struct {
	mu sync.RWMutex

	focalLengthPx float64
	heightM       float64
	frame         ImageSize

	position geo.Coordinate
	heading  float64 // degrees clockwise from north
	hasPose  bool
}

func NewPinholeCamera(focalLengthPx, heightM float64, frame ImageSize) *PinholeCamera {
	util.AssertPanic(focalLengthPx > 0, "focal length must be positive")
	return &PinholeCamera{
		focalLengthPx: focalLengthPx,
		heightM:       heightM,
		frame:         frame,
	}
}

func (c *PinholeCamera) SetPose(position geo.Coordinate, heading float64) {
	c.mu.Lock()
	c.position = position
	c.heading = heading
	c.hasPose = true
	c.mu.Unlock()
}

// Pose returns the last pose, ok is false until SetPose was called.
func (c *PinholeCamera) Pose() (geo.Coordinate, float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position, c.heading, c.hasPose
}

func (c *PinholeCamera) ResetPose() {
	c.mu.Lock()
	c.hasPose = false
	c.mu.Unlock()
}

func (c *PinholeCamera) GeoToWorld(target geo.Coordinate) (WorldPoint, bool) {
	position, heading, ok := c.Pose()
	if !ok {
		return WorldPoint{}, false
	}

	north := (target.Lat - position.Lat) * metersPerDegLat
	east := (target.Lon - position.Lon) * metersPerDegLat * math.Cos(util.DegreeToRadians(position.Lat))

	h := util.DegreeToRadians(heading)
	return WorldPoint{
		X: north*math.Cos(h) + east*math.Sin(h),
		Y: north*math.Sin(h) - east*math.Cos(h),
		Z: 0,
	}, true
}

func (c *PinholeCamera) WorldToPixel(p WorldPoint) (PixelPoint, bool) {
	if _, _, ok := c.Pose(); !ok {
		return PixelPoint{}, false
	}
	if p.X < minDepthMeters {
		return PixelPoint{}, false
	}

	cx := float64(c.frame.Width) / 2
	cy := float64(c.frame.Height) / 2
	return PixelPoint{
		X: cx - c.focalLengthPx*p.Y/p.X,
		Y: cy - c.focalLengthPx*(p.Z-c.heightM)/p.X,
	}, true
}
