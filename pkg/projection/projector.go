package projection

import (
	"math"

	"github.com/lintang-b-s/navigatorx-ar/pkg"
	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
)

// Projector turns a maneuver location into the screen rectangle of an upright sign standing on it. It keeps
// the last rectangle between calls, see PartialPolicy.
type Projector struct {
	projection Projection
	policy     PartialPolicy

	frame      ImageSize
	viewport   ImageSize
	scale      float64
	scaledSize ImageSize

	rect ScreenRect
}

func NewProjector(projection Projection, frame ImageSize, policy PartialPolicy) *Projector {
	p := &Projector{
		projection: projection,
		policy:     policy,
		frame:      frame,
	}
	p.Resize(frame.Width, frame.Height)
	return p
}

// NewDefaultProjector uses the 1280x720 reference frame and keeps stale edges on partial projection.
func NewDefaultProjector(projection Projection) *Projector {
	return NewProjector(projection, ImageSize{Width: pkg.REFERENCE_FRAME_WIDTH, Height: pkg.REFERENCE_FRAME_HEIGHT},
		RetainStaleEdges)
}

// Resize recomputes the frame-to-viewport scale. The scaled frame covers the viewport and is centered on it.
func (p *Projector) Resize(width, height int) {
	p.viewport = ImageSize{Width: width, Height: height}
	p.scale = math.Max(
		float64(width)/float64(p.frame.Width),
		float64(height)/float64(p.frame.Height),
	)
	p.scaledSize = ImageSize{
		Width:  int(float64(p.frame.Width) * p.scale),
		Height: int(float64(p.frame.Height) * p.scale),
	}
}

func (p *Projector) Scale() float64 {
	return p.scale
}

func (p *Projector) ScaledSize() ImageSize {
	return p.scaledSize
}

func (p *Projector) Viewport() ImageSize {
	return p.viewport
}

func (p *Projector) Rect() ScreenRect {
	return p.rect
}

func (p *Projector) scaleX(x float64) int {
	return int(x*p.scale - float64((p.scaledSize.Width-p.viewport.Width)/2))
}

func (p *Projector) scaleY(y float64) int {
	return int(y*p.scale - float64((p.scaledSize.Height-p.viewport.Height)/2))
}

// SignCorners returns the world top-left and bottom-right corners of the sign standing on world.
func SignCorners(world WorldPoint) (WorldPoint, WorldPoint) {
	leftTop := WorldPoint{
		X: world.X,
		Y: world.Y + pkg.SIGN_SIZE_METERS/2,
		Z: world.Z + pkg.SIGN_ABOVE_GROUND_METERS + pkg.SIGN_SIZE_METERS,
	}
	rightBottom := WorldPoint{
		X: world.X,
		Y: world.Y - pkg.SIGN_SIZE_METERS/2,
		Z: world.Z + pkg.SIGN_ABOVE_GROUND_METERS,
	}
	return leftTop, rightBottom
}

// Project computes the viewport rectangle of the sign for target.
func (p *Projector) Project(target geo.Coordinate) (ScreenRect, Outcome) {
	world, ok := p.projection.GeoToWorld(target)
	if !ok {
		return p.rect, OutcomeUnavailable
	}

	leftTop, rightBottom := SignCorners(world)
	if leftTop.X < 0 && rightBottom.X < 0 {
		return p.rect, OutcomeBehind
	}

	leftTopPx, leftTopOk := p.projection.WorldToPixel(leftTop)
	rightBottomPx, rightBottomOk := p.projection.WorldToPixel(rightBottom)

	switch {
	case !leftTopOk && !rightBottomOk:
		return p.rect, OutcomeUnavailable
	case (!leftTopOk || !rightBottomOk) && p.policy == SuppressPartial:
		return p.rect, OutcomeUnavailable
	}

	if leftTopOk {
		p.rect.Left = p.scaleX(leftTopPx.X)
		p.rect.Top = p.scaleY(leftTopPx.Y)
	}
	if rightBottomOk {
		p.rect.Right = p.scaleX(rightBottomPx.X)
		p.rect.Bottom = p.scaleY(rightBottomPx.Y)
	}
	return p.rect, OutcomeVisible
}
