package route

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
)

var ErrNoRoute = errors.New("can not calculate route")

type directionsResponse struct {
	Code   string            `json:"code"`
	Routes []directionsRoute `json:"routes" validate:"dive"`
}

type directionsRoute struct {
	Duration float64         `json:"duration" validate:"gte=0"`
	Legs     []directionsLeg `json:"legs" validate:"dive"`
}

type directionsLeg struct {
	Steps []directionsStep `json:"steps" validate:"dive"`
}

type directionsStep struct {
	Geometry string             `json:"geometry"`
	Maneuver directionsManeuver `json:"maneuver"`
}

type directionsManeuver struct {
	// [lon, lat]
	Location      []float64 `json:"location" validate:"len=2"`
	Type          string    `json:"type"`
	Modifier      string    `json:"modifier"`
	BearingBefore *float64  `json:"bearing_before" validate:"omitempty,gte=0,lte=360"`
	BearingAfter  *float64  `json:"bearing_after" validate:"omitempty,gte=0,lte=360"`
}

// modifier falls back to the turn implied by the approach and exit bearings when the response has none.
func (dm directionsManeuver) modifier() string {
	if dm.Modifier != "" || dm.BearingBefore == nil || dm.BearingAfter == nil {
		return dm.Modifier
	}
	switch ManeuverTypeFromString(dm.Type) {
	case ManeuverTypeDepart, ManeuverTypeArrive:
		return dm.Modifier
	}
	return guidance.ModifierFromBearings(*dm.BearingBefore, *dm.BearingAfter)
}

// ParseDirections decodes a directions API response and returns its first route. Step geometries must be
// encoded as polyline6.
func ParseDirections(r io.Reader) (*Route, error) {
	var resp directionsResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "decode directions response")
	}

	if len(resp.Routes) == 0 {
		return nil, util.WrapErrorf(ErrNoRoute, util.ErrBadParamInput, "directions response has no routes")
	}

	validate := validator.New()
	if err := validate.Struct(resp); err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid directions response")
	}

	return resp.Routes[0].toRoute(), nil
}

func (dr directionsRoute) toRoute() *Route {
	r := &Route{
		Legs:     make([]Leg, len(dr.Legs)),
		Duration: dr.Duration,
	}
	for i, leg := range dr.Legs {
		steps := make([]Step, len(leg.Steps))
		for j, s := range leg.Steps {
			steps[j] = Step{
				Maneuver: StepManeuver{
					Location: geo.NewCoordinate(s.Maneuver.Location[1], s.Maneuver.Location[0]),
					Type:     s.Maneuver.Type,
					Modifier: s.Maneuver.modifier(),
				},
				Geometry: s.Geometry,
			}
		}
		r.Legs[i] = Leg{Steps: steps}
	}
	return r
}
