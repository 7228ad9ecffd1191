package controllers

import (
	"encoding/json"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/overlay"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
)

type viewportRequest struct {
	Width  int `json:"width" validate:"required,min=1,max=16384"`
	Height int `json:"height" validate:"required,min=1,max=16384"`
}

func (v viewportRequest) toImageSize() projection.ImageSize {
	return projection.ImageSize{Width: v.Width, Height: v.Height}
}

type createSessionRequest struct {
	// Directions is a directions API response body, routes[0] is installed.
	Directions json.RawMessage  `json:"directions" validate:"required"`
	Viewport   *viewportRequest `json:"viewport" validate:"omitempty"`
}

type locationRequest struct {
	Lat     *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon     *float64 `json:"lon" validate:"required,min=-180,max=180"`
	Bearing *float64 `json:"bearing" validate:"omitempty,min=0,lt=360"`
}

func (l locationRequest) toLocationUpdate() overlay.LocationUpdate {
	return overlay.LocationUpdate{
		Coordinate: geo.NewCoordinate(*l.Lat, *l.Lon),
		Bearing:    l.Bearing,
	}
}

type deleteSessionResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
