package controllers

import (
	"github.com/lintang-b-s/navigatorx-ar/pkg/overlay"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
)

type OverlayService interface {
	CreateSession(r *route.Route, viewport projection.ImageSize) (*overlay.Session, error)
	Status(id string) (overlay.Status, error)
	UpdateLocation(id string, u overlay.LocationUpdate) (overlay.Frame, error)
	Resize(id string, width, height int) error
	Delete(id string) error
}
