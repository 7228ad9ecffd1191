package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gobwas/ws"
	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/navigatorx-ar/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
	"go.uber.org/zap"
)

type overlayAPI struct {
	overlayService OverlayService
	hub            *Hub
	validate       *requestValidator
	log            *zap.Logger
}

func New(overlayService OverlayService, hub *Hub, log *zap.Logger) *overlayAPI {
	return &overlayAPI{
		overlayService: overlayService,
		hub:            hub,
		validate:       newRequestValidator(),
		log:            log,
	}
}

func (api *overlayAPI) Routes(group *helper.RouteGroup) {
	group.POST("/sessions", api.createSession)
	group.GET("/sessions/:id", api.getSession)
	group.DELETE("/sessions/:id", api.deleteSession)
	group.POST("/sessions/:id/locations", api.postLocation)
	group.PUT("/sessions/:id/viewport", api.putViewport)
	group.GET("/sessions/:id/stream", api.stream)
}

// createSession godoc
//
//	@Summary		install a route and start tracking its maneuvers
//	@Description	the body carries a directions API response, its first route is extracted into maneuvers and route points
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Router			/sessions [post]
//	@Success		201	{object}	overlay.Status
//	@Failure		400	{object}	errorResponse
//	@Failure		500	{object}	errorResponse
func (api *overlayAPI) createSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request createSessionRequest
	if err := readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	rt, err := route.ParseDirections(bytes.NewReader(request.Directions))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	var viewport projection.ImageSize
	if request.Viewport != nil {
		viewport = request.Viewport.toImageSize()
	}

	session, err := api.overlayService.CreateSession(rt, viewport)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/sessions/%s", session.ID()))

	if err := writeJSON(w, http.StatusCreated, envelope{"data": session.Status()}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// getSession godoc
//
//	@Summary	tracking status of a session
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path	string	true	"session id"
//	@Router		/sessions/{id} [get]
//	@Success	200	{object}	overlay.Status
//	@Failure	404	{object}	errorResponse
func (api *overlayAPI) getSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	status, err := api.overlayService.Status(p.ByName("id"))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": status}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// deleteSession godoc
//
//	@Summary	stop tracking and drop a session
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path	string	true	"session id"
//	@Router		/sessions/{id} [delete]
//	@Success	200	{object}	deleteSessionResponse
//	@Failure	404	{object}	errorResponse
func (api *overlayAPI) deleteSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	if err := api.overlayService.Delete(id); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.hub.RemoveSessionUsers(id)

	if err := writeJSON(w, http.StatusOK, envelope{"data": deleteSessionResponse{ID: id, Deleted: true}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// postLocation godoc
//
//	@Summary		feed one vehicle location
//	@Description	returns the sign to draw for this location (if any), the tracked maneuver and the off route state
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"session id"
//	@Router			/sessions/{id}/locations [post]
//	@Success		200	{object}	overlay.Frame
//	@Failure		400	{object}	errorResponse
//	@Failure		404	{object}	errorResponse
func (api *overlayAPI) postLocation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request locationRequest
	if err := readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	frame, err := api.overlayService.UpdateLocation(p.ByName("id"), request.toLocationUpdate())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": frame}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// putViewport godoc
//
//	@Summary	resize the viewport the overlay is drawn on
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		id	path	string	true	"session id"
//	@Router		/sessions/{id}/viewport [put]
//	@Success	200	{object}	overlay.Status
//	@Failure	400	{object}	errorResponse
//	@Failure	404	{object}	errorResponse
func (api *overlayAPI) putViewport(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request viewportRequest
	if err := readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	id := p.ByName("id")
	if err := api.overlayService.Resize(id, request.Width, request.Height); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	status, err := api.overlayService.Status(id)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": status}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// stream godoc
//
//	@Summary		websocket stream of location updates
//	@Description	every text frame is a location request, every reply is the frame computed for it
//	@Tags			sessions
//	@Param			id	path	string	true	"session id"
//	@Router			/sessions/{id}/stream [get]
//	@Success		101
//	@Failure		404	{object}	errorResponse
func (api *overlayAPI) stream(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	if _, err := api.overlayService.Status(id); err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	conn, _, hs, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err), zap.String("session", id))
		return
	}
	// the server read/write deadlines stay on a hijacked connection
	_ = conn.SetDeadline(time.Time{})

	api.log.Info("established websocket connection", zap.String("connection name", nameConn(conn)),
		zap.String("protocol", hs.Protocol), zap.String("session", id))

	user := api.hub.Register(conn, id)
	go api.hub.Serve(user)
}
