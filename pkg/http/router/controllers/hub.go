package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
	"go.uber.org/zap"
)

// User is one websocket connection streaming locations of one session.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id        uint
	sessionID string
	hub       *Hub
}

func (u *User) readRequest() (*locationRequest, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	// the whole frame is consumed so a bad payload does not desync the next header
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	req := &locationRequest{}
	if err := json.Unmarshal(payload, req); err != nil {
		return nil, err
	}
	return req, nil
}

// StreamLocation reads one location frame and answers with the overlay frame computed for it. Invalid
// requests are answered with an error frame and keep the connection open.
func (u *User) StreamLocation() error {
	req, err := u.readRequest()
	if err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		if errors.As(err, &syntaxError) || errors.As(err, &typeError) {
			return u.write(errorEnvelope(http.StatusBadRequest, err.Error()))
		}
		u.conn.Close()
		return err
	}

	if req == nil {
		return nil
	}

	if err := u.hub.validate.Struct(req); err != nil {
		return u.write(errorEnvelope(http.StatusBadRequest, err.Error()))
	}

	frame, err := u.hub.overlayService.UpdateLocation(u.sessionID, req.toLocationUpdate())
	if err != nil {
		if errors.Is(util.ErrorCode(err), util.ErrNotFound) {
			_ = u.write(errorEnvelope(http.StatusNotFound, err.Error()))
		}
		u.conn.Close()
		return err
	}

	return u.write(envelope{"data": frame})
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

type Hub struct {
	mu  sync.RWMutex
	seq uint
	us  []*User
	ns  map[uint]*User

	overlayService OverlayService
	validate       *requestValidator
	log            *zap.Logger
}

func NewHub(overlayService OverlayService, log *zap.Logger) *Hub {
	return &Hub{
		ns:             make(map[uint]*User),
		us:             make([]*User, 0),
		overlayService: overlayService,
		validate:       newRequestValidator(),
		log:            log,
	}
}

func (h *Hub) Register(conn io.ReadWriteCloser, sessionID string) *User {
	user := &User{
		hub:       h,
		conn:      conn,
		sessionID: sessionID,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	return user
}

// Serve answers location frames of user until the connection fails or is closed.
func (h *Hub) Serve(user *User) {
	defer h.Remove(user)

	for {
		err := user.StreamLocation()
		if err == nil {
			continue
		}

		var closed wsutil.ClosedError
		if errors.As(err, &closed) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			h.log.Info("user disconnected from websocket server", zap.String("session", user.sessionID))
		} else {
			h.log.Error("error streaming locations", zap.Error(err), zap.String("session", user.sessionID))
		}
		return
	}
}

func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.ns[user.id]; !ok {
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})

	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs

	user.conn.Close()
}

func (h *Hub) RemoveSessionUsers(sessionID string) {
	for _, user := range h.Users() {
		if user.sessionID == sessionID {
			h.Remove(user)
		}
	}
}

func (h *Hub) RemoveAllUser() {
	for _, user := range h.Users() {
		h.Remove(user)
	}
}

func (h *Hub) Users() []*User {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]*User, len(h.us))
	copy(users, h.us)
	return users
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
