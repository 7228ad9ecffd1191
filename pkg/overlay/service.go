package overlay

import (
	"strconv"
	"sync"

	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
	"go.uber.org/zap"
)

type OverlayService struct {
	log *zap.Logger
	cfg SessionConfig

	mu       sync.RWMutex
	seq      uint64
	sessions map[string]*Session
}

func NewOverlayService(log *zap.Logger, cfg SessionConfig) *OverlayService {
	return &OverlayService{
		log:      log,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

func (svc *OverlayService) CreateSession(r *route.Route, viewport projection.ImageSize) (*Session, error) {
	if r == nil {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "route is required")
	}
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = svc.cfg.Frame
	}

	svc.mu.Lock()
	svc.seq++
	id := strconv.FormatUint(svc.seq, 10)
	svc.mu.Unlock()

	session := NewSession(id, r, viewport, svc.cfg, svc.log)

	svc.mu.Lock()
	svc.sessions[id] = session
	svc.mu.Unlock()

	svc.log.Info("overlay session created", zap.String("session", id),
		zap.Int("maneuvers", len(session.tracker.Maneuvers())),
		zap.Int("route_points", len(session.routePoints)))
	return session, nil
}

func (svc *OverlayService) Get(id string) (*Session, error) {
	svc.mu.RLock()
	session, ok := svc.sessions[id]
	svc.mu.RUnlock()
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "session %s not found", id)
	}
	return session, nil
}

func (svc *OverlayService) Delete(id string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, ok := svc.sessions[id]; !ok {
		return util.WrapErrorf(nil, util.ErrNotFound, "session %s not found", id)
	}
	delete(svc.sessions, id)
	svc.log.Info("overlay session deleted", zap.String("session", id))
	return nil
}

func (svc *OverlayService) UpdateLocation(id string, u LocationUpdate) (Frame, error) {
	session, err := svc.Get(id)
	if err != nil {
		return Frame{}, err
	}
	return session.Update(u), nil
}

func (svc *OverlayService) Resize(id string, width, height int) error {
	session, err := svc.Get(id)
	if err != nil {
		return err
	}
	session.Resize(width, height)
	return nil
}

func (svc *OverlayService) Status(id string) (Status, error) {
	session, err := svc.Get(id)
	if err != nil {
		return Status{}, err
	}
	return session.Status(), nil
}
