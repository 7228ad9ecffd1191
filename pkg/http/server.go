package http

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	http_router "github.com/lintang-b-s/navigatorx-ar/pkg/http/router"
	"github.com/lintang-b-s/navigatorx-ar/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/navigatorx-ar/pkg/http/server"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the overlay API in the background. Wait returns its error once it stops.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	cfg util.OverlayConfig,
	overlayService controllers.OverlayService,
) (*Server, error) {
	config := http_server.Config{
		Port:           cfg.APIPort,
		Timeout:        cfg.APITimeout,
		UseRateLimit:   useRateLimit,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}

	server := http_router.NewAPI(log)

	s.g.Go(func() error {
		return server.Run(ctx, config, overlayService)
	})

	return s, nil
}

func (s *Server) Wait() error {
	return s.g.Wait()
}

// GracefulShutdown blocks until the process is asked to stop.
func GracefulShutdown() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}
