package main

import (
	"context"
	"errors"
	"flag"

	"github.com/lintang-b-s/navigatorx-ar/pkg/http"
	"github.com/lintang-b-s/navigatorx-ar/pkg/logger"
	"github.com/lintang-b-s/navigatorx-ar/pkg/overlay"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
	"go.uber.org/zap"
)

var (
	configDir    = flag.String("config_dir", ".", "directory of config.yaml (and .env)")
	useRateLimit = flag.Bool("rate_limit", true, "limit requests to RATE_LIMIT_RPS")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(*configDir, log); err != nil {
		log.Fatal("read config", zap.Error(err))
	}
	// LOG_LEVEL is only known after the config is read
	if log, err = logger.New(); err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := util.LoadOverlayConfig()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	overlayService := overlay.NewOverlayService(log, overlay.NewSessionConfig(cfg))

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	api := http.NewServer(log)
	if _, err := api.Use(ctx, log, *useRateLimit, cfg, overlayService); err != nil {
		log.Fatal("start server", zap.Error(err))
	}

	signal := http.GracefulShutdown()

	cleanup()
	if err := api.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped with error", zap.Error(err))
	}
	log.Info("Navigatorx AR Server Stopped", zap.String("signal", signal.String()))
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
