package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/lintang-b-s/navigatorx-ar/pkg/logger"
	"github.com/lintang-b-s/navigatorx-ar/pkg/overlay"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/replay"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
	"go.uber.org/zap"
)

var (
	configDir      = flag.String("config_dir", ".", "directory of config.yaml (and .env)")
	directionsPath = flag.String("directions", "./data/directions.json", "directions API response holding the route")
	tracesFlag     = flag.String("traces", "./data/trace.csv", "comma separated lat,lon[,bearing] csv traces")
	outDir         = flag.String("out", "", "write <trace>.frames.json per trace here, summaries only when empty")
	workers        = flag.Int("workers", 4, "traces replayed concurrently")
	viewportWidth  = flag.Int("viewport_width", 0, "viewport width, FRAME_WIDTH when 0")
	viewportHeight = flag.Int("viewport_height", 0, "viewport height, FRAME_HEIGHT when 0")
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
	cfg, err := util.LoadOverlayConfig()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	rt, err := readRoute(*directionsPath)
	if err != nil {
		log.Fatal("read directions", zap.String("path", *directionsPath), zap.Error(err))
	}

	viewport := projection.ImageSize{Width: *viewportWidth, Height: *viewportHeight}
	jobs := make([]replay.Job, 0)
	for _, path := range strings.Split(*tracesFlag, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		fixes, err := readTrace(path)
		if err != nil {
			log.Fatal("read trace", zap.String("path", path), zap.Error(err))
		}
		jobs = append(jobs, replay.Job{Name: path, Route: rt, Fixes: fixes, Viewport: viewport})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	replayer := replay.NewReplayer(log, overlay.NewSessionConfig(cfg))
	results := replayer.ReplayAll(ctx, jobs, *workers, *outDir != "")

	failed := false
	for _, res := range results {
		if res.Err != nil {
			failed = true
			continue
		}
		if *outDir != "" {
			if err := writeFrames(*outDir, res); err != nil {
				log.Error("write frames", zap.String("trace", res.Name), zap.Error(err))
				failed = true
			}
		}
		log.Info("replay summary", zap.String("trace", res.Name), zap.Any("summary", res.Summary))
	}
	if failed {
		os.Exit(1)
	}
}

func readRoute(path string) (*route.Route, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return route.ParseDirections(f)
}

func readTrace(path string) ([]replay.Fix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return replay.ReadTrace(f)
}

func writeFrames(dir string, res replay.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(res.Name), filepath.Ext(res.Name)) + ".frames.json"

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
