package replay

import (
	"context"

	"github.com/lintang-b-s/navigatorx-ar/pkg/concurrent"
	"github.com/lintang-b-s/navigatorx-ar/pkg/overlay"
	"github.com/lintang-b-s/navigatorx-ar/pkg/projection"
	"github.com/lintang-b-s/navigatorx-ar/pkg/route"
	"github.com/lintang-b-s/navigatorx-ar/pkg/tracker"
	"go.uber.org/zap"
)

// Summary counts what happened while replaying one trace.
type Summary struct {
	Fixes         int           `json:"fixes"`
	Rendered      int           `json:"rendered"`
	Advances      int           `json:"advances"`
	OffRoute      int           `json:"off_route"`
	ManeuverIndex int           `json:"maneuver_index"`
	Phase         tracker.Phase `json:"phase"`
}

// Job is one trace to replay against a route.
type Job struct {
	Name     string
	Route    *route.Route
	Fixes    []Fix
	Viewport projection.ImageSize
}

type Result struct {
	Name    string          `json:"name"`
	Summary Summary         `json:"summary"`
	Frames  []overlay.Frame `json:"frames,omitempty"`
	Err     error           `json:"-"`
}

type Replayer struct {
	log *zap.Logger
	cfg overlay.SessionConfig
}

func NewReplayer(log *zap.Logger, cfg overlay.SessionConfig) *Replayer {
	return &Replayer{log: log, cfg: cfg}
}

// Replay feeds fixes in order through a fresh session and hands every frame to emit. It stops early when
// ctx is done or emit fails.
func (rp *Replayer) Replay(ctx context.Context, job Job, emit func(overlay.Frame) error) (Summary, error) {
	viewport := job.Viewport
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = rp.cfg.Frame
	}
	session := overlay.NewSession(job.Name, job.Route, viewport, rp.cfg, rp.log)

	var summary Summary
	for _, fix := range job.Fixes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		frame := session.Update(fix.toLocationUpdate())

		summary.Fixes++
		if frame.Render != nil {
			summary.Rendered++
		}
		if frame.Advance != tracker.AdvanceNone {
			summary.Advances++
		}
		if frame.OffRoute {
			summary.OffRoute++
		}
		summary.ManeuverIndex = frame.ManeuverIndex
		summary.Phase = frame.Phase

		if emit != nil {
			if err := emit(frame); err != nil {
				return summary, err
			}
		}
	}

	status := session.Status()
	summary.ManeuverIndex = status.ManeuverIndex
	summary.Phase = status.Phase

	rp.log.Info("trace replayed", zap.String("trace", job.Name), zap.Int("fixes", summary.Fixes),
		zap.Int("rendered", summary.Rendered), zap.Int("advances", summary.Advances),
		zap.Stringer("phase", summary.Phase))
	return summary, nil
}

// ReplayAll replays every job on its own session, numWorkers at a time. Results are in job order.
func (rp *Replayer) ReplayAll(ctx context.Context, jobs []Job, numWorkers int, keepFrames bool) []Result {
	type indexedJob struct {
		index int
		job   Job
	}
	type indexedResult struct {
		index  int
		result Result
	}

	if numWorkers < 1 {
		numWorkers = 1
	}

	indexed := make([]indexedJob, len(jobs))
	for i, job := range jobs {
		indexed[i] = indexedJob{index: i, job: job}
	}

	out := concurrent.Run(numWorkers, indexed, func(ij indexedJob) indexedResult {
		res := Result{Name: ij.job.Name}

		var emit func(overlay.Frame) error
		if keepFrames {
			res.Frames = make([]overlay.Frame, 0, len(ij.job.Fixes))
			emit = func(f overlay.Frame) error {
				res.Frames = append(res.Frames, f)
				return nil
			}
		}

		res.Summary, res.Err = rp.Replay(ctx, ij.job, emit)
		if res.Err != nil {
			rp.log.Error("replay failed", zap.String("trace", ij.job.Name), zap.Error(res.Err))
		}
		return indexedResult{index: ij.index, result: res}
	})

	results := make([]Result, len(jobs))
	for _, r := range out {
		results[r.index] = r.result
	}
	return results
}
