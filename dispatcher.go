package viewshed

import (
	"log/slog"
	"runtime"

	"github.com/gogpu/viewshed/executor"
	"github.com/gogpu/viewshed/grid"
)

// config holds the resolved state of a ComputeViewshed call after options
// have been applied.
type config struct {
	exec     executor.Executor
	ownsExec bool
	workers  int
	logger   *slog.Logger
	stats    *XDrawStats
}

// DispatchOption configures a ComputeViewshed call.
type DispatchOption func(*config)

// WithExecutor supplies a caller-owned Executor. ComputeViewshed will not
// Close it; the caller remains responsible for its lifetime. If omitted, a
// [executor.CPU] is created for the duration of the call and closed before
// returning.
func WithExecutor(exec executor.Executor) DispatchOption {
	return func(c *config) {
		c.exec = exec
		c.ownsExec = false
	}
}

// WithWorkers sets the number of goroutines for the default CPU executor.
// Ignored when WithExecutor supplies an executor of its own. If n <= 0,
// GOMAXPROCS is used.
func WithWorkers(n int) DispatchOption {
	return func(c *config) {
		c.workers = n
	}
}

// WithLogger sets the logger ComputeViewshed uses for diagnostic output.
// If omitted, the package default logger (see [Logger]) is used.
func WithLogger(logger *slog.Logger) DispatchOption {
	return func(c *config) {
		c.logger = logger
	}
}

// WithXDrawStats fills stats with ring-propagation diagnostics once
// ComputeViewshed returns. Ignored by every algorithm except [XDraw]; for
// the other three, stats is left untouched.
func WithXDrawStats(stats *XDrawStats) DispatchOption {
	return func(c *config) {
		c.stats = stats
	}
}

// ComputeViewshed computes a viewshed over z, the DEM, writing results into
// v (the visibility grid) and, for [XDraw] only, los (the per-cell
// line-of-sight slope grid). los is ignored by [DDA], [R3], and [R2] and
// may be nil for those algorithms.
//
// v and, when required, los must already have the same dimensions as z;
// ComputeViewshed never resizes a caller's grids. obs must fall within z's
// bounds. ComputeViewshed validates algo, shapes, and observer bounds
// before dispatching any work and returns a typed error (see errors.go) on
// the first violation found, in that order, without writing to v or los.
//
// The observer's own cell is always marked visible, per the invariant that
// holds across all four algorithms.
func ComputeViewshed(z *grid.Grid[float32], v *grid.Grid[int32], los *grid.Grid[float32], obs Observer, algo AlgoTag, opts ...DispatchOption) error {
	if err := validate(z, v, los, obs, algo); err != nil {
		return err
	}

	cfg := &config{logger: Logger()}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.exec == nil {
		workers := cfg.workers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		cfg.exec = executor.NewCPU(workers)
		cfg.ownsExec = true
	}
	if cfg.ownsExec {
		defer cfg.exec.Close()
	}

	cfg.logger.Debug("computing viewshed",
		"algorithm", algo.String(),
		"width", z.Width(),
		"height", z.Height(),
		"observer_x", obs.Ox,
		"observer_y", obs.Oy,
		"observer_z", obs.Oz,
	)

	v.Set(obs.Ox, obs.Oy, 1)

	switch algo {
	case XDraw:
		computeXDraw(z, v, los, obs, cfg.exec, cfg.stats)
	case DDA:
		computeDDA(z, v, obs, cfg.exec)
	case R3:
		computeR3(z, v, obs, cfg.exec)
	case R2:
		computeR2(z, v, obs, cfg.exec)
	default:
		return ErrUnknownAlgorithm
	}

	return nil
}

// validate checks algo, shapes (V, then the LOS grid's presence and shape
// for XDraw), and observer bounds, in that order, without touching v or los.
func validate(z *grid.Grid[float32], v *grid.Grid[int32], los *grid.Grid[float32], obs Observer, algo AlgoTag) error {
	switch algo {
	case XDraw, DDA, R3, R2:
	default:
		return ErrUnknownAlgorithm
	}

	if !grid.SameShape(z, v) {
		return &ShapeMismatchError{
			Grid: "V", Width: v.Width(), Height: v.Height(),
			WantW: z.Width(), WantH: z.Height(),
		}
	}

	if algo == XDraw {
		if los == nil {
			return ErrMissingAuxiliaryGrid
		}
		if !grid.SameShape(z, los) {
			return &ShapeMismatchError{
				Grid: "LOS", Width: los.Width(), Height: los.Height(),
				WantW: z.Width(), WantH: z.Height(),
			}
		}
	}

	if !z.InBounds(obs.Ox, obs.Oy) {
		return ErrObserverOutOfRange
	}

	return nil
}
