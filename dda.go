package viewshed

import (
	"math"

	"github.com/gogpu/viewshed/executor"
	"github.com/gogpu/viewshed/grid"
	"github.com/gogpu/viewshed/internal/raywalk"
)

// computeDDA casts one ray per border cell and marks a cell visible when
// its slope is greater than or equal to the running maximum seen so far
// along that ray. Height is sampled at the nearest-neighbor cell.
func computeDDA(z *grid.Grid[float32], v *grid.Grid[int32], obs Observer, exec executor.Executor) {
	targets := raywalk.BorderTargets(z.Width(), z.Height())

	exec.DispatchRange(len(targets), func(i int) {
		runDDARay(z, v, obs, targets[i])
	})
}

// runDDARay walks a single ray from the observer to target, tracking the
// running maximum slope. The slope test samples the height at the
// floor-truncated stepped cell, but marks visibility at the
// round-truncated stepped cell, matching the algorithm-of-record this
// package implements.
func runDDARay(z *grid.Grid[float32], v *grid.Grid[int32], obs Observer, target raywalk.Target) {
	ray, ok := raywalk.New(obs.Ox, obs.Oy, target.X, target.Y)
	if !ok {
		return
	}

	runningMax := math.Inf(-1)
	ray.Walk(func(cx, cy int, x, y, dist float64) {
		if dist <= 0 {
			return
		}
		h := float64(z.Get(cx, cy))
		slope := (h - float64(obs.Oz)) / dist
		if slope < runningMax {
			return
		}
		runningMax = slope

		rx, ry := roundCell(x, z.Width()), roundCell(y, z.Height())
		v.Set(rx, ry, 1)
	})
}

// roundCell rounds a stepped float coordinate to its nearest cell index
// and clamps it into [0, limit) as a defensive measure against the
// half-step overshoot round() can introduce at a raster edge.
func roundCell(v float64, limit int) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r >= limit {
		return limit - 1
	}
	return r
}
