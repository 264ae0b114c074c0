package viewshed

import (
	"math"

	"github.com/gogpu/viewshed/executor"
	"github.com/gogpu/viewshed/grid"
	"github.com/gogpu/viewshed/internal/raywalk"
)

// computeR2 is R3 augmented with a visited-cell mask: once a ray settles
// a cell, later rays that step onto the same cell skip recomputation and
// inherit whatever V value the first visitor left. The mask is racy
// under parallel dispatch by design; see runR2Ray.
func computeR2(z *grid.Grid[float32], v *grid.Grid[int32], obs Observer, exec executor.Executor) {
	visited := grid.New[uint32](z.Width(), z.Height())
	targets := raywalk.BorderTargets(z.Width(), z.Height())

	exec.DispatchRange(len(targets), func(i int) {
		runR2Ray(z, v, visited, obs, targets[i])
	})
}

// runR2Ray mirrors runR3Ray, adding the visited-mask short-circuit. The
// mask read/write pair is a plain, non-atomic load and store: two rays
// racing on the same cell may both pass the T[y,x]==0 check and both run
// the slope test, or one may see the other's write first and skip
// entirely. Either outcome is an accepted, documented trade-off of R2 and
// must not be relied upon by callers for a specific result.
func runR2Ray(z *grid.Grid[float32], v *grid.Grid[int32], visited *grid.Grid[uint32], obs Observer, target raywalk.Target) {
	ray, ok := raywalk.New(obs.Ox, obs.Oy, target.X, target.Y)
	if !ok {
		return
	}

	runningMax := math.Inf(-1)
	ray.Walk(func(cx, cy int, x, y, dist float64) {
		if dist <= 0 {
			return
		}

		rx, ry := roundCell(x, z.Width()), roundCell(y, z.Height())
		if visited.Get(rx, ry) != 0 {
			return
		}

		h := interpolateHeight(z, x, y)
		slope := (h - float64(obs.Oz)) / dist
		if slope > runningMax {
			runningMax = slope
			v.Set(rx, ry, 1)
		}
		visited.Set(rx, ry, 1)
	})
}
