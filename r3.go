package viewshed

import (
	"math"

	"github.com/gogpu/viewshed/executor"
	"github.com/gogpu/viewshed/grid"
	"github.com/gogpu/viewshed/internal/raywalk"
)

// computeR3 uses the same ray set as DDA, but samples height with
// axis-aligned one-sided linear interpolation and a strict > visibility
// test.
func computeR3(z *grid.Grid[float32], v *grid.Grid[int32], obs Observer, exec executor.Executor) {
	targets := raywalk.BorderTargets(z.Width(), z.Height())

	exec.DispatchRange(len(targets), func(i int) {
		runR3Ray(z, v, obs, targets[i])
	})
}

func runR3Ray(z *grid.Grid[float32], v *grid.Grid[int32], obs Observer, target raywalk.Target) {
	ray, ok := raywalk.New(obs.Ox, obs.Oy, target.X, target.Y)
	if !ok {
		return
	}

	runningMax := math.Inf(-1)
	ray.Walk(func(cx, cy int, x, y, dist float64) {
		if dist <= 0 {
			return
		}
		h := interpolateHeight(z, x, y)
		slope := (h - float64(obs.Oz)) / dist
		if slope <= runningMax {
			return
		}
		runningMax = slope

		rx, ry := roundCell(x, z.Width()), roundCell(y, z.Height())
		v.Set(rx, ry, 1)
	})
}

// interpolateHeight implements the one-sided bilinear correction from
// the R3 variant: starting from the height at the rounded stepped cell,
// nudge toward whichever axis-neighbor lies on the same side as the
// exact stepped float position, x first then y. Falls back to the
// uncorrected height near the raster edge where the required neighbor
// would be out of bounds.
func interpolateHeight(z *grid.Grid[float32], x, y float64) float64 {
	roundedX := math.Round(x)
	roundedY := math.Round(y)
	rcx, rcy := int(roundedX), int(roundedY)

	h := float64(z.Get(rcx, rcy))

	width, height := z.Width(), z.Height()
	if rcx <= 1 || rcx >= width-1 || rcy <= 1 || rcy >= height-1 {
		return h
	}

	offX := roundedX - x
	offY := roundedY - y

	nx := rcx - 1
	if offX < 0 {
		nx = rcx + 1
	}
	h = h + (float64(z.Get(nx, rcy))-h)*math.Abs(offX)

	ny := rcy - 1
	if offY < 0 {
		ny = rcy + 1
	}
	h = h + (float64(z.Get(rcx, ny))-h)*math.Abs(offY)

	return h
}
