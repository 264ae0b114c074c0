// Package raywalk holds the line-traversal state shared by the DDA and R3
// viewshed algorithms: the border ray set and the per-ray DDA stepper.
package raywalk

import "math"

// Target is a ray's destination cell on the raster border.
type Target struct {
	X, Y int
}

// BorderTargets returns the ray targets covering all four borders of a
// width x height raster: two rays per row (to the x=0 and x=width-1
// borders) and two rays per column (to the y=0 and y=height-1 borders),
// 2*(width+height) targets in all.
// Corner cells are targeted more than once; this is harmless because V
// writes are idempotent.
func BorderTargets(width, height int) []Target {
	targets := make([]Target, 0, 4*(width+height))
	for y := 0; y < height; y++ {
		targets = append(targets, Target{X: 0, Y: y})
		targets = append(targets, Target{X: width - 1, Y: height - 1 - y})
	}
	for x := 0; x < width; x++ {
		targets = append(targets, Target{X: x, Y: 0})
		targets = append(targets, Target{X: width - 1 - x, Y: height - 1})
	}
	return targets
}

// Ray is the per-ray DDA stepping state: a fixed increment per step and a
// step count, derived from the observer position and a target cell.
type Ray struct {
	ox, oy     float64
	xinc, yinc float64
	steps      int
}

// New builds the stepping state for a ray from (ox, oy) to (tx, ty). The
// second return value is false when the ray has zero length (ox == tx
// and oy == ty); callers skip such rays.
func New(ox, oy, tx, ty int) (Ray, bool) {
	dx := float64(tx - ox)
	dy := float64(ty - oy)
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps == 0 {
		return Ray{}, false
	}
	return Ray{
		ox: float64(ox), oy: float64(oy),
		xinc: dx / steps, yinc: dy / steps,
		steps: int(steps),
	}, true
}

// Steps reports how many cells this ray steps through.
func (r Ray) Steps() int { return r.steps }

// Visit is called once per step with the truncated cell (cx, cy), the
// exact stepped float position (x, y), and the Euclidean distance from
// the observer to (cx, cy).
type Visit func(cx, cy int, x, y, dist float64)

// Walk steps the ray from k=1 to Steps(), calling visit at each step.
func (r Ray) Walk(visit Visit) {
	x, y := r.ox, r.oy
	for k := 1; k <= r.steps; k++ {
		x += r.xinc
		y += r.yinc
		cx, cy := int(math.Floor(x)), int(math.Floor(y))
		ddx := float64(cx) - r.ox
		ddy := float64(cy) - r.oy
		dist := math.Sqrt(ddx*ddx + ddy*ddy)
		visit(cx, cy, x, y, dist)
	}
}
