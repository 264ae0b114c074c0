// Package demo generates synthetic elevation grids for exercising the
// viewshed algorithms without needing a real DEM file on disk.
package demo

import (
	"math"

	"github.com/gogpu/viewshed/grid"
)

// FlatDEM returns a width x height grid with every cell at height.
func FlatDEM(width, height int, elevation float32) *grid.Grid[float32] {
	return grid.NewFilled[float32](width, height, elevation)
}

// RampDEM returns a grid that rises linearly along the x axis, from low at
// x=0 to high at x=width-1. Useful for exercising the one-sided
// interpolation in R3/R2, whose correction term only matters when
// neighboring cells differ.
func RampDEM(width, height int, low, high float32) *grid.Grid[float32] {
	g := grid.New[float32](width, height)
	span := high - low
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := float32(x) / float32(maxInt(width-1, 1))
			g.Set(x, y, low+span*t)
		}
	}
	return g
}

// ConeDEM returns a grid shaped like a cone centered at (cx, cy): height
// falls off linearly with Euclidean distance from the peak, clamped at
// baseElevation once the cone's radius is exceeded. A single tall cone is
// the classic occluder fixture for line-of-sight algorithms: cells behind
// it, as seen from an observer in front, should be invisible.
func ConeDEM(width, height int, cx, cy int, peak, baseElevation float32, radius float64) *grid.Grid[float32] {
	g := grid.New[float32](width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= radius {
				g.Set(x, y, baseElevation)
				continue
			}
			t := float32(dist / radius)
			g.Set(x, y, peak+(baseElevation-peak)*t)
		}
	}
	return g
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
