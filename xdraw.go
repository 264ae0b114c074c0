package viewshed

import (
	"math"

	"github.com/gogpu/viewshed/executor"
	"github.com/gogpu/viewshed/grid"
)

// xdrawCell is a single octant cell's coordinates plus the two inner-ring
// parent cells its LOS interpolates from.
type xdrawCell struct {
	x, y     int
	p1x, p1y int
	p2x, p2y int
}

// octantLengths tracks the four independently-growing per-ring segment
// lengths described in §4.6's "Ring counter growth" rules. Growth runs on
// the axis OPPOSITE the octant names it feeds: a Y-boundary test grows the
// east/west-named octants, an X-boundary test grows the north/south-named
// octants.
//
//	yNorth feeds ENE + WNW, tested against the north (oy+len) edge.
//	ySouth feeds ESE + WSW, tested against the south (oy-len) edge.
//	xEast  feeds NNE + SSE, tested against the east (ox+len) edge.
//	xWest  feeds NNW + SSW, tested against the west (ox-len) edge.
type octantLengths struct {
	yNorth, ySouth, xEast, xWest int
}

// grow advances each counter by one ring, saturating once the observer's
// distance plus the counter reaches the raster edge.
func (l *octantLengths) grow(obs Observer, width, height int) {
	if obs.Oy+l.yNorth < height-1 {
		l.yNorth++
	}
	if obs.Oy-l.ySouth > 0 {
		l.ySouth++
	}
	if obs.Ox+l.xEast < width-1 {
		l.xEast++
	}
	if obs.Ox-l.xWest > 0 {
		l.xWest++
	}
}

// XDrawStats reports diagnostics about an XDraw run: how many rings the
// propagation loop actually processed and how many cells were visited
// across all of them. Not part of the core ComputeViewshed signature;
// callers opt in via WithXDrawStats.
type XDrawStats struct {
	RingsProcessed int
	CellsVisited   int
}

// computeXDraw propagates a line-of-sight slope outward one ring at a
// time. Ring 1 (the observer's eight immediate neighbors) is computed
// directly, with the observer's own cell as both parents, since there is
// no inner ring to interpolate from. From ring 2 on, the
// octant/counter machinery takes over, dispatched in two waves per ring
// (east/west, then north/south) with a barrier after each.
func computeXDraw(z *grid.Grid[float32], v *grid.Grid[int32], los *grid.Grid[float32], obs Observer, exec executor.Executor, stats *XDrawStats) {
	width, height := z.Width(), z.Height()

	los.Fill(float32(math.Inf(-1)))

	maxRing := maxInt(maxInt(height-obs.Oy-1, obs.Oy), maxInt(width-obs.Ox-1, obs.Ox))
	if maxRing < 1 {
		return
	}

	computeXDrawRing1(z, v, los, obs, exec, width, height, stats)

	lens := octantLengths{yNorth: 1, ySouth: 1, xEast: 1, xWest: 1}

	for r := 2; r <= maxRing; r++ {
		lens.grow(obs, width, height)

		// Octants whose cell formula already carries a "+1" offset (ENE,
		// NNE) land on their ring's diagonal corner using k up to
		// len-1. The other six lack that offset and need k up to len,
		// one step further, to reach the same corner from their side —
		// otherwise the NW/SE/SW corners of every ring would be
		// permanently skipped (only the NE corner, shared by ENE/NNE,
		// would ever be written).
		cells := make([]xdrawCell, 0, 4*(lens.xEast+lens.xWest+lens.yNorth+lens.ySouth)+8)

		appendIfInBounds := func(x, y, p1x, p1y, p2x, p2y int) {
			if x < 0 || x >= width || y < 0 || y >= height {
				return
			}
			cells = append(cells, xdrawCell{x: x, y: y, p1x: p1x, p1y: p1y, p2x: p2x, p2y: p2y})
		}

		// East/west wave: ENE, ESE, WNW, WSW. Parents sit one column
		// closer to the observer, on ring r-1.
		for k := 0; k < lens.yNorth; k++ {
			ix, iy := obs.Ox+r, obs.Oy+k+1
			appendIfInBounds(ix, iy, ix-1, iy, ix-1, iy-1) // ENE
		}
		for k := 0; k <= lens.ySouth; k++ {
			ix, iy := obs.Ox+r, obs.Oy-k
			appendIfInBounds(ix, iy, ix-1, iy, ix-1, iy+1) // ESE
		}
		for k := 0; k <= lens.yNorth; k++ {
			ix, iy := obs.Ox-r, obs.Oy+k
			appendIfInBounds(ix, iy, ix+1, iy, ix+1, iy-1) // WNW
		}
		// WSW starts at k=1: its k=0 cell (ox-r, oy) is WNW's k=0 cell,
		// and listing it twice would give it two writers in one dispatch.
		for k := 1; k <= lens.ySouth; k++ {
			ix, iy := obs.Ox-r, obs.Oy-k
			appendIfInBounds(ix, iy, ix+1, iy, ix+1, iy+1) // WSW
		}

		dispatchXDrawCells(exec, z, v, los, obs, cells)
		exec.Barrier()
		if stats != nil {
			stats.CellsVisited += len(cells)
		}

		cells = cells[:0]

		// North/south wave: NNE, NNW, SSE, SSW. Their k=0 corner shares a
		// parent with the east/west cell just committed above.
		for k := 0; k < lens.xEast; k++ {
			ix, iy := obs.Ox+k+1, obs.Oy+r
			appendIfInBounds(ix, iy, ix-1, iy-1, ix, iy-1) // NNE
		}
		for k := 0; k <= lens.xWest; k++ {
			ix, iy := obs.Ox-k, obs.Oy+r
			appendIfInBounds(ix, iy, ix+1, iy-1, ix, iy-1) // NNW
		}
		for k := 0; k <= lens.xWest; k++ {
			ix, iy := obs.Ox-k, obs.Oy-r
			appendIfInBounds(ix, iy, ix+1, iy+1, ix, iy+1) // SSW
		}
		// SSE starts at k=1: its k=0 cell (ox, oy-r) is SSW's k=0 cell.
		for k := 1; k <= lens.xEast; k++ {
			ix, iy := obs.Ox+k, obs.Oy-r
			appendIfInBounds(ix, iy, ix-1, iy+1, ix, iy+1) // SSE
		}

		dispatchXDrawCells(exec, z, v, los, obs, cells)
		exec.Barrier()
		if stats != nil {
			stats.CellsVisited += len(cells)
			stats.RingsProcessed = r
		}
	}
}

// computeXDrawRing1 handles the observer's eight immediate neighbors as a
// single explicit pass: there is no smaller ring to interpolate from, so
// both "parents" of every ring-1 cell are the observer's own cell, whose
// LOS is the -Inf sentinel left by the initial Fill (no slope constraint
// applies to the first ring).
func computeXDrawRing1(z *grid.Grid[float32], v *grid.Grid[int32], los *grid.Grid[float32], obs Observer, exec executor.Executor, width, height int, stats *XDrawStats) {
	cells := make([]xdrawCell, 0, 8)
	appendIfInBounds := func(x, y int) {
		if x < 0 || x >= width || y < 0 || y >= height {
			return
		}
		cells = append(cells, xdrawCell{x: x, y: y, p1x: obs.Ox, p1y: obs.Oy, p2x: obs.Ox, p2y: obs.Oy})
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			appendIfInBounds(obs.Ox+dx, obs.Oy+dy)
		}
	}

	dispatchXDrawCells(exec, z, v, los, obs, cells)
	exec.Barrier()
	if stats != nil {
		stats.CellsVisited += len(cells)
		stats.RingsProcessed = 1
	}
}

// dispatchXDrawCells runs the per-cell XDraw kernel (§4.6) over cells in
// parallel; every cell writes a cell-unique (x,y), so no atomics are
// needed even though the write set spans four octants at once.
func dispatchXDrawCells(exec executor.Executor, z *grid.Grid[float32], v *grid.Grid[int32], los *grid.Grid[float32], obs Observer, cells []xdrawCell) {
	exec.DispatchRange(len(cells), func(i int) {
		c := cells[i]

		leftLOS := parentLOS(los, c.p1x, c.p1y)
		rightLOS := parentLOS(los, c.p2x, c.p2y)
		interpLOS := (leftLOS + rightLOS) / 2

		dx := float64(c.x - obs.Ox)
		dy := float64(c.y - obs.Oy)
		d := math.Sqrt(dx*dx + dy*dy)
		e := (float64(z.Get(c.x, c.y)) - float64(obs.Oz)) / d

		// A tie (e == interp_los) counts as visible: on exactly flat
		// terrain at the observer's own height, every ring's slope is
		// identically 0, and a strict > would extinguish visibility
		// past the first ring.
		if e >= interpLOS {
			v.Set(c.x, c.y, 1)
			los.Set(c.x, c.y, float32(e))
		} else {
			v.Set(c.x, c.y, 0)
			los.Set(c.x, c.y, float32(interpLOS))
		}
	})
}

// parentLOS reads a parent cell's LOS, returning the negative-infinity
// sentinel for a parent that falls outside the raster (which can happen
// near a corner, where an octant's nominal neighbor runs off the edge).
func parentLOS(los *grid.Grid[float32], x, y int) float64 {
	if x < 0 || x >= los.Width() || y < 0 || y >= los.Height() {
		return math.Inf(-1)
	}
	return float64(los.Get(x, y))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
