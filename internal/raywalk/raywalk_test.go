package raywalk

import "testing"

func TestBorderTargets_Count(t *testing.T) {
	targets := BorderTargets(5, 5)
	want := 2 * (5 + 5)
	if len(targets) != want {
		t.Fatalf("len(targets) = %d, want %d", len(targets), want)
	}
}

func TestBorderTargets_CoversAllFourBorders(t *testing.T) {
	const w, h = 6, 4
	targets := BorderTargets(w, h)

	onBorder := func(x, y int) bool {
		return x == 0 || x == w-1 || y == 0 || y == h-1
	}
	seen := make(map[[2]int]bool)
	for _, tgt := range targets {
		if !onBorder(tgt.X, tgt.Y) {
			t.Errorf("target (%d,%d) is not on the border", tgt.X, tgt.Y)
		}
		seen[[2]int{tgt.X, tgt.Y}] = true
	}

	for x := 0; x < w; x++ {
		for _, y := range []int{0, h - 1} {
			if !seen[[2]int{x, y}] {
				t.Errorf("border cell (%d,%d) was never targeted", x, y)
			}
		}
	}
	for y := 0; y < h; y++ {
		for _, x := range []int{0, w - 1} {
			if !seen[[2]int{x, y}] {
				t.Errorf("border cell (%d,%d) was never targeted", x, y)
			}
		}
	}
}

func TestNew_ZeroLengthRaySkipped(t *testing.T) {
	_, ok := New(2, 2, 2, 2)
	if ok {
		t.Error("New() on a zero-length ray returned ok=true")
	}
}

func TestNew_StepsIsChebyshevDistance(t *testing.T) {
	r, ok := New(0, 0, 4, 2)
	if !ok {
		t.Fatal("New() returned ok=false for a valid ray")
	}
	if r.Steps() != 4 {
		t.Errorf("Steps() = %d, want 4", r.Steps())
	}
}

func TestWalk_VisitsEveryStepAndEndsAtTarget(t *testing.T) {
	ox, oy, tx, ty := 0, 0, 4, 2
	r, ok := New(ox, oy, tx, ty)
	if !ok {
		t.Fatal("New() returned ok=false")
	}

	var count int
	var lastCx, lastCy int
	r.Walk(func(cx, cy int, x, y, dist float64) {
		count++
		lastCx, lastCy = cx, cy
		if dist < 0 {
			t.Errorf("dist = %v, want >= 0", dist)
		}
	})

	if count != r.Steps() {
		t.Errorf("visit called %d times, want %d", count, r.Steps())
	}
	if lastCx != tx || lastCy != ty {
		t.Errorf("final stepped cell = (%d,%d), want (%d,%d)", lastCx, lastCy, tx, ty)
	}
}

func TestWalk_SingleAxisRay(t *testing.T) {
	r, ok := New(1, 1, 1, 5)
	if !ok {
		t.Fatal("New() returned ok=false")
	}
	r.Walk(func(cx, cy int, x, y, dist float64) {
		if cx != 1 {
			t.Errorf("cx = %d, want 1 on a vertical ray", cx)
		}
	})
}
