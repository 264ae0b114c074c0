// Package executor implements the pluggable parallel executor that the
// viewshed algorithms dispatch rays and ring-cells through. It abstracts
// over the compute resource (goroutine pool or GPU compute pipeline) so
// the algorithms themselves never depend on a concrete backend.
package executor

// Executor maps a pure kernel across a fixed index domain with no
// guaranteed order between units, and exposes a single synchronization
// primitive, Barrier, for happens-before ordering between successive
// dispatches.
//
// Implementations: [CPU] (always available) and the build-tag-gated GPU
// backend (see gpu.go, built unless the nogpu tag is set).
type Executor interface {
	// DispatchRange runs kernel(i) for each i in [0, n), in parallel,
	// and returns once every unit has completed.
	DispatchRange(n int, kernel func(i int))

	// DispatchTiled runs kernel(globalI, localI) for each i in [0, n),
	// grouped into tiles of tileSize. Units within a tile run on the
	// same worker in sequence, so a kernel may safely accumulate into
	// a tile-local scratch buffer across calls with the same tile
	// index; different tiles may run concurrently.
	DispatchTiled(n, tileSize int, kernel func(globalI, localI int))

	// Barrier blocks until all work submitted by prior DispatchRange /
	// DispatchTiled calls has committed its writes. Both backends in this
	// package implement it as a no-op because their dispatch calls already
	// block (the GPU backend runs its dispatches on a mirrored CPU pool).
	Barrier()

	// Close releases any resources (goroutines, GPU device handles)
	// held by the executor. The executor must not be used afterward.
	Close()
}

// Workers reports the degree of parallelism an executor was configured
// with, for diagnostics. Executors that don't have a meaningful worker
// count (e.g. a single GPU queue) may return 1.
type Workers interface {
	Workers() int
}
