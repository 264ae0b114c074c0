//go:build nogpu

package executor

import "github.com/gogpu/gpucontext"

// NewGPU always fails in a nogpu build. Callers fall back to NewCPU.
func NewGPU(provider gpucontext.DeviceProvider) (*GPU, error) {
	return nil, ErrNoGPUBackend
}

// GPU is an unused placeholder in nogpu builds so package-level
// references (e.g. doc comments, type assertions behind build tags in
// callers) still resolve.
type GPU struct{}

func (g *GPU) DispatchRange(n int, kernel func(i int))                {}
func (g *GPU) DispatchTiled(n, tileSize int, kernel func(gI, lI int)) {}
func (g *GPU) Barrier()                                               {}
func (g *GPU) Close()                                                 {}
func (g *GPU) Workers() int                                           { return 1 }

var _ Executor = (*GPU)(nil)
var _ Workers = (*GPU)(nil)
