package executor

import "errors"

// ErrNoGPUBackend is returned by NewGPU when the binary was built with the
// nogpu tag, or when no compatible adapter could be opened. Callers fall
// back to NewCPU.
var ErrNoGPUBackend = errors.New("executor: GPU backend not available")
