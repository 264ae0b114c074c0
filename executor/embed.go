//go:build !nogpu

package executor

import _ "embed"

//go:embed shaders/ray_kernel.wgsl
var rayKernelWGSL string
