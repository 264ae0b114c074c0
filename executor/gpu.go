//go:build !nogpu

package executor

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	// Registers the Vulkan backend via init() so hal.GetBackend finds it.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// GPU is a compute-pipeline backed Executor. It builds a real shader
// module, bind group layouts, pipeline layout, and compute pipeline from
// rayKernelWGSL, a compute-shader version of the DDA ray march.
//
// Buffer binding for the dispatch itself is not wired: standing up a
// persistent storage-buffer lifecycle (upload Z once, reuse across many
// dispatch_1d calls, read back V) needs HAL API surface this package does
// not attempt to own. DispatchRange and DispatchTiled therefore run the
// kernel on a mirrored CPU pool, the same fallback the teacher's own
// coarse and Vello compute rasterizers take for their unfinished GPU
// dispatch paths. The pipeline objects below are real and are exercised
// at NewGPU time; only the per-call dispatch is mirrored.
type GPU struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shaderModule   hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	outputLayout   hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline

	externalDevice bool
	closed         bool

	mirror *CPU
}

// NewGPU opens a compute device and builds the ray-march pipeline. If
// provider is non-nil and exposes HAL handles (HalDevice() any, HalQueue()
// any, matching gpucontext.HalProvider), the GPU executor shares that
// device instead of opening its own. If provider is nil, NewGPU opens a
// standalone Vulkan device.
//
// On any failure (no backend registered, no adapter, shader compile
// error) NewGPU returns ErrNoGPUBackend wrapping the underlying cause;
// callers fall back to NewCPU.
func NewGPU(provider gpucontext.DeviceProvider) (*GPU, error) {
	g := &GPU{}

	if provider != nil {
		if err := g.useExternalDevice(provider); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoGPUBackend, err)
		}
	} else if err := g.openStandaloneDevice(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGPUBackend, err)
	}

	if err := g.buildPipeline(); err != nil {
		g.releaseDevice()
		return nil, fmt.Errorf("%w: %v", ErrNoGPUBackend, err)
	}

	g.mirror = NewCPU(0)
	return g, nil
}

// useExternalDevice adopts a shared device exposed by provider, following
// the same "HalDevice()/HalQueue() any" duck-typed handshake the teacher's
// GPU accelerators use to accept an externally-owned device.
func (g *GPU) useExternalDevice(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("provider HalQueue is not hal.Queue")
	}
	g.device = device
	g.queue = queue
	g.externalDevice = true
	return nil
}

// openStandaloneDevice opens a Vulkan instance, picks a discrete or
// integrated adapter, and opens a device — the same fallback path the
// teacher's standalone VelloAccelerator.initGPU takes when no device
// provider is available.
func (g *GPU) openStandaloneDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not registered")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	g.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	opened, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	g.device = opened.Device
	g.queue = opened.Queue
	return nil
}

// buildPipeline compiles rayKernelWGSL and stands up the bind group
// layouts, pipeline layout, and compute pipeline for the "cs_ray_march"
// entry point, following the bind-layout/pipeline-layout/pipeline sequence
// the teacher's GPUCoarseRasterizer.init uses.
func (g *GPU) buildPipeline() error {
	spirvBytes, err := naga.Compile(rayKernelWGSL)
	if err != nil {
		return fmt.Errorf("compile ray kernel: %w", err)
	}
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := g.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "viewshed_ray_kernel",
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	g.shaderModule = module

	inputLayout, err := g.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "viewshed_ray_input_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeUniform,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeReadOnlyStorage,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create input bind group layout: %w", err)
	}
	g.bindLayout = inputLayout

	outputLayout, err := g.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "viewshed_ray_output_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create output bind group layout: %w", err)
	}
	g.outputLayout = outputLayout

	pipeLayout, err := g.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "viewshed_ray_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{g.bindLayout, g.outputLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	g.pipelineLayout = pipeLayout

	pipeline, err := g.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "viewshed_ray_pipeline",
		Layout: g.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     g.shaderModule,
			EntryPoint: "cs_ray_march",
		},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	g.pipeline = pipeline

	return nil
}

// DispatchRange implements Executor. See the GPU doc comment: the kernel
// runs on the mirrored CPU pool; the compute pipeline built in NewGPU is
// validated at construction time but not bound per call.
func (g *GPU) DispatchRange(n int, kernel func(i int)) {
	g.mirror.DispatchRange(n, kernel)
}

// DispatchTiled implements Executor, mirrored on CPU; see DispatchRange.
func (g *GPU) DispatchTiled(n, tileSize int, kernel func(globalI, localI int)) {
	g.mirror.DispatchTiled(n, tileSize, kernel)
}

// Barrier implements Executor. The mirrored CPU dispatch already blocks,
// so there is nothing outstanding to fence.
func (g *GPU) Barrier() {
	g.mirror.Barrier()
}

// Workers reports the mirrored CPU pool's worker count, for diagnostics.
func (g *GPU) Workers() int {
	return g.mirror.Workers()
}

// Close releases the compute pipeline, the device (if owned), and the
// mirrored CPU pool. Safe to call more than once.
func (g *GPU) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true

	if g.mirror != nil {
		g.mirror.Close()
	}
	if g.pipeline != nil {
		g.device.DestroyComputePipeline(g.pipeline)
	}
	if g.pipelineLayout != nil {
		g.device.DestroyPipelineLayout(g.pipelineLayout)
	}
	if g.outputLayout != nil {
		g.device.DestroyBindGroupLayout(g.outputLayout)
	}
	if g.bindLayout != nil {
		g.device.DestroyBindGroupLayout(g.bindLayout)
	}
	if g.shaderModule != nil {
		g.device.DestroyShaderModule(g.shaderModule)
	}
	g.releaseDevice()
}

// releaseDevice destroys the device and instance only if this GPU opened
// them itself; a shared/external device is left for its owner to manage.
func (g *GPU) releaseDevice() {
	if g.externalDevice {
		g.device = nil
		g.instance = nil
		g.queue = nil
		return
	}
	if g.device != nil {
		g.device.Destroy()
		g.device = nil
	}
	if g.instance != nil {
		g.instance.Destroy()
		g.instance = nil
	}
	g.queue = nil
}

var _ Executor = (*GPU)(nil)
var _ Workers = (*GPU)(nil)
