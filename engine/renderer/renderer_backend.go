package renderer

import (
	"github.com/Carmen-Shannon/reactor/engine/renderer/bind_group_provider"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
	// BackendTypeRecording selects the in-memory backend that records every call without a GPU.
	BackendTypeRecording
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// RendererBackend is the GPU-facing half of the Renderer. The renderer decides what to write and when to dispatch;
// the backend owns the device objects. Every call returns once the work is submitted, without waiting for the GPU.
type RendererBackend interface {
	// Init creates the GPU resources for the bind groups, in group index order, and builds the compute and present
	// pipelines over them.
	//
	// Parameters:
	//   - groups: the bind group providers, where groups[i] is bound at group index i
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	Init(groups []bind_group_provider.BindGroupProvider) error

	// InitBindGroup (re)creates the buffers and bind group of one provider from its current entries.
	// Used when a binding outgrows its buffer.
	//
	// Parameters:
	//   - provider: the provider to rebuild
	//
	// Returns:
	//   - error: an error if the buffers or the bind group could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider) error

	// WriteBuffers queues buffer writes.
	//
	// Parameters:
	//   - writes: the writes, applied in order
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// Dispatch encodes and submits one compute pass of the ray tracing kernel.
	//
	// Parameters:
	//   - workGroupCount: the number of workgroups in x, y and z
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	Dispatch(workGroupCount [3]uint32) error

	// Present draws the accumulated image to the surface and presents it.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	Present() error

	// Resize reconfigures the surface.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Release frees every GPU object owned by the backend.
	Release()
}
