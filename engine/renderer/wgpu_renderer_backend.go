package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/reactor/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/reactor/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	groups          []bind_group_provider.BindGroupProvider
	computeLayout   *wgpu.PipelineLayout
	presentLayout   *wgpu.PipelineLayout
	computePipeline *wgpu.ComputePipeline
	presentPipeline *wgpu.RenderPipeline
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// NewWGPURendererBackend creates a WebGPU backend drawing to the surface described by surfaceDescriptor.
// The surface is configured with the given size before returning.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually from the window
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - mode: the present mode
//   - forceFallbackAdapter: request the software adapter
//
// Returns:
//   - RendererBackend: the backend
//   - error: an error if no adapter or device could be acquired
func NewWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, mode PresentMode, forceFallbackAdapter bool) (RendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:       &sync.Mutex{},
		instance: wgpu.CreateInstance(nil),
	}
	b.setPresentMode(mode)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.Resize(width, height)
	return b, nil
}

func (b *wgpuRendererBackendImpl) setPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) Init(groups []bind_group_provider.BindGroupProvider) error {
	if len(groups) < 2 {
		return errors.New("wgpu: the image and parameter groups are required")
	}
	for _, g := range groups {
		if err := b.InitBindGroup(g); err != nil {
			return fmt.Errorf("wgpu: init bind group %q: %w", g.Label(), err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups = groups

	layouts := make([]*wgpu.BindGroupLayout, len(groups))
	for i, g := range groups {
		layouts[i] = g.BindGroupLayout()
	}

	var err error
	b.computeLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Raytrace Pipeline Layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	b.presentLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Present Pipeline Layout",
		BindGroupLayouts: layouts[:2],
	})
	if err != nil {
		return err
	}

	if err = b.createComputePipeline(); err != nil {
		return fmt.Errorf("wgpu: compute pipeline: %w", err)
	}
	if err = b.createPresentPipeline(); err != nil {
		return fmt.Errorf("wgpu: present pipeline: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) createComputePipeline() error {
	sh, err := ComputeShader()
	if err != nil {
		return err
	}
	entry, _ := sh.EntryPoint(shader.StageCompute)

	s, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: sh.Label(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sh.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer s.Release()

	b.computePipeline, err = b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "Raytrace Compute Pipeline",
		Layout: b.computeLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s,
			EntryPoint: entry,
		},
	})
	return err
}

func (b *wgpuRendererBackendImpl) createPresentPipeline() error {
	sh, err := PresentShader()
	if err != nil {
		return err
	}
	vertex, _ := sh.EntryPoint(shader.StageVertex)
	fragment, _ := sh.EntryPoint(shader.StageFragment)

	s, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: sh.Label(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sh.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer s.Release()

	b.presentPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Present Render Pipeline",
		Layout: b.presentLayout,
		Vertex: wgpu.VertexState{
			Module:     s,
			EntryPoint: vertex,
		},
		Fragment: &wgpu.FragmentState{
			Module:     s,
			EntryPoint: fragment,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	return err
}

// bufferType maps a binding kind to its layout type and buffer usage.
func bufferType(kind bind_group_provider.BindingKind) (wgpu.BufferBindingType, wgpu.BufferUsage) {
	switch kind {
	case bind_group_provider.BindingStorage:
		return wgpu.BufferBindingTypeStorage, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	case bind_group_provider.BindingReadOnlyStorage:
		return wgpu.BufferBindingTypeReadOnlyStorage, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	default:
		return wgpu.BufferBindingTypeUniform, wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := provider.Entries()
	if len(entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		layoutEntries := make([]wgpu.BindGroupLayoutEntry, len(entries))
		for i, e := range entries {
			t, _ := bufferType(e.Kind)
			layoutEntries[i] = wgpu.BindGroupLayoutEntry{
				Binding:    uint32(e.Binding),
				Visibility: wgpu.ShaderStageCompute | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type: t,
				},
			}
		}

		var err error
		layout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   provider.Label() + " Bind Group Layout",
			Entries: layoutEntries,
		})
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(entries))
	for i, e := range entries {
		_, usage := bufferType(e.Kind)

		// Buffers are re-created at the entry's current size.
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s Buffer %d", provider.Label(), e.Binding),
			Size:  e.Size,
			Usage: usage,
		})
		if err != nil {
			return err
		}
		provider.SetBuffer(e.Binding, buf)
		bindGroupEntries[i] = wgpu.BindGroupEntry{
			Binding: uint32(e.Binding),
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil || len(w.Data) == 0 {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) Dispatch(workGroupCount [3]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computePipeline == nil {
		return errors.New("wgpu: dispatch before init")
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(b.computePipeline)
	for i, g := range b.groups {
		pass.SetBindGroup(uint32(i), g.BindGroup(), nil)
	}
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.presentPipeline == nil {
		return errors.New("wgpu: present before init")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Present Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	pass.SetPipeline(b.presentPipeline)
	for i, g := range b.groups[:2] {
		pass.SetBindGroup(uint32(i), g.BindGroup(), nil)
	}
	pass.Draw(3, 1, 0, 0)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computePipeline != nil {
		b.computePipeline.Release()
		b.computePipeline = nil
	}
	if b.presentPipeline != nil {
		b.presentPipeline.Release()
		b.presentPipeline = nil
	}
	if b.computeLayout != nil {
		b.computeLayout.Release()
		b.computeLayout = nil
	}
	if b.presentLayout != nil {
		b.presentLayout.Release()
		b.presentLayout = nil
	}
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
