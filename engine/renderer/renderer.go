package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/reactor/engine/camera"
	"github.com/Carmen-Shannon/reactor/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/Carmen-Shannon/reactor/log"
)

// ErrViewportTooLarge is returned by PrepareFrame when the viewport has more pixels than the image buffer holds.
var ErrViewportTooLarge = errors.New("renderer: viewport exceeds max viewport resolution")

// DefaultMaxViewportResolution is the default image buffer capacity in pixels.
const DefaultMaxViewportResolution = 2560 * 1440

// minStorageSize is the smallest storage buffer the renderer allocates, so empty scene lists still bind.
const minStorageSize = 32

// Bind group indices shared with the shaders.
const (
	groupImage = iota
	groupParameters
	groupScene
)

// Bindings within the scene group.
const (
	bindingSpheres = iota
	bindingMaterials
	bindingTextures
	bindingLights
	bindingSceneInfo
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend
	logger  log.Logger

	imageGroup bind_group_provider.BindGroupProvider
	paramGroup bind_group_provider.BindGroupProvider
	sceneGroup bind_group_provider.BindGroupProvider

	latest      RenderParams
	progress    RenderProgress
	frameNumber uint32

	maxViewportResolution uint32
	initialScene          *scene.Scene
}

// Renderer is the progressive path tracing accumulator. Each PrepareFrame traces a few samples per pixel into an
// accumulation buffer; parameter or scene changes restart accumulation and the image converges as frames go by.
type Renderer interface {
	// SetRenderParams validates and applies render parameters. Unless force is set, parameters equal to the last
	// accepted ones are a no-op. Applying parameters rewrites the camera and sky buffers and resets accumulation.
	//
	// Parameters:
	//   - force: apply even when the parameters are unchanged
	//   - params: the new parameters
	//
	// Returns:
	//   - error: a *ValidationError when the parameters are rejected; the previous parameters stay active
	SetRenderParams(force bool, params RenderParams) error

	// PrepareFrame applies the parameters, uploads the scene when one is given, and dispatches one accumulation pass.
	// Passing a scene forces the parameters to be re-applied so accumulation restarts on the new scene.
	//
	// Parameters:
	//   - params: the render parameters for this frame
	//   - scn: a newly compiled scene, or nil to keep the current one
	//
	// Returns:
	//   - error: a validation, scene or dispatch error; nothing is dispatched when it is non-nil
	PrepareFrame(params RenderParams, scn *scene.Scene) error

	// RenderFrame presents the accumulated image.
	//
	// Returns:
	//   - error: an error if presenting failed
	RenderFrame() error

	// Progress returns accumulated samples divided by the sample budget, in [0, 1].
	//
	// Returns:
	//   - float32: the accumulation progress
	Progress() float32

	// AccumulatedSamples returns the samples accumulated per pixel since the last reset.
	AccumulatedSamples() uint32

	// FrameNumber returns the number the next prepared frame will carry. It starts at 1.
	FrameNumber() uint32

	// RenderParams returns the last accepted parameters.
	RenderParams() RenderParams

	// Resize reconfigures the presentation surface.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Release frees every GPU resource.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer validates the initial parameters, creates the GPU resources on backend, uploads the initial scene
// (the stub scene unless WithScene is given) and returns a renderer ready for its first frame.
//
// Parameters:
//   - backend: the GPU backend
//   - params: the initial render parameters
//   - options: functional options for configuring the renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: a *ValidationError for invalid parameters, or a backend error
func NewRenderer(backend RendererBackend, params RenderParams, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:                    &sync.Mutex{},
		backend:               backend,
		logger:                log.New("renderer"),
		frameNumber:           1,
		maxViewportResolution: DefaultMaxViewportResolution,
	}
	for _, option := range options {
		option(r)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	var frame GPUFrameData
	var sampling GPUSamplingParams
	var cam camera.GPUCamera
	var sky GPUSky
	var info GPUSceneInfo

	r.imageGroup = bind_group_provider.NewBindGroupProvider("image",
		bind_group_provider.WithUniform(0, uint64(frame.Size())),
		bind_group_provider.WithStorage(1, uint64(r.maxViewportResolution)*ImageTexelSize, false),
	)
	r.paramGroup = bind_group_provider.NewBindGroupProvider("parameters",
		bind_group_provider.WithUniform(0, uint64(sampling.Size())),
		bind_group_provider.WithUniform(1, uint64(cam.Size())),
		bind_group_provider.WithUniform(2, uint64(sky.Size())),
	)
	r.sceneGroup = bind_group_provider.NewBindGroupProvider("scene",
		bind_group_provider.WithStorage(bindingSpheres, minStorageSize, true),
		bind_group_provider.WithStorage(bindingMaterials, minStorageSize, true),
		bind_group_provider.WithStorage(bindingTextures, minStorageSize, true),
		bind_group_provider.WithStorage(bindingLights, minStorageSize, true),
		bind_group_provider.WithUniform(bindingSceneInfo, uint64(info.Size())),
	)

	groups := []bind_group_provider.BindGroupProvider{r.imageGroup, r.paramGroup, r.sceneGroup}
	if err := checkShaders(groups); err != nil {
		return nil, err
	}
	if err := backend.Init(groups); err != nil {
		return nil, fmt.Errorf("renderer: failed to init backend: %w", err)
	}

	r.writeParams(params)
	r.latest = params

	initial := r.initialScene
	if initial == nil {
		initial = scene.Stub()
	}
	if err := r.uploadScene(initial); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *renderer) SetRenderParams(force bool, params RenderParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setRenderParams(force, params)
}

func (r *renderer) setRenderParams(force bool, params RenderParams) error {
	if !force && params == r.latest {
		return nil
	}
	if err := params.Validate(); err != nil {
		return err
	}

	r.writeParams(params)
	r.latest = params
	r.progress.Reset()
	r.logger.Debugf("render params applied (force=%t), accumulation reset", force)
	return nil
}

func (r *renderer) writeParams(params RenderParams) {
	sky := NewGPUSky(params.Sky)
	cam := camera.NewGPUCamera(params.Camera, params.Viewport)
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.paramGroup, Binding: 2, Data: sky.Marshal()},
		{Provider: r.paramGroup, Binding: 1, Data: cam.Marshal()},
	})
}

func (r *renderer) PrepareFrame(params RenderParams, scn *scene.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pixels := params.Viewport.Pixels(); pixels > r.maxViewportResolution {
		return fmt.Errorf("%w: %s is %d pixels, max %d", ErrViewportTooLarge, params.Viewport, pixels, r.maxViewportResolution)
	}
	if err := r.setRenderParams(scn != nil, params); err != nil {
		return err
	}
	if scn != nil {
		if err := r.uploadScene(scn); err != nil {
			return err
		}
	}

	sampling := r.progress.NextFrame(r.latest.Sampling)
	frame := GPUFrameData{
		Width:       params.Viewport.Width,
		Height:      params.Viewport.Height,
		FrameNumber: r.frameNumber,
	}
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.paramGroup, Binding: 0, Data: sampling.Marshal()},
		{Provider: r.imageGroup, Binding: 0, Data: frame.Marshal()},
	})
	r.frameNumber++

	if err := r.backend.Dispatch(params.Viewport.WorkGroups(WorkGroupSize)); err != nil {
		return fmt.Errorf("renderer: dispatch failed: %w", err)
	}
	return nil
}

// uploadScene packs the scene and writes it to the scene group, growing buffers that are too small.
func (r *renderer) uploadScene(s *scene.Scene) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("renderer: scene rejected: %w", err)
	}

	packed := s.Pack()
	data := map[int][]byte{
		bindingSpheres:   packed.Spheres,
		bindingMaterials: packed.Materials,
		bindingTextures:  packed.Textures,
		bindingLights:    packed.Lights,
	}

	grow := false
	for binding, d := range data {
		entry, _ := r.sceneGroup.Entry(binding)
		if need := storageSize(len(d)); need > entry.Size {
			r.sceneGroup.SetEntrySize(binding, need)
			grow = true
		}
	}
	if grow {
		if err := r.backend.InitBindGroup(r.sceneGroup); err != nil {
			return fmt.Errorf("renderer: failed to grow scene buffers: %w", err)
		}
		r.logger.Debugf("scene buffers grown for %d spheres, %d materials, %d texels", packed.SphereCount, packed.MaterialCount, packed.TexelCount)
	}

	info := NewGPUSceneInfo(packed)
	writes := []bind_group_provider.BufferWrite{{Provider: r.sceneGroup, Binding: bindingSceneInfo, Data: info.Marshal()}}
	for _, binding := range []int{bindingSpheres, bindingMaterials, bindingTextures, bindingLights} {
		if len(data[binding]) > 0 {
			writes = append(writes, bind_group_provider.BufferWrite{Provider: r.sceneGroup, Binding: binding, Data: data[binding]})
		}
	}
	r.backend.WriteBuffers(writes)
	return nil
}

// storageSize rounds n up to a multiple of 16, with a floor of minStorageSize.
func storageSize(n int) uint64 {
	return max(uint64(n+15)&^15, minStorageSize)
}

func (r *renderer) RenderFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Present()
}

func (r *renderer) Progress() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest.Sampling.MaxSamplesPerPixel == 0 {
		return 0
	}
	return float32(r.progress.AccumulatedSamples()) / float32(r.latest.Sampling.MaxSamplesPerPixel)
}

func (r *renderer) AccumulatedSamples() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress.AccumulatedSamples()
}

func (r *renderer) FrameNumber() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameNumber
}

func (r *renderer) RenderParams() RenderParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Resize(width, height)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
	r.imageGroup.Release()
	r.paramGroup.Release()
	r.sceneGroup.Release()
}
