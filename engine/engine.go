// Package engine drives the preview: each window update resolves the active output of the graph, advances the
// camera from user input, recompiles the scene when needed and accumulates one more frame.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/camera"
	"github.com/Carmen-Shannon/reactor/engine/graph"
	"github.com/Carmen-Shannon/reactor/engine/profiler"
	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/Carmen-Shannon/reactor/engine/window"
	"github.com/Carmen-Shannon/reactor/log"
)

// FrameStatus describes what a call to Frame did.
type FrameStatus int

const (
	// FrameIdle means nothing was rendered: no output, no render node or no camera.
	FrameIdle FrameStatus = iota
	// FrameRendered means a frame was accumulated and presented.
	FrameRendered
	// FrameRejected means the render parameters failed validation and the previous image was presented.
	FrameRejected
	// FrameUnsupported means the output shows a render kind the engine cannot draw.
	FrameUnsupported
)

func (s FrameStatus) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameRendered:
		return "rendered"
	case FrameRejected:
		return "rejected"
	case FrameUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

type engine struct {
	renderer renderer.Renderer
	window   window.Window
	logger   log.Logger

	graph   *graph.Graph
	pending chan *graph.Graph
	target  string

	controller camera.CameraController
	input      camera.Input
	viewport   common.Viewport

	// stash holds a compiled scene whose upload was rejected, so the next accepted frame still uploads it.
	stash   *scene.Scene
	// shown is the render node of the last frame; a different one uploads its own scene first.
	shown   graph.NodeID
	lastErr string

	profiler         *profiler.Profiler
	profilingEnabled bool
	renderFrameLimit time.Duration
	lastFrame        time.Time

	quitOnce sync.Once
}

// Engine is the main entry point for the preview.
type Engine interface {
	// Window returns the window, or nil for a headless engine.
	Window() window.Window

	// Renderer returns the renderer frames are accumulated with.
	Renderer() renderer.Renderer

	// Graph returns the graph currently shown.
	Graph() *graph.Graph

	// SetGraph replaces the graph shown. It is safe to call from any goroutine; the swap happens at the start
	// of the next frame and only the latest graph is kept.
	//
	// Parameters:
	//   - g: the new graph
	SetGraph(g *graph.Graph)

	// Frame renders one frame of the active output.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - FrameStatus: what the frame did
	//   - error: graph or GPU errors; parameter validation failures are logged instead
	Frame(dt float32) (FrameStatus, error)

	// EnableProfiler enables periodic frame rate and progress reports in the log.
	EnableProfiler()

	// DisableProfiler disables the reports.
	DisableProfiler()

	// Run calls Frame on every window update until the window closes, then releases the renderer.
	Run()

	// Quit closes the window. Safe to call multiple times.
	Quit()
}

// NewEngine creates an engine showing g through r.
//
// Parameters:
//   - r: the renderer
//   - g: the initial graph
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(r renderer.Renderer, g *graph.Graph, options ...EngineBuilderOption) Engine {
	e := &engine{
		renderer:   r,
		graph:      g,
		pending:    make(chan *graph.Graph, 1),
		logger:     log.New("engine"),
		controller: camera.NewCameraController(),
		profiler:   profiler.NewProfiler(time.Second),
		viewport:   r.RenderParams().Viewport,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.viewport = e.window.Viewport()
		e.window.SetResizeCallback(func(width, height int) {
			e.viewport = common.Viewport{Width: uint32(width), Height: uint32(height)}
			e.renderer.Resize(width, height)
		})
		e.window.SetKeyCallback(e.HandleKey)
		e.window.SetLookCallback(e.HandleLook)
		e.window.SetCursorCallback(e.HandleCursor)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Graph() *graph.Graph {
	return e.graph
}

func (e *engine) SetGraph(g *graph.Graph) {
	// A pending graph that was never shown is replaced.
	select {
	case e.pending <- g:
	default:
		select {
		case <-e.pending:
		default:
		}
		e.pending <- g
	}
}

// HandleKey updates the movement keys of the camera input.
func (e *engine) HandleKey(keyCode uint32, pressed bool) {
	switch keyCode {
	case common.KeyW:
		e.input.Forward = pressed
	case common.KeyS:
		e.input.Backward = pressed
	case common.KeyA:
		e.input.Left = pressed
	case common.KeyD:
		e.input.Right = pressed
	case common.KeyE:
		e.input.Up = pressed
	case common.KeyQ:
		e.input.Down = pressed
	}
}

// HandleLook starts or ends a look drag.
func (e *engine) HandleLook(pressed bool) {
	e.input.Look = pressed
	if pressed {
		e.controller.Reset()
	}
}

// HandleCursor records the pointer position.
func (e *engine) HandleCursor(x, y float32) {
	e.input.Cursor = [2]float32{x, y}
}

func (e *engine) Frame(dt float32) (FrameStatus, error) {
	select {
	case g := <-e.pending:
		e.graph = g
		e.stash = nil
		e.shown = graph.NoNode
		e.controller.Reset()
		e.logger.Info("graph replaced")
	default:
	}
	if e.graph == nil {
		return FrameIdle, nil
	}

	out, ok := e.graph.FindOutput(e.target)
	if !ok {
		return FrameIdle, nil
	}
	renderID, ok := e.graph.OutputSource(out)
	if !ok {
		return FrameIdle, nil
	}

	switched := renderID != e.shown
	e.shown = renderID

	rn, ok := graph.Get[*graph.XraysRenderNode](e.graph, renderID)
	if !ok {
		if n, found := e.graph.Node(renderID); found {
			e.logOnce(fmt.Sprintf("%s output is not supported by the preview", n.Name()))
		}
		return FrameUnsupported, nil
	}

	if switched {
		if err := e.graph.Activate(renderID); err != nil {
			return FrameIdle, err
		}
		e.stash = nil
	}

	if err := e.moveCamera(rn.Camera, dt); err != nil {
		return FrameIdle, err
	}

	req, ok, err := e.graph.Frame(renderID, e.viewport)
	if err != nil {
		return FrameIdle, err
	}
	if !ok {
		return FrameIdle, nil
	}

	upload := req.Scene
	if upload == nil {
		upload = e.stash
	}

	status := FrameRendered
	if err := e.renderer.PrepareFrame(req.Params, upload); err != nil {
		if !errors.Is(err, renderer.ErrInvalidRenderParams) && !errors.Is(err, renderer.ErrViewportTooLarge) {
			return FrameIdle, err
		}
		e.logOnce(err.Error())
		e.stash = upload
		status = FrameRejected
	} else {
		e.stash = nil
		e.lastErr = ""
	}

	if err := e.renderer.RenderFrame(); err != nil {
		return status, err
	}
	if e.profilingEnabled {
		e.profiler.Tick(e.renderer.Progress(), e.renderer.AccumulatedSamples())
	}
	return status, nil
}

// moveCamera applies the input snapshot to the camera node id.
func (e *engine) moveCamera(id graph.NodeID, dt float32) error {
	cam, ok := graph.Get[*graph.CameraNode](e.graph, id)
	if !ok {
		return nil
	}
	in := e.input
	in.Viewport = e.viewport
	pose, changed := e.controller.Apply(cam.Pose(), common.Radians(cam.VFov), in, dt)
	if !changed {
		return nil
	}
	return e.graph.SetPose(id, pose)
}

// logOnce logs msg as a warning unless it repeats the previous warning.
func (e *engine) logOnce(msg string) {
	if msg == e.lastErr {
		return
	}
	e.lastErr = msg
	e.logger.Warning(msg)
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Run() {
	if e.window == nil {
		e.logger.Error("run: engine has no window")
		return
	}
	defer e.renderer.Release()

	e.lastFrame = time.Now()
	e.window.SetUpdateCallback(e.update)
	e.window.ProcessMessages()
}

// update renders one frame. A panic is logged and closes the window instead of crashing the process.
func (e *engine) update() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("frame recovered from panic: %v", r)
			e.Quit()
		}
	}()

	now := time.Now()
	dt := float32(now.Sub(e.lastFrame).Seconds())
	e.lastFrame = now

	if _, err := e.Frame(dt); err != nil {
		e.logOnce(err.Error())
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if e.window != nil {
			if err := e.window.Close(); err != nil {
				e.logger.Warningf("close window: %v", err)
			}
		}
	})
}
