package main

import (
	"context"
	"errors"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine"
	"github.com/Carmen-Shannon/reactor/engine/camera"
	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/script"
	"github.com/Carmen-Shannon/reactor/engine/window"
	"github.com/urfave/cli"
)

// View opens the preview window on a scene script.
func View(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	path, err := scriptPath(ctx, cfg)
	if err != nil {
		return err
	}

	loader := newLoader(cfg)
	options := evalOptions(cfg, loader)
	res, err := script.EvalFile(path, options...)
	if err != nil {
		return err
	}

	w, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title+" - "+path),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}

	mode := renderer.PresentModeUncapped
	if cfg.Window.VSync {
		mode = renderer.PresentModeVSync
	}
	viewport := w.Viewport()
	backend, err := renderer.NewWGPURendererBackend(w.SurfaceDescriptor(), int(viewport.Width), int(viewport.Height), mode, false)
	if err != nil {
		return err
	}

	cam := camera.DefaultPose().Camera(common.Radians(camera.DefaultVFovDegrees), camera.DefaultAperture,
		camera.DefaultFocusDistance())
	r, err := renderer.NewRenderer(backend, renderer.RenderParams{
		Camera:   cam,
		Viewport: viewport,
		Sky:      cfg.Render.Sky,
		Sampling: cfg.Render.Sampling,
	}, renderer.WithMaxViewportResolution(cfg.Render.MaxViewportResolution))
	if err != nil {
		backend.Release()
		return err
	}

	e := engine.NewEngine(r, res.Graph,
		engine.WithWindow(w),
		engine.WithTarget(target(ctx, cfg)),
		engine.WithProfiling(ctx.Bool("profile")),
	)

	if ctx.Bool("watch") || cfg.Script.Watch {
		watchCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go watch(watchCtx, path, e, options)
	}

	e.Run()
	return nil
}

// watch hands every successful reload of the script to the engine. The first evaluation is skipped since the
// engine already shows it.
func watch(ctx context.Context, path string, e engine.Engine, options []script.EvalBuilderOption) {
	first := true
	err := script.Watch(ctx, path, func(res *script.Result, err error) {
		if first {
			first = false
			return
		}
		if err != nil {
			logger.Warningf("keeping the previous graph: %v", err)
			return
		}
		e.SetGraph(res.Graph)
	}, options...)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("watch %s: %v", path, err)
	}
}
