package main

import (
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/Carmen-Shannon/reactor/engine/script"
	"github.com/urfave/cli"
)

// Validate checks the settings and, when a script is given, that it evaluates and compiles to a valid scene.
func Validate(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	logger.Notice("settings ok")

	path, err := scriptPath(ctx, cfg)
	if err != nil {
		return nil
	}

	res, err := script.EvalFile(path, evalOptions(cfg, newLoader(cfg))...)
	if err != nil {
		return err
	}
	compiled, err := compiledScene(res.Graph, cfg.Render.Target)
	if err != nil {
		return err
	}
	if err := validateScene(compiled); err != nil {
		return err
	}
	logger.Noticef("%s ok: %d spheres, %d materials, %d textures", path,
		len(compiled.Spheres), len(compiled.Materials), len(compiled.Textures))
	return nil
}

func validateScene(s *scene.Scene) error {
	if s.IsEmpty() {
		logger.Warning("compiled scene is empty, the preview will show the placeholder scene")
		return nil
	}
	return s.Validate()
}
