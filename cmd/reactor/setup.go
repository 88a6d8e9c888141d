package main

import (
	"fmt"

	"github.com/Carmen-Shannon/reactor/config"
	"github.com/Carmen-Shannon/reactor/engine/script"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/Carmen-Shannon/reactor/log"
	"github.com/urfave/cli"
)

var logger = log.New("cli")

// setup loads the settings named by the global flags and applies the log level.
func setup(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if lvl := ctx.GlobalString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cfg, err
	}
	log.SetLevel(level)
	return cfg, nil
}

// scriptPath returns the script named on the command line, falling back to the configured one.
func scriptPath(ctx *cli.Context, cfg config.Config) (string, error) {
	if path := ctx.Args().First(); path != "" {
		return path, nil
	}
	if cfg.Script.Path != "" {
		return cfg.Script.Path, nil
	}
	return "", fmt.Errorf("%s: missing scene script argument", ctx.Command.Name)
}

// target returns the output to show, the command flag winning over the settings.
func target(ctx *cli.Context, cfg config.Config) string {
	if t := ctx.String("target"); t != "" {
		return t
	}
	return cfg.Render.Target
}

// newLoader returns a texture cache with the configured textures already decoded.
func newLoader(cfg config.Config) texture.CachedLoader {
	var options []texture.LoaderBuilderOption
	if cfg.Textures.Workers > 0 {
		options = append(options, texture.WithWorkers(cfg.Textures.Workers))
	}
	loader := texture.NewCachedLoader(options...)

	for req, err := range loader.Preload(cfg.TextureRequests()) {
		logger.Warningf("preload %s: %v", req.Path, err)
	}
	return loader
}

// evalOptions returns the script options derived from the settings.
func evalOptions(cfg config.Config, loader texture.Loader) []script.EvalBuilderOption {
	return []script.EvalBuilderOption{
		script.WithTextureLoader(loader),
		script.WithRenderDefaults(cfg.Render.Sampling, cfg.Render.Sky),
	}
}
