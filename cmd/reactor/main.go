package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "reactor"
	app.Usage = "compile node graph scenes and preview them with a progressive path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a .toml or .yaml file",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "override the configured log level (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile a scene script and print the compiled scene",
			Description: `
Evaluate a scene script, compile the scene reachable from its output and print
the sphere, material and texture tables. The accumulation schedule the preview
would follow is simulated on a headless renderer and printed as well.`,
			ArgsUsage: "scene.zy",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 320,
					Usage: "simulated viewport width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 180,
					Usage: "simulated viewport height",
				},
				cli.StringFlag{
					Name:  "target, t",
					Usage: "output node to compile, defaults to the configured target",
				},
			},
			Action: CompileScript,
		},
		{
			Name:      "validate",
			Usage:     "validate the settings and, if given, a scene script",
			ArgsUsage: "[scene.zy]",
			Action:    Validate,
		},
		{
			Name:      "view",
			Usage:     "open a window with a progressive preview of a scene script",
			ArgsUsage: "scene.zy",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "reload the script whenever it changes",
				},
				cli.BoolFlag{
					Name:  "profile",
					Usage: "log frame rate and accumulation progress",
				},
				cli.StringFlag{
					Name:  "target, t",
					Usage: "output node to present",
				},
			},
			Action: View,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
