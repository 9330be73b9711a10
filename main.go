package main

import (
	"os"

	"github.com/assetforge/modelpreview/cmd"
	"github.com/assetforge/modelpreview/log"
	"github.com/urfave/cli"
)

var logger = log.New("modelpreview")

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "modelpreview"
	app.Usage = "render preview images for 3D models"
	app.Version = "0.1.0"
	app.ArgsUsage = "input_path output_path [width] [height] [quality]"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a TOML config file",
		},
		cli.StringFlag{
			Name:  "engine, e",
			Usage: "rendering engine (blender or native); overrides the config file",
		},
	}
	app.Action = cmd.RenderPreview
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a preview image for a model",
			Description: `
Import a .fbx or .obj model, frame it with a camera placed according to its
bounding box, light it and render a single PNG with a transparent background.

Width and height default to 1280x720. Quality is one of fast (default),
normal or high.`,
			ArgsUsage: "input_path output_path [width] [height] [quality]",
			Action:    cmd.RenderPreview,
		},
		{
			Name:        "inspect",
			Usage:       "print the bounds, camera, lights and render settings for a model",
			Description: `Import the model and print the computed frame without rendering it.`,
			ArgsUsage:   "input_path [width] [height] [quality]",
			Action:      cmd.InspectModel,
		},
		{
			Name:  "watch",
			Usage: "render a preview and re-render it whenever the model changes",
			Description: `
Render a preview and keep watching the model file. Every change triggers a new
render using a fresh scene. Render errors are logged and watching continues.`,
			ArgsUsage: "input_path output_path [width] [height] [quality]",
			Action:    cmd.WatchModel,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
