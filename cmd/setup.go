package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/assetforge/modelpreview/config"
	"github.com/assetforge/modelpreview/renderer"
	"github.com/assetforge/modelpreview/renderer/blender"
	"github.com/assetforge/modelpreview/renderer/native"
	"github.com/urfave/cli"
)

// Load the config file named by --config (or the defaults), apply the
// --engine override and configure logging.
func setup(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if engine := ctx.GlobalString("engine"); engine != "" {
		cfg.Engine = engine
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	if err := setupLogging(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Create the engine selected by the config.
func newEngine(cfg *config.Config) (renderer.Engine, error) {
	switch cfg.Engine {
	case config.EngineNative:
		return native.NewEngine(native.Options{FOVDegrees: cfg.Native.FOVDegrees}), nil
	case config.EngineBlender:
		bin, err := cfg.Blender.BinaryPath()
		if err != nil {
			return nil, err
		}
		args, err := cfg.Blender.ArgList()
		if err != nil {
			return nil, err
		}
		return blender.NewEngine(blender.Options{
			Binary:    bin,
			ExtraArgs: args,
			Timeout:   cfg.Blender.Timeout(),
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", renderer.ErrNoEngine, cfg.Engine)
}

// Parse the positional arguments: input [output] [width] [height] [quality].
// The output path is only expected when withOutput is set.
func parseRequest(args cli.Args, withOutput bool) (renderer.Request, error) {
	req := renderer.Request{
		Width:   renderer.DefaultWidth,
		Height:  renderer.DefaultHeight,
		Quality: renderer.Fast,
	}

	required := 1
	usage := "input_path"
	if withOutput {
		required = 2
		usage = "input_path output_path"
	}
	if len(args) < required {
		return req, fmt.Errorf("%w: expected %s [width] [height] [quality]", renderer.ErrInvalidArguments, usage)
	}
	if len(args) > required+3 {
		return req, fmt.Errorf("%w: too many arguments", renderer.ErrInvalidArguments)
	}

	req.InputPath = args[0]
	if withOutput {
		req.OutputPath = args[1]
	}

	optional := args[required:]
	var err error
	if len(optional) > 0 {
		if req.Width, err = parseDim("width", optional[0]); err != nil {
			return req, err
		}
	}
	if len(optional) > 1 {
		if req.Height, err = parseDim("height", optional[1]); err != nil {
			return req, err
		}
	}
	if len(optional) > 2 {
		if req.Quality, err = renderer.ParseQualityTier(optional[2]); err != nil {
			return req, err
		}
	}
	return req, nil
}

func parseDim(name, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer; got %q", renderer.ErrInvalidArguments, name, value)
	}
	return v, nil
}

// Cancel the returned context on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
