package cmd

import (
	"bytes"
	"flag"
	"testing"

	"github.com/assetforge/modelpreview/config"
	"github.com/assetforge/modelpreview/renderer"
	"github.com/assetforge/modelpreview/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestParseRequest(t *testing.T) {
	req, err := parseRequest(cli.Args{"model.fbx", "out/preview.png"}, true)
	require.NoError(t, err)
	assert.Equal(t, renderer.Request{
		InputPath:  "model.fbx",
		OutputPath: "out/preview.png",
		Width:      1280,
		Height:     720,
		Quality:    renderer.Fast,
	}, req)

	req, err = parseRequest(cli.Args{"model.obj", "preview.png", "1920", "1080", "high"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1920, req.Width)
	assert.Equal(t, 1080, req.Height)
	assert.Equal(t, renderer.High, req.Quality)

	req, err = parseRequest(cli.Args{"model.obj", "640"}, false)
	require.NoError(t, err)
	assert.Equal(t, "", req.OutputPath)
	assert.Equal(t, 640, req.Width)
	assert.Equal(t, 720, req.Height)
}

func TestParseRequestErrors(t *testing.T) {
	specs := map[string]cli.Args{
		"no args":        {},
		"missing output": {"model.fbx"},
		"bad width":      {"model.fbx", "out.png", "wide"},
		"zero height":    {"model.fbx", "out.png", "10", "0"},
		"bad quality":    {"model.fbx", "out.png", "10", "10", "ultra"},
		"too many":       {"model.fbx", "out.png", "10", "10", "fast", "extra"},
	}

	for name, args := range specs {
		t.Run(name, func(t *testing.T) {
			_, err := parseRequest(args, true)
			assert.ErrorIs(t, err, renderer.ErrInvalidArguments)
		})
	}
}

func TestNewEngine(t *testing.T) {
	cfg := config.Default()

	engine, err := newEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, "blender", engine.Name())

	cfg.Engine = config.EngineNative
	engine, err = newEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, "native", engine.Name())

	cfg.Engine = "cycles"
	_, err = newEngine(cfg)
	assert.ErrorIs(t, err, renderer.ErrNoEngine)
}

func TestSetupEngineOverride(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", "", "")
	set.String("engine", "", "")
	set.Bool("v", false, "")
	set.Bool("vv", false, "")
	require.NoError(t, set.Parse([]string{"-engine", "native"}))

	cfg, err := setup(cli.NewContext(cli.NewApp(), set, nil))
	require.NoError(t, err)
	assert.Equal(t, config.EngineNative, cfg.Engine)

	require.NoError(t, set.Set("engine", "cycles"))
	_, err = setup(cli.NewContext(cli.NewApp(), set, nil))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestWritePlanTable(t *testing.T) {
	bounds := &scene.ModelBounds{MaxExtent: 2}
	plan := &renderer.Plan{
		Request:   renderer.Request{Quality: renderer.Normal},
		Bounds:    bounds,
		MeshCount: 3,
		Frame: renderer.Frame{
			Camera:   scene.PlanCamera(bounds),
			Lighting: scene.PlanLighting(bounds),
			Profile:  renderer.ResolveProfile(renderer.Normal, 800, 600),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writePlanTable(&buf, "native", plan))
	out := buf.String()

	assert.Contains(t, out, "Camera target")
	assert.Contains(t, out, "(4.900, -4.900, 3.500)")
	assert.Contains(t, out, "800x600")
	assert.Contains(t, out, "PNG RGBA")

	plan.Bounds = nil
	plan.Frame.Camera = scene.PlanCamera(nil)
	buf.Reset()
	require.NoError(t, writePlanTable(&buf, "native", plan))
	assert.Contains(t, buf.String(), "none (empty scene)")
	assert.NotContains(t, buf.String(), "Camera target")
}
