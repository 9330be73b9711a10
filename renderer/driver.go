package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/assetforge/modelpreview/asset"
	"github.com/assetforge/modelpreview/log"
	"github.com/assetforge/modelpreview/scene"
)

// Driver runs the preview pipeline against an engine: validate the request,
// load the model into a fresh session, plan the frame and render it.
type Driver struct {
	engine Engine
	logger log.Logger
}

// Create a new driver for the given engine.
func NewDriver(engine Engine) *Driver {
	return &Driver{
		engine: engine,
		logger: log.New("driver"),
	}
}

// Render a preview image for the request.
func (d *Driver) Render(ctx context.Context, req Request) (*FrameStats, error) {
	if d.engine == nil {
		return nil, ErrNoEngine
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := asset.CheckInput(req.InputPath); err != nil {
		return nil, err
	}
	if err := asset.EnsureOutputDir(req.OutputPath); err != nil {
		return nil, err
	}

	session, plan, importTime, err := d.load(ctx, req)
	if err != nil {
		return nil, err
	}
	defer d.close(session)

	d.logger.Infof("rendering %dx%d (%s) to %s", plan.Frame.Profile.Width, plan.Frame.Profile.Height, req.Quality, req.OutputPath)
	start := time.Now()
	if err = session.Render(ctx, plan.Frame, req.OutputPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}

	return &FrameStats{
		Engine:     d.engine.Name(),
		MeshCount:  plan.MeshCount,
		Plan:       plan,
		ImportTime: importTime,
		RenderTime: time.Since(start),
		OutputPath: req.OutputPath,
	}, nil
}

// Plan loads the model and computes the frame without rendering it. The
// output path is not touched.
func (d *Driver) Plan(ctx context.Context, req Request) (*Plan, error) {
	if d.engine == nil {
		return nil, ErrNoEngine
	}
	if err := req.validateFrame(); err != nil {
		return nil, err
	}
	if err := asset.CheckInput(req.InputPath); err != nil {
		return nil, err
	}

	session, plan, _, err := d.load(ctx, req)
	if err != nil {
		return nil, err
	}
	d.close(session)
	return plan, nil
}

// Import the model into a new session and plan the frame.
func (d *Driver) load(ctx context.Context, req Request) (Session, *Plan, time.Duration, error) {
	d.logger.Noticef("importing %s using %s engine", req.InputPath, d.engine.Name())
	start := time.Now()
	session, err := d.engine.Import(ctx, req.InputPath)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %w", ErrImportFailure, err)
	}
	importTime := time.Since(start)

	return session, planFrame(req, session.Geometry(), d.logger), importTime, nil
}

func (d *Driver) close(session Session) {
	if err := session.Close(); err != nil {
		d.logger.Warningf("could not release %s session: %s", d.engine.Name(), err)
	}
}

// Run the planners in order on the loaded scene.
func planFrame(req Request, geometry *scene.Geometry, logger log.Logger) *Plan {
	bounds := scene.ComputeBounds(geometry)
	if bounds == nil {
		logger.Warning("scene contains no geometry; using default camera and lights")
	} else {
		logger.Debugf("bounds: center %s, max extent %.3f", bounds.Center, bounds.MaxExtent)
	}

	plan := &Plan{
		Request:   req,
		Bounds:    bounds,
		MeshCount: geometry.Len(),
		Frame: Frame{
			Camera:   scene.PlanCamera(bounds),
			Lighting: scene.PlanLighting(bounds),
			Profile:  ResolveProfile(req.Quality, req.Width, req.Height),
		},
	}

	logger.Debugf("camera: %s", plan.Frame.Camera)
	logger.Debugf("lighting: %s", plan.Frame.Lighting)
	return plan
}
