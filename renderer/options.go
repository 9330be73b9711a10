package renderer

import (
	"fmt"

	"github.com/assetforge/modelpreview/scene"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Request describes a single preview render.
type Request struct {
	InputPath  string
	OutputPath string

	// Frame dims.
	Width  int
	Height int

	Quality QualityTier
}

// Check the request fields that do not touch the filesystem.
func (r Request) Validate() error {
	if r.OutputPath == "" {
		return fmt.Errorf("%w: missing output path", ErrInvalidArguments)
	}
	return r.validateFrame()
}

// Like Validate but the output path may be omitted.
func (r Request) validateFrame() error {
	switch {
	case r.InputPath == "":
		return fmt.Errorf("%w: missing input path", ErrInvalidArguments)
	case r.Width <= 0:
		return fmt.Errorf("%w: width must be positive; got %d", ErrInvalidArguments, r.Width)
	case r.Height <= 0:
		return fmt.Errorf("%w: height must be positive; got %d", ErrInvalidArguments, r.Height)
	}
	return nil
}

// Frame bundles the planned camera, lights and render settings that an
// engine applies before rendering.
type Frame struct {
	Camera   scene.CameraPlan
	Lighting scene.LightPlan
	Profile  RenderProfile
}

// Plan is the outcome of running the planners on a loaded scene.
type Plan struct {
	Request Request

	// Nil when the scene contains no geometry.
	Bounds *scene.ModelBounds

	MeshCount int
	Frame     Frame
}
