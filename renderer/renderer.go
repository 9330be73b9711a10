package renderer

import (
	"context"

	"github.com/assetforge/modelpreview/scene"
)

// Engine imports models and hands out render sessions. Implementations wrap
// a 3D content engine such as blender.
type Engine interface {
	// Engine name used in logs and stats.
	Name() string

	// Load a model into a fresh scene.
	Import(ctx context.Context, inputPath string) (Session, error)
}

// Session is a loaded scene. It is used for exactly one render and must be
// closed afterwards; a new render always starts from a new session.
type Session interface {
	// Get the scene meshes.
	Geometry() *scene.Geometry

	// Apply the frame settings and render the scene to outputPath.
	Render(ctx context.Context, frame Frame, outputPath string) error

	// Release any resources held by the session.
	Close() error
}
