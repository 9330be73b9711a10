package renderer

import "time"

type FrameStats struct {
	// The engine that produced the frame.
	Engine string

	// Number of meshes found in the loaded scene.
	MeshCount int

	// The bounds, camera, lights and profile used for the frame.
	Plan *Plan

	// Time spent importing the model and rendering the frame.
	ImportTime time.Duration
	RenderTime time.Duration

	// Where the frame was written.
	OutputPath string
}
