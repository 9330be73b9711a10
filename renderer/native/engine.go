// Package native renders wavefront models in-process with a CPU ray tracer.
// It serves as a fallback for hosts without blender.
package native

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/model3d/render3d"

	"github.com/assetforge/modelpreview/asset/reader"
	"github.com/assetforge/modelpreview/log"
	"github.com/assetforge/modelpreview/renderer"
	"github.com/assetforge/modelpreview/scene"
	"github.com/assetforge/modelpreview/types"
)

const (
	DefaultFOVDegrees = 40.0

	// Maps blender sun energy to point light radiance.
	sunRadianceScale = 0.5

	// Ray depth for the recursive tracer. Reflections need an extra bounce.
	aoDepth  = 2
	ssrDepth = 3
)

// Options for the native engine.
type Options struct {
	// Vertical field of view.
	FOVDegrees float64
}

// Engine renders .obj models using model3d.
type Engine struct {
	fov    float64
	logger log.Logger
}

// Create a new native engine.
func NewEngine(opts Options) *Engine {
	if opts.FOVDegrees <= 0 {
		opts.FOVDegrees = DefaultFOVDegrees
	}
	return &Engine{
		fov:    opts.FOVDegrees * math.Pi / 180,
		logger: log.New("native"),
	}
}

func (e *Engine) Name() string {
	return "native"
}

// Import parses the model. Only wavefront files are understood; fbx models
// need the blender engine.
func (e *Engine) Import(ctx context.Context, inputPath string) (renderer.Session, error) {
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".obj" {
		return nil, fmt.Errorf("native: cannot import %s models; use the blender engine", ext)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	geometry, err := reader.ReadGeometry(inputPath)
	if err != nil {
		return nil, err
	}
	return &session{engine: e, geometry: geometry}, nil
}

type session struct {
	engine   *Engine
	geometry *scene.Geometry
}

func (s *session) Geometry() *scene.Geometry {
	return s.geometry
}

func (s *session) Close() error {
	return nil
}

// Render traces the scene and writes a PNG to outputPath.
func (s *session) Render(ctx context.Context, frame renderer.Frame, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	profile := frame.Profile
	obj := s.object()
	if obj == nil {
		s.engine.logger.Warning("nothing to render; writing an empty frame")
		return writePNG(outputPath, transparentFrame(profile.Width, profile.Height))
	}

	cam := s.engine.camera(frame.Camera)
	lights := lightRig(frame.Lighting, cam)
	img := render3d.NewImage(profile.Width, profile.Height)

	if profile.AmbientOcclusion || profile.ScreenSpaceReflections {
		depth := aoDepth
		if profile.ScreenSpaceReflections {
			depth = ssrDepth
		}
		tracer := &render3d.RecursiveRayTracer{
			Camera:     cam,
			Lights:     lights,
			MaxDepth:   depth,
			NumSamples: profile.Samples,
			Antialias:  1,
		}
		s.engine.logger.Debugf("tracing %dx%d, %d samples, depth %d", profile.Width, profile.Height, profile.Samples, depth)
		tracer.Render(img, obj)
	} else {
		caster := &render3d.RayCaster{
			Camera: cam,
			Lights: lights,
		}
		s.engine.logger.Debugf("ray casting %dx%d", profile.Width, profile.Height)
		caster.Render(img, obj)
	}

	out := img.RGBA()
	if profile.Bloom {
		out = bloom(out)
	}
	if profile.TransparentBackground {
		return writePNG(outputPath, applyAlpha(out, coverage(obj, cam, profile.Width, profile.Height)))
	}
	return writePNG(outputPath, out)
}

// Build a renderable object from the scene meshes in world space. Returns
// nil for scenes without triangles.
func (s *session) object() render3d.Object {
	var objects render3d.JoinedObject
	for _, m := range s.geometry.Meshes {
		if len(m.Triangles) == 0 {
			continue
		}

		mesh := model3d.NewMesh()
		for _, tri := range m.Triangles {
			mesh.Add(&model3d.Triangle{
				coord(m.World.TransformPoint(tri[0])),
				coord(m.World.TransformPoint(tri[1])),
				coord(m.World.TransformPoint(tri[2])),
			})
		}

		color := render3d.NewColorRGB(m.Color[0], m.Color[1], m.Color[2])
		objects = append(objects, render3d.Objectify(
			model3d.MeshToCollider(mesh),
			func(model3d.Coord3D, model3d.RayCollision) render3d.Color { return color },
		))
	}

	if len(objects) == 0 {
		return nil
	}
	return objects
}

// Place the camera. The look-at target wins over the euler pose when set.
func (e *Engine) camera(plan scene.CameraPlan) *render3d.Camera {
	var target types.Vec3
	if plan.Target != nil {
		target = *plan.Target
	} else {
		target = plan.Position.Add(plan.ViewDirection())
	}
	return render3d.NewCameraAt(coord(plan.Position), coord(target), e.fov)
}

// The sun becomes a point light at the planned position. Ambient light is
// approximated by a fill light at the camera.
func lightRig(plan scene.LightPlan, cam *render3d.Camera) []*render3d.PointLight {
	return []*render3d.PointLight{
		{
			Origin: coord(plan.SunPosition),
			Color:  render3d.NewColor(plan.SunIntensity * sunRadianceScale),
		},
		{
			Origin: cam.Origin,
			Color:  render3d.NewColor(plan.AmbientIntensity * sunRadianceScale),
		},
	}
}

func coord(v types.Vec3) model3d.Coord3D {
	return model3d.XYZ(v[0], v[1], v[2])
}
