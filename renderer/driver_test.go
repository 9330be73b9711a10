package renderer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/assetforge/modelpreview/asset"
	"github.com/assetforge/modelpreview/scene"
	"github.com/assetforge/modelpreview/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	geometry  *scene.Geometry
	importErr error
	renderErr error

	imports  int
	sessions []*fakeSession
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Import(_ context.Context, inputPath string) (Session, error) {
	e.imports++
	if e.importErr != nil {
		return nil, e.importErr
	}
	s := &fakeSession{geometry: e.geometry, renderErr: e.renderErr}
	e.sessions = append(e.sessions, s)
	return s, nil
}

type fakeSession struct {
	geometry  *scene.Geometry
	renderErr error

	frames []Frame
	closed bool
}

func (s *fakeSession) Geometry() *scene.Geometry { return s.geometry }

func (s *fakeSession) Render(_ context.Context, frame Frame, outputPath string) error {
	if s.renderErr != nil {
		return s.renderErr
	}
	s.frames = append(s.frames, frame)
	return os.WriteFile(outputPath, []byte("png"), 0644)
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func unitCube() *scene.Geometry {
	return &scene.Geometry{
		Meshes: []*scene.Mesh{
			{
				Name:    "cube",
				Corners: scene.BoxCorners(types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1)),
				World:   types.Ident4(),
			},
		},
	}
}

func modelFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("o cube\nv 0 0 0\n"), 0644))
	return path
}

func TestRenderUnitCube(t *testing.T) {
	engine := &fakeEngine{geometry: unitCube()}
	out := filepath.Join(t.TempDir(), "out", "preview.png")

	stats, err := NewDriver(engine).Render(context.Background(), Request{
		InputPath:  modelFile(t, "cube.obj"),
		OutputPath: out,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Quality:    Normal,
	})
	require.NoError(t, err)

	assert.Equal(t, "fake", stats.Engine)
	assert.Equal(t, 1, stats.MeshCount)
	assert.Equal(t, out, stats.OutputPath)
	assert.FileExists(t, out)

	require.Len(t, engine.sessions, 1)
	session := engine.sessions[0]
	assert.True(t, session.closed)
	require.Len(t, session.frames, 1)

	frame := session.frames[0]
	assert.InDelta(t, 7.0, frame.Camera.Distance, 1e-9)
	require.NotNil(t, frame.Camera.Target)
	assert.True(t, types.ApproxEqual(types.Vec3{}, *frame.Camera.Target, 1e-9))
	assert.True(t, types.ApproxEqual(types.XYZ(4, 4, 4), frame.Lighting.SunPosition, 1e-9))
	assert.Equal(t, ResolveProfile(Normal, DefaultWidth, DefaultHeight), frame.Profile)
}

func TestRenderEmptySceneHighQuality(t *testing.T) {
	engine := &fakeEngine{geometry: &scene.Geometry{}}
	out := filepath.Join(t.TempDir(), "preview.png")

	stats, err := NewDriver(engine).Render(context.Background(), Request{
		InputPath:  modelFile(t, "empty.fbx"),
		OutputPath: out,
		Width:      1920,
		Height:     1080,
		Quality:    High,
	})
	require.NoError(t, err)
	assert.Nil(t, stats.Plan.Bounds)
	assert.Equal(t, 0, stats.MeshCount)

	frame := engine.sessions[0].frames[0]
	assert.Equal(t, scene.DefaultCameraPosition, frame.Camera.Position)
	assert.Equal(t, scene.DefaultCameraRotation, frame.Camera.Rotation)
	assert.Nil(t, frame.Camera.Target)
	assert.Equal(t, scene.DefaultSunPosition, frame.Lighting.SunPosition)
	assert.Equal(t, scene.SunIntensity, frame.Lighting.SunIntensity)
	assert.Equal(t, scene.AmbientIntensity, frame.Lighting.AmbientIntensity)

	p := frame.Profile
	assert.Equal(t, 1920, p.Width)
	assert.Equal(t, 1080, p.Height)
	assert.Equal(t, 64, p.Samples)
	assert.True(t, p.AmbientOcclusion)
	assert.True(t, p.Bloom)
	assert.True(t, p.ScreenSpaceReflections)
}

func TestRenderFailures(t *testing.T) {
	engineFailure := errors.New("boom")
	dir := t.TempDir()

	specs := []struct {
		name    string
		engine  *fakeEngine
		req     Request
		err     error
		imports int
	}{
		{
			name:   "missing output",
			engine: &fakeEngine{},
			req:    Request{InputPath: modelFile(t, "a.obj"), Width: 10, Height: 10},
			err:    ErrInvalidArguments,
		},
		{
			name:   "bad width",
			engine: &fakeEngine{},
			req:    Request{InputPath: modelFile(t, "a.obj"), OutputPath: filepath.Join(dir, "a.png"), Width: 0, Height: 10},
			err:    ErrInvalidArguments,
		},
		{
			name:   "missing input",
			engine: &fakeEngine{},
			req:    Request{InputPath: filepath.Join(dir, "missing.fbx"), OutputPath: filepath.Join(dir, "a.png"), Width: 10, Height: 10},
			err:    asset.ErrInputNotFound,
		},
		{
			name:   "gltf input",
			engine: &fakeEngine{},
			req:    Request{InputPath: modelFile(t, "model.gltf"), OutputPath: filepath.Join(dir, "a.png"), Width: 10, Height: 10},
			err:    asset.ErrUnsupportedFormat,
		},
		{
			name:    "import failure",
			engine:  &fakeEngine{importErr: engineFailure},
			req:     Request{InputPath: modelFile(t, "a.obj"), OutputPath: filepath.Join(dir, "a.png"), Width: 10, Height: 10},
			err:     ErrImportFailure,
			imports: 1,
		},
		{
			name:    "render failure",
			engine:  &fakeEngine{geometry: unitCube(), renderErr: engineFailure},
			req:     Request{InputPath: modelFile(t, "a.obj"), OutputPath: filepath.Join(dir, "a.png"), Width: 10, Height: 10},
			err:     ErrRenderFailure,
			imports: 1,
		},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			stats, err := NewDriver(spec.engine).Render(context.Background(), spec.req)
			assert.Nil(t, stats)
			assert.ErrorIs(t, err, spec.err)
			assert.Equal(t, spec.imports, spec.engine.imports)
			for _, s := range spec.engine.sessions {
				assert.True(t, s.closed)
			}
		})
	}
}

func TestRenderWrapsEngineError(t *testing.T) {
	engineFailure := errors.New("blender exited with status 1")
	engine := &fakeEngine{importErr: engineFailure}

	_, err := NewDriver(engine).Render(context.Background(), Request{
		InputPath:  modelFile(t, "a.fbx"),
		OutputPath: filepath.Join(t.TempDir(), "a.png"),
		Width:      10,
		Height:     10,
	})
	assert.ErrorIs(t, err, ErrImportFailure)
	assert.ErrorIs(t, err, engineFailure)
}

func TestRenderWithoutEngine(t *testing.T) {
	_, err := NewDriver(nil).Render(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoEngine)
}

func TestRepeatedRendersUseFreshSessions(t *testing.T) {
	engine := &fakeEngine{geometry: unitCube()}
	driver := NewDriver(engine)
	req := Request{
		InputPath:  modelFile(t, "cube.obj"),
		OutputPath: filepath.Join(t.TempDir(), "cube.png"),
		Width:      32,
		Height:     32,
	}

	for i := 0; i < 3; i++ {
		_, err := driver.Render(context.Background(), req)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, engine.imports)
	require.Len(t, engine.sessions, 3)
	for _, s := range engine.sessions {
		assert.Len(t, s.frames, 1)
		assert.True(t, s.closed)
	}
}

func TestPlanDoesNotRender(t *testing.T) {
	engine := &fakeEngine{geometry: unitCube()}

	plan, err := NewDriver(engine).Plan(context.Background(), Request{
		InputPath: modelFile(t, "cube.obj"),
		Width:     100,
		Height:    100,
		Quality:   High,
	})
	require.NoError(t, err)

	require.NotNil(t, plan.Bounds)
	assert.InDelta(t, 2.0, plan.Bounds.MaxExtent, 1e-9)
	assert.Equal(t, 1, plan.MeshCount)
	assert.Equal(t, 64, plan.Frame.Profile.Samples)

	require.Len(t, engine.sessions, 1)
	assert.Empty(t, engine.sessions[0].frames)
	assert.True(t, engine.sessions[0].closed)
}
