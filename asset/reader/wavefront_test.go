package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/assetforge/modelpreview/asset"
	"github.com/assetforge/modelpreview/scene"
	"github.com/assetforge/modelpreview/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockResource(payload string) *asset.Resource {
	return asset.NewResourceFromStream("model.obj", strings.NewReader(payload))
}

func writeModel(t *testing.T, dir, name, payload string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))
	return path
}

const cubeObj = `
# unit cube spanning [-1, 1]
o cube
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
f 1 2 3 4
f 5 6 7 8
f 1 2 6 5
f 2 3 7 6
f 3 4 8 7
f 4 1 5 8
`

func TestReadCube(t *testing.T) {
	geometry, err := newWavefrontReader().Read(mockResource(cubeObj))
	require.NoError(t, err)

	require.Equal(t, 1, geometry.Len())
	assert.Equal(t, 12, geometry.TriangleCount())

	mesh := geometry.Meshes[0]
	assert.Equal(t, "cube", mesh.Name)
	assert.Equal(t, types.Ident4(), mesh.World)
	assert.Equal(t, defaultDiffuse, mesh.Color)
	assert.Equal(t, scene.BoxCorners(types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1)), mesh.Corners)

	bounds := scene.ComputeBounds(geometry)
	require.NotNil(t, bounds)
	assert.InDelta(t, 2.0, bounds.MaxExtent, 1e-12)
}

func TestFaceFormats(t *testing.T) {
	payload := `
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1/1 2/2 3/3
f 1//1 2//1 3//1
f 1/1/1 2/2/1 3/3/1
f -3 -2 -1
`
	geometry, err := newWavefrontReader().Read(mockResource(payload))
	require.NoError(t, err)
	require.Equal(t, 1, geometry.Len())
	assert.Equal(t, "default", geometry.Meshes[0].Name)
	assert.Equal(t, 4, geometry.TriangleCount())

	exp := scene.Triangle{types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)}
	for _, tri := range geometry.Meshes[0].Triangles {
		assert.Equal(t, exp, tri)
	}
}

func TestDropEmptyMeshes(t *testing.T) {
	payload := `
o empty
v 0 0 0
v 1 0 0
v 0 1 0
o tri
f 1 2 3
g trailing
`
	geometry, err := newWavefrontReader().Read(mockResource(payload))
	require.NoError(t, err)
	require.Equal(t, 1, geometry.Len())
	assert.Equal(t, "tri", geometry.Meshes[0].Name)
}

func TestEmptyModel(t *testing.T) {
	geometry, err := newWavefrontReader().Read(mockResource("# nothing here\nv 0 0 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, geometry.Len())
	assert.Nil(t, scene.ComputeBounds(geometry))
}

func TestMeshInstances(t *testing.T) {
	payload := cubeObj + `
instance cube 10 0 0 0 0 90 2 1 1
instance cube 0 0 -5 0 0 0 1 1 1
`
	geometry, err := newWavefrontReader().Read(mockResource(payload))
	require.NoError(t, err)
	require.Equal(t, 2, geometry.Len())

	// Scale x by 2, rotate 90 degrees around Z, then translate
	world := geometry.Meshes[0].World
	p := world.TransformPoint(types.XYZ(1, 0, 0))
	assert.True(t, types.ApproxEqual(types.XYZ(10, 2, 0), p, 1e-9), "got %s", p)

	p = geometry.Meshes[1].World.TransformPoint(types.XYZ(1, 1, 1))
	assert.True(t, types.ApproxEqual(types.XYZ(1, 1, -4), p, 1e-9), "got %s", p)

	bounds := scene.ComputeBounds(geometry)
	require.NotNil(t, bounds)
	assert.True(t, types.ApproxEqual(types.XYZ(-1, -2, -6), bounds.Min, 1e-9), "got %s", bounds.Min)
	assert.True(t, types.ApproxEqual(types.XYZ(11, 2, 1), bounds.Max, 1e-9), "got %s", bounds.Max)
	assert.InDelta(t, 12.0, bounds.MaxExtent, 1e-9)
}

func TestUninstancedMeshesStayAtOrigin(t *testing.T) {
	payload := cubeObj + `
o marker
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
instance cube 10 0 0 0 0 0 1 1 1
`
	geometry, err := newWavefrontReader().Read(mockResource(payload))
	require.NoError(t, err)
	require.Equal(t, 2, geometry.Len())

	assert.Equal(t, "cube", geometry.Meshes[0].Name)
	p := geometry.Meshes[0].World.TransformPoint(types.XYZ(1, 1, 1))
	assert.True(t, types.ApproxEqual(types.XYZ(11, 1, 1), p, 1e-9), "got %s", p)
	assert.Equal(t, "marker", geometry.Meshes[1].Name)
	assert.Equal(t, types.Ident4(), geometry.Meshes[1].World)

	bounds := scene.ComputeBounds(geometry)
	require.NotNil(t, bounds)
	assert.True(t, types.ApproxEqual(types.XYZ(0, -1, -1), bounds.Min, 1e-9), "got %s", bounds.Min)
	assert.True(t, types.ApproxEqual(types.XYZ(11, 1, 1), bounds.Max, 1e-9), "got %s", bounds.Max)
}

func TestNonFiniteCoordinates(t *testing.T) {
	specs := map[string]string{
		"inf vertex":  "v 0 0 0\nv 1 0 0\nv inf 1 0\nf 1 2 3\n",
		"nan vertex":  "v nan 0 0\nv nan 1 0\nv nan 0 1\nf 1 2 3\n",
		"-inf vertex": "v 0 -Inf 0\n",
	}

	for name, payload := range specs {
		t.Run(name, func(t *testing.T) {
			_, err := newWavefrontReader().Read(mockResource(payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "wavefront: [model.obj: ")
			assert.Contains(t, err.Error(), "non-finite value")
		})
	}

	dir := t.TempDir()
	writeModel(t, dir, "bad.mtl", "newmtl bad\nKd 1 nan 0\n")
	_, err := ReadGeometry(writeModel(t, dir, "model.obj", "mtllib bad.mtl\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.mtl: 2] error: non-finite value")
}

func TestMaterialsAndIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "parts"), 0755))

	writeModel(t, dir, "scene.mtl", `
newmtl red
Kd 1 0 0
Ks 0.5 0.5 0.5
newmtl red_copy
include red
`)
	writeModel(t, filepath.Join(dir, "parts"), "tri.obj", `
o tri
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)
	main := writeModel(t, dir, "scene.obj", `
mtllib scene.mtl
usemtl red_copy
call parts/tri.obj
o quad
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
f 4 5 6 7
`)

	geometry, err := ReadGeometry(main)
	require.NoError(t, err)
	require.Equal(t, 2, geometry.Len())

	assert.Equal(t, "tri", geometry.Meshes[0].Name)
	assert.Equal(t, types.XYZ(1, 0, 0), geometry.Meshes[0].Color)
	assert.Equal(t, "quad", geometry.Meshes[1].Name)
	assert.Len(t, geometry.Meshes[1].Triangles, 2)
	// Vertices of called files precede the ones declared after the call
	assert.Equal(t, types.XYZ(0, 0, 1), geometry.Meshes[1].Triangles[0][0])
}

func TestReadGeometryErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadGeometry(writeModel(t, dir, "model.fbx", "Kaydara FBX Binary"))
	assert.ErrorIs(t, err, asset.ErrUnsupportedFormat)

	_, err = ReadGeometry(filepath.Join(dir, "missing.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeModel(t, dir, "broken.obj", "call missing.obj\n")
	_, err = ReadGeometry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "["+path+": 1]")
}

func TestParseErrors(t *testing.T) {
	specs := map[string]string{
		"bad vertex":        "v 1 2\n",
		"bad vertex value":  "v 1 2 abc\n",
		"face arity":        "v 0 0 0\nf 1 1\n",
		"pentagon":          "v 0 0 0\nf 1 1 1 1 1\n",
		"face index":        "v 0 0 0\nf 1 2 3\n",
		"mixed face format": "v 0 0 0\nvt 0 0\nf 1/1 1 1\n",
		"missing vertex":    "v 0 0 0\nf /1 1 1\n",
		"unknown material":  "usemtl missing\n",
		"unknown instance":  "instance missing 0 0 0 0 0 0 1 1 1\n",
		"instance arity":    cubeObj + "instance cube 0 0 0\n",
		"instance value":    cubeObj + "instance cube 0 0 0 0 0 x 1 1 1\n",
		"instance nan":      cubeObj + "instance cube 0 0 0 0 0 nan 1 1 1\n",
		"instance inf":      cubeObj + "instance cube 0 0 0 0 0 0 +Inf 1 1\n",
		"unnamed object":    "o\n",
	}

	for name, payload := range specs {
		t.Run(name, func(t *testing.T) {
			_, err := newWavefrontReader().Read(mockResource(payload))
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "wavefront: [model.obj: "), err.Error())
		})
	}
}

func TestSelectFaceCoordIndex(t *testing.T) {
	specs := []struct {
		token     string
		listLen   int
		relOffset int
		exp       int
		expErr    bool
	}{
		{"1", 3, 0, 0, false},
		{"3", 3, 0, 2, false},
		{"1", 5, 2, 2, false},
		{"-1", 3, 0, 2, false},
		{"-3", 3, 0, 0, false},
		{"4", 3, 0, 0, true},
		{"-4", 3, 0, 0, true},
		{"x", 3, 0, 0, true},
	}

	for _, spec := range specs {
		got, err := selectFaceCoordIndex(spec.token, spec.listLen, spec.relOffset)
		if spec.expErr {
			assert.Error(t, err, spec.token)
			continue
		}
		require.NoError(t, err, spec.token)
		assert.Equal(t, spec.exp, got, spec.token)
	}

}
