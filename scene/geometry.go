package scene

import (
	"math"

	"github.com/assetforge/modelpreview/types"
)

// A triangle in mesh-local coordinates.
type Triangle [3]types.Vec3

// A mesh placed in the scene. Engines that only expose bounding information
// (blender) leave Triangles empty; the native engine needs them to render.
type Mesh struct {
	Name string

	// The 8 corners of the local-space bounding box.
	Corners [8]types.Vec3

	// Local to world transformation.
	World types.Mat4

	Triangles []Triangle

	// Diffuse albedo used by engines that do not read materials themselves.
	Color types.Vec3
}

// Geometry is the set of meshes of a loaded scene. It is fetched once per
// render by the pipeline driver and handed explicitly to ComputeBounds.
type Geometry struct {
	Meshes []*Mesh
}

// Returns the number of meshes.
func (g *Geometry) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Meshes)
}

// Returns the total number of triangles across all meshes.
func (g *Geometry) TriangleCount() int {
	if g == nil {
		return 0
	}
	count := 0
	for _, m := range g.Meshes {
		count += len(m.Triangles)
	}
	return count
}

// Generate the 8 corners of the box spanned by min and max. Corner order
// follows blender's bound_box layout.
func BoxCorners(min, max types.Vec3) [8]types.Vec3 {
	return [8]types.Vec3{
		{min[0], min[1], min[2]},
		{min[0], min[1], max[2]},
		{min[0], max[1], max[2]},
		{min[0], max[1], min[2]},
		{max[0], min[1], min[2]},
		{max[0], min[1], max[2]},
		{max[0], max[1], max[2]},
		{max[0], max[1], min[2]},
	}
}

// Calculate the local bounding box of a triangle list and return its corners.
// An empty list yields 8 corners at the origin.
func TriangleCorners(tris []Triangle) [8]types.Vec3 {
	if len(tris) == 0 {
		return BoxCorners(types.Vec3{}, types.Vec3{})
	}

	min := types.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
	max := types.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}
	for _, tri := range tris {
		for _, v := range tri {
			min = types.MinVec3(min, v)
			max = types.MaxVec3(max, v)
		}
	}
	return BoxCorners(min, max)
}
