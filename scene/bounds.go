package scene

import (
	"math"

	"github.com/assetforge/modelpreview/types"
)

// An axis aligned bounding box.
type BoundingBox struct {
	Min types.Vec3
	Max types.Vec3
}

// Get the per-axis size of the box.
func (b BoundingBox) Size() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b BoundingBox) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// ModelBounds describes the world-space extents of the loaded model. It is
// computed once per render and never mutated.
type ModelBounds struct {
	Center    types.Vec3
	MaxExtent float64
	Min       types.Vec3
	Max       types.Vec3
}

// ComputeBounds calculates the world-space AABB of all meshes by transforming
// the 8 local bounding box corners of each mesh with its world matrix. Using
// the transformed corners rather than the local boxes keeps the result correct
// for rotated and scaled meshes.
//
// Corners that end up non-finite after the transform are skipped. A nil
// result means that the scene contains no usable geometry.
func ComputeBounds(g *Geometry) *ModelBounds {
	if g.Len() == 0 {
		return nil
	}

	box := BoundingBox{
		Min: types.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: types.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
	var used int
	for _, mesh := range g.Meshes {
		for _, corner := range mesh.Corners {
			world := mesh.World.TransformPoint(corner)
			if !world.IsFinite() {
				continue
			}
			box.Min = types.MinVec3(box.Min, world)
			box.Max = types.MaxVec3(box.Max, world)
			used++
		}
	}
	if used == 0 {
		return nil
	}

	return &ModelBounds{
		Center:    box.Center(),
		MaxExtent: box.Size().MaxComponent(),
		Min:       box.Min,
		Max:       box.Max,
	}
}
