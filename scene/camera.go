package scene

import (
	"fmt"

	"github.com/assetforge/modelpreview/types"
)

const (
	// Camera distance as a multiple of the model's largest extent.
	CameraDistanceFactor = 3.5

	// Lower bound for the camera distance; single-point geometry would
	// otherwise place the camera on its target.
	MinCameraDistance = 1e-3
)

var (
	// Camera offset direction relative to the model center, scaled by the
	// camera distance.
	CameraBearing = types.Vec3{0.7, -0.7, 0.5}

	// Camera pose used when the scene has no geometry.
	DefaultCameraPosition = types.Vec3{7, -7, 5}

	// Base camera orientation (pitch ~63deg, roll ~45deg).
	DefaultCameraRotation = types.Euler{X: 1.1, Y: 0, Z: 0.785}
)

// CameraPlan describes where the preview camera goes. When Target is set the
// engine must add a look-at constraint towards it after creating the camera;
// the constraint overrides Rotation, which only serves as the initial pose.
type CameraPlan struct {
	Position types.Vec3
	Rotation types.Euler
	Target   *types.Vec3

	// Distance between the camera and the model center. Zero for the
	// default plan.
	Distance float64
}

// Get the direction the camera faces once the plan is applied.
func (p CameraPlan) ViewDirection() types.Vec3 {
	if p.Target != nil {
		if dir := p.Target.Sub(p.Position); dir.Len() > 0 {
			return dir.Normalize()
		}
	}

	// Cameras look down their local -Z axis.
	return p.Rotation.Quat().Rotate(types.Vec3{0, 0, -1}).Normalize()
}

func (p CameraPlan) String() string {
	if p.Target == nil {
		return fmt.Sprintf("camera at %v, rotation (%.3f, %.3f, %.3f)", p.Position, p.Rotation.X, p.Rotation.Y, p.Rotation.Z)
	}
	return fmt.Sprintf("camera at %v tracking %v (distance %.3f)", p.Position, *p.Target, p.Distance)
}

// PlanCamera places the camera for the given bounds. A nil bounds value
// yields the fixed default pose.
func PlanCamera(b *ModelBounds) CameraPlan {
	if b == nil {
		return CameraPlan{
			Position: DefaultCameraPosition,
			Rotation: DefaultCameraRotation,
		}
	}

	distance := b.MaxExtent * CameraDistanceFactor
	if distance < MinCameraDistance {
		distance = MinCameraDistance
	}

	target := b.Center
	return CameraPlan{
		Position: b.Center.Add(CameraBearing.Mul(distance)),
		Rotation: DefaultCameraRotation,
		Target:   &target,
		Distance: distance,
	}
}
