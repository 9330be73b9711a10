package scene

import (
	"fmt"

	"github.com/assetforge/modelpreview/types"
)

const (
	// Sun offset from the model center as a multiple of the largest extent.
	LightOffsetFactor = 2.0

	// Constant regardless of model size.
	SunIntensity     = 2.0
	AmbientIntensity = 0.5
)

// Sun position used when the scene has no geometry.
var DefaultSunPosition = types.Vec3{5, 5, 5}

// LightPlan holds a directional key light plus a flat ambient fill term.
type LightPlan struct {
	SunPosition      types.Vec3
	SunIntensity     float64
	AmbientIntensity float64
}

func (p LightPlan) String() string {
	return fmt.Sprintf("sun at %v (%.2f), ambient %.2f", p.SunPosition, p.SunIntensity, p.AmbientIntensity)
}

// PlanLighting places the key light for the given bounds. A nil bounds value
// yields the fixed default rig.
func PlanLighting(b *ModelBounds) LightPlan {
	plan := LightPlan{
		SunPosition:      DefaultSunPosition,
		SunIntensity:     SunIntensity,
		AmbientIntensity: AmbientIntensity,
	}
	if b == nil {
		return plan
	}

	offset := b.MaxExtent * LightOffsetFactor
	plan.SunPosition = b.Center.Add(types.Vec3{offset, offset, offset})
	return plan
}
