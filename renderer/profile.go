package renderer

import (
	"fmt"
	"strings"
)

// QualityTier selects a render preset trading render time for fidelity.
type QualityTier int

const (
	Fast QualityTier = iota
	Normal
	High

	numQualityTiers
)

var tierNames = [numQualityTiers]string{"fast", "normal", "high"}

func (t QualityTier) String() string {
	if t < 0 || t >= numQualityTiers {
		return fmt.Sprintf("QualityTier(%d)", int(t))
	}
	return tierNames[t]
}

// ParseQualityTier maps a tier name to a QualityTier. An empty name selects
// the default (fast) tier.
func ParseQualityTier(name string) (QualityTier, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Fast, nil
	}
	for tier, tierName := range tierNames {
		if name == tierName {
			return QualityTier(tier), nil
		}
	}
	return Fast, fmt.Errorf("%w: unknown quality %q; expected one of %s", ErrInvalidArguments, name, strings.Join(tierNames[:], ", "))
}

// ImageFormat describes the raster written by the engine.
type ImageFormat struct {
	FileFormat string
	ColorMode  string
}

// PNG with an alpha channel; the only format previews are written in.
var FormatPNGRGBA = ImageFormat{FileFormat: "PNG", ColorMode: "RGBA"}

// RenderProfile holds the concrete engine settings for one render.
type RenderProfile struct {
	Width  int
	Height int

	// Anti-aliasing samples per pixel.
	Samples int

	AmbientOcclusion       bool
	Bloom                  bool
	ScreenSpaceReflections bool

	// Always off.
	MotionBlur bool

	// Always on.
	TransparentBackground bool

	Format ImageFormat
}

type tierEffects struct {
	samples                int
	ambientOcclusion       bool
	bloom                  bool
	screenSpaceReflections bool
}

// Per-tier settings. Adding a tier only requires a new entry here.
var tierTable = [numQualityTiers]tierEffects{
	Fast:   {samples: 16},
	Normal: {samples: 32, ambientOcclusion: true},
	High:   {samples: 64, ambientOcclusion: true, bloom: true, screenSpaceReflections: true},
}

// ResolveProfile expands a quality tier into render settings. Width and
// height are passed through untouched; callers validate them beforehand.
// Unknown tiers resolve like Fast.
func ResolveProfile(tier QualityTier, width, height int) RenderProfile {
	if tier < 0 || tier >= numQualityTiers {
		tier = Fast
	}
	fx := tierTable[tier]

	return RenderProfile{
		Width:                  width,
		Height:                 height,
		Samples:                fx.samples,
		AmbientOcclusion:       fx.ambientOcclusion,
		Bloom:                  fx.bloom,
		ScreenSpaceReflections: fx.screenSpaceReflections,
		MotionBlur:             false,
		TransparentBackground:  true,
		Format:                 FormatPNGRGBA,
	}
}
