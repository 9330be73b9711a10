package native

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/model3d/render3d"
)

const (
	// Pixels brighter than this (0-255 luma) contribute to bloom.
	bloomThreshold = 200
	bloomRadius    = 6.0
)

// Add a glow around bright areas: extract highlights, blur them and screen
// them over the frame.
func bloom(img *image.RGBA) *image.RGBA {
	highlights := adjust.Apply(img, func(c color.RGBA) color.RGBA {
		luma := (299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000
		if luma < bloomThreshold {
			return color.RGBA{A: c.A}
		}
		return c
	})
	return blend.Screen(img, blur.Gaussian(highlights, bloomRadius))
}

// Compute per pixel object coverage by casting one primary ray through each
// pixel center.
func coverage(obj render3d.Object, cam *render3d.Camera, width, height int) []bool {
	caster := cam.Caster(float64(width-1), float64(height-1))
	mask := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ray := &model3d.Ray{
				Origin:    cam.Origin,
				Direction: caster(float64(x), float64(y)),
			}
			_, _, mask[y*width+x] = obj.Cast(ray)
		}
	}
	return mask
}

// Make every pixel not covered by the model fully transparent.
func applyAlpha(img *image.RGBA, mask []bool) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if !mask[y*b.Dx()+x] {
				continue
			}
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			out.SetNRGBA(b.Min.X+x, b.Min.Y+y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return out
}

func transparentFrame(width, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

func writePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("native: could not write %s: %w", path, err)
	}
	return nil
}
