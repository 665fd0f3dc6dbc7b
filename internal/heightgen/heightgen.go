// Package heightgen generates heightmap images from perlin noise, for
// tooling and tests that need a terrain source without an authored image.
package heightgen

import (
	"github.com/aquilax/go-perlin"

	"github.com/Faultbox/terragrid/internal/engine/resource"
)

// Params controls noise generation.
type Params struct {
	Seed      int64
	Frequency float64 // grid steps per noise unit, typical 0.01-0.1
	Alpha     float64 // smoothness, typical 2
	Beta      float64 // harmonic scaling, typical 2
	Octaves   int
}

// DefaultParams returns parameters producing gentle rolling terrain.
func DefaultParams(seed int64) Params {
	return Params{
		Seed:      seed,
		Frequency: 0.03,
		Alpha:     2,
		Beta:      2,
		Octaves:   4,
	}
}

// Generate produces a single-channel heightmap image of the given size.
// Deterministic for fixed params: the same seed always yields the same
// bytes.
func Generate(width, height int, p Params) *resource.Image {
	noise := perlin.NewPerlin(p.Alpha, p.Beta, int32(p.Octaves), p.Seed)

	buf := make([]byte, width*height)
	for z := 0; z < height; z++ {
		for x := 0; x < width; x++ {
			// Noise2D returns roughly [-1,1]; map to the full byte range.
			n := noise.Noise2D(float64(x)*p.Frequency, float64(z)*p.Frequency)
			v := (n + 1) * 0.5 * 255
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			buf[x+z*width] = byte(v)
		}
	}

	return resource.FromGray(width, height, buf)
}
