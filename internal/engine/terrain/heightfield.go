package terrain

import (
	"github.com/Faultbox/terragrid/internal/engine/resource"
	"github.com/Faultbox/terragrid/pkg/math"
)

// HeightField is the scalar elevation grid derived from a heightmap image.
// Heights are stored pre-scaled by the vertical spacing component, row z=0
// at the near edge (image rows are flipped on build). Immutable once built.
type HeightField struct {
	data []float32
	size math.IntVec2
}

// BuildHeightField samples the image into a new grid sized
// (W-1)/patchSize*patchSize+1 per axis, truncating rows and columns that
// do not fill a whole patch. The first channel of each pixel is scaled by
// spacing.Y. Compressed images are rejected with ErrUnsupportedFormat,
// images without sampleable pixels with ErrInvalidImage.
func BuildHeightField(img *resource.Image, patchSize int, spacing math.Vec3) (*HeightField, error) {
	if img.Compressed {
		return nil, ErrUnsupportedFormat
	}
	if img.Width < 1 || img.Height < 1 || img.Components < 1 ||
		len(img.Data) < img.Width*img.Height*img.Components {
		return nil, ErrInvalidImage
	}

	sizeX := (img.Width-1)/patchSize*patchSize + 1
	sizeZ := (img.Height-1)/patchSize*patchSize + 1

	h := &HeightField{
		data: make([]float32, sizeX*sizeZ),
		size: math.IntVec2{X: sizeX, Y: sizeZ},
	}

	comps := img.Components
	imgRow := img.Width * comps
	// Image row 0 is the far edge of the terrain.
	for z := 0; z < sizeZ; z++ {
		srcRow := img.Data[imgRow*(sizeZ-1-z):]
		dst := h.data[z*sizeX:]
		for x := 0; x < sizeX; x++ {
			dst[x] = float32(srcRow[comps*x]) * spacing.Y
		}
	}

	return h, nil
}

// Size returns the grid dimensions in samples.
func (h *HeightField) Size() math.IntVec2 {
	if h == nil {
		return math.IntVec2{}
	}
	return h.size
}

// SampleRaw returns the stored height at integer grid coordinates. Both
// coordinates clamp independently to the grid edge; an unbuilt field
// samples as 0.
func (h *HeightField) SampleRaw(x, z int) float32 {
	if h == nil || len(h.data) == 0 {
		return 0
	}
	if x < 0 {
		x = 0
	} else if x >= h.size.X {
		x = h.size.X - 1
	}
	if z < 0 {
		z = 0
	} else if z >= h.size.Y {
		z = h.size.Y - 1
	}
	return h.data[z*h.size.X+x]
}

// EstimateNormal returns a smoothed surface normal at the given sample,
// built from the eight neighbor height deltas. Deterministic, no storage.
func (h *HeightField) EstimateNormal(x, z int) math.Vec3 {
	base := h.SampleRaw(x, z)
	n := h.SampleRaw(x, z-1) - base
	ne := h.SampleRaw(x+1, z-1) - base
	e := h.SampleRaw(x+1, z) - base
	se := h.SampleRaw(x+1, z+1) - base
	s := h.SampleRaw(x, z+1) - base
	sw := h.SampleRaw(x-1, z+1) - base
	w := h.SampleRaw(x-1, z) - base
	nw := h.SampleRaw(x-1, z-1) - base

	sum := math.Vec3{X: 0, Y: 1, Z: n}.
		Add(math.Vec3{X: -ne, Y: 1, Z: ne}).
		Add(math.Vec3{X: -e, Y: 1, Z: 0}).
		Add(math.Vec3{X: -se, Y: 1, Z: -se}).
		Add(math.Vec3{X: 0, Y: 1, Z: -s}).
		Add(math.Vec3{X: sw, Y: 1, Z: -sw}).
		Add(math.Vec3{X: w, Y: 1, Z: 0}).
		Add(math.Vec3{X: nw, Y: 1, Z: nw})
	return sum.Normalize()
}
