package terrain

import (
	"github.com/Faultbox/terragrid/internal/engine/gpu"
	"github.com/Faultbox/terragrid/pkg/math"
)

// PatchVertexMask is the attribute layout of every patch vertex buffer:
// position, normal, first texcoord, tangent with handedness.
const PatchVertexMask = gpu.MaskPosition | gpu.MaskNormal | gpu.MaskTexCoord1 | gpu.MaskTangent

// lodRange is one level's slice of the shared index buffer.
type lodRange struct {
	start int
	count int
}

// Mesher fills patch vertex buffers from a height field. It carries the
// layout parameters that are uniform across all patches of a terrain.
type Mesher struct {
	PatchSize int
	Spacing   math.Vec3
	FieldSize math.IntVec2
}

// BuildPatchMesh emits (PatchSize+1)^2 vertices in row-major order (z
// outer, x inner) into the patch's vertex buffer and rebuilds its bounding
// box. Positions are local to the patch origin. If the buffer lock fails
// no attribute data is written, but the position shadow copy and bounds
// are still produced. The patch's geometry is pointed at the shared index
// buffer with the full-resolution draw range, and the patch is marked
// dirty for spatial reindexing.
func (m Mesher) BuildPatchMesh(p *Patch, field *HeightField, indexBuffer *gpu.IndexBuffer) {
	row := m.PatchSize + 1
	vertexCount := row * row

	vb := p.vertexBuffer
	if vb.VertexCount() != vertexCount || vb.Mask() != PatchVertexMask {
		vb.SetSize(vertexCount, PatchVertexMask)
	}

	box := math.EmptyBoundingBox()
	positions := make([]math.Vec3, 0, vertexCount)

	data := vb.Lock(0, vertexCount)
	i := 0
	for z1 := 0; z1 <= m.PatchSize; z1++ {
		for x1 := 0; x1 <= m.PatchSize; x1++ {
			xPos := p.coords.X*m.PatchSize + x1
			zPos := p.coords.Y*m.PatchSize + z1

			pos := math.Vec3{
				X: float32(x1) * m.Spacing.X,
				Y: field.SampleRaw(xPos, zPos),
				Z: float32(z1) * m.Spacing.Z,
			}
			positions = append(positions, pos)
			box.Merge(pos)

			if data == nil {
				continue
			}

			normal := field.EstimateNormal(xPos, zPos)
			// Tangent: world right projected onto the surface plane,
			// fixed +1 handedness.
			tangent := math.Vec3Right.Sub(normal.Scale(normal.Dot(math.Vec3Right))).Normalize()

			data[i+0] = pos.X
			data[i+1] = pos.Y
			data[i+2] = pos.Z
			data[i+3] = normal.X
			data[i+4] = normal.Y
			data[i+5] = normal.Z
			data[i+6] = float32(xPos) / float32(m.FieldSize.X)
			data[i+7] = 1 - float32(zPos)/float32(m.FieldSize.Y)
			data[i+8] = tangent.X
			data[i+9] = tangent.Y
			data[i+10] = tangent.Z
			data[i+11] = 1
			i += 12
		}
	}
	vb.Unlock()

	p.positions = positions
	p.boundingBox = box
	p.lodLevel = 0
	p.geometry.SetVertexBuffer(vb)
	p.geometry.SetIndexBuffer(indexBuffer)
	p.geometry.SetDrawRange(gpu.TriangleList, 0, m.PatchSize*m.PatchSize*6)
	p.markDirty()
}

// BuildIndexData fills the shared index buffer with one triangle-list
// range per LOD level. Level l walks the cell grid with stride 2^l, so
// every level indexes into the same full-resolution vertex layout. The
// topology depends only on patch size, never on patch contents. Winding
// is consistent for one-sided backface culling.
func BuildIndexData(ib *gpu.IndexBuffer, patchSize, lodLevels int) []lodRange {
	total := 0
	for l := 0; l < lodLevels; l++ {
		cells := patchSize >> l
		total += cells * cells * 6
	}
	ib.SetSize(total)

	data := ib.Lock(0, total)
	if data == nil {
		return nil
	}
	defer ib.Unlock()

	row := patchSize + 1
	ranges := make([]lodRange, 0, lodLevels)
	i := 0
	for l := 0; l < lodLevels; l++ {
		stride := 1 << l
		start := i
		for z := 0; z < patchSize; z += stride {
			for x := 0; x < patchSize; x += stride {
				sw := uint16(x + (z+stride)*row)
				ne := uint16(x + z*row + stride)
				nw := uint16(x + z*row)
				se := uint16(x + (z+stride)*row + stride)

				data[i+0] = sw
				data[i+1] = ne
				data[i+2] = nw

				data[i+3] = sw
				data[i+4] = se
				data[i+5] = ne
				i += 6
			}
		}
		ranges = append(ranges, lodRange{start: start, count: i - start})
	}
	return ranges
}
