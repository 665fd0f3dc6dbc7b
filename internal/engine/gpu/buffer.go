// Package gpu provides CPU-side vertex and index buffer objects with a
// lock/unlock write discipline, plus the geometry descriptor renderers
// consume. Buffers hold the authoritative copy of mesh data; uploading to
// an actual GPU is the renderer's concern.
package gpu

// ElementMask selects which vertex attributes a buffer carries.
type ElementMask uint32

const (
	MaskPosition ElementMask = 1 << iota
	MaskNormal
	MaskTexCoord1
	MaskTangent
)

// elementFloats maps each attribute to its float32 count.
var elementFloats = []struct {
	mask   ElementMask
	floats int
}{
	{MaskPosition, 3},
	{MaskNormal, 3},
	{MaskTexCoord1, 2},
	{MaskTangent, 4},
}

// Floats returns the number of float32 components one vertex occupies
// under this mask.
func (m ElementMask) Floats() int {
	n := 0
	for _, e := range elementFloats {
		if m&e.mask != 0 {
			n += e.floats
		}
	}
	return n
}

// VertexBuffer stores interleaved vertex attribute data.
type VertexBuffer struct {
	data        []float32
	vertexCount int
	mask        ElementMask
	locked      bool
}

// SetSize allocates storage for count vertices with the given attribute
// mask. Existing contents are discarded.
func (b *VertexBuffer) SetSize(count int, mask ElementMask) {
	b.vertexCount = count
	b.mask = mask
	b.data = make([]float32, count*mask.Floats())
	b.locked = false
}

// VertexCount returns the number of vertices the buffer holds.
func (b *VertexBuffer) VertexCount() int { return b.vertexCount }

// Mask returns the buffer's attribute mask.
func (b *VertexBuffer) Mask() ElementMask { return b.mask }

// VertexFloats returns float32 components per vertex.
func (b *VertexBuffer) VertexFloats() int { return b.mask.Floats() }

// Lock returns a writable view of count vertices starting at start, or nil
// if the range is invalid or the buffer is already locked. A non-nil view
// must be released with Unlock.
func (b *VertexBuffer) Lock(start, count int) []float32 {
	if b.locked || start < 0 || count < 0 || start+count > b.vertexCount {
		return nil
	}
	b.locked = true
	stride := b.VertexFloats()
	return b.data[start*stride : (start+count)*stride]
}

// Unlock releases a previous Lock. Safe to call when no lock is held.
func (b *VertexBuffer) Unlock() { b.locked = false }

// Locked reports whether a write lock is outstanding.
func (b *VertexBuffer) Locked() bool { return b.locked }

// Data returns the full interleaved contents for reading or upload.
func (b *VertexBuffer) Data() []float32 { return b.data }

// IndexBuffer stores 16-bit triangle indices.
type IndexBuffer struct {
	data   []uint16
	locked bool
}

// SetSize allocates storage for count indices, discarding contents.
func (b *IndexBuffer) SetSize(count int) {
	b.data = make([]uint16, count)
	b.locked = false
}

// IndexCount returns the number of indices the buffer holds.
func (b *IndexBuffer) IndexCount() int { return len(b.data) }

// Lock returns a writable view of count indices starting at start, or nil
// if the range is invalid or the buffer is already locked.
func (b *IndexBuffer) Lock(start, count int) []uint16 {
	if b.locked || start < 0 || count < 0 || start+count > len(b.data) {
		return nil
	}
	b.locked = true
	return b.data[start : start+count]
}

// Unlock releases a previous Lock.
func (b *IndexBuffer) Unlock() { b.locked = false }

// Data returns the full index contents for reading or upload.
func (b *IndexBuffer) Data() []uint16 { return b.data }
