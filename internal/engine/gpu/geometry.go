package gpu

// PrimitiveType enumerates draw primitive kinds.
type PrimitiveType int

const (
	TriangleList PrimitiveType = iota
)

// Geometry describes one drawable unit: a vertex buffer, an index buffer
// and the index range to draw. The buffers are shared, not owned.
type Geometry struct {
	vertexBuffer *VertexBuffer
	indexBuffer  *IndexBuffer
	primitive    PrimitiveType
	drawStart    int
	drawCount    int
}

// SetVertexBuffer assigns the vertex source.
func (g *Geometry) SetVertexBuffer(vb *VertexBuffer) { g.vertexBuffer = vb }

// SetIndexBuffer assigns the index source.
func (g *Geometry) SetIndexBuffer(ib *IndexBuffer) { g.indexBuffer = ib }

// SetDrawRange sets the primitive type and index range to draw.
func (g *Geometry) SetDrawRange(primitive PrimitiveType, start, count int) {
	g.primitive = primitive
	g.drawStart = start
	g.drawCount = count
}

// VertexBuffer returns the vertex source.
func (g *Geometry) VertexBuffer() *VertexBuffer { return g.vertexBuffer }

// IndexBuffer returns the index source.
func (g *Geometry) IndexBuffer() *IndexBuffer { return g.indexBuffer }

// Primitive returns the primitive type.
func (g *Geometry) Primitive() PrimitiveType { return g.primitive }

// DrawStart returns the first index of the draw range.
func (g *Geometry) DrawStart() int { return g.drawStart }

// DrawCount returns the number of indices in the draw range.
func (g *Geometry) DrawCount() int { return g.drawCount }
