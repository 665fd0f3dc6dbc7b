// Package render uploads terrain patch geometry to the GPU and draws it.
// It consumes the geometry descriptors the terrain core produces; it never
// touches height data directly. Requires a current OpenGL 4.1 context.
package render

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/terragrid/internal/engine/terrain"
	"github.com/Faultbox/terragrid/pkg/math"
)

// patchBatch is one uploaded patch: its VAO/VBO, model transform and the
// slice of the shared index buffer to draw.
type patchBatch struct {
	vao        uint32
	vbo        uint32
	model      math.Mat4
	indexStart int32
	indexCount int32
	visible    bool
}

// TerrainRenderer draws the patches of one terrain.
type TerrainRenderer struct {
	program uint32

	locViewProj int32
	locModel    int32
	locLightDir int32
	locAmbient  int32
	locDiffuse  int32

	ebo     uint32
	batches []patchBatch
}

// NewTerrainRenderer compiles the terrain shader program.
func NewTerrainRenderer() (*TerrainRenderer, error) {
	program, err := compileProgram(terrainVertexShader, terrainFragmentShader)
	if err != nil {
		return nil, err
	}

	r := &TerrainRenderer{program: program}
	r.locViewProj = getUniform(program, "uViewProj")
	r.locModel = getUniform(program, "uModel")
	r.locLightDir = getUniform(program, "uLightDir")
	r.locAmbient = getUniform(program, "uAmbient")
	r.locDiffuse = getUniform(program, "uDiffuse")
	return r, nil
}

// Upload replaces the uploaded geometry with the terrain's current
// patches: one shared element buffer plus a VAO/VBO pair per patch.
func (r *TerrainRenderer) Upload(t *terrain.Terrain) {
	r.clear()

	indices := t.IndexBuffer().Data()
	if len(indices) == 0 {
		return
	}

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	for _, patch := range t.Patches() {
		vb := patch.VertexBuffer()
		data := vb.Data()
		if len(data) == 0 || patch.Node() == nil {
			continue
		}

		var batch patchBatch
		gl.GenVertexArrays(1, &batch.vao)
		gl.BindVertexArray(batch.vao)

		gl.GenBuffers(1, &batch.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, batch.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)

		stride := int32(vb.VertexFloats() * 4)

		// Position (location 0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
		gl.EnableVertexAttribArray(0)

		// Normal (location 1)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
		gl.EnableVertexAttribArray(1)

		// TexCoord (location 2)
		gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
		gl.EnableVertexAttribArray(2)

		// Tangent (location 3)
		gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, stride, 8*4)
		gl.EnableVertexAttribArray(3)

		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

		geom := patch.Geometry()
		batch.indexStart = int32(geom.DrawStart())
		batch.indexCount = int32(geom.DrawCount())
		batch.model = patch.Node().WorldTransform()
		batch.visible = patch.Params().Visible

		r.batches = append(r.batches, batch)
	}

	gl.BindVertexArray(0)
}

// Render draws all visible patches.
func (r *TerrainRenderer) Render(viewProj math.Mat4, lightDir, ambient, diffuse [3]float32) {
	if len(r.batches) == 0 {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.locViewProj, 1, false, viewProj.Ptr())
	gl.Uniform3f(r.locLightDir, lightDir[0], lightDir[1], lightDir[2])
	gl.Uniform3f(r.locAmbient, ambient[0], ambient[1], ambient[2])
	gl.Uniform3f(r.locDiffuse, diffuse[0], diffuse[1], diffuse[2])

	for i := range r.batches {
		batch := &r.batches[i]
		if !batch.visible {
			continue
		}
		gl.UniformMatrix4fv(r.locModel, 1, false, batch.model.Ptr())
		gl.BindVertexArray(batch.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, batch.indexCount, gl.UNSIGNED_SHORT, uintptr(batch.indexStart*2))
	}

	gl.BindVertexArray(0)
}

func (r *TerrainRenderer) clear() {
	for i := range r.batches {
		if r.batches[i].vao != 0 {
			gl.DeleteVertexArrays(1, &r.batches[i].vao)
		}
		if r.batches[i].vbo != 0 {
			gl.DeleteBuffers(1, &r.batches[i].vbo)
		}
	}
	r.batches = nil
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
}

// Destroy releases all GL resources.
func (r *TerrainRenderer) Destroy() {
	r.clear()
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
