package terrain

import (
	"testing"

	"github.com/Faultbox/terragrid/internal/engine/gpu"
)

func TestBuildIndexDataRanges(t *testing.T) {
	ib := &gpu.IndexBuffer{}
	ranges := BuildIndexData(ib, 8, 2)

	if len(ranges) != 2 {
		t.Fatalf("ranges: got %d, want 2", len(ranges))
	}
	if ranges[0] != (lodRange{start: 0, count: 8 * 8 * 6}) {
		t.Errorf("level 0: got %+v", ranges[0])
	}
	if ranges[1] != (lodRange{start: 384, count: 4 * 4 * 6}) {
		t.Errorf("level 1: got %+v", ranges[1])
	}
	if got, want := ib.IndexCount(), 384+96; got != want {
		t.Errorf("index count: got %d, want %d", got, want)
	}

	// Every level indexes the same full-resolution (8+1)^2 vertex layout.
	for i, idx := range ib.Data() {
		if int(idx) >= 9*9 {
			t.Fatalf("index %d out of range: %d", i, idx)
		}
	}
}

func TestBuildIndexDataTopology(t *testing.T) {
	ib := &gpu.IndexBuffer{}
	BuildIndexData(ib, 2, 1)

	data := ib.Data()
	if len(data) != 2*2*6 {
		t.Fatalf("index count: got %d, want 24", len(data))
	}

	// Cell (0,0), row stride 3: triangles (sw,ne,nw) then (sw,se,ne).
	want := []uint16{3, 1, 0, 3, 4, 1}
	for i, w := range want {
		if data[i] != w {
			t.Fatalf("cell (0,0): got %v, want %v", data[:6], want)
		}
	}
	// Cell (1,0) shifts everything right by one.
	want = []uint16{4, 2, 1, 4, 5, 2}
	for i, w := range want {
		if data[6+i] != w {
			t.Fatalf("cell (1,0): got %v, want %v", data[6:12], want)
		}
	}
}

func TestBuildPatchMesh(t *testing.T) {
	field, err := BuildHeightField(grayImage(5, 5, flat(0)), 4, DefaultSpacing)
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}

	ib := &gpu.IndexBuffer{}
	BuildIndexData(ib, 4, 1)

	p := newPatch(nil, 0, 0)
	m := Mesher{PatchSize: 4, Spacing: DefaultSpacing, FieldSize: field.Size()}
	m.BuildPatchMesh(p, field, ib)

	vb := p.VertexBuffer()
	if got, want := vb.VertexCount(), 5*5; got != want {
		t.Errorf("vertex count: got %d, want %d", got, want)
	}
	if vb.Mask() != PatchVertexMask {
		t.Errorf("mask: got %v, want %v", vb.Mask(), PatchVertexMask)
	}
	if got := len(p.Positions()); got != 25 {
		t.Errorf("positions: got %d, want 25", got)
	}

	box := p.BoundingBox()
	if !near(box.Min.X, 0) || !near(box.Min.Y, 0) || !near(box.Min.Z, 0) {
		t.Errorf("bbox min: got %v", box.Min)
	}
	if !near(box.Max.X, 4) || !near(box.Max.Y, 0) || !near(box.Max.Z, 4) {
		t.Errorf("bbox max: got %v", box.Max)
	}

	// Flat field: every vertex has an up normal and an x-aligned tangent.
	data := vb.Data()
	stride := vb.VertexFloats()
	for i := 0; i < vb.VertexCount(); i++ {
		v := data[i*stride:]
		if !near(v[3], 0) || !near(v[4], 1) || !near(v[5], 0) {
			t.Fatalf("vertex %d normal: got (%v,%v,%v)", i, v[3], v[4], v[5])
		}
		if !near(v[8], 1) || !near(v[11], 1) {
			t.Fatalf("vertex %d tangent: got (%v,%v,%v,%v)", i, v[8], v[9], v[10], v[11])
		}
	}

	// Vertex order is z-outer, x-inner; UVs span the full field.
	if v := data[0:]; !near(v[6], 0) || !near(v[7], 1) {
		t.Errorf("vertex 0 uv: got (%v,%v)", v[6], v[7])
	}
	last := data[(vb.VertexCount()-1)*stride:]
	if !near(last[0], 4) || !near(last[2], 4) {
		t.Errorf("last vertex position: got (%v,%v,%v)", last[0], last[1], last[2])
	}

	geom := p.Geometry()
	if geom.DrawStart() != 0 || geom.DrawCount() != 4*4*6 {
		t.Errorf("draw range: got (%d,%d), want (0,96)", geom.DrawStart(), geom.DrawCount())
	}
	if !p.MarkedDirty() {
		t.Error("meshing should mark the patch dirty")
	}
}

func TestBuildPatchMeshOffsetCoords(t *testing.T) {
	// Second patch of a two-patch row samples the field at x offset 4 but
	// emits positions local to its own origin.
	img := grayImage(9, 5, func(x, y int) byte { return byte(x * 4) })
	field, err := BuildHeightField(img, 4, DefaultSpacing)
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}

	ib := &gpu.IndexBuffer{}
	BuildIndexData(ib, 4, 1)

	p := newPatch(nil, 1, 0)
	m := Mesher{PatchSize: 4, Spacing: DefaultSpacing, FieldSize: field.Size()}
	m.BuildPatchMesh(p, field, ib)

	pos := p.Positions()
	if !near(pos[0].X, 0) {
		t.Errorf("first vertex X: got %v, want 0 (patch local)", pos[0].X)
	}
	if want := float32(4*4) * 0.25; !near(pos[0].Y, want) {
		t.Errorf("first vertex height: got %v, want %v", pos[0].Y, want)
	}

	box := p.BoundingBox()
	if !near(box.Min.Y, 4) || !near(box.Max.Y, 8) {
		t.Errorf("bbox Y: got [%v,%v], want [4,8]", box.Min.Y, box.Max.Y)
	}
}
