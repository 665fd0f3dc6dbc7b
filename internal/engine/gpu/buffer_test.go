package gpu

import "testing"

func TestElementMaskFloats(t *testing.T) {
	full := MaskPosition | MaskNormal | MaskTexCoord1 | MaskTangent
	if got := full.Floats(); got != 12 {
		t.Errorf("full mask floats: got %d, want 12", got)
	}
	if got := MaskPosition.Floats(); got != 3 {
		t.Errorf("position floats: got %d, want 3", got)
	}
}

func TestVertexBufferLockUnlock(t *testing.T) {
	var vb VertexBuffer
	vb.SetSize(4, MaskPosition)

	view := vb.Lock(0, 4)
	if view == nil {
		t.Fatal("lock of full range should succeed")
	}
	if len(view) != 12 {
		t.Fatalf("view length: got %d, want 12", len(view))
	}

	// Second lock while held must fail.
	if vb.Lock(0, 1) != nil {
		t.Error("nested lock should return nil")
	}

	view[0] = 42
	vb.Unlock()

	if vb.Data()[0] != 42 {
		t.Error("write through lock view not visible in data")
	}
	if vb.Lock(0, 1) == nil {
		t.Error("lock after unlock should succeed")
	}
	vb.Unlock()
}

func TestVertexBufferLockOutOfRange(t *testing.T) {
	var vb VertexBuffer
	vb.SetSize(4, MaskPosition)

	if vb.Lock(2, 3) != nil {
		t.Error("lock past end should return nil")
	}
	if vb.Lock(-1, 2) != nil {
		t.Error("negative start should return nil")
	}
	// Failed locks must not leave the buffer locked.
	if vb.Lock(0, 4) == nil {
		t.Error("valid lock after failed locks should succeed")
	}
}

func TestIndexBufferLock(t *testing.T) {
	var ib IndexBuffer
	ib.SetSize(6)

	view := ib.Lock(0, 6)
	if view == nil {
		t.Fatal("lock should succeed")
	}
	view[5] = 99
	ib.Unlock()

	if ib.Data()[5] != 99 {
		t.Error("index write not visible")
	}
	if ib.IndexCount() != 6 {
		t.Errorf("index count: got %d", ib.IndexCount())
	}
}

func TestGeometryDrawRange(t *testing.T) {
	var g Geometry
	var ib IndexBuffer
	ib.SetSize(24)
	g.SetIndexBuffer(&ib)
	g.SetDrawRange(TriangleList, 6, 18)

	if g.DrawStart() != 6 || g.DrawCount() != 18 {
		t.Errorf("draw range: got %d,%d", g.DrawStart(), g.DrawCount())
	}
	if g.IndexBuffer() != &ib {
		t.Error("index buffer not retained")
	}
}
