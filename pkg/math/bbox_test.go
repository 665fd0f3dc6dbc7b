package math

import "testing"

func TestBoundingBox_Merge(t *testing.T) {
	box := EmptyBoundingBox()
	if box.Defined() {
		t.Fatal("empty box should not be defined")
	}

	box.Merge(Vec3{1, 2, 3})
	box.Merge(Vec3{-1, 5, 0})

	if !box.Defined() {
		t.Fatal("merged box should be defined")
	}
	if box.Min != (Vec3{-1, 2, 0}) {
		t.Errorf("min: got %+v", box.Min)
	}
	if box.Max != (Vec3{1, 5, 3}) {
		t.Errorf("max: got %+v", box.Max)
	}
}

func TestBoundingBox_CenterSize(t *testing.T) {
	box := EmptyBoundingBox()
	box.Merge(Vec3{0, 0, 0})
	box.Merge(Vec3{8, 2, 8})

	if box.Center() != (Vec3{4, 1, 4}) {
		t.Errorf("center: got %+v", box.Center())
	}
	if box.Size() != (Vec3{8, 2, 8}) {
		t.Errorf("size: got %+v", box.Size())
	}
}
