package math

// BoundingBox is an axis-aligned bounding box.
// The zero value is undefined; start from EmptyBoundingBox so the first
// Merge initializes both corners.
type BoundingBox struct {
	Min Vec3
	Max Vec3
}

// EmptyBoundingBox returns an inverted box that any Merge will overwrite.
func EmptyBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vec3{1e10, 1e10, 1e10},
		Max: Vec3{-1e10, -1e10, -1e10},
	}
}

// Defined reports whether the box has been merged with at least one point.
func (b BoundingBox) Defined() bool {
	return b.Min.X <= b.Max.X
}

// Merge expands the box to contain the point.
func (b *BoundingBox) Merge(p Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extents of the box.
func (b BoundingBox) Size() Vec3 {
	return b.Max.Sub(b.Min)
}
