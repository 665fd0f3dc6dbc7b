package terrain

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terragrid/internal/engine/resource"
	"github.com/Faultbox/terragrid/pkg/math"
)

func grayImage(w, h int, fill func(x, y int) byte) *resource.Image {
	data := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			data[x+y*w] = fill(x, y)
		}
	}
	return resource.FromGray(w, h, data)
}

func flat(v byte) func(x, y int) byte {
	return func(int, int) byte { return v }
}

func near(a, b float32) bool {
	return math32.Abs(a-b) < 1e-4
}

func TestBuildHeightFieldSize(t *testing.T) {
	field, err := BuildHeightField(grayImage(9, 9, flat(0)), 8, DefaultSpacing)
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}
	if got := field.Size(); got.X != 9 || got.Y != 9 {
		t.Errorf("size: got %v, want 9x9", got)
	}
}

func TestBuildHeightFieldTruncation(t *testing.T) {
	// 20 columns only cover one whole 16-cell patch: grid truncates to 17.
	field, err := BuildHeightField(grayImage(20, 20, flat(0)), 16, DefaultSpacing)
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}
	if got := field.Size(); got.X != 17 || got.Y != 17 {
		t.Errorf("size: got %v, want 17x17", got)
	}
}

func TestBuildHeightFieldRowFlipAndScale(t *testing.T) {
	// Pixel value equals the image row, so the flip is observable.
	img := grayImage(9, 9, func(x, y int) byte { return byte(y) })
	field, err := BuildHeightField(img, 8, DefaultSpacing)
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}

	// Grid row 0 is the bottom image row, scaled by spacing.Y.
	if got := field.SampleRaw(3, 0); !near(got, 8*0.25) {
		t.Errorf("SampleRaw(3,0): got %v, want 2", got)
	}
	if got := field.SampleRaw(3, 8); !near(got, 0) {
		t.Errorf("SampleRaw(3,8): got %v, want 0", got)
	}
	if got := field.SampleRaw(0, 5); !near(got, 3*0.25) {
		t.Errorf("SampleRaw(0,5): got %v, want 0.75", got)
	}
}

func TestBuildHeightFieldCompressed(t *testing.T) {
	img := &resource.Image{Name: "h.dds", Data: []byte("DDS blob"), Compressed: true}
	if _, err := BuildHeightField(img, 16, DefaultSpacing); err != ErrUnsupportedFormat {
		t.Errorf("error: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestBuildHeightFieldNoPixels(t *testing.T) {
	cases := []*resource.Image{
		resource.FromGray(0, 5, nil),
		resource.FromGray(5, 0, nil),
		{Width: 5, Height: 5, Components: 1, Data: make([]byte, 10)},
		{Width: 5, Height: 5, Components: 0},
	}
	for i, img := range cases {
		if _, err := BuildHeightField(img, 8, DefaultSpacing); err != ErrInvalidImage {
			t.Errorf("case %d: got %v, want ErrInvalidImage", i, err)
		}
	}
}

func TestSampleRawClamps(t *testing.T) {
	img := grayImage(9, 9, func(x, y int) byte { return byte(x + y) })
	field, err := BuildHeightField(img, 8, DefaultSpacing)
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}

	if got, want := field.SampleRaw(-5, -5), field.SampleRaw(0, 0); got != want {
		t.Errorf("negative clamp: got %v, want %v", got, want)
	}
	if got, want := field.SampleRaw(100, 100), field.SampleRaw(8, 8); got != want {
		t.Errorf("positive clamp: got %v, want %v", got, want)
	}
	// Axes clamp independently.
	if got, want := field.SampleRaw(-1, 4), field.SampleRaw(0, 4); got != want {
		t.Errorf("mixed clamp: got %v, want %v", got, want)
	}

	var unbuilt *HeightField
	if got := unbuilt.SampleRaw(3, 3); got != 0 {
		t.Errorf("nil field: got %v, want 0", got)
	}
}

func TestEstimateNormalFlat(t *testing.T) {
	field, err := BuildHeightField(grayImage(9, 9, flat(7)), 8, DefaultSpacing)
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}
	n := field.EstimateNormal(4, 4)
	if !near(n.X, 0) || !near(n.Y, 1) || !near(n.Z, 0) {
		t.Errorf("flat normal: got %v, want (0,1,0)", n)
	}
}

func TestEstimateNormalSlope(t *testing.T) {
	// Heights rise toward +X, so the normal leans toward -X.
	img := grayImage(9, 9, func(x, y int) byte { return byte(x * 8) })
	field, err := BuildHeightField(img, 8, DefaultSpacing)
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}
	n := field.EstimateNormal(4, 4)
	if n.X >= 0 {
		t.Errorf("normal.X: got %v, want negative", n.X)
	}
	if n.Y <= 0 {
		t.Errorf("normal.Y: got %v, want positive", n.Y)
	}
	if !near(n.Z, 0) {
		t.Errorf("normal.Z: got %v, want 0", n.Z)
	}
	if !near(n.Length(), 1) {
		t.Errorf("normal length: got %v, want 1", n.Length())
	}
}

func TestEstimateNormalDeterministic(t *testing.T) {
	img := grayImage(17, 17, func(x, y int) byte { return byte(x*7 + y*13) })
	field, err := BuildHeightField(img, 16, math.Vec3{X: 2, Y: 0.5, Z: 2})
	if err != nil {
		t.Fatalf("BuildHeightField: %v", err)
	}
	a := field.EstimateNormal(5, 9)
	b := field.EstimateNormal(5, 9)
	if a != b {
		t.Errorf("normals differ across calls: %v vs %v", a, b)
	}
}
