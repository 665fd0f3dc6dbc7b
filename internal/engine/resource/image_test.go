package resource

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodeGrayPNG(t *testing.T, width, height int, fill func(x, y int) byte) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeGrayPNG(t *testing.T) {
	data := encodeGrayPNG(t, 4, 3, func(x, y int) byte { return byte(x + y*10) })

	img, err := Decode(data, "height.png")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 4 || img.Height != 3 {
		t.Fatalf("dimensions: got %dx%d", img.Width, img.Height)
	}
	if img.Components != 1 {
		t.Fatalf("components: got %d, want 1", img.Components)
	}
	if img.Compressed {
		t.Error("PNG should not be flagged compressed")
	}
	if img.Data[2*4+3] != 23 {
		t.Errorf("pixel (3,2): got %d, want 23", img.Data[2*4+3])
	}
}

func TestDecodeDDSFlaggedCompressed(t *testing.T) {
	data := append([]byte("DDS "), make([]byte, 124)...)

	img, err := Decode(data, "height.dds")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !img.Compressed {
		t.Error("DDS container should be flagged compressed")
	}
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// 2x2 bottom-to-top 24bpp TGA, all pixels blue-ish.
	header := make([]byte, 18)
	header[2] = 2   // uncompressed true-color
	header[12] = 2  // width
	header[14] = 2  // height
	header[16] = 24 // bpp
	pixels := bytes.Repeat([]byte{200, 10, 30}, 4) // BGR
	data := append(header, pixels...)

	img, err := Decode(data, "height.tga")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 2 || img.Height != 2 || img.Components != 4 {
		t.Fatalf("got %dx%d comps=%d", img.Width, img.Height, img.Components)
	}
	// First channel is red after BGR swizzle.
	if img.Data[0] != 30 {
		t.Errorf("red channel: got %d, want 30", img.Data[0])
	}
}

func TestFromGrayValidates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on short pixel slice")
		}
	}()
	FromGray(4, 4, make([]byte, 3))
}

func TestReloadNotifiesSubscribers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "height.png")
	if err := os.WriteFile(path, encodeGrayPNG(t, 2, 2, func(x, y int) byte { return 7 }), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	notified := 0
	img.SubscribeReload(func() { notified++ })

	// Replace the file with different content, then reload.
	if err := os.WriteFile(path, encodeGrayPNG(t, 2, 2, func(x, y int) byte { return 99 }), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := img.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if notified != 1 {
		t.Errorf("expected 1 reload notification, got %d", notified)
	}
	if img.Data[0] != 99 {
		t.Errorf("reloaded pixel: got %d, want 99", img.Data[0])
	}
}

func TestSubscribeReloadCancel(t *testing.T) {
	img := FromGray(2, 2, make([]byte, 4))

	var first, second int
	cancel := img.SubscribeReload(func() { first++ })
	img.SubscribeReload(func() { second++ })

	img.NotifyReload()
	cancel()
	img.NotifyReload()

	if first != 1 {
		t.Errorf("canceled subscriber: got %d notifications, want 1", first)
	}
	if second != 2 {
		t.Errorf("live subscriber: got %d notifications, want 2", second)
	}
}

func TestReloadWithoutPathFails(t *testing.T) {
	img := FromGray(1, 1, []byte{0})
	if err := img.Reload(); err == nil {
		t.Error("in-memory image reload should fail")
	}
}
