// Package resource provides CPU-side image resources for terrain heightmaps.
// Images carry raw pixel bytes plus enough metadata for samplers that only
// care about channel counts, not color spaces.
package resource

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// Image is a decoded pixel resource. Data is tightly packed row-major,
// Components bytes per pixel, row 0 at the top of the source image.
// Compressed images keep their container bytes undecoded and cannot be
// sampled.
type Image struct {
	Name       string
	Width      int
	Height     int
	Components int
	Data       []byte
	Compressed bool

	reloadFns []func()
}

// FromGray builds a single-channel image from raw luminance bytes.
// pixels must hold width*height bytes.
func FromGray(width, height int, pixels []byte) *Image {
	if len(pixels) != width*height {
		panic(fmt.Sprintf("resource: gray image needs %d bytes, got %d", width*height, len(pixels)))
	}
	return &Image{
		Width:      width,
		Height:     height,
		Components: 1,
		Data:       pixels,
	}
}

// Load reads and decodes an image file. DDS containers are recognized but
// kept compressed; PNG, JPEG and TGA are decoded to RGBA or grayscale.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, err := Decode(data, path)
	if err != nil {
		return nil, err
	}
	img.Name = path
	return img, nil
}

// Decode decodes raw file bytes. The path is only used to pick a decoder
// by extension and for error messages.
func Decode(data []byte, path string) (*Image, error) {
	if bytes.HasPrefix(data, []byte("DDS ")) {
		// Block-compressed container, kept as-is.
		return &Image{Name: path, Data: data, Compressed: true}, nil
	}

	var decoded image.Image
	var err error
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		decoded, err = decodeTGA(data)
	} else {
		decoded, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return fromStdImage(decoded), nil
}

// fromStdImage flattens a decoded image into packed bytes. Grayscale
// sources stay single-channel; everything else becomes RGBA.
func fromStdImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if gray, ok := src.(*image.Gray); ok {
		data := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(data[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return &Image{Width: w, Height: h, Components: 1, Data: data}
	}

	rgba, ok := src.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				rgba.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}

	data := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(data[y*w*4:(y+1)*w*4], rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4])
	}
	return &Image{Width: w, Height: h, Components: 4, Data: data}
}

// SubscribeReload registers a callback invoked after each successful
// Reload. The returned cancel function removes the subscription.
func (img *Image) SubscribeReload(fn func()) (cancel func()) {
	img.reloadFns = append(img.reloadFns, fn)
	i := len(img.reloadFns) - 1
	return func() { img.reloadFns[i] = nil }
}

// Reload re-reads the image from its source path and notifies subscribers.
// Images created in memory (no Name) cannot be reloaded.
func (img *Image) Reload() error {
	if img.Name == "" {
		return fmt.Errorf("resource: image has no source path")
	}

	fresh, err := Load(img.Name)
	if err != nil {
		return err
	}

	img.Width = fresh.Width
	img.Height = fresh.Height
	img.Components = fresh.Components
	img.Data = fresh.Data
	img.Compressed = fresh.Compressed

	for _, fn := range img.reloadFns {
		if fn != nil {
			fn()
		}
	}
	return nil
}

// NotifyReload invokes reload subscribers without re-reading the source.
// Used when the backing data was replaced in memory.
func (img *Image) NotifyReload() {
	for _, fn := range img.reloadFns {
		if fn != nil {
			fn()
		}
	}
}
