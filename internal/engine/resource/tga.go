package resource

import (
	"fmt"
	"image"
	"image/color"
)

// decodeTGA decodes a TGA image. Supports uncompressed true-color (type 2)
// and RLE compressed (type 10) files, the variants heightmap authoring
// tools commonly emit.
func decodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != 2 && imageType != 10 {
		return nil, fmt.Errorf("unsupported TGA type %d (only uncompressed/RLE true-color supported)", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}
	pixelData := data[offset:]

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bytesPerPixel := bpp / 8

	// Bit 5 of the descriptor means rows are stored top-to-bottom.
	topToBottom := (descriptor & 0x20) != 0

	if imageType == 2 {
		expectedSize := width * height * bytesPerPixel
		if len(pixelData) < expectedSize {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		for y := 0; y < height; y++ {
			destY := y
			if !topToBottom {
				destY = height - 1 - y
			}
			for x := 0; x < width; x++ {
				i := (y*width + x) * bytesPerPixel
				img.SetRGBA(x, destY, bgraToRGBA(pixelData[i:], bytesPerPixel))
			}
		}
		return img, nil
	}

	// RLE compressed (type 10)
	pos := 0
	count := 0
	total := width * height
	for count < total {
		if pos >= len(pixelData) {
			return nil, fmt.Errorf("TGA RLE data truncated")
		}
		header := pixelData[pos]
		pos++
		runLength := int(header&0x7F) + 1

		if header&0x80 != 0 {
			// RLE packet: one pixel repeated.
			if pos+bytesPerPixel > len(pixelData) {
				return nil, fmt.Errorf("TGA RLE data truncated")
			}
			c := bgraToRGBA(pixelData[pos:], bytesPerPixel)
			pos += bytesPerPixel
			for i := 0; i < runLength && count < total; i++ {
				setTGAPixel(img, count, width, height, topToBottom, c)
				count++
			}
		} else {
			// Raw packet: runLength literal pixels.
			for i := 0; i < runLength && count < total; i++ {
				if pos+bytesPerPixel > len(pixelData) {
					return nil, fmt.Errorf("TGA RLE data truncated")
				}
				c := bgraToRGBA(pixelData[pos:], bytesPerPixel)
				pos += bytesPerPixel
				setTGAPixel(img, count, width, height, topToBottom, c)
				count++
			}
		}
	}

	return img, nil
}

func bgraToRGBA(p []byte, bytesPerPixel int) color.RGBA {
	a := uint8(255)
	if bytesPerPixel == 4 {
		a = p[3]
	}
	return color.RGBA{R: p[2], G: p[1], B: p[0], A: a}
}

func setTGAPixel(img *image.RGBA, index, width, height int, topToBottom bool, c color.RGBA) {
	x := index % width
	y := index / width
	if !topToBottom {
		y = height - 1 - y
	}
	img.SetRGBA(x, y, c)
}
