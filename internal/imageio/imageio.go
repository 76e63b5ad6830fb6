// Package imageio bridges image files and the tiled canvas representation.
package imageio

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"pixelforge/internal/canvas"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Load decodes an image file into a TiledImage.
func Load(path string) (*canvas.TiledImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return canvas.FromRGBA(ToRGBA(img)), nil
}

// The canvas stores straight (non-premultiplied) alpha, which matches
// image.NRGBA's byte layout, not image.RGBA's. Encoders and decoders
// therefore reinterpret pixel buffers as NRGBA so semi-transparent
// values survive a round trip exactly.

// AsNRGBA reinterprets a canvas pixel buffer for the stdlib encoders.
func AsNRGBA(img *image.RGBA) *image.NRGBA {
	return &image.NRGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}

// Save encodes img to path, choosing the format from the file extension.
// JPEG output flattens transparency onto white since the format has no
// alpha channel.
func Save(path string, img *canvas.TiledImage) error {
	flat := img.ToRGBA()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, AsNRGBA(flat))
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, flattenOnWhite(flat), &jpeg.Options{Quality: 92})
	case ".tiff", ".tif":
		err = tiff.Encode(file, AsNRGBA(flat), &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		err = bmp.Encode(file, AsNRGBA(flat))
	default:
		err = fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// ToRGBA converts any decoded image to the straight-alpha RGBA layout the
// canvas uses. NRGBA buffers are reinterpreted byte-for-byte; other source
// types go through a draw conversion (lossless for opaque images).
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	switch im := img.(type) {
	case *image.NRGBA:
		if b.Min == (image.Point{}) {
			return &image.RGBA{Pix: im.Pix, Stride: im.Stride, Rect: im.Rect}
		}
	case *image.RGBA:
		if im.Opaque() && b.Min == (image.Point{}) {
			return im
		}
	}
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return &image.RGBA{Pix: out.Pix, Stride: out.Stride, Rect: out.Rect}
}

// flattenOnWhite composites straight-alpha pixels over a white background
// for formats without transparency.
func flattenOnWhite(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(b)
	for i := 0; i < len(src.Pix); i += 4 {
		a := int(src.Pix[i+3])
		out.Pix[i] = uint8((int(src.Pix[i])*a + 255*(255-a)) / 255)
		out.Pix[i+1] = uint8((int(src.Pix[i+1])*a + 255*(255-a)) / 255)
		out.Pix[i+2] = uint8((int(src.Pix[i+2])*a + 255*(255-a)) / 255)
		out.Pix[i+3] = 255
	}
	return out
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.png, *.jpg, *.jpeg, *.tiff, *.tif, *.bmp)"
}
