// Package filter implements convolution-style filters on layer regions,
// backed by OpenCV. Each filter reads a rectangular region out of the
// tiled image, processes it as a Mat, and writes the result back.
package filter

import (
	"fmt"
	"image"

	"pixelforge/internal/canvas"

	"gocv.io/x/gocv"
)

// GaussianBlur blurs the region r of img with the given radius (pixels).
func GaussianBlur(img *canvas.TiledImage, r image.Rectangle, radius int) error {
	if radius < 1 {
		return fmt.Errorf("blur radius %d out of range", radius)
	}
	src, rect, err := regionToMat(img, r)
	if err != nil {
		return err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	k := radius*2 + 1
	gocv.GaussianBlur(src, &dst, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	return matToRegion(img, rect, dst)
}

// MedianBlur applies a median filter over the region r, useful for
// speckle removal.
func MedianBlur(img *canvas.TiledImage, r image.Rectangle, radius int) error {
	if radius < 1 {
		return fmt.Errorf("blur radius %d out of range", radius)
	}
	src, rect, err := regionToMat(img, r)
	if err != nil {
		return err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.MedianBlur(src, &dst, radius*2+1)
	return matToRegion(img, rect, dst)
}

// Sharpen applies an unsharp mask over the region r. amount 0 is identity;
// 1.0 is a strong effect.
func Sharpen(img *canvas.TiledImage, r image.Rectangle, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("sharpen amount %v out of range", amount)
	}
	src, rect, err := regionToMat(img, r)
	if err != nil {
		return err
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.AddWeighted(src, 1+amount, blurred, -amount, 0, &dst)
	return matToRegion(img, rect, dst)
}

// Inpaint reconstructs the masked pixels of region r from their
// surroundings (Telea's method). mask is a full-canvas coverage function;
// nonzero values mark pixels to reconstruct.
func Inpaint(img *canvas.TiledImage, r image.Rectangle, mask func(x, y int) uint8, radius float64) error {
	if mask == nil {
		return fmt.Errorf("inpaint requires a mask")
	}
	src, rect, err := regionToMat(img, r)
	if err != nil {
		return err
	}
	defer src.Close()

	// Inpaint operates on 3-channel input; alpha is carried around it.
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(src, &rgb, gocv.ColorBGRAToBGR)

	maskBytes := make([]byte, rect.Dx()*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if mask(x, y) != 0 {
				maskBytes[(y-rect.Min.Y)*rect.Dx()+(x-rect.Min.X)] = 255
			}
		}
	}
	maskMat, err := gocv.NewMatFromBytes(rect.Dy(), rect.Dx(), gocv.MatTypeCV8UC1, maskBytes)
	if err != nil {
		return fmt.Errorf("failed to build inpaint mask: %w", err)
	}
	defer maskMat.Close()

	filled := gocv.NewMat()
	defer filled.Close()
	gocv.Inpaint(rgb, maskMat, &filled, float32(radius), gocv.Telea)

	out := gocv.NewMat()
	defer out.Close()
	gocv.CvtColor(filled, &out, gocv.ColorBGRToBGRA)

	outBytes, err := out.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("failed to read inpaint result: %w", err)
	}
	// Restore the original alpha channel.
	srcBytes, err := src.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("failed to read source alpha: %w", err)
	}
	for i := 3; i < len(outBytes); i += 4 {
		outBytes[i] = srcBytes[i]
	}
	return matToRegion(img, rect, out)
}

// regionToMat extracts the region r (clamped to the image) as an RGBA Mat.
func regionToMat(img *canvas.TiledImage, r image.Rectangle) (gocv.Mat, image.Rectangle, error) {
	r = r.Intersect(image.Rect(0, 0, img.Width(), img.Height()))
	if r.Empty() {
		return gocv.Mat{}, r, fmt.Errorf("filter region %v is empty", r)
	}
	rgba := img.ExtractRegion(r)
	mat, err := gocv.NewMatFromBytes(r.Dy(), r.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.Mat{}, r, fmt.Errorf("failed to build mat: %w", err)
	}
	return mat, r, nil
}

// matToRegion writes an RGBA Mat back into the image at r.Min.
func matToRegion(img *canvas.TiledImage, r image.Rectangle, mat gocv.Mat) error {
	data, err := mat.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("failed to read mat: %w", err)
	}
	out := &image.RGBA{
		Pix:    data,
		Stride: r.Dx() * 4,
		Rect:   image.Rect(0, 0, r.Dx(), r.Dy()),
	}
	img.BlitRGBA(r.Min.X, r.Min.Y, out)
	return nil
}
