// Package canvas provides the layered pixel document: tiled sparse storage,
// blend-mode compositing, selection, and dirty-region tracking.
package canvas

import (
	"image"
	"image/color"
	"log"
)

// ChunkSize is the edge length of the square chunks a TiledImage is split into.
const ChunkSize = 64

// maxPixels caps canvas allocations (~256 megapixels).
const maxPixels = 256_000_000

// TiledImage is a sparse RGBA raster subdivided into fixed-size square chunks.
// Chunks are allocated lazily: a nil slot reads as the fill color, so large
// uniform areas cost no memory. Chunk coordinates map to a flat index via
// cy*chunksPerRow+cx.
type TiledImage struct {
	width        int
	height       int
	chunksPerRow int
	chunks       []*image.RGBA
	fill         color.RGBA
}

// NewTiledImage creates a w×h image whose unmaterialized chunks read as fill.
// No pixel memory is allocated up front.
func NewTiledImage(w, h int, fill color.RGBA) *TiledImage {
	if w <= 0 || h <= 0 || w*h > maxPixels {
		log.Printf("canvas: tiled image dimensions %dx%d out of range, clamped to 1x1", w, h)
		w, h = 1, 1
	}
	cpr := (w + ChunkSize - 1) / ChunkSize
	cpc := (h + ChunkSize - 1) / ChunkSize
	return &TiledImage{
		width:        w,
		height:       h,
		chunksPerRow: cpr,
		chunks:       make([]*image.RGBA, cpr*cpc),
		fill:         fill,
	}
}

// FromRGBA builds a fully-initialized TiledImage from a flat RGBA image.
// Chunks that are uniformly transparent are left unmaterialized.
func FromRGBA(src *image.RGBA) *TiledImage {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	t := NewTiledImage(w, h, color.RGBA{})
	for cy := 0; cy*ChunkSize < h; cy++ {
		for cx := 0; cx*ChunkSize < w; cx++ {
			baseX := cx * ChunkSize
			baseY := cy * ChunkSize
			cw := minInt(ChunkSize, w-baseX)
			ch := minInt(ChunkSize, h-baseY)

			chunk := image.NewRGBA(image.Rect(0, 0, ChunkSize, ChunkSize))
			hasContent := false
			for ly := 0; ly < ch; ly++ {
				srcOff := src.PixOffset(b.Min.X+baseX, b.Min.Y+baseY+ly)
				dstOff := chunk.PixOffset(0, ly)
				row := src.Pix[srcOff : srcOff+cw*4]
				copy(chunk.Pix[dstOff:dstOff+cw*4], row)
				if !hasContent {
					for lx := 0; lx < cw; lx++ {
						if row[lx*4+3] != 0 {
							hasContent = true
							break
						}
					}
				}
			}
			if hasContent {
				t.chunks[cy*t.chunksPerRow+cx] = chunk
			}
		}
	}
	return t
}

// ToRGBA flattens the image to a contiguous RGBA buffer, reading through to
// the fill color for unmaterialized chunks.
func (t *TiledImage) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	if t.fill != (color.RGBA{}) {
		fillRGBA(out, t.fill)
	}
	for i, chunk := range t.chunks {
		if chunk == nil {
			continue
		}
		cx := i % t.chunksPerRow
		cy := i / t.chunksPerRow
		baseX := cx * ChunkSize
		baseY := cy * ChunkSize
		cw := minInt(ChunkSize, t.width-baseX)
		ch := minInt(ChunkSize, t.height-baseY)
		for ly := 0; ly < ch; ly++ {
			srcOff := chunk.PixOffset(0, ly)
			dstOff := out.PixOffset(baseX, baseY+ly)
			copy(out.Pix[dstOff:dstOff+cw*4], chunk.Pix[srcOff:srcOff+cw*4])
		}
	}
	return out
}

// Width returns the image width in pixels.
func (t *TiledImage) Width() int { return t.width }

// Height returns the image height in pixels.
func (t *TiledImage) Height() int { return t.height }

// Fill returns the implicit color of unmaterialized chunks.
func (t *TiledImage) Fill() color.RGBA { return t.fill }

// At reads the pixel at (x, y). Out-of-range coordinates return the fill
// color; they never alias another chunk's memory.
func (t *TiledImage) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return t.fill
	}
	chunk := t.chunks[(y/ChunkSize)*t.chunksPerRow+x/ChunkSize]
	if chunk == nil {
		return t.fill
	}
	off := chunk.PixOffset(x%ChunkSize, y%ChunkSize)
	return color.RGBA{chunk.Pix[off], chunk.Pix[off+1], chunk.Pix[off+2], chunk.Pix[off+3]}
}

// Set writes the pixel at (x, y), materializing the owning chunk on first
// write. Out-of-range writes are dropped.
func (t *TiledImage) Set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	chunk := t.ensureChunk(x/ChunkSize, y/ChunkSize)
	off := chunk.PixOffset(x%ChunkSize, y%ChunkSize)
	chunk.Pix[off] = c.R
	chunk.Pix[off+1] = c.G
	chunk.Pix[off+2] = c.B
	chunk.Pix[off+3] = c.A
}

// ensureChunk materializes the chunk at (cx, cy), pre-filled with the
// implicit fill color so untouched pixels keep their defined value.
func (t *TiledImage) ensureChunk(cx, cy int) *image.RGBA {
	idx := cy*t.chunksPerRow + cx
	if t.chunks[idx] == nil {
		chunk := image.NewRGBA(image.Rect(0, 0, ChunkSize, ChunkSize))
		if t.fill != (color.RGBA{}) {
			fillRGBA(chunk, t.fill)
		}
		t.chunks[idx] = chunk
	}
	return t.chunks[idx]
}

// Chunk returns the chunk at (cx, cy), or nil if it was never materialized.
func (t *TiledImage) Chunk(cx, cy int) *image.RGBA {
	idx := cy*t.chunksPerRow + cx
	if idx < 0 || idx >= len(t.chunks) {
		return nil
	}
	return t.chunks[idx]
}

// ChunkKeys calls fn for every materialized chunk coordinate.
func (t *TiledImage) ChunkKeys(fn func(cx, cy int)) {
	for i, c := range t.chunks {
		if c != nil {
			fn(i%t.chunksPerRow, i/t.chunksPerRow)
		}
	}
}

// ChunkCount reports how many chunks are materialized.
func (t *TiledImage) ChunkCount() int {
	n := 0
	for _, c := range t.chunks {
		if c != nil {
			n++
		}
	}
	return n
}

// SetAll fills every pixel with c, materializing all chunks.
func (t *TiledImage) SetAll(c color.RGBA) {
	cpc := len(t.chunks) / t.chunksPerRow
	for cy := 0; cy < cpc; cy++ {
		for cx := 0; cx < t.chunksPerRow; cx++ {
			fillRGBA(t.ensureChunk(cx, cy), c)
		}
	}
}

// Clear drops all chunks so the whole image reads as the fill color again.
func (t *TiledImage) Clear() {
	for i := range t.chunks {
		t.chunks[i] = nil
	}
}

// Clone returns a deep copy sharing no pixel storage with the receiver.
func (t *TiledImage) Clone() *TiledImage {
	out := &TiledImage{
		width:        t.width,
		height:       t.height,
		chunksPerRow: t.chunksPerRow,
		chunks:       make([]*image.RGBA, len(t.chunks)),
		fill:         t.fill,
	}
	for i, chunk := range t.chunks {
		if chunk == nil {
			continue
		}
		cp := image.NewRGBA(chunk.Rect)
		copy(cp.Pix, chunk.Pix)
		out.chunks[i] = cp
	}
	return out
}

// ExtractRegion copies the pixels inside r (clamped to the image) into a
// tightly packed RGBA buffer. Unmaterialized areas read as the fill color.
func (t *TiledImage) ExtractRegion(r image.Rectangle) *image.RGBA {
	r = r.Intersect(image.Rect(0, 0, t.width, t.height))
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	if r.Empty() {
		return out
	}
	if t.fill != (color.RGBA{}) {
		fillRGBA(out, t.fill)
	}
	for cy := r.Min.Y / ChunkSize; cy*ChunkSize < r.Max.Y; cy++ {
		for cx := r.Min.X / ChunkSize; cx*ChunkSize < r.Max.X; cx++ {
			chunk := t.Chunk(cx, cy)
			if chunk == nil {
				continue
			}
			overlap := r.Intersect(image.Rect(cx*ChunkSize, cy*ChunkSize, (cx+1)*ChunkSize, (cy+1)*ChunkSize))
			for y := overlap.Min.Y; y < overlap.Max.Y; y++ {
				srcOff := chunk.PixOffset(overlap.Min.X-cx*ChunkSize, y-cy*ChunkSize)
				dstOff := out.PixOffset(overlap.Min.X-r.Min.X, y-r.Min.Y)
				copy(out.Pix[dstOff:dstOff+overlap.Dx()*4], chunk.Pix[srcOff:srcOff+overlap.Dx()*4])
			}
		}
	}
	return out
}

// BlitRGBA overwrites the region at (dstX, dstY) with src using chunk-row
// copies. Pixels falling outside the image are clipped.
func (t *TiledImage) BlitRGBA(dstX, dstY int, src *image.RGBA) {
	sb := src.Bounds()
	for sy := 0; sy < sb.Dy(); sy++ {
		gy := dstY + sy
		if gy < 0 || gy >= t.height {
			continue
		}
		sx := 0
		for sx < sb.Dx() {
			gx := dstX + sx
			if gx < 0 {
				sx = -dstX
				continue
			}
			if gx >= t.width {
				break
			}
			chunk := t.ensureChunk(gx/ChunkSize, gy/ChunkSize)
			lx := gx % ChunkSize
			run := minInt(ChunkSize-lx, minInt(sb.Dx()-sx, t.width-gx))
			srcOff := src.PixOffset(sb.Min.X+sx, sb.Min.Y+sy)
			dstOff := chunk.PixOffset(lx, gy%ChunkSize)
			copy(chunk.Pix[dstOff:dstOff+run*4], src.Pix[srcOff:srcOff+run*4])
			sx += run
		}
	}
}

// FlipHorizontal mirrors the image left-to-right in place.
func (t *TiledImage) FlipHorizontal() {
	t.remap(func(x, y int) (int, int) { return t.width - 1 - x, y })
}

// FlipVertical mirrors the image top-to-bottom in place.
func (t *TiledImage) FlipVertical() {
	t.remap(func(x, y int) (int, int) { return x, t.height - 1 - y })
}

// Rotate180 rotates the image by 180 degrees in place.
func (t *TiledImage) Rotate180() {
	t.remap(func(x, y int) (int, int) { return t.width - 1 - x, t.height - 1 - y })
}

// remap rebuilds the chunk array by moving every materialized pixel through
// the coordinate transform. Only chunks with content are visited.
func (t *TiledImage) remap(transform func(x, y int) (int, int)) {
	dst := NewTiledImage(t.width, t.height, t.fill)
	t.forEachPixel(func(x, y int, c color.RGBA) {
		nx, ny := transform(x, y)
		dst.Set(nx, ny, c)
	})
	t.chunks = dst.chunks
}

// Rotate90CW returns a new image rotated 90 degrees clockwise, with
// swapped dimensions.
func (t *TiledImage) Rotate90CW() *TiledImage {
	dst := NewTiledImage(t.height, t.width, t.fill)
	t.forEachPixel(func(x, y int, c color.RGBA) {
		dst.Set(t.height-1-y, x, c)
	})
	return dst
}

// Rotate90CCW returns a new image rotated 90 degrees counter-clockwise.
func (t *TiledImage) Rotate90CCW() *TiledImage {
	dst := NewTiledImage(t.height, t.width, t.fill)
	t.forEachPixel(func(x, y int, c color.RGBA) {
		dst.Set(y, t.width-1-x, c)
	})
	return dst
}

// forEachPixel visits every pixel in materialized chunks.
func (t *TiledImage) forEachPixel(fn func(x, y int, c color.RGBA)) {
	for i, chunk := range t.chunks {
		if chunk == nil {
			continue
		}
		baseX := (i % t.chunksPerRow) * ChunkSize
		baseY := (i / t.chunksPerRow) * ChunkSize
		cw := minInt(ChunkSize, t.width-baseX)
		ch := minInt(ChunkSize, t.height-baseY)
		for ly := 0; ly < ch; ly++ {
			off := chunk.PixOffset(0, ly)
			for lx := 0; lx < cw; lx++ {
				p := off + lx*4
				fn(baseX+lx, baseY+ly, color.RGBA{chunk.Pix[p], chunk.Pix[p+1], chunk.Pix[p+2], chunk.Pix[p+3]})
			}
		}
	}
}

// MemoryBytes approximates the pixel memory held by materialized chunks.
func (t *TiledImage) MemoryBytes() int {
	return t.ChunkCount() * ChunkSize * ChunkSize * 4
}

// fillRGBA sets every pixel of img to c.
func fillRGBA(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y) : img.PixOffset(b.Min.X, b.Min.Y)+b.Dx()*4]
	for x := 0; x < b.Dx(); x++ {
		row[x*4] = c.R
		row[x*4+1] = c.G
		row[x*4+2] = c.B
		row[x*4+3] = c.A
	}
	for y := b.Min.Y + 1; y < b.Max.Y; y++ {
		copy(img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Min.X, y)+b.Dx()*4], row)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
