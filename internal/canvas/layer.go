package canvas

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// LODMaxEdge is the maximum longest-edge dimension for cached layer
// thumbnails used by zoomed-out rendering and the layers panel.
const LODMaxEdge = 1024

// Layer is one raster plane in the document: a tiled pixel buffer plus the
// ordering-independent display attributes the compositor consumes.
type Layer struct {
	Name      string
	Visible   bool
	Opacity   float64 // clamped to [0, 1]
	BlendMode BlendMode
	Pixels    *TiledImage

	// lodCache holds a downscaled copy (longest edge <= LODMaxEdge),
	// rebuilt lazily after edits. Not serialized.
	lodCache *image.RGBA
}

// NewLayer creates a visible, fully opaque Normal-blend layer filled with
// the given color.
func NewLayer(name string, w, h int, fill color.RGBA) *Layer {
	return &Layer{
		Name:      name,
		Visible:   true,
		Opacity:   1.0,
		BlendMode: BlendNormal,
		Pixels:    NewTiledImage(w, h, fill),
	}
}

// SetOpacity clamps and stores the layer opacity.
func (l *Layer) SetOpacity(v float64) {
	l.Opacity = clampFloat(v, 0, 1)
}

// Clone returns a deep copy of the layer (used by duplicate and snapshots).
func (l *Layer) Clone() *Layer {
	return &Layer{
		Name:      l.Name,
		Visible:   l.Visible,
		Opacity:   l.Opacity,
		BlendMode: l.BlendMode,
		Pixels:    l.Pixels.Clone(),
	}
}

// InvalidateLOD drops the cached thumbnail. Call after any pixel change.
func (l *Layer) InvalidateLOD() {
	l.lodCache = nil
}

// LODImage returns the downscaled thumbnail, rebuilding it if stale.
func (l *Layer) LODImage() *image.RGBA {
	if l.lodCache != nil {
		return l.lodCache
	}
	flat := l.Pixels.ToRGBA()
	l.lodCache = ScaleToFit(flat, LODMaxEdge)
	return l.lodCache
}

// ScaleToFit downscales src so its longest edge is at most maxEdge,
// using bilinear filtering. Images already small enough are returned as-is.
func ScaleToFit(src *image.RGBA, maxEdge int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return src
	}
	scale := float64(maxEdge) / float64(longest)
	nw := maxInt(int(float64(w)*scale+0.5), 1)
	nh := maxInt(int(float64(h)*scale+0.5), 1)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
