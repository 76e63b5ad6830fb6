// Package tool implements the paint tools. Each tool translates pointer
// gestures into pixel edits, routed through a StrokeTracker so that every
// finished gesture lands in history as exactly one command.
package tool

import (
	"image"
	"math"
)

// Kind identifies a tool in the toolbar.
type Kind int

const (
	KindBrush Kind = iota
	KindEraser
	KindLine
	KindRectangle
	KindEllipse
)

func (k Kind) String() string {
	switch k {
	case KindBrush:
		return "Brush"
	case KindEraser:
		return "Eraser"
	case KindLine:
		return "Line"
	case KindRectangle:
		return "Rectangle"
	case KindEllipse:
		return "Ellipse"
	default:
		return "Unknown"
	}
}

// stampBounds returns the pixel rectangle covered by a round stamp of the
// given diameter centered at p.
func stampBounds(p image.Point, size float64) image.Rectangle {
	r := int(math.Ceil(size / 2))
	return image.Rect(p.X-r, p.Y-r, p.X+r+1, p.Y+r+1)
}

// interpolate calls fn at evenly spaced points from a to b, close enough
// together that round stamps of the given size leave no gaps.
func interpolate(a, b image.Point, size float64, fn func(image.Point)) {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	dist := math.Hypot(dx, dy)

	step := size / 3
	if step < 1 {
		step = 1
	}
	steps := int(dist/step) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		fn(image.Pt(a.X+int(dx*t+0.5), a.Y+int(dy*t+0.5)))
	}
}
