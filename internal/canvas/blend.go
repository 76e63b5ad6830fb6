package canvas

import (
	"image/color"
	"math"
)

// BlendMode specifies how a layer's pixels combine with the stack below it.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendAdditive
	BlendOverlay
	BlendHardLight
	BlendSoftLight
	BlendDarken
	BlendLighten
	BlendColorBurn
	BlendColorDodge
	BlendDifference
	BlendExclusion
	BlendSubtract
)

// AllBlendModes lists every mode in display order.
func AllBlendModes() []BlendMode {
	return []BlendMode{
		BlendNormal, BlendMultiply, BlendScreen, BlendAdditive,
		BlendOverlay, BlendHardLight, BlendSoftLight,
		BlendDarken, BlendLighten, BlendColorBurn, BlendColorDodge,
		BlendDifference, BlendExclusion, BlendSubtract,
	}
}

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendAdditive:
		return "Additive"
	case BlendOverlay:
		return "Overlay"
	case BlendHardLight:
		return "Hard Light"
	case BlendSoftLight:
		return "Soft Light"
	case BlendDarken:
		return "Darken"
	case BlendLighten:
		return "Lighten"
	case BlendColorBurn:
		return "Color Burn"
	case BlendColorDodge:
		return "Color Dodge"
	case BlendDifference:
		return "Difference"
	case BlendExclusion:
		return "Exclusion"
	case BlendSubtract:
		return "Subtract"
	default:
		return "Unknown"
	}
}

// BlendModeFromString reconstructs a mode from its display name, defaulting
// to Normal for unknown values. Used by project deserialization.
func BlendModeFromString(s string) BlendMode {
	for _, m := range AllBlendModes() {
		if m.String() == s {
			return m
		}
	}
	return BlendNormal
}

// BlendPixel combines top over base using straight (non-premultiplied) alpha.
// opacity scales the top pixel's alpha before compositing. The math is
// deterministic: float channel math with round-half-up (+0.5 truncation)
// back to 8 bits, clamped to [0, 255].
func BlendPixel(base, top color.RGBA, mode BlendMode, opacity float64) color.RGBA {
	// Fast path: nothing on top.
	if top.A == 0 {
		return base
	}
	// Fast path: opaque Normal overwrite.
	if mode == BlendNormal && opacity >= 1.0 && top.A == 255 {
		return top
	}

	opacity = clampFloat(opacity, 0, 1)

	baseR := float64(base.R) / 255
	baseG := float64(base.G) / 255
	baseB := float64(base.B) / 255
	baseA := float64(base.A) / 255

	topR := float64(top.R) / 255
	topG := float64(top.G) / 255
	topB := float64(top.B) / 255
	topA := float64(top.A) / 255 * opacity

	var r, g, b float64
	switch mode {
	case BlendNormal:
		r, g, b = topR, topG, topB
	case BlendMultiply:
		r, g, b = baseR*topR, baseG*topG, baseB*topB
	case BlendScreen:
		r = 1 - (1-baseR)*(1-topR)
		g = 1 - (1-baseG)*(1-topG)
		b = 1 - (1-baseB)*(1-topB)
	case BlendAdditive:
		r = math.Min(baseR+topR, 1)
		g = math.Min(baseG+topG, 1)
		b = math.Min(baseB+topB, 1)
	case BlendOverlay:
		r = overlayChannel(baseR, topR)
		g = overlayChannel(baseG, topG)
		b = overlayChannel(baseB, topB)
	case BlendHardLight:
		r = overlayChannel(topR, baseR)
		g = overlayChannel(topG, baseG)
		b = overlayChannel(topB, baseB)
	case BlendSoftLight:
		r = softLightChannel(baseR, topR)
		g = softLightChannel(baseG, topG)
		b = softLightChannel(baseB, topB)
	case BlendDarken:
		r = math.Min(baseR, topR)
		g = math.Min(baseG, topG)
		b = math.Min(baseB, topB)
	case BlendLighten:
		r = math.Max(baseR, topR)
		g = math.Max(baseG, topG)
		b = math.Max(baseB, topB)
	case BlendColorBurn:
		r = colorBurnChannel(baseR, topR)
		g = colorBurnChannel(baseG, topG)
		b = colorBurnChannel(baseB, topB)
	case BlendColorDodge:
		r = colorDodgeChannel(baseR, topR)
		g = colorDodgeChannel(baseG, topG)
		b = colorDodgeChannel(baseB, topB)
	case BlendDifference:
		r = math.Abs(baseR - topR)
		g = math.Abs(baseG - topG)
		b = math.Abs(baseB - topB)
	case BlendExclusion:
		r = baseR + topR - 2*baseR*topR
		g = baseG + topG - 2*baseG*topG
		b = baseB + topB - 2*baseB*topB
	case BlendSubtract:
		r = math.Max(baseR-topR, 0)
		g = math.Max(baseG-topG, 0)
		b = math.Max(baseB-topB, 0)
	default:
		r, g, b = topR, topG, topB
	}

	// Standard straight-alpha over operator.
	outA := topA + baseA*(1-topA)
	if outA == 0 {
		return color.RGBA{}
	}
	outR := r*topA + baseR*(1-topA)
	outG := g*topA + baseG*(1-topA)
	outB := b*topA + baseB*(1-topA)

	return color.RGBA{
		R: to8(outR),
		G: to8(outG),
		B: to8(outB),
		A: to8(outA),
	}
}

func overlayChannel(base, top float64) float64 {
	if base < 0.5 {
		return 2 * base * top
	}
	return 1 - 2*(1-base)*(1-top)
}

// softLightChannel implements the W3C soft-light formula.
func softLightChannel(base, top float64) float64 {
	if top <= 0.5 {
		return base - (1-2*top)*base*(1-base)
	}
	var d float64
	if base <= 0.25 {
		d = ((16*base-12)*base + 4) * base
	} else {
		d = math.Sqrt(base)
	}
	return base + (2*top-1)*(d-base)
}

func colorBurnChannel(base, top float64) float64 {
	if top == 0 {
		return 0
	}
	return math.Max(1-(1-base)/top, 0)
}

func colorDodgeChannel(base, top float64) float64 {
	if top >= 1 {
		return 1
	}
	return math.Min(base/(1-top), 1)
}

// to8 converts a [0,1] channel to 8 bits with round-half-up and clamping.
func to8(v float64) uint8 {
	n := int(v*255 + 0.5)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
