package canvas

import (
	"image/color"
	"testing"
)

func TestBlendPixelFastPaths(t *testing.T) {
	base := color.RGBA{50, 60, 70, 200}

	t.Run("transparent top returns base", func(t *testing.T) {
		top := color.RGBA{255, 255, 255, 0}
		for _, m := range AllBlendModes() {
			if got := BlendPixel(base, top, m, 1.0); got != base {
				t.Errorf("%v: got %v, want base unchanged", m, got)
			}
		}
	})

	t.Run("opaque normal overwrites", func(t *testing.T) {
		top := color.RGBA{10, 20, 30, 255}
		if got := BlendPixel(base, top, BlendNormal, 1.0); got != top {
			t.Errorf("got %v, want top", got)
		}
	})
}

func TestBlendPixelNormalHalfOpacity(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	red := color.RGBA{255, 0, 0, 255}

	got := BlendPixel(white, red, BlendNormal, 0.5)
	want := color.RGBA{255, 128, 128, 255} // 0.5 rounds half up
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBlendPixelModes(t *testing.T) {
	cases := []struct {
		name string
		base color.RGBA
		top  color.RGBA
		mode BlendMode
		want color.RGBA
	}{
		{
			name: "multiply",
			base: color.RGBA{200, 100, 50, 255},
			top:  color.RGBA{100, 50, 200, 255},
			mode: BlendMultiply,
			want: color.RGBA{78, 20, 39, 255},
		},
		{
			name: "screen",
			base: color.RGBA{100, 100, 100, 255},
			top:  color.RGBA{100, 100, 100, 255},
			mode: BlendScreen,
			want: color.RGBA{161, 161, 161, 255},
		},
		{
			name: "additive clamps",
			base: color.RGBA{200, 200, 200, 255},
			top:  color.RGBA{100, 100, 100, 255},
			mode: BlendAdditive,
			want: color.RGBA{255, 255, 255, 255},
		},
		{
			name: "darken",
			base: color.RGBA{200, 50, 100, 255},
			top:  color.RGBA{100, 150, 100, 255},
			mode: BlendDarken,
			want: color.RGBA{100, 50, 100, 255},
		},
		{
			name: "lighten",
			base: color.RGBA{200, 50, 100, 255},
			top:  color.RGBA{100, 150, 100, 255},
			mode: BlendLighten,
			want: color.RGBA{200, 150, 100, 255},
		},
		{
			name: "difference",
			base: color.RGBA{200, 50, 128, 255},
			top:  color.RGBA{50, 200, 128, 255},
			mode: BlendDifference,
			want: color.RGBA{150, 150, 0, 255},
		},
		{
			name: "subtract floors at zero",
			base: color.RGBA{100, 0, 200, 255},
			top:  color.RGBA{150, 50, 50, 255},
			mode: BlendSubtract,
			want: color.RGBA{0, 0, 150, 255},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BlendPixel(tc.base, tc.top, tc.mode, 1.0); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBlendPixelAlphaAccumulation(t *testing.T) {
	// Two 50%-alpha layers over transparency: outA = 0.5 + 0.5*0.5 = 0.75.
	half := color.RGBA{255, 0, 0, 128}
	first := BlendPixel(color.RGBA{}, half, BlendNormal, 1.0)
	second := BlendPixel(first, half, BlendNormal, 1.0)

	if second.A <= first.A {
		t.Fatalf("alpha did not accumulate: %d then %d", first.A, second.A)
	}
	if second.A > 192 {
		t.Fatalf("alpha over-accumulated: %d", second.A)
	}
}

func TestBlendPixelZeroOpacity(t *testing.T) {
	base := color.RGBA{200, 100, 50, 255}
	top := color.RGBA{0, 255, 0, 255}
	if got := BlendPixel(base, top, BlendNormal, 0); got != base {
		t.Fatalf("zero opacity changed base: %v", got)
	}
}

func TestBlendPixelDeterminism(t *testing.T) {
	base := color.RGBA{13, 77, 201, 190}
	top := color.RGBA{240, 3, 99, 160}
	for _, m := range AllBlendModes() {
		first := BlendPixel(base, top, m, 0.73)
		for i := 0; i < 10; i++ {
			if got := BlendPixel(base, top, m, 0.73); got != first {
				t.Fatalf("%v: result changed across calls: %v vs %v", m, got, first)
			}
		}
	}
}

func TestBlendModeStringRoundTrip(t *testing.T) {
	for _, m := range AllBlendModes() {
		if got := BlendModeFromString(m.String()); got != m {
			t.Errorf("%q parsed to %v, want %v", m.String(), got, m)
		}
	}
	if got := BlendModeFromString("nonsense"); got != BlendNormal {
		t.Errorf("unknown name parsed to %v, want Normal", got)
	}
}
