package imageio

import (
	"image/color"
	"path/filepath"
	"testing"

	"pixelforge/internal/canvas"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	src := canvas.NewTiledImage(40, 30, color.RGBA{0, 0, 0, 255})
	src.Set(10, 10, color.RGBA{255, 0, 0, 255})
	src.Set(39, 29, color.RGBA{0, 255, 0, 255})

	// Lossless formats must preserve every pixel.
	for _, ext := range []string{".png", ".tiff", ".bmp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)
			if err := Save(path, src); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if loaded.Width() != 40 || loaded.Height() != 30 {
				t.Fatalf("dimensions = %dx%d", loaded.Width(), loaded.Height())
			}
			if got := loaded.At(10, 10); got != (color.RGBA{255, 0, 0, 255}) {
				t.Errorf("pixel (10,10) = %v, want red", got)
			}
			if got := loaded.At(39, 29); got != (color.RGBA{0, 255, 0, 255}) {
				t.Errorf("pixel (39,29) = %v, want green", got)
			}
		})
	}
}

func TestSaveJPEGFlattensAlpha(t *testing.T) {
	src := canvas.NewTiledImage(16, 16, color.RGBA{}) // fully transparent
	path := filepath.Join(t.TempDir(), "out.jpg")
	if err := Save(path, src); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := loaded.At(8, 8)
	if got.A != 255 {
		t.Fatalf("jpeg pixel has alpha %d, want 255", got.A)
	}
	// Transparent input flattens to white (within jpeg tolerance).
	if got.R < 250 || got.G < 250 || got.B < 250 {
		t.Fatalf("flattened pixel = %v, want near white", got)
	}
}

func TestSaveUnknownExtension(t *testing.T) {
	src := canvas.NewTiledImage(4, 4, color.RGBA{})
	if err := Save(filepath.Join(t.TempDir(), "out.webp"), src); err == nil {
		t.Fatalf("unsupported extension accepted")
	}
}

func TestIsSupportedFormat(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"a.png", true},
		{"a.PNG", true},
		{"b.jpeg", true},
		{"c.tif", true},
		{"d.bmp", true},
		{"e.gif", false},
		{"f", false},
	}
	for _, tc := range cases {
		if got := IsSupportedFormat(tc.path); got != tc.want {
			t.Errorf("IsSupportedFormat(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
