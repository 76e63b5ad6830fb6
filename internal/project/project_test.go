package project

import (
	"encoding/json"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pixelforge/internal/canvas"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := canvas.NewState(48, 32)
	s.AddLayer("ink")
	s.ActiveLayer().Pixels.Set(5, 5, color.RGBA{200, 10, 10, 128})
	s.ActiveLayer().SetOpacity(0.6)
	s.ActiveLayer().BlendMode = canvas.BlendMultiply
	s.Layers[0].Visible = false

	dir := t.TempDir()
	path := filepath.Join(dir, "art.pfproj")
	if err := Save(path, s); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Layer pixels land in the sibling directory.
	if _, err := os.Stat(filepath.Join(dir, "art_layers", "layer_001.png")); err != nil {
		t.Fatalf("layer png missing: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Width != 48 || loaded.Height != 32 {
		t.Fatalf("dimensions = %dx%d", loaded.Width, loaded.Height)
	}
	if len(loaded.Layers) != 2 {
		t.Fatalf("layer count = %d", len(loaded.Layers))
	}
	if loaded.ActiveLayerIndex != 1 {
		t.Fatalf("active index = %d", loaded.ActiveLayerIndex)
	}

	ink := loaded.Layers[1]
	if ink.Name != "ink" || ink.Opacity != 0.6 || ink.BlendMode != canvas.BlendMultiply {
		t.Fatalf("layer attributes lost: %+v", ink)
	}
	// Semi-transparent pixels survive exactly (straight alpha).
	if got := ink.Pixels.At(5, 5); got != (color.RGBA{200, 10, 10, 128}) {
		t.Fatalf("pixel = %v, want exact round trip", got)
	}
	if loaded.Layers[0].Visible {
		t.Fatalf("visibility flag lost")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.pfproj")); err == nil {
		t.Fatalf("missing file loaded without error")
	}
}

func TestLoadRejectsEmptyProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pfproj")
	if err := os.WriteFile(path, []byte(`{"version":1,"width":10,"height":10}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("project without layers loaded")
	}
}

func TestLoadRejectsMismatchedLayerSize(t *testing.T) {
	s := canvas.NewState(32, 32)
	dir := t.TempDir()
	path := filepath.Join(dir, "p.pfproj")
	if err := Save(path, s); err != nil {
		t.Fatal(err)
	}

	// Replace the layer sidecar with a smaller image.
	small := canvas.NewTiledImage(8, 8, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(filepath.Join(dir, "p_layers", "layer_000.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, small.ToRGBA()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := Load(path); err == nil {
		t.Fatalf("layer smaller than canvas loaded without error")
	}
}

func TestLoadClampsActiveIndex(t *testing.T) {
	s := canvas.NewState(8, 8)
	path := filepath.Join(t.TempDir(), "p.pfproj")
	if err := Save(path, s); err != nil {
		t.Fatal(err)
	}

	// Corrupt the active index in the manifest.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		t.Fatal(err)
	}
	proj.ActiveLayer = 99
	data, err = json.Marshal(&proj)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ActiveLayerIndex != 0 {
		t.Fatalf("active index = %d, want clamped 0", loaded.ActiveLayerIndex)
	}
}
