// Package project provides project file handling and persistence.
//
// A project is a JSON manifest (.pfproj) describing the canvas and its
// layer stack, with each layer's pixels stored as a PNG in a sibling
// directory so transparency and blend attributes survive a round trip.
package project

import (
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"pixelforge/internal/canvas"
	"pixelforge/internal/imageio"
)

// File represents a PixelForge project file (.pfproj).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Width       int `json:"width"`
	Height      int `json:"height"`
	ActiveLayer int `json:"active_layer"`

	// Layer pixel files are stored relative to the project file.
	Layers []LayerInfo `json:"layers"`
}

// LayerInfo describes one layer in the manifest.
type LayerInfo struct {
	Name      string  `json:"name"`
	Visible   bool    `json:"visible"`
	Opacity   float64 `json:"opacity"`
	BlendMode string  `json:"blend_mode"`
	PixelFile string  `json:"pixel_file"`
}

// New creates a new project manifest with default settings.
func New(name string, width, height int) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Width:    width,
		Height:   height,
	}
}

// Save writes the manifest and per-layer PNGs for the given canvas state.
func Save(path string, s *canvas.State) error {
	layerDir := layerDirFor(path)
	if err := os.MkdirAll(layerDir, 0755); err != nil {
		return fmt.Errorf("failed to create layer directory: %w", err)
	}

	proj := New(projectName(path), s.Width, s.Height)
	proj.ActiveLayer = s.ActiveLayerIndex

	for i, layer := range s.Layers {
		pixelFile := fmt.Sprintf("layer_%03d.png", i)
		if err := writeLayerPNG(filepath.Join(layerDir, pixelFile), layer); err != nil {
			return err
		}
		proj.Layers = append(proj.Layers, LayerInfo{
			Name:      layer.Name,
			Visible:   layer.Visible,
			Opacity:   layer.Opacity,
			BlendMode: layer.BlendMode.String(),
			PixelFile: filepath.Join(filepath.Base(layerDir), pixelFile),
		})
	}

	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a project file and reconstructs the canvas state.
func Load(path string) (*canvas.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	if proj.Width <= 0 || proj.Height <= 0 || len(proj.Layers) == 0 {
		return nil, fmt.Errorf("project %q has no usable canvas", path)
	}

	s := &canvas.State{Width: proj.Width, Height: proj.Height}
	for _, info := range proj.Layers {
		layer, err := readLayerPNG(filepath.Join(filepath.Dir(path), info.PixelFile), info)
		if err != nil {
			return nil, err
		}
		// Every layer must match the canvas size; a truncated or edited
		// sidecar PNG would otherwise corrupt compositing and history.
		if layer.Pixels.Width() != proj.Width || layer.Pixels.Height() != proj.Height {
			return nil, fmt.Errorf("layer %q is %dx%d, canvas is %dx%d",
				info.Name, layer.Pixels.Width(), layer.Pixels.Height(),
				proj.Width, proj.Height)
		}
		s.Layers = append(s.Layers, layer)
	}

	s.ActiveLayerIndex = proj.ActiveLayer
	if s.ActiveLayerIndex < 0 || s.ActiveLayerIndex >= len(s.Layers) {
		s.ActiveLayerIndex = len(s.Layers) - 1
	}
	s.MarkAllDirty()
	return s, nil
}

func writeLayerPNG(path string, layer *canvas.Layer) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create layer file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, imageio.AsNRGBA(layer.Pixels.ToRGBA())); err != nil {
		return fmt.Errorf("failed to encode layer %q: %w", layer.Name, err)
	}
	return nil
}

func readLayerPNG(path string, info LayerInfo) (*canvas.Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layer file: %w", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode layer %q: %w", info.Name, err)
	}
	rgba := imageio.ToRGBA(img)

	layer := &canvas.Layer{
		Name:      info.Name,
		Visible:   info.Visible,
		BlendMode: canvas.BlendModeFromString(info.BlendMode),
		Pixels:    canvas.FromRGBA(rgba),
	}
	layer.SetOpacity(info.Opacity)
	return layer, nil
}

// layerDirFor returns the layer data directory for a project path:
// "art.pfproj" stores pixels under "art_layers/".
func layerDirFor(path string) string {
	base := path[:len(path)-len(filepath.Ext(path))]
	return base + "_layers"
}

func projectName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
