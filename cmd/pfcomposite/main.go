// Command pfcomposite stacks input images as layers and writes the
// flattened composite.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"pixelforge/internal/canvas"
	"pixelforge/internal/imageio"
)

func main() {
	output := flag.String("o", "composite.png", "Output image path")
	mode := flag.String("mode", "Normal", "Blend mode for layers above the base")
	opacity := flag.Float64("opacity", 1.0, "Opacity for layers above the base (0-1)")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: pfcomposite [-o <output>] [-mode <blend>] [-opacity <0-1>] <base> [overlay...]")
		fmt.Printf("Blend modes: %s\n", blendModeNames())
		os.Exit(1)
	}

	// BlendModeFromString falls back to Normal for unknown names; reject
	// typos instead of silently compositing with the wrong mode.
	blend := canvas.BlendModeFromString(*mode)
	if blend.String() != *mode {
		fmt.Fprintf(os.Stderr, "Unknown blend mode %q\nBlend modes: %s\n", *mode, blendModeNames())
		os.Exit(1)
	}

	var state *canvas.State
	for i, path := range inputs {
		pixels, err := imageio.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", path, err)
			os.Exit(1)
		}

		if state == nil {
			state = canvas.NewState(pixels.Width(), pixels.Height())
			state.Layers[0].Pixels = pixels
			state.Layers[0].Name = path
			fmt.Printf("Base layer %s (%dx%d)\n", path, pixels.Width(), pixels.Height())
			continue
		}

		index, _ := state.AddLayer(path)
		layer := state.Layers[index]
		layer.Pixels = pixels
		layer.BlendMode = blend
		layer.SetOpacity(*opacity)
		fmt.Printf("Layer %d: %s (%s, opacity %.2f)\n", i, path, blend, *opacity)
	}

	if err := imageio.Save(*output, canvas.FromRGBA(state.Composite())); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *output)
}

func blendModeNames() string {
	var names []string
	for _, m := range canvas.AllBlendModes() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}
