// Command pfadjust applies an adjustment or filter to an image file.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"pixelforge/internal/adjust"
	"pixelforge/internal/filter"
	"pixelforge/internal/imageio"
)

func main() {
	output := flag.String("o", "", "Output image path (default: overwrite input)")
	brightness := flag.Float64("brightness", 0, "Brightness delta (-255 to 255)")
	contrast := flag.Float64("contrast", 0, "Contrast amount (-100 to 100)")
	hue := flag.Float64("hue", 0, "Hue shift in degrees")
	saturation := flag.Float64("saturation", 1, "Saturation scale (1 = unchanged)")
	autoContrast := flag.Float64("autocontrast", -1, "Auto-contrast clip percent (0 disables clipping)")
	invert := flag.Bool("invert", false, "Invert colors")
	grayscale := flag.Bool("grayscale", false, "Convert to grayscale")
	blur := flag.Int("blur", 0, "Gaussian blur radius in pixels")
	sharpen := flag.Float64("sharpen", 0, "Sharpen amount")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: pfadjust [flags] <image>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)
	if *output == "" {
		*output = input
	}

	pixels, err := imageio.Load(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", input, err)
		os.Exit(1)
	}
	bounds := image.Rect(0, 0, pixels.Width(), pixels.Height())

	if *brightness != 0 {
		adjust.Brightness(pixels, *brightness, nil)
	}
	if *contrast != 0 {
		adjust.Contrast(pixels, *contrast, nil)
	}
	if *hue != 0 || *saturation != 1 {
		adjust.HueSaturation(pixels, *hue, *saturation, nil)
	}
	if *autoContrast >= 0 {
		adjust.AutoContrast(pixels, *autoContrast, nil)
	}
	if *invert {
		adjust.Invert(pixels, nil)
	}
	if *grayscale {
		adjust.Grayscale(pixels, nil)
	}

	if *blur > 0 {
		if err := filter.GaussianBlur(pixels, bounds, *blur); err != nil {
			fmt.Fprintf(os.Stderr, "Blur failed: %v\n", err)
			os.Exit(1)
		}
	}
	if *sharpen > 0 {
		if err := filter.Sharpen(pixels, bounds, *sharpen); err != nil {
			fmt.Fprintf(os.Stderr, "Sharpen failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := imageio.Save(*output, pixels); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *output)
}
