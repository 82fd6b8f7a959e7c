// Command canvasrender renders a saved canvas state file to a PNG.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"ink-canvas/internal/canvas"
	"ink-canvas/internal/raster"
)

func main() {
	statePath := flag.String("state", "", "Path to canvas state JSON")
	outPath := flag.String("out", "canvas.png", "Output PNG path")
	scale := flag.Float64("scale", raster.DefaultScale, "Render scale (pixels per world unit)")
	flag.Parse()

	if *statePath == "" {
		fmt.Println("Usage: canvasrender -state <state.json> [-out canvas.png] [-scale 2]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read state: %v\n", err)
		os.Exit(1)
	}

	state := canvas.DecodeDocument(data)
	fmt.Printf("Loaded state: %d strokes, %d text blocks, %d drawing blocks, %d phases\n",
		len(state.Strokes), len(state.TextBlocks), len(state.DrawingBlocks), len(state.Phases))

	img := raster.RenderState(&state, raster.Options{Scale: *scale})

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode PNG: %v\n", err)
		os.Exit(1)
	}

	bounds := img.Bounds()
	fmt.Printf("Wrote %s (%dx%d)\n", *outPath, bounds.Dx(), bounds.Dy())
}
