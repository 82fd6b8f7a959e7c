// Command polishcli applies the polish transform to a saved canvas
// state file: rough closed loops become ellipses and nearby text blocks
// merge into shape labels.
package main

import (
	"flag"
	"fmt"
	"os"

	"ink-canvas/internal/canvas"
	"ink-canvas/internal/polish"
)

func main() {
	statePath := flag.String("state", "", "Path to canvas state JSON")
	outPath := flag.String("out", "", "Output path (defaults to in-place)")
	straighten := flag.Bool("straighten", false, "Also straighten arrow strokes")
	flag.Parse()

	if *statePath == "" {
		fmt.Println("Usage: polishcli -state <state.json> [-out polished.json] [-straighten]")
		os.Exit(1)
	}
	if *outPath == "" {
		*outPath = *statePath
	}

	data, err := os.ReadFile(*statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read state: %v\n", err)
		os.Exit(1)
	}

	state := canvas.DecodeDocument(data)
	res := polish.Run(&state, polish.Options{StraightenArrows: *straighten})
	state.Strokes = res.Strokes
	state.TextBlocks = res.TextBlocks

	fmt.Printf("Polished: %d shapes, %d arrows straightened, %d labels merged\n",
		res.ShapesPolished, res.ArrowsStraightened, res.LabelsMerged)

	out, err := canvas.EncodeState(state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode state: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outPath)
}
