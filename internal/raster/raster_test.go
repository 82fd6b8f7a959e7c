package raster

import (
	"image/color"
	"testing"

	"ink-canvas/internal/canvas"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}},
		{"#1a2b3c", color.RGBA{0x1a, 0x2b, 0x3c, 255}},
		{"#fff", color.RGBA{255, 255, 255, 255}},
		{"#F00", color.RGBA{255, 0, 0, 255}},
		{"", color.RGBA{0, 0, 0, 255}},
		{"red", color.RGBA{0, 0, 0, 255}},
		{"#zzzzzz", color.RGBA{0, 0, 0, 255}},
		{"#12345", color.RGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		if got := ParseHexColor(tt.in); got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderBlockSizeAndBackground(t *testing.T) {
	b := canvas.NewDrawingBlock(500, 400, 300, 200)
	img := RenderBlock(&b, 2)

	if img.Bounds().Dx() != 600 || img.Bounds().Dy() != 400 {
		t.Fatalf("bounds = %v, want 600x400", img.Bounds())
	}
	if got := img.RGBAAt(5, 5); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background = %v, want white", got)
	}
}

func TestRenderBlockDrawsLocalStrokes(t *testing.T) {
	b := canvas.NewDrawingBlock(500, 400, 300, 200)
	b.Strokes = []canvas.LocalStroke{
		canvas.NewLocalStroke(canvas.ToolPen, "#ff0000", 4, []canvas.Point{
			{X: 10, Y: 100, Pressure: 0.5},
			{X: 290, Y: 100, Pressure: 0.5},
		}),
	}
	img := RenderBlock(&b, 2)

	// Local (150,100) at 2x is pixel (300,200).
	if got := img.RGBAAt(300, 200); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("stroke pixel = %v, want red", got)
	}
	if got := img.RGBAAt(300, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("off-stroke pixel = %v, want white", got)
	}
}

func TestRenderStateCropsToContent(t *testing.T) {
	s := canvas.NewState()
	s.Strokes = []canvas.Stroke{
		canvas.NewStroke(canvas.ToolPen, "#000000", 3, []canvas.Point{
			{X: 1000, Y: 1000, Pressure: 0.5},
			{X: 1100, Y: 1000, Pressure: 0.5},
		}),
	}
	img := RenderState(&s, Options{})

	// Content 100x0 plus 20 margin each side, at 2x.
	if img.Bounds().Dx() != 280 || img.Bounds().Dy() != 80 {
		t.Fatalf("bounds = %v, want 280x80", img.Bounds())
	}
	// World (1050,1000) lands at pixel ((1050-980)*2, (1000-980)*2).
	if got := img.RGBAAt(140, 40); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("stroke pixel = %v, want black", got)
	}
}

func TestRenderStateEmptyCanvas(t *testing.T) {
	empty := canvas.NewState()
	img := RenderState(&empty, Options{})
	if img.Bounds().Dx() < 1 || img.Bounds().Dy() < 1 {
		t.Fatalf("empty canvas image has no pixels: %v", img.Bounds())
	}
}

func TestRenderStateIncludesBlocksAndText(t *testing.T) {
	s := canvas.NewState()
	b := canvas.NewDrawingBlock(0, 0, 100, 100)
	b.Strokes = []canvas.LocalStroke{
		canvas.NewLocalStroke(canvas.ToolPen, "#0000ff", 4, []canvas.Point{
			{X: 20, Y: 50, Pressure: 0.5},
			{X: 80, Y: 50, Pressure: 0.5},
		}),
	}
	s.DrawingBlocks = []canvas.DrawingBlock{b}
	tb := canvas.NewTextBlock(200, 30, "#000000")
	tb.Text = "hello"
	tb.Editing = false
	s.TextBlocks = []canvas.TextBlock{tb}

	img := RenderState(&s, Options{})

	// Block-local (50,50) is world (50,50), pixel ((50+20)*2, (50+20)*2).
	if got := img.RGBAAt(140, 140); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("block stroke pixel = %v, want blue", got)
	}

	// Some text pixels were set near the text block's origin.
	found := false
	for y := 40; y < 120 && !found; y++ {
		for x := 430; x < 520; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{0, 0, 0, 255}) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no text pixels rendered")
	}
}
