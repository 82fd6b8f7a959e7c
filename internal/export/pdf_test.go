package export

import (
	"os"
	"path/filepath"
	"testing"

	"ink-canvas/internal/canvas"
)

func TestPDFWritesFile(t *testing.T) {
	s := canvas.NewState()
	s.Strokes = []canvas.Stroke{
		canvas.NewStroke(canvas.ToolPen, "#1a1a2e", 3, []canvas.Point{
			{X: 100, Y: 100, Pressure: 0.5},
			{X: 400, Y: 250, Pressure: 0.5},
			{X: 600, Y: 100, Pressure: 0.5},
		}),
	}
	tb := canvas.NewTextBlock(150, 300, "#000000")
	tb.Text = "diagram"
	s.TextBlocks = []canvas.TextBlock{tb}

	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := PDF(&s, "Lecture 4", path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("pdf file is empty")
	}
}

func TestPDFEmptyCanvas(t *testing.T) {
	s := canvas.NewState()
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := PDF(&s, "", path); err == nil {
		t.Error("no error for empty canvas")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("file written for empty canvas")
	}
}
