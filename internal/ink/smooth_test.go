package ink

import (
	"testing"

	"ink-canvas/internal/canvas"
	"ink-canvas/pkg/geometry"
)

func TestOutlineProducesClosedPolygon(t *testing.T) {
	pts := []canvas.Point{
		{0, 0, 0.5}, {10, 0, 0.5}, {20, 0, 0.8}, {30, 0, 0.8}, {40, 0, 0.5},
		{50, 0, 0.5}, {60, 0, 0.5}, {70, 0, 0.5}, {80, 0, 0.5}, {90, 0, 0.5},
	}

	outline := Outline(pts, 6, canvas.ToolPen)
	if len(outline) != 2*len(pts) {
		t.Fatalf("outline points = %d, want %d", len(outline), 2*len(pts))
	}

	// Side offsets straddle the centerline.
	var above, below int
	for _, p := range outline {
		if p.Y < 0 {
			above++
		}
		if p.Y > 0 {
			below++
		}
	}
	if above != len(pts) || below != len(pts) {
		t.Errorf("offsets above=%d below=%d, want %d each", above, below, len(pts))
	}
}

func TestPenTapersMoreThanHighlighter(t *testing.T) {
	pts := make([]canvas.Point, 12)
	for i := range pts {
		pts[i] = canvas.Point{X: float64(i) * 10, Y: 0, Pressure: 0.5}
	}

	pen := Outline(pts, 6, canvas.ToolPen)
	hl := Outline(pts, 6, canvas.ToolHighlighter)

	// Width at the first sample (distance from first top point to the
	// matching bottom point).
	penEnd := pen[0].Distance(pen[len(pen)-1])
	hlEnd := hl[0].Distance(hl[len(hl)-1])
	if penEnd >= hlEnd {
		t.Errorf("pen end width %v not thinner than highlighter %v", penEnd, hlEnd)
	}

	// Mid-stroke widths match: taper only affects the ends.
	mid := len(pts) / 2
	penMid := pen[mid].Distance(pen[len(pen)-1-mid])
	hlMid := hl[mid].Distance(hl[len(hl)-1-mid])
	if diff := penMid - hlMid; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("mid widths differ: pen %v, highlighter %v", penMid, hlMid)
	}
}

func TestPressureWidensStroke(t *testing.T) {
	soft := make([]canvas.Point, 12)
	hard := make([]canvas.Point, 12)
	for i := range soft {
		soft[i] = canvas.Point{X: float64(i) * 10, Y: 0, Pressure: 0.2}
		hard[i] = canvas.Point{X: float64(i) * 10, Y: 0, Pressure: 0.9}
	}

	mid := len(soft) / 2
	so := Outline(soft, 6, canvas.ToolPen)
	ha := Outline(hard, 6, canvas.ToolPen)
	softW := so[mid].Distance(so[len(so)-1-mid])
	hardW := ha[mid].Distance(ha[len(ha)-1-mid])
	if softW >= hardW {
		t.Errorf("soft width %v not thinner than hard %v", softW, hardW)
	}
}

func TestSmoothClosedSampleCount(t *testing.T) {
	square := []geometry.Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	out := SmoothClosed(square, 4)
	if len(out) != 16 {
		t.Errorf("samples = %d, want 16", len(out))
	}

	// Smoothing stays within the hull of a convex polygon.
	bb := geometry.BoundingBox(out)
	if bb.X < 0 || bb.Y < 0 || bb.X+bb.Width > 10 || bb.Y+bb.Height > 10 {
		t.Errorf("smoothed path escapes hull: %+v", bb)
	}
}

func TestSmoothClosedDegenerate(t *testing.T) {
	two := []geometry.Point2D{{0, 0}, {1, 1}}
	if got := SmoothClosed(two, 4); len(got) != 2 {
		t.Errorf("degenerate input altered: %v", got)
	}
}
