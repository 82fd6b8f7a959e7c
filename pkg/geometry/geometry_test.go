package geometry

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestPointSegmentDistance(t *testing.T) {
	tests := []struct {
		name    string
		p, a, b Point2D
		want    float64
	}{
		{"perpendicular drop", Point2D{5, 5}, Point2D{0, 0}, Point2D{10, 0}, 5},
		{"beyond start", Point2D{-3, 4}, Point2D{0, 0}, Point2D{10, 0}, 5},
		{"beyond end", Point2D{13, 4}, Point2D{0, 0}, Point2D{10, 0}, 5},
		{"on segment", Point2D{5, 0}, Point2D{0, 0}, Point2D{10, 0}, 0},
		{"degenerate segment", Point2D{3, 4}, Point2D{0, 0}, Point2D{0, 0}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointSegmentDistance(tt.p, tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("PointSegmentDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathLength(t *testing.T) {
	pts := []Point2D{{0, 0}, {3, 4}, {3, 14}}
	if got := PathLength(pts); !almostEqual(got, 15) {
		t.Errorf("PathLength = %v, want 15", got)
	}
	if got := PathLength(nil); got != 0 {
		t.Errorf("PathLength(nil) = %v, want 0", got)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{1, 2}, {-3, 7}, {5, -1}}
	bb := BoundingBox(pts)
	want := Rect{X: -3, Y: -1, Width: 8, Height: 8}
	if bb != want {
		t.Errorf("BoundingBox = %+v, want %+v", bb, want)
	}
}

func TestRectExpand(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 30}
	e := r.Expand(5)
	want := Rect{X: 5, Y: 5, Width: 30, Height: 40}
	if e != want {
		t.Errorf("Expand = %+v, want %+v", e, want)
	}
}

func TestRectGap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	tests := []struct {
		name string
		b    Rect
		want float64
	}{
		{"overlapping", Rect{5, 5, 10, 10}, 0},
		{"touching", Rect{10, 0, 5, 10}, 0},
		{"horizontal gap", Rect{15, 0, 5, 10}, 5},
		{"vertical gap", Rect{0, 17, 10, 3}, 7},
		{"diagonal gap", Rect{13, 14, 5, 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Gap(tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Gap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateEllipsePoints(t *testing.T) {
	pts := GenerateEllipsePoints(10, 20, 4, 2, 48)
	if len(pts) != 48 {
		t.Fatalf("got %d points, want 48", len(pts))
	}
	for i, p := range pts {
		// Every sample must satisfy the ellipse equation.
		v := (p.X-10)*(p.X-10)/16 + (p.Y-20)*(p.Y-20)/4
		if math.Abs(v-1) > 1e-9 {
			t.Errorf("point %d off ellipse: %v", i, v)
		}
	}
	if !almostEqual(pts[0].X, 14) || !almostEqual(pts[0].Y, 20) {
		t.Errorf("first point = %+v, want (14,20)", pts[0])
	}
}

func TestAffineTransform(t *testing.T) {
	tr := Translation(3, 4).Compose(Scale(2, 2))
	p := tr.Apply(Point2D{1, 1})
	if !almostEqual(p.X, 5) || !almostEqual(p.Y, 6) {
		t.Errorf("Apply = %+v, want (5,6)", p)
	}
}
