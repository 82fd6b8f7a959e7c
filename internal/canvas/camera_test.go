package canvas

import (
	"math"
	"testing"
)

func TestCameraRoundTrip(t *testing.T) {
	cameras := []Camera{
		{ViewX: 0, ViewY: 0, Zoom: 1},
		{ViewX: -123.5, ViewY: 88.25, Zoom: 0.4},
		{ViewX: 4000, ViewY: -2000, Zoom: 3.7},
	}
	points := [][2]float64{{0, 0}, {17.5, -42}, {1920, 1080}}

	for _, cam := range cameras {
		for _, pt := range points {
			wx, wy := cam.ToWorld(pt[0], pt[1], 10, 20)
			sx, sy := cam.ToScreen(wx, wy, 10, 20)
			if math.Abs(sx-pt[0]) > 1e-9 || math.Abs(sy-pt[1]) > 1e-9 {
				t.Errorf("cam %+v point %v: round trip gave (%v,%v)", cam, pt, sx, sy)
			}
		}
	}
}

func TestZoomAtPreservesFocalPoint(t *testing.T) {
	cam := Camera{ViewX: 0, ViewY: 0, Zoom: 1}

	// Screen point mapping to world (100,100).
	fx, fy := cam.ToScreen(100, 100, 0, 0)

	zoomed := cam.ZoomAt(2.0, fx, fy, 0, 0)
	if zoomed.Zoom != 2.0 {
		t.Fatalf("zoom = %v, want 2.0", zoomed.Zoom)
	}

	wx, wy := zoomed.ToWorld(fx, fy, 0, 0)
	if math.Abs(wx-100) > 1e-9 || math.Abs(wy-100) > 1e-9 {
		t.Errorf("world under focal point moved to (%v,%v), want (100,100)", wx, wy)
	}
}

func TestZoomAtClampsRange(t *testing.T) {
	cam := DefaultCamera()
	if z := cam.ZoomAt(100, 0, 0, 0, 0).Zoom; z != MaxZoom {
		t.Errorf("zoom = %v, want clamp to %v", z, MaxZoom)
	}
	if z := cam.ZoomAt(0.001, 0, 0, 0, 0).Zoom; z != MinZoom {
		t.Errorf("zoom = %v, want clamp to %v", z, MinZoom)
	}
}
