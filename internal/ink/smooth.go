package ink

import (
	"math"

	"ink-canvas/internal/canvas"
	"ink-canvas/pkg/geometry"
)

// Taper strength per tool: how much the stroke thins toward its ends.
// The pen thins more than the highlighter.
const (
	penTaper         = 0.65
	highlighterTaper = 0.25
	taperSpan        = 4 // points at each end affected by the taper
)

// pointRadius returns the half-width of the stroke body at sample i,
// combining reported pressure with the end taper.
func pointRadius(width float64, points []canvas.Point, i int, taper float64) float64 {
	pressure := points[i].Pressure
	if pressure <= 0 {
		pressure = canvas.DefaultPressure
	}

	r := width / 2 * (0.5 + pressure)

	n := len(points)
	edge := i
	if n-1-i < edge {
		edge = n - 1 - i
	}
	if edge < taperSpan {
		f := float64(edge) / float64(taperSpan)
		r *= (1 - taper) + taper*f
	}
	if r < 0.2 {
		r = 0.2
	}
	return r
}

// Outline builds the stroke's body polygon by offsetting each sample
// perpendicular to the local direction, out along one side and back along
// the other. The result is a closed polygon suitable for filling.
func Outline(points []canvas.Point, width float64, tool canvas.Tool) []geometry.Point2D {
	if len(points) < 2 {
		return nil
	}

	taper := penTaper
	if tool == canvas.ToolHighlighter {
		taper = highlighterTaper
	}

	n := len(points)
	left := make([]geometry.Point2D, 0, n)
	right := make([]geometry.Point2D, 0, n)

	for i := 0; i < n; i++ {
		// Local direction from the neighboring samples.
		prev := points[maxInt(i-1, 0)].ToPoint2D()
		next := points[minInt(i+1, n-1)].ToPoint2D()
		d := next.Sub(prev)
		length := math.Hypot(d.X, d.Y)
		if length == 0 {
			continue
		}
		normal := geometry.Point2D{X: -d.Y / length, Y: d.X / length}

		p := points[i].ToPoint2D()
		r := pointRadius(width, points, i, taper)
		left = append(left, p.Add(normal.Scale(r)))
		right = append(right, p.Sub(normal.Scale(r)))
	}

	for i := len(right) - 1; i >= 0; i-- {
		left = append(left, right[i])
	}
	return left
}

// SmoothClosed smooths a closed polygon with quadratic curves: every
// vertex is a control point and segment midpoints are the path anchors.
// samplesPerSegment controls output density.
func SmoothClosed(points []geometry.Point2D, samplesPerSegment int) []geometry.Point2D {
	n := len(points)
	if n < 3 {
		return points
	}
	if samplesPerSegment < 1 {
		samplesPerSegment = 1
	}

	out := make([]geometry.Point2D, 0, n*samplesPerSegment)
	for i := 0; i < n; i++ {
		ctrl := points[i]
		a := midpoint(points[(i+n-1)%n], ctrl)
		b := midpoint(ctrl, points[(i+1)%n])
		for s := 0; s < samplesPerSegment; s++ {
			t := float64(s) / float64(samplesPerSegment)
			out = append(out, quadratic(a, ctrl, b, t))
		}
	}
	return out
}

// FillPath builds the smoothed fill polygon for a stroke body: the
// pressure/taper outline passed through quadratic smoothing.
func FillPath(points []canvas.Point, width float64, tool canvas.Tool) []geometry.Point2D {
	return SmoothClosed(Outline(points, width, tool), 2)
}

// LoopFill builds the tint polygon for a closed-loop stroke from the raw
// centerline, smoothed the same way.
func LoopFill(points []canvas.Point) []geometry.Point2D {
	return SmoothClosed(canvas.Points2D(points), 2)
}

func midpoint(a, b geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// quadratic evaluates a quadratic Bezier with anchors a,b and control c.
func quadratic(a, c, b geometry.Point2D, t float64) geometry.Point2D {
	u := 1 - t
	return geometry.Point2D{
		X: u*u*a.X + 2*u*t*c.X + t*t*b.X,
		Y: u*u*a.Y + 2*u*t*c.Y + t*t*b.Y,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
