package geometry

import "math"

// PointSegmentDistance returns the shortest distance from point p to the
// line segment a-b. Degenerate segments (a == b) reduce to point distance.
func PointSegmentDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}

	// Project p onto the segment, clamping to the endpoints.
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	proj := Point2D{X: a.X + t*dx, Y: a.Y + t*dy}
	return p.Distance(proj)
}

// PathLength returns the total length of the polyline through points.
func PathLength(points []Point2D) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i].Distance(points[i-1])
	}
	return total
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
