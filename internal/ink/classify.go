// Package ink classifies freehand stroke geometry. Classification is
// recomputed from raw points on every render pass, never cached, so
// everything here is deterministic and O(n) per stroke.
package ink

import (
	"math"

	"ink-canvas/internal/canvas"
	"ink-canvas/pkg/geometry"
)

// Kind is the classification of a committed stroke.
type Kind int

const (
	// KindFreeform is a stroke with no recognized structure.
	KindFreeform Kind = iota

	// KindClosedLoop is a stroke whose endpoints nearly meet, rendered
	// with a filled tint and eligible for ellipse normalization.
	KindClosedLoop

	// KindArrow is a nearly-straight stroke rendered with a synthesized
	// arrowhead.
	KindArrow
)

// Classification thresholds. These are heuristics, not guarantees.
const (
	closedLoopMinPoints = 10
	closedLoopMaxGap    = 100.0

	arrowMinPoints    = 5
	arrowMinDiagonal  = 60.0
	arrowMaxWindiness = 2.5
)

// Arrowhead geometry.
const (
	arrowHeadSize      = 12.0
	arrowHeadHalfAngle = math.Pi / 7
	arrowMinSegment    = 4.0
)

// Classify returns the stroke's kind. Endpoints meeting wins over the
// arrow rule: a neat circle's path is only ~2.1x its diagonal, so the
// windiness cut alone cannot separate loops from arrows.
func Classify(points []canvas.Point) Kind {
	if IsClosedLoop(points) {
		return KindClosedLoop
	}
	if IsArrow(points) {
		return KindArrow
	}
	return KindFreeform
}

// IsClosedLoop reports whether the stroke's first and last points are
// close enough for the stroke to read as a closed shape.
func IsClosedLoop(points []canvas.Point) bool {
	if len(points) < closedLoopMinPoints {
		return false
	}
	first := points[0].ToPoint2D()
	last := points[len(points)-1].ToPoint2D()
	return first.Distance(last) <= closedLoopMaxGap
}

// IsArrow reports whether the stroke is long and straight enough to read
// as an arrow: the path length may exceed the bounding-box diagonal by at
// most the windiness factor.
func IsArrow(points []canvas.Point) bool {
	if len(points) < arrowMinPoints {
		return false
	}
	pts := canvas.Points2D(points)
	diagonal := geometry.BoundingBox(pts).Diagonal()
	if diagonal <= arrowMinDiagonal {
		return false
	}
	return geometry.PathLength(pts)/diagonal < arrowMaxWindiness
}

// ArrowHead synthesizes the triangular head for an arrow stroke: the tip
// plus two wing points. Direction comes from the last segment longer than
// arrowMinSegment, so jitter at the very tip does not swing the head.
// Returns false when no segment is long enough.
func ArrowHead(points []canvas.Point) ([3]geometry.Point2D, bool) {
	if len(points) < 2 {
		return [3]geometry.Point2D{}, false
	}

	tip := points[len(points)-1].ToPoint2D()

	var dir geometry.Point2D
	found := false
	for i := len(points) - 2; i >= 0; i-- {
		from := points[i].ToPoint2D()
		d := tip.Sub(from)
		if length := math.Hypot(d.X, d.Y); length > arrowMinSegment {
			dir = d.Scale(1 / length)
			found = true
			break
		}
	}
	if !found {
		return [3]geometry.Point2D{}, false
	}

	base := math.Atan2(dir.Y, dir.X) + math.Pi
	left := geometry.Point2D{
		X: tip.X + arrowHeadSize*math.Cos(base-arrowHeadHalfAngle),
		Y: tip.Y + arrowHeadSize*math.Sin(base-arrowHeadHalfAngle),
	}
	right := geometry.Point2D{
		X: tip.X + arrowHeadSize*math.Cos(base+arrowHeadHalfAngle),
		Y: tip.Y + arrowHeadSize*math.Sin(base+arrowHeadHalfAngle),
	}
	return [3]geometry.Point2D{tip, left, right}, true
}
