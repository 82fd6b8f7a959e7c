package gesture

import (
	"ink-canvas/internal/canvas"
	"ink-canvas/pkg/geometry"
)

// EraseRadius derives the hit-test radius from the brush size.
func EraseRadius(brushSize float64) float64 {
	r := brushSize * 1.15
	if r < 10 {
		r = 10
	}
	return r
}

// Hit identifies the stroke to erase: either a free stroke by ID, or a
// stroke index inside a drawing block.
type Hit struct {
	StrokeID    string
	BlockID     string
	StrokeIndex int
}

// HitTest finds the nearest stroke within radius of the world point.
//
// Free strokes are searched globally: a stroke is rejected outright when
// the point lies outside its cached bounding box expanded by
// radius + width*0.55, otherwise the minimum point-to-segment distance is
// scanned with an early out at radius/2 (no other stroke needs to beat
// that). Strokes inside a drawing block are searched only within the
// block whose rectangle contains the point, exhaustively in block-local
// coordinates; blocks are small and pre-scoped so that is cheap.
func HitTest(s *canvas.State, p geometry.Point2D, radius float64) (Hit, bool) {
	if block := s.BlockAt(p.X, p.Y); block != nil {
		local := geometry.Point2D{X: p.X - block.X, Y: p.Y - block.Y}
		if idx, ok := nearestBlockStroke(block, local, radius); ok {
			return Hit{BlockID: block.ID, StrokeIndex: idx}, true
		}
		return Hit{}, false
	}

	bestID := ""
	bestDist := radius
	for i := range s.Strokes {
		st := &s.Strokes[i]
		margin := radius + st.Width*0.55
		if !st.BBox.Expand(margin).Contains(p) {
			continue
		}
		d := strokeDistance(st.Points, p, radius/2)
		if d < bestDist || (bestID == "" && d <= bestDist) {
			bestID = st.ID
			bestDist = d
			if bestDist <= radius/2 {
				break
			}
		}
	}
	if bestID == "" {
		return Hit{}, false
	}
	return Hit{StrokeID: bestID}, true
}

// strokeDistance returns the minimum distance from p to the stroke's
// segments, stopping early once a distance at or below earlyOut is found.
func strokeDistance(points []canvas.Point, p geometry.Point2D, earlyOut float64) float64 {
	if len(points) == 1 {
		return p.Distance(points[0].ToPoint2D())
	}
	best := float64(1 << 30)
	for i := 1; i < len(points); i++ {
		d := geometry.PointSegmentDistance(p, points[i-1].ToPoint2D(), points[i].ToPoint2D())
		if d < best {
			best = d
			if best <= earlyOut {
				return best
			}
		}
	}
	return best
}

func nearestBlockStroke(block *canvas.DrawingBlock, local geometry.Point2D, radius float64) (int, bool) {
	bestIdx := -1
	bestDist := radius
	for i := range block.Strokes {
		d := strokeDistance(block.Strokes[i].Points, local, 0)
		if d <= bestDist && (bestIdx == -1 || d < bestDist) {
			bestIdx = i
			bestDist = d
		}
	}
	return bestIdx, bestIdx >= 0
}
