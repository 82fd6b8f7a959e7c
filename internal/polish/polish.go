// Package polish is the batch normalization pass: rough closed loops
// become true ellipses and their nearby text blocks are merged into tidy
// labels placed below each shape.
package polish

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"ink-canvas/internal/canvas"
	"ink-canvas/internal/ink"
	"ink-canvas/pkg/geometry"
)

const (
	// labelGap is the maximum rectangle-to-shape gap for a text block to
	// be treated as the shape's label.
	labelGap = 80.0

	// labelPad pads placed label rectangles during collision testing.
	labelPad = 6.0

	// labelOffset separates a label from the shape above it, and from
	// the previous candidate position when shifting down.
	labelOffset = 8.0

	labelAttempts = 30

	labelSeparator = "  •  "

	// charWidth approximates glyph advance as a fraction of font size
	// when sizing a merged label.
	charWidth = 0.55
)

// Options selects optional polish steps.
type Options struct {
	// StraightenArrows projects arrow strokes onto their least-squares
	// line in addition to the ellipse pass.
	StraightenArrows bool
}

// Result summarizes one polish run.
type Result struct {
	Strokes            []canvas.Stroke
	TextBlocks         []canvas.TextBlock
	ShapesPolished     int
	ArrowsStraightened int
	LabelsMerged       int
}

// Apply runs polish over the store's canvas and commits the outcome as a
// single mutation, so one undo restores the pre-polish content.
func Apply(store *canvas.Store, opts Options) Result {
	r := Run(store.State(), opts)
	store.Apply(canvas.ReplaceContent{Strokes: r.Strokes, TextBlocks: r.TextBlocks})
	return r
}

// Run computes the polished content without touching the input state.
func Run(s *canvas.State, opts Options) Result {
	r := Result{
		Strokes:    append([]canvas.Stroke(nil), s.Strokes...),
		TextBlocks: append([]canvas.TextBlock(nil), s.TextBlocks...),
	}

	var shapes []int
	for i := range r.Strokes {
		st := &r.Strokes[i]
		switch ink.Classify(st.Points) {
		case ink.KindClosedLoop:
			*st = toEllipse(*st)
			shapes = append(shapes, i)
			r.ShapesPolished++
		case ink.KindArrow:
			if opts.StraightenArrows {
				*st = straighten(*st)
				r.ArrowsStraightened++
			}
		}
	}

	r.TextBlocks, r.LabelsMerged = layoutLabels(r.Strokes, shapes, r.TextBlocks)
	return r
}

// toEllipse replaces the stroke's points with a sampled ellipse,
// preserving every other attribute.
func toEllipse(st canvas.Stroke) canvas.Stroke {
	fit := fitEllipse(canvas.Points2D(st.Points))
	sampled := geometry.GenerateEllipsePoints(fit.CX, fit.CY, fit.RX, fit.RY, ellipseSamples)

	pts := make([]canvas.Point, len(sampled))
	for i, p := range sampled {
		pts[i] = canvas.Point{X: p.X, Y: p.Y, Pressure: canvas.DefaultPressure}
	}
	st.Points = pts
	st.BBox = geometry.BoundingBox(sampled)
	return st
}

// straighten projects the stroke's points onto their least-squares line.
// Steep strokes are fit as x(y) so near-vertical arrows stay stable.
func straighten(st canvas.Stroke) canvas.Stroke {
	pts := canvas.Points2D(st.Points)
	bbox := geometry.BoundingBox(pts)
	steep := bbox.Height > bbox.Width

	n := len(pts)
	A := mat.NewDense(n, 2, nil)
	B := mat.NewVecDense(n, nil)
	for i, p := range pts {
		u, v := p.X, p.Y
		if steep {
			u, v = p.Y, p.X
		}
		A.Set(i, 0, u)
		A.Set(i, 1, 1)
		B.SetVec(i, v)
	}

	var qr mat.QR
	qr.Factorize(A)
	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return st
	}
	a, b := params.AtVec(0), params.AtVec(1)

	out := make([]canvas.Point, n)
	for i, p := range pts {
		u, v := p.X, p.Y
		if steep {
			u, v = p.Y, p.X
		}
		// Orthogonal projection onto v = a*u + b.
		t := (u + a*(v-b)) / (1 + a*a)
		x, y := t, a*t+b
		if steep {
			x, y = y, x
		}
		out[i] = canvas.Point{X: x, Y: y, Pressure: st.Points[i].Pressure}
	}
	st.Points = out
	st.BBox = geometry.BoundingBox(canvas.Points2D(out))
	return st
}

// layoutLabels groups text blocks onto their nearest polished shape,
// merges each group into one label, and places it below the shape while
// avoiding already-placed labels.
func layoutLabels(strokes []canvas.Stroke, shapes []int, blocks []canvas.TextBlock) ([]canvas.TextBlock, int) {
	if len(shapes) == 0 || len(blocks) == 0 {
		return blocks, 0
	}

	groups := make(map[int][]canvas.TextBlock)
	var loose []canvas.TextBlock
	for _, b := range blocks {
		if b.Editing || strings.TrimSpace(b.Text) == "" {
			loose = append(loose, b)
			continue
		}
		best, bestGap := -1, labelGap
		for _, si := range shapes {
			gap := b.Rect().Gap(strokes[si].BBox)
			if gap <= bestGap {
				best, bestGap = si, gap
			}
		}
		if best < 0 {
			loose = append(loose, b)
			continue
		}
		groups[best] = append(groups[best], b)
	}

	// Shapes are processed in stroke creation order so label placement
	// is deterministic across runs.
	ordered := append([]int(nil), shapes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return strokes[ordered[i]].Timestamp < strokes[ordered[j]].Timestamp
	})

	out := loose
	merged := 0
	var placed []geometry.Rect
	for _, si := range ordered {
		group := groups[si]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp < group[j].Timestamp
		})

		label := group[0]
		if len(group) > 1 {
			parts := make([]string, len(group))
			for i, b := range group {
				parts[i] = strings.TrimSpace(b.Text)
			}
			label.Text = strings.Join(parts, labelSeparator)
			merged += len(group) - 1
		}

		shape := strokes[si].BBox
		label.W = float64(len([]rune(label.Text))) * label.FontSize * charWidth
		h := label.Rect().Height
		label.X = shape.Center().X - label.W/2
		label.Y = shape.Y + shape.Height + labelOffset

		rect := place(geometry.Rect{X: label.X, Y: label.Y, Width: label.W, Height: h}, placed)
		label.X, label.Y = rect.X, rect.Y
		placed = append(placed, rect)
		out = append(out, label)
	}
	return out, merged
}

// place shifts the candidate downward until it clears every placed label
// or the attempt budget runs out, clamping to world extents.
func place(cand geometry.Rect, placed []geometry.Rect) geometry.Rect {
	cand = clampToWorld(cand)
	for attempt := 0; attempt < labelAttempts; attempt++ {
		hit := false
		for _, p := range placed {
			if cand.Intersects(p.Expand(labelPad)) {
				hit = true
				break
			}
		}
		if !hit {
			return cand
		}
		cand.Y += cand.Height + labelOffset
		cand = clampToWorld(cand)
	}
	return cand
}

func clampToWorld(r geometry.Rect) geometry.Rect {
	r.X = geometry.Clamp(r.X, 0, canvas.WorldWidth-r.Width)
	r.Y = geometry.Clamp(r.Y, 0, canvas.WorldHeight-r.Height)
	return r
}
