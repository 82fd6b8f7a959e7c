package polish

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"ink-canvas/pkg/geometry"
)

const (
	ellipseSamples = 48
	ellipsePadding = 4.0

	// conicResidual is the RMS point-to-curve distance (world units)
	// above which a least-squares fit is considered unstable and the
	// bounding-box fit is used instead.
	conicResidual = 2.0
)

// ellipseFit holds axis-aligned ellipse parameters.
type ellipseFit struct {
	CX, CY float64
	RX, RY float64
}

// fitConic solves the axis-aligned conic A*x^2 + C*y^2 + D*x + E*y = 1
// by least squares over the stroke points. Points already on an ellipse
// fit themselves back exactly, which keeps a repeated polish from
// inflating shapes that were produced by a previous run.
func fitConic(points []geometry.Point2D) (ellipseFit, error) {
	n := len(points)
	if n < 5 {
		return ellipseFit{}, fmt.Errorf("need at least 5 points, got %d", n)
	}

	A := mat.NewDense(n, 4, nil)
	B := mat.NewVecDense(n, nil)
	for i, p := range points {
		A.Set(i, 0, p.X*p.X)
		A.Set(i, 1, p.Y*p.Y)
		A.Set(i, 2, p.X)
		A.Set(i, 3, p.Y)
		B.SetVec(i, 1)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return ellipseFit{}, fmt.Errorf("conic solve: %w", err)
	}

	a, c := params.AtVec(0), params.AtVec(1)
	d, e := params.AtVec(2), params.AtVec(3)
	// a and c carry the sign of the free-term normalization, which flips
	// when the origin lies outside the ellipse. Same sign means ellipse.
	if a*c <= 0 {
		return ellipseFit{}, fmt.Errorf("fit is not an ellipse")
	}

	cx := -d / (2 * a)
	cy := -e / (2 * c)
	g := 1 + a*cx*cx + c*cy*cy
	rx2, ry2 := g/a, g/c
	if rx2 <= 0 || ry2 <= 0 {
		return ellipseFit{}, fmt.Errorf("degenerate conic")
	}

	// Residual as approximate geometric distance: |Q(p)| / |grad Q(p)|.
	var ss float64
	for _, p := range points {
		q := a*p.X*p.X + c*p.Y*p.Y + d*p.X + e*p.Y - 1
		grad := math.Hypot(2*a*p.X+d, 2*c*p.Y+e)
		if grad == 0 {
			return ellipseFit{}, fmt.Errorf("degenerate conic")
		}
		dist := q / grad
		ss += dist * dist
	}
	if ss/float64(n) > conicResidual*conicResidual {
		return ellipseFit{}, fmt.Errorf("residual too high")
	}

	return ellipseFit{
		CX: cx, CY: cy,
		RX: math.Sqrt(rx2), RY: math.Sqrt(ry2),
	}, nil
}

// fitBBox inscribes the ellipse in the stroke's bounding box expanded by
// a fixed padding.
func fitBBox(points []geometry.Point2D) ellipseFit {
	r := geometry.BoundingBox(points).Expand(ellipsePadding)
	c := r.Center()
	return ellipseFit{CX: c.X, CY: c.Y, RX: r.Width / 2, RY: r.Height / 2}
}

// fitEllipse prefers the least-squares fit and falls back to the
// bounding box when the points are not convincingly elliptical.
func fitEllipse(points []geometry.Point2D) ellipseFit {
	if fit, err := fitConic(points); err == nil {
		return fit
	}
	return fitBBox(points)
}
