// Package export writes canvas content to shareable files.
package export

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"ink-canvas/internal/canvas"
	"ink-canvas/internal/raster"
	"ink-canvas/pkg/geometry"
)

// pageWidth and pageHeight are the drawable A4 landscape area in mm,
// inside a 10mm margin.
const (
	pageWidth  = 277.0
	pageHeight = 190.0
	pageMargin = 10.0
)

// PDF writes the canvas content to an A4 landscape PDF, scaled to fit
// the page while keeping the aspect ratio.
func PDF(s *canvas.State, title, path string) error {
	bounds := contentBounds(s)
	if bounds.Width <= 0 && bounds.Height <= 0 {
		return fmt.Errorf("export pdf: canvas is empty")
	}

	scale := pageWidth / bounds.Width
	if hs := pageHeight / bounds.Height; hs < scale {
		scale = hs
	}
	mm := func(x, y float64) (float64, float64) {
		return pageMargin + (x-bounds.X)*scale, pageMargin + (y-bounds.Y)*scale
	}

	p := gofpdf.New("L", "mm", "A4", "")
	p.AddPage()
	if title != "" {
		p.SetTitle(title, true)
	}

	for _, st := range s.Strokes {
		r, g, b := rgb(st.Color)
		p.SetDrawColor(r, g, b)
		p.SetLineWidth(st.Width * scale)
		drawPolyline(p, st.Points, mm)
	}
	for _, block := range s.DrawingBlocks {
		p.SetDrawColor(180, 180, 190)
		p.SetLineWidth(0.3)
		x, y := mm(block.X, block.Y)
		p.Rect(x, y, block.W*scale, block.H*scale, "D")
		for _, st := range block.Strokes {
			r, g, b := rgb(st.Color)
			p.SetDrawColor(r, g, b)
			p.SetLineWidth(st.Width * scale)
			drawPolyline(p, st.Points, func(lx, ly float64) (float64, float64) {
				return mm(block.X+lx, block.Y+ly)
			})
		}
	}

	p.SetFont("Helvetica", "", 11)
	for _, tb := range s.TextBlocks {
		if tb.Text == "" {
			continue
		}
		r, g, b := rgb(tb.Color)
		p.SetTextColor(r, g, b)
		x, y := mm(tb.X, tb.Y)
		p.Text(x, y+tb.FontSize*scale, tb.Text)
	}

	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	return nil
}

func drawPolyline(p *gofpdf.Fpdf, points []canvas.Point, mm func(x, y float64) (float64, float64)) {
	for i := 1; i < len(points); i++ {
		x1, y1 := mm(points[i-1].X, points[i-1].Y)
		x2, y2 := mm(points[i].X, points[i].Y)
		p.Line(x1, y1, x2, y2)
	}
}

func contentBounds(s *canvas.State) geometry.Rect {
	var r geometry.Rect
	first := true
	add := func(b geometry.Rect) {
		if first {
			r, first = b, false
			return
		}
		r = r.Union(b)
	}
	for i := range s.Strokes {
		add(s.Strokes[i].BBox)
	}
	for i := range s.TextBlocks {
		add(s.TextBlocks[i].Rect())
	}
	for i := range s.DrawingBlocks {
		add(s.DrawingBlocks[i].Rect())
	}
	return r
}

func rgb(hex string) (int, int, int) {
	c := raster.ParseHexColor(hex)
	return int(c.R), int(c.G), int(c.B)
}
