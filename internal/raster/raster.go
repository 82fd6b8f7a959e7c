// Package raster renders canvas content into plain RGBA images for
// export, OCR input, and PDF embedding. Rendering is pixel-wise with no
// anti-aliasing; output is deterministic for a given state.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"ink-canvas/internal/canvas"
	"ink-canvas/internal/ink"
	"ink-canvas/pkg/geometry"
)

// DefaultScale is the export supersampling factor.
const DefaultScale = 2.0

// contentMargin pads the rendered area around the content bounds.
const contentMargin = 20.0

// Options controls a full-canvas render.
type Options struct {
	// Scale multiplies world units to pixels. Zero means DefaultScale.
	Scale float64

	// Background fills the image before content. Zero value means white.
	Background color.RGBA
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return DefaultScale
	}
	return o.Scale
}

func (o Options) background() color.RGBA {
	if o.Background == (color.RGBA{}) {
		return color.RGBA{255, 255, 255, 255}
	}
	return o.Background
}

// RenderState renders the whole canvas content, cropped to its bounds
// plus a margin. An empty canvas renders as a small blank image.
func RenderState(s *canvas.State, opts Options) *image.RGBA {
	bounds := contentBounds(s).Expand(contentMargin)
	scale := opts.scale()

	w := int(math.Ceil(bounds.Width * scale))
	h := int(math.Ceil(bounds.Height * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.background()), image.Point{}, draw.Src)

	ox, oy := bounds.X, bounds.Y
	for i := range s.Strokes {
		drawStroke(img, s.Strokes[i], ox, oy, scale)
	}
	for i := range s.DrawingBlocks {
		b := &s.DrawingBlocks[i]
		drawRectOutline(img, b.Rect(), ox, oy, scale, color.RGBA{180, 180, 190, 255})
		for _, st := range b.Strokes {
			drawLocalStroke(img, st, ox-b.X, oy-b.Y, scale)
		}
	}
	for i := range s.TextBlocks {
		drawTextBlock(img, &s.TextBlocks[i], ox, oy, scale)
	}
	return img
}

// RenderBlock renders one drawing block on a white background at the
// given scale, sized to the block's own rectangle.
func RenderBlock(b *canvas.DrawingBlock, scale float64) *image.RGBA {
	if scale <= 0 {
		scale = DefaultScale
	}
	w := int(math.Ceil(b.W * scale))
	h := int(math.Ceil(b.H * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)

	for _, st := range b.Strokes {
		drawLocalStroke(img, st, 0, 0, scale)
	}
	return img
}

func contentBounds(s *canvas.State) geometry.Rect {
	var r geometry.Rect
	first := true
	add := func(b geometry.Rect) {
		if first {
			r = b
			first = false
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

func drawStroke(img *image.RGBA, st canvas.Stroke, ox, oy, scale float64) {
	col := ParseHexColor(st.Color)
	if st.Tool == canvas.ToolHighlighter {
		col.A = 128
	}
	thickness := int(math.Round(st.Width * scale))
	drawPolyline(img, st.Points, ox, oy, scale, col, thickness)

	if ink.Classify(st.Points) == ink.KindArrow {
		if head, ok := ink.ArrowHead(st.Points); ok {
			drawSegment(img, head[0], head[1], ox, oy, scale, col, thickness)
			drawSegment(img, head[0], head[2], ox, oy, scale, col, thickness)
		}
	}
}

func drawLocalStroke(img *image.RGBA, st canvas.LocalStroke, ox, oy, scale float64) {
	col := ParseHexColor(st.Color)
	if st.Tool == canvas.ToolHighlighter {
		col.A = 128
	}
	drawPolyline(img, st.Points, ox, oy, scale, col, int(math.Round(st.Width*scale)))
}

func drawPolyline(img *image.RGBA, points []canvas.Point, ox, oy, scale float64, col color.RGBA, thickness int) {
	if len(points) == 1 {
		p := points[0]
		drawLine(img,
			int((p.X-ox)*scale), int((p.Y-oy)*scale),
			int((p.X-ox)*scale), int((p.Y-oy)*scale),
			col, thickness)
		return
	}
	for i := 1; i < len(points); i++ {
		drawLine(img,
			int((points[i-1].X-ox)*scale), int((points[i-1].Y-oy)*scale),
			int((points[i].X-ox)*scale), int((points[i].Y-oy)*scale),
			col, thickness)
	}
}

func drawSegment(img *image.RGBA, a, b geometry.Point2D, ox, oy, scale float64, col color.RGBA, thickness int) {
	drawLine(img,
		int((a.X-ox)*scale), int((a.Y-oy)*scale),
		int((b.X-ox)*scale), int((b.Y-oy)*scale),
		col, thickness)
}

func drawRectOutline(img *image.RGBA, r geometry.Rect, ox, oy, scale float64, col color.RGBA) {
	x1 := int((r.X - ox) * scale)
	y1 := int((r.Y - oy) * scale)
	x2 := int((r.X + r.Width - ox) * scale)
	y2 := int((r.Y + r.Height - oy) * scale)
	drawLine(img, x1, y1, x2, y1, col, 1)
	drawLine(img, x2, y1, x2, y2, col, 1)
	drawLine(img, x2, y2, x1, y2, col, 1)
	drawLine(img, x1, y2, x1, y1, col, 1)
}

func drawTextBlock(img *image.RGBA, b *canvas.TextBlock, ox, oy, scale float64) {
	if b.Text == "" {
		return
	}
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ParseHexColor(b.Color)),
		Face: face,
		Dot: fixed.P(
			int((b.X-ox)*scale),
			int((b.Y-oy)*scale)+face.Ascent,
		),
	}
	d.DrawString(b.Text)
}

// drawLine is Bresenham with a square nib of the given thickness.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	bounds := img.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					img.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// ParseHexColor parses #rgb and #rrggbb colors, returning opaque black
// for anything it cannot parse.
func ParseHexColor(s string) color.RGBA {
	black := color.RGBA{0, 0, 0, 255}
	if len(s) == 0 || s[0] != '#' {
		return black
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		r, ok1 := hexNibble(hex[0])
		g, ok2 := hexNibble(hex[1])
		b, ok3 := hexNibble(hex[2])
		if !ok1 || !ok2 || !ok3 {
			return black
		}
		return color.RGBA{r * 17, g * 17, b * 17, 255}
	case 6:
		var v [6]uint8
		for i := 0; i < 6; i++ {
			n, ok := hexNibble(hex[i])
			if !ok {
				return black
			}
			v[i] = n
		}
		return color.RGBA{v[0]<<4 | v[1], v[2]<<4 | v[3], v[4]<<4 | v[5], 255}
	default:
		return black
	}
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
