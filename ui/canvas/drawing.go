// Drawing routines for the ink canvas raster.
package canvas

import (
	"image"
	"image/color"
	"math"
	"sort"

	"ink-canvas/internal/canvas"
	"ink-canvas/internal/ink"
	"ink-canvas/internal/raster"
	"ink-canvas/pkg/geometry"
)

var paperColor = color.RGBA{R: 0xfd, G: 0xfd, B: 0xfb, A: 0xff}

const (
	gridSpacing  = 100.0 // world units between grid dots
	loopFillMark = 24    // alpha of the closed-loop interior tint
)

var gridDotColor = color.RGBA{R: 0xd8, G: 0xd8, B: 0xdc, A: 0xff}
var blockBorderColor = color.RGBA{R: 0x9f, G: 0xa8, B: 0xda, A: 0xff}

// render draws the visible world region into a pixel buffer of the given
// size. The widget's logical size may differ from the pixel size on HiDPI
// displays, so the device scale is folded into the transform.
func (ic *InkCanvas) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillBackground(img, paperColor)
	if w == 0 || h == 0 {
		return img
	}

	cam := ic.store.Camera()
	size := ic.Size()
	px := 1.0
	if size.Width > 0 {
		px = float64(w) / float64(size.Width)
	}

	// world -> pixel
	scale := cam.Zoom * px
	view := geometry.Scale(scale, scale).Compose(geometry.Translation(cam.ViewX, cam.ViewY))

	ic.drawGrid(img, cam, px, w, h)

	s := ic.store.State()
	for i := range s.Strokes {
		drawInk(img, s.Strokes[i].Points, s.Strokes[i].Color, s.Strokes[i].Width, s.Strokes[i].Tool, view)
	}
	for i := range s.DrawingBlocks {
		ic.drawBlock(img, &s.DrawingBlocks[i], view)
	}

	ic.drawPending(img, view)

	return img
}

// drawGrid stamps a dot lattice aligned to world coordinates so the
// canvas reads as an infinite surface while panning.
func (ic *InkCanvas) drawGrid(img *image.RGBA, cam canvas.Camera, px float64, w, h int) {
	step := gridSpacing * cam.Zoom * px
	if step < 8 {
		return
	}
	// First world gridline at or left of the viewport origin.
	wx0, wy0 := cam.ToWorld(0, 0, 0, 0)
	startX := math.Floor(wx0/gridSpacing) * gridSpacing
	startY := math.Floor(wy0/gridSpacing) * gridSpacing

	for gy := startY; ; gy += gridSpacing {
		_, sy := cam.ToScreen(0, gy, 0, 0)
		py := int(sy * px)
		if py >= h {
			break
		}
		if py < 0 {
			continue
		}
		for gx := startX; ; gx += gridSpacing {
			sx, _ := cam.ToScreen(gx, 0, 0, 0)
			pxx := int(sx * px)
			if pxx >= w {
				break
			}
			if pxx < 0 {
				continue
			}
			img.SetRGBA(pxx, py, gridDotColor)
		}
	}
}

func (ic *InkCanvas) drawBlock(img *image.RGBA, b *canvas.DrawingBlock, view geometry.AffineTransform) {
	drawRectOutline(img, b.Rect(), view, blockBorderColor)
	local := view.Compose(geometry.Translation(b.X, b.Y))
	for i := range b.Strokes {
		st := &b.Strokes[i]
		drawInk(img, st.Points, st.Color, st.Width, st.Tool, local)
	}
}

// drawPending overlays the in-progress stroke so drawing feels live even
// though the stroke is not yet in the store.
func (ic *InkCanvas) drawPending(img *image.RGBA, view geometry.AffineTransform) {
	points := ic.machine.PendingStroke()
	if len(points) < 2 {
		return
	}
	cfg := ic.machine.Config()
	at := view
	if bx, by, ok := ic.machine.PendingBlockOffset(); ok {
		at = view.Compose(geometry.Translation(bx, by))
	}
	drawInk(img, points, cfg.Color, cfg.BrushSize, cfg.Tool, at)
}

// drawInk fills the stroke's smoothed body polygon, tints closed loops,
// and caps arrows with a head.
func drawInk(img *image.RGBA, points []canvas.Point, hex string, width float64, tool canvas.Tool, view geometry.AffineTransform) {
	col := raster.ParseHexColor(hex)
	if tool == canvas.ToolHighlighter {
		col.A = 128
	}

	switch ink.Classify(points) {
	case ink.KindClosedLoop:
		tint := col
		tint.A = loopFillMark
		fillPolygon(img, project(ink.LoopFill(points), view), tint)
	case ink.KindArrow:
		if head, ok := ink.ArrowHead(points); ok {
			fillPolygon(img, project(head[:], view), col)
		}
	}

	body := project(ink.FillPath(points, width, tool), view)
	fillPolygon(img, body, col)
}

func project(points []geometry.Point2D, view geometry.AffineTransform) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = view.Apply(p)
	}
	return out
}

// fillPolygon rasterizes a closed polygon with even-odd scanline fill,
// alpha-blending into the destination.
func fillPolygon(img *image.RGBA, poly []geometry.Point2D, col color.RGBA) {
	if len(poly) < 3 {
		return
	}

	minY, maxY := poly[0].Y, poly[0].Y
	for _, p := range poly[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	bounds := img.Bounds()
	y0 := int(math.Max(math.Floor(minY), float64(bounds.Min.Y)))
	y1 := int(math.Min(math.Ceil(maxY), float64(bounds.Max.Y-1)))

	xs := make([]float64, 0, 16)
	for y := y0; y <= y1; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for i := 0; i < len(poly); i++ {
			a := poly[i]
			b := poly[(i+1)%len(poly)]
			if (a.Y <= cy && b.Y > cy) || (b.Y <= cy && a.Y > cy) {
				t := (cy - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			xa := int(math.Max(math.Floor(xs[i]), float64(bounds.Min.X)))
			xb := int(math.Min(math.Ceil(xs[i+1]), float64(bounds.Max.X-1)))
			for x := xa; x <= xb; x++ {
				blendPixel(img, x, y, col)
			}
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, col color.RGBA) {
	if col.A == 0xff {
		img.SetRGBA(x, y, col)
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(col.A)
	ia := 255 - a
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(col.R)*a + uint32(dst.R)*ia) / 255),
		G: uint8((uint32(col.G)*a + uint32(dst.G)*ia) / 255),
		B: uint8((uint32(col.B)*a + uint32(dst.B)*ia) / 255),
		A: 0xff,
	})
}

func drawRectOutline(img *image.RGBA, r geometry.Rect, view geometry.AffineTransform, col color.RGBA) {
	tl := view.Apply(r.TopLeft())
	br := view.Apply(r.BottomRight())
	x0, y0 := tl.X, tl.Y
	x1, y1 := br.X, br.Y
	drawPixelLine(img, x0, y0, x1, y0, col)
	drawPixelLine(img, x1, y0, x1, y1, col)
	drawPixelLine(img, x1, y1, x0, y1, col)
	drawPixelLine(img, x0, y1, x0, y0, col)
}

// drawPixelLine draws a one-pixel line using the integer midpoint walk.
func drawPixelLine(img *image.RGBA, fx0, fy0, fx1, fy1 float64, col color.RGBA) {
	x0, y0 := int(fx0), int(fy0)
	x1, y1 := int(fx1), int(fy1)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	bounds := img.Bounds()
	for {
		if x0 >= bounds.Min.X && x0 < bounds.Max.X && y0 >= bounds.Min.Y && y0 < bounds.Max.Y {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func fillBackground(img *image.RGBA, col color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
