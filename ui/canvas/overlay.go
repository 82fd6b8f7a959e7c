// Text block overlay: blocks are fyne text objects layered over the ink
// raster so they use the toolkit's font rendering and scale with zoom.
package canvas

import (
	"strings"

	"ink-canvas/internal/raster"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
)

// WorldToWidget converts a world position to widget-local coordinates,
// for callers placing toolkit widgets (such as the text editor) over the
// canvas.
func (ic *InkCanvas) WorldToWidget(wx, wy float64) fyne.Position {
	sx, sy := ic.store.Camera().ToScreen(wx, wy, 0, 0)
	return fyne.NewPos(float32(sx), float32(sy))
}

// WidgetToWorld converts widget-local coordinates to world coordinates.
func (ic *InkCanvas) WidgetToWorld(pos fyne.Position) (float64, float64) {
	return ic.store.Camera().ToWorld(float64(pos.X), float64(pos.Y), 0, 0)
}

// syncTextLayer rebuilds the text objects from the store. A block mid-drag
// is shown at its preview position; a block being edited is hidden because
// the editor widget covers it.
func (ic *InkCanvas) syncTextLayer() {
	cam := ic.store.Camera()
	s := ic.store.State()

	dragID, dragX, dragY, dragging := ic.machine.TextDragPreview()

	objects := make([]fyne.CanvasObject, 0, len(s.TextBlocks))
	for i := range s.TextBlocks {
		b := &s.TextBlocks[i]
		if b.Editing {
			continue
		}
		x, y := b.X, b.Y
		if dragging && b.ID == dragID {
			x, y = dragX, dragY
		}

		col := raster.ParseHexColor(b.Color)
		size := float32(b.FontSize * cam.Zoom)
		sx, sy := cam.ToScreen(x, y, 0, 0)

		lines := strings.Split(b.Text, "\n")
		for li, line := range lines {
			txt := fynecanvas.NewText(line, col)
			txt.TextSize = size
			txt.Move(fyne.NewPos(float32(sx), float32(sy)+float32(li)*size*1.3))
			objects = append(objects, txt)
		}
	}

	ic.textLayer.Objects = objects
	ic.textLayer.Refresh()
}
