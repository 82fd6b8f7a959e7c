// Package canvas provides the interactive ink canvas widget with pan,
// zoom, and drawing tools.
package canvas

import (
	"image"

	"ink-canvas/internal/canvas"
	"ink-canvas/internal/gesture"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	wheelZoomStep = 1.1
	mousePointer  = 0
)

// InkCanvas is the drawing surface. It translates toolkit input into
// pointer events for the gesture machine and renders the store's state
// through the camera.
type InkCanvas struct {
	widget.BaseWidget

	store   *canvas.Store
	machine *gesture.Machine

	raster    *fynecanvas.Raster
	textLayer *fyne.Container

	mouseDown bool
	lastMouse fyne.Position

	// Right-button pan, handled outside the gesture machine because it
	// is a pure camera move bound to a specific mouse button.
	panning  bool
	panLastX float32
	panLastY float32

	// Callbacks
	onTextEdit   func(id string)
	onToolChange func(cfg gesture.Config)
}

// NewInkCanvas creates a canvas bound to a store.
func NewInkCanvas(store *canvas.Store) *InkCanvas {
	ic := &InkCanvas{
		store:     store,
		machine:   gesture.NewMachine(store),
		textLayer: container.NewWithoutLayout(),
	}
	ic.ExtendBaseWidget(ic)

	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels

	ic.machine.OnTextCreated = func(id string) {
		if ic.onTextEdit != nil {
			ic.onTextEdit(id)
		}
	}
	ic.machine.OnTextTapped = func(id string) {
		if ic.onTextEdit != nil {
			ic.onTextEdit(id)
		}
	}

	store.On(canvas.EventContentChanged, func(interface{}) { ic.Refresh() })
	store.On(canvas.EventCameraChanged, func(interface{}) { ic.Refresh() })
	store.On(canvas.EventStateLoaded, func(interface{}) { ic.Refresh() })

	return ic
}

// Machine exposes the gesture machine for configuration.
func (ic *InkCanvas) Machine() *gesture.Machine { return ic.machine }

// SetTool selects the active tool, keeping color and brush size.
func (ic *InkCanvas) SetTool(tool canvas.Tool) {
	cfg := ic.machine.Config()
	cfg.Tool = tool
	ic.machine.SetConfig(cfg)
	if ic.onToolChange != nil {
		ic.onToolChange(cfg)
	}
}

// SetColor selects the active stroke color (hex, e.g. "#1a1a2e").
func (ic *InkCanvas) SetColor(hex string) {
	cfg := ic.machine.Config()
	cfg.Color = hex
	ic.machine.SetConfig(cfg)
	if ic.onToolChange != nil {
		ic.onToolChange(cfg)
	}
}

// SetBrushSize selects the active brush width in world units.
func (ic *InkCanvas) SetBrushSize(size float64) {
	cfg := ic.machine.Config()
	cfg.BrushSize = size
	ic.machine.SetConfig(cfg)
	if ic.onToolChange != nil {
		ic.onToolChange(cfg)
	}
}

// OnTextEdit registers the callback invoked when a text block should be
// opened for editing (newly placed, or tapped with the text tool).
func (ic *InkCanvas) OnTextEdit(fn func(id string)) { ic.onTextEdit = fn }

// OnToolChange registers a callback fired after any tool config change.
func (ic *InkCanvas) OnToolChange(fn func(cfg gesture.Config)) { ic.onToolChange = fn }

// CreateRenderer implements fyne.Widget.
func (ic *InkCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &inkCanvasRenderer{canvas: ic}
}

// MinSize implements fyne.Widget.
func (ic *InkCanvas) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Cursor implements desktop.Cursorable.
func (ic *InkCanvas) Cursor() desktop.Cursor {
	switch ic.machine.Config().Tool {
	case canvas.ToolText:
		return desktop.TextCursor
	default:
		return desktop.CrosshairCursor
	}
}

// MouseDown implements desktop.Mouseable.
func (ic *InkCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonSecondary {
		// Right button always pans regardless of tool.
		ic.panStart(ev.Position)
		return
	}
	ic.mouseDown = true
	ic.lastMouse = ev.Position
	ic.machine.Handle(gesture.PointerEvent{
		ID:   mousePointer,
		Kind: gesture.PointerDown,
		X:    float64(ev.Position.X),
		Y:    float64(ev.Position.Y),
	})
	ic.Refresh()
}

// MouseUp implements desktop.Mouseable.
func (ic *InkCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ic.panning {
		ic.panning = false
		return
	}
	if !ic.mouseDown {
		return
	}
	ic.mouseDown = false
	ic.machine.Handle(gesture.PointerEvent{
		ID:   mousePointer,
		Kind: gesture.PointerUp,
		X:    float64(ev.Position.X),
		Y:    float64(ev.Position.Y),
	})
	ic.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (ic *InkCanvas) MouseIn(ev *desktop.MouseEvent) {
	ic.lastMouse = ev.Position
}

// MouseMoved implements desktop.Hoverable.
func (ic *InkCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if ic.panning {
		ic.panTo(ev.Position)
		return
	}
	ic.lastMouse = ev.Position
	if !ic.mouseDown {
		return
	}
	ic.machine.Handle(gesture.PointerEvent{
		ID:   mousePointer,
		Kind: gesture.PointerMove,
		X:    float64(ev.Position.X),
		Y:    float64(ev.Position.Y),
	})
	ic.Refresh()
}

// MouseOut implements desktop.Hoverable.
func (ic *InkCanvas) MouseOut() {
	if ic.mouseDown {
		ic.mouseDown = false
		ic.machine.Handle(gesture.PointerEvent{
			ID:   mousePointer,
			Kind: gesture.PointerCancel,
			X:    float64(ic.lastMouse.X),
			Y:    float64(ic.lastMouse.Y),
		})
		ic.Refresh()
	}
	ic.panning = false
}

// Scrolled implements fyne.Scrollable. The wheel zooms around the
// pointer so the point under the cursor stays fixed.
func (ic *InkCanvas) Scrolled(ev *fyne.ScrollEvent) {
	cam := ic.store.Camera()
	target := cam.Zoom
	if ev.Scrolled.DY > 0 {
		target *= wheelZoomStep
	} else if ev.Scrolled.DY < 0 {
		target /= wheelZoomStep
	} else {
		return
	}
	next := cam.ZoomAt(target, float64(ev.Position.X), float64(ev.Position.Y), 0, 0)
	ic.store.SetCamera(next)
}

// ZoomIn zooms toward the center of the viewport.
func (ic *InkCanvas) ZoomIn() { ic.zoomCenter(wheelZoomStep) }

// ZoomOut zooms away from the center of the viewport.
func (ic *InkCanvas) ZoomOut() { ic.zoomCenter(1 / wheelZoomStep) }

// ActualSize resets zoom to 1:1 keeping the viewport center fixed.
func (ic *InkCanvas) ActualSize() {
	cam := ic.store.Camera()
	size := ic.Size()
	next := cam.ZoomAt(1.0, float64(size.Width)/2, float64(size.Height)/2, 0, 0)
	ic.store.SetCamera(next)
}

func (ic *InkCanvas) zoomCenter(factor float64) {
	cam := ic.store.Camera()
	size := ic.Size()
	next := cam.ZoomAt(cam.Zoom*factor, float64(size.Width)/2, float64(size.Height)/2, 0, 0)
	ic.store.SetCamera(next)
}

func (ic *InkCanvas) panStart(pos fyne.Position) {
	ic.panning = true
	ic.panLastX = pos.X
	ic.panLastY = pos.Y
}

func (ic *InkCanvas) panTo(pos fyne.Position) {
	cam := ic.store.Camera()
	dx := float64(pos.X-ic.panLastX) / cam.Zoom
	dy := float64(pos.Y-ic.panLastY) / cam.Zoom
	ic.panLastX = pos.X
	ic.panLastY = pos.Y
	ic.store.SetView(cam.ViewX+dx, cam.ViewY+dy, cam.Zoom)
}

// draw renders the visible canvas region into the raster buffer.
func (ic *InkCanvas) draw(w, h int) image.Image {
	return ic.render(w, h)
}

type inkCanvasRenderer struct {
	canvas *InkCanvas
}

func (r *inkCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	r.canvas.textLayer.Resize(size)
}

func (r *inkCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *inkCanvasRenderer) Refresh() {
	r.canvas.syncTextLayer()
	r.canvas.raster.Refresh()
}

func (r *inkCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster, r.canvas.textLayer}
}

func (r *inkCanvasRenderer) Destroy() {}
