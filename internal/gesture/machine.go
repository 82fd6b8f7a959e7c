// Package gesture consumes raw pointer events and drives canvas
// mutations. The state machine is renderer-independent: the UI layer
// translates its toolkit's input events into PointerEvents and feeds
// them here.
package gesture

import (
	"math"

	"ink-canvas/internal/canvas"
	"ink-canvas/pkg/geometry"
)

// EventKind is the type of a pointer event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	// PointerCancel is loss of pointer capture. It ends the gesture like
	// PointerUp but discards any uncommitted stroke.
	PointerCancel
)

// PointerEvent is an engine-native input sample in screen coordinates.
type PointerEvent struct {
	ID       int
	Kind     EventKind
	X, Y     float64
	Pressure float64
	Touch    bool
}

// State is the machine's current interaction mode.
type State int

const (
	StateIdle State = iota
	StateDraw
	StatePan
	StateErase
	StateTextDrag
	StatePinch
)

// MinPointDistance is the draw decimation threshold: a move sample is
// recorded only when it is at least this far (world units) from the last
// recorded point.
const MinPointDistance = 0.75

// TextDragJitter is the cumulative screen movement below which a text
// drag is treated as a tap and the block is left unmoved.
const TextDragJitter = 3.0

// Config is the active tool selection.
type Config struct {
	Tool      canvas.Tool
	Color     string
	BrushSize float64
}

// Machine turns pointer events into store mutations. It owns exactly one
// pointer id at a time, except during the two-pointer pinch.
type Machine struct {
	store *canvas.Store
	cfg   Config

	originX, originY float64

	state    State
	activeID int

	// In-progress stroke. Points are world coordinates for free strokes
	// or block-local coordinates when blockID is set.
	points  []canvas.Point
	blockID string
	blockX  float64
	blockY  float64

	lastX, lastY float64

	// Active touch pointers, for pinch detection.
	touches map[int]geometry.Point2D

	pinchStartDist float64
	pinchStartZoom float64
	pinchWorldMid  geometry.Point2D

	dragBlockID        string
	previewX, previewY float64
	dragMoved          float64

	// OnTextCreated fires when the text tool places a new block, so the
	// UI can move focus into it.
	OnTextCreated func(id string)

	// OnTextTapped fires when a text block is tapped (drag below the
	// jitter threshold), so the UI can open it for editing.
	OnTextTapped func(id string)
}

// NewMachine creates an idle machine bound to a store.
func NewMachine(store *canvas.Store) *Machine {
	return &Machine{
		store:   store,
		cfg:     Config{Tool: canvas.ToolPen, Color: "#1a1a2e", BrushSize: 3},
		touches: make(map[int]geometry.Point2D),
	}
}

// SetConfig selects the active tool.
func (m *Machine) SetConfig(cfg Config) { m.cfg = cfg }

// Config returns the active tool selection.
func (m *Machine) Config() Config { return m.cfg }

// SetOrigin sets the viewport's top-left position on screen.
func (m *Machine) SetOrigin(x, y float64) {
	m.originX, m.originY = x, y
}

// State returns the current interaction mode.
func (m *Machine) State() State { return m.state }

// TextDragPreview returns the preview position of the text block being
// dragged. ok is false outside a text drag.
func (m *Machine) TextDragPreview() (id string, x, y float64, ok bool) {
	if m.state != StateTextDrag {
		return "", 0, 0, false
	}
	return m.dragBlockID, m.previewX, m.previewY, true
}

// PendingStroke returns the in-progress stroke points for live display.
func (m *Machine) PendingStroke() []canvas.Point {
	if m.state != StateDraw {
		return nil
	}
	return m.points
}

// PendingBlockOffset returns the world position of the drawing block
// receiving the in-progress stroke. ok is false when drawing on the open
// canvas.
func (m *Machine) PendingBlockOffset() (x, y float64, ok bool) {
	if m.state != StateDraw || m.blockID == "" {
		return 0, 0, false
	}
	return m.blockX, m.blockY, true
}

// Handle processes one pointer event.
func (m *Machine) Handle(ev PointerEvent) {
	m.trackTouch(ev)

	// Two simultaneous touch pointers switch to pinch regardless of the
	// current mode; an uncommitted stroke is dropped.
	if ev.Touch && m.state != StatePinch && len(m.touches) == 2 {
		m.beginPinch()
		return
	}

	switch m.state {
	case StateIdle:
		if ev.Kind == PointerDown {
			m.pointerDown(ev)
		}
	case StateDraw:
		m.handleDraw(ev)
	case StatePan:
		m.handlePan(ev)
	case StateErase:
		m.handleErase(ev)
	case StateTextDrag:
		m.handleTextDrag(ev)
	case StatePinch:
		m.handlePinch(ev)
	}
}

func (m *Machine) trackTouch(ev PointerEvent) {
	if !ev.Touch {
		return
	}
	switch ev.Kind {
	case PointerDown, PointerMove:
		m.touches[ev.ID] = geometry.Point2D{X: ev.X, Y: ev.Y}
	case PointerUp, PointerCancel:
		delete(m.touches, ev.ID)
	}
}

func (m *Machine) toWorld(x, y float64) (float64, float64) {
	return m.store.Camera().ToWorld(x, y, m.originX, m.originY)
}

func (m *Machine) pointerDown(ev PointerEvent) {
	wx, wy := m.toWorld(ev.X, ev.Y)

	switch m.cfg.Tool {
	case canvas.ToolPen, canvas.ToolHighlighter:
		m.beginDraw(ev, wx, wy)

	case canvas.ToolEraser:
		m.state = StateErase
		m.activeID = ev.ID
		m.eraseAt(wx, wy)

	case canvas.ToolText:
		if ev.Touch {
			// A finger on the text tool pans instead of placing a block.
			m.beginPan(ev)
			return
		}
		block := canvas.NewTextBlock(wx, wy, m.cfg.Color)
		m.store.Apply(canvas.AddTextBlock{Block: block})
		if m.OnTextCreated != nil {
			m.OnTextCreated(block.ID)
		}

	case canvas.ToolSelect:
		if tb := textBlockAt(m.store.State(), wx, wy); tb != nil {
			m.state = StateTextDrag
			m.activeID = ev.ID
			m.dragBlockID = tb.ID
			m.previewX, m.previewY = tb.X, tb.Y
			m.lastX, m.lastY = ev.X, ev.Y
			m.dragMoved = 0
			return
		}
		m.beginPan(ev)
	}
}

func (m *Machine) beginDraw(ev PointerEvent, wx, wy float64) {
	m.state = StateDraw
	m.activeID = ev.ID
	m.points = m.points[:0]
	m.blockID = ""

	x, y := wx, wy
	if block := m.store.State().BlockAt(wx, wy); block != nil {
		// Strokes started inside a drawing block are recorded in
		// block-local coordinates.
		m.blockID = block.ID
		m.blockX, m.blockY = block.X, block.Y
		x, y = wx-block.X, wy-block.Y
	}
	m.points = append(m.points, canvas.Point{X: x, Y: y, Pressure: pressureOf(ev)})
}

func (m *Machine) beginPan(ev PointerEvent) {
	m.state = StatePan
	m.activeID = ev.ID
	m.lastX, m.lastY = ev.X, ev.Y
}

func (m *Machine) handleDraw(ev PointerEvent) {
	if ev.ID != m.activeID {
		return
	}
	switch ev.Kind {
	case PointerMove:
		wx, wy := m.toWorld(ev.X, ev.Y)
		if m.blockID != "" {
			wx, wy = wx-m.blockX, wy-m.blockY
		}
		last := m.points[len(m.points)-1]
		if math.Hypot(wx-last.X, wy-last.Y) <= MinPointDistance {
			return
		}
		m.points = append(m.points, canvas.Point{X: wx, Y: wy, Pressure: pressureOf(ev)})

	case PointerUp:
		m.commitStroke()
		m.state = StateIdle

	case PointerCancel:
		// Discard the uncommitted stroke.
		m.points = m.points[:0]
		m.state = StateIdle
	}
}

func (m *Machine) commitStroke() {
	if len(m.points) < 2 {
		// A 0-1 point stroke is an accidental tap.
		m.points = m.points[:0]
		return
	}
	pts := append([]canvas.Point(nil), m.points...)
	if m.blockID != "" {
		m.store.Apply(canvas.AddBlockStroke{
			BlockID: m.blockID,
			Stroke:  canvas.NewLocalStroke(m.cfg.Tool, m.cfg.Color, m.cfg.BrushSize, pts),
		})
	} else {
		m.store.Apply(canvas.AddStroke{
			Stroke: canvas.NewStroke(m.cfg.Tool, m.cfg.Color, m.cfg.BrushSize, pts),
		})
	}
	m.points = m.points[:0]
}

func (m *Machine) handlePan(ev PointerEvent) {
	if ev.ID != m.activeID {
		return
	}
	switch ev.Kind {
	case PointerMove:
		cam := m.store.Camera()
		dx := (ev.X - m.lastX) / cam.Zoom
		dy := (ev.Y - m.lastY) / cam.Zoom
		m.store.SetView(cam.ViewX+dx, cam.ViewY+dy, cam.Zoom)
		m.lastX, m.lastY = ev.X, ev.Y
	case PointerUp, PointerCancel:
		m.state = StateIdle
	}
}

func (m *Machine) handleErase(ev PointerEvent) {
	if ev.ID != m.activeID {
		return
	}
	switch ev.Kind {
	case PointerMove:
		wx, wy := m.toWorld(ev.X, ev.Y)
		m.eraseAt(wx, wy)
	case PointerUp, PointerCancel:
		m.state = StateIdle
	}
}

func (m *Machine) eraseAt(wx, wy float64) {
	hit, ok := HitTest(m.store.State(), geometry.Point2D{X: wx, Y: wy}, EraseRadius(m.cfg.BrushSize))
	if !ok {
		return
	}
	if hit.BlockID != "" {
		m.store.Apply(canvas.RemoveBlockStroke{BlockID: hit.BlockID, Index: hit.StrokeIndex})
		return
	}
	m.store.Apply(canvas.DeleteStroke{ID: hit.StrokeID})
}

func (m *Machine) handleTextDrag(ev PointerEvent) {
	if ev.ID != m.activeID {
		return
	}
	switch ev.Kind {
	case PointerMove:
		cam := m.store.Camera()
		m.dragMoved += math.Hypot(ev.X-m.lastX, ev.Y-m.lastY)
		m.previewX += (ev.X - m.lastX) / cam.Zoom
		m.previewY += (ev.Y - m.lastY) / cam.Zoom
		m.lastX, m.lastY = ev.X, ev.Y

	case PointerUp:
		if m.dragMoved > TextDragJitter {
			x, y := m.previewX, m.previewY
			m.store.Apply(canvas.PatchTextBlock{ID: m.dragBlockID, X: &x, Y: &y})
		} else if m.OnTextTapped != nil {
			// Below the jitter threshold: a tap opens the block for
			// editing instead of moving it.
			m.OnTextTapped(m.dragBlockID)
		}
		m.state = StateIdle

	case PointerCancel:
		m.state = StateIdle
	}
}

func (m *Machine) beginPinch() {
	m.points = m.points[:0]
	m.state = StatePinch

	a, b := m.twoTouches()
	m.pinchStartDist = a.Distance(b)
	if m.pinchStartDist == 0 {
		m.pinchStartDist = 1
	}
	cam := m.store.Camera()
	m.pinchStartZoom = cam.Zoom

	mid := midpoint(a, b)
	wx, wy := cam.ToWorld(mid.X, mid.Y, m.originX, m.originY)
	m.pinchWorldMid = geometry.Point2D{X: wx, Y: wy}
}

func (m *Machine) handlePinch(ev PointerEvent) {
	if !ev.Touch {
		return
	}
	if len(m.touches) < 2 {
		m.state = StateIdle
		return
	}
	if ev.Kind != PointerMove {
		return
	}

	a, b := m.twoTouches()
	dist := a.Distance(b)
	zoom := canvas.ClampZoom(m.pinchStartZoom * dist / m.pinchStartDist)

	// Keep the world point that started under the midpoint pinned under
	// the current midpoint.
	mid := midpoint(a, b)
	viewX := (mid.X-m.originX)/zoom - m.pinchWorldMid.X
	viewY := (mid.Y-m.originY)/zoom - m.pinchWorldMid.Y
	m.store.SetView(viewX, viewY, zoom)
}

func (m *Machine) twoTouches() (geometry.Point2D, geometry.Point2D) {
	pts := make([]geometry.Point2D, 0, 2)
	for _, p := range m.touches {
		pts = append(pts, p)
		if len(pts) == 2 {
			break
		}
	}
	for len(pts) < 2 {
		pts = append(pts, geometry.Point2D{})
	}
	return pts[0], pts[1]
}

func textBlockAt(s *canvas.State, wx, wy float64) *canvas.TextBlock {
	p := geometry.Point2D{X: wx, Y: wy}
	for i := range s.TextBlocks {
		if s.TextBlocks[i].Rect().Contains(p) {
			return &s.TextBlocks[i]
		}
	}
	return nil
}

func midpoint(a, b geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func pressureOf(ev PointerEvent) float64 {
	if ev.Pressure <= 0 {
		return canvas.DefaultPressure
	}
	return ev.Pressure
}
