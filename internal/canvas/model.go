// Package canvas holds the authoritative in-memory model of a drawing
// canvas: strokes, text blocks, drawing blocks, camera, and phases.
package canvas

import (
	"encoding/json"
	"fmt"
	"time"

	"ink-canvas/pkg/geometry"

	"github.com/google/uuid"
)

// Tool identifies the drawing tool a stroke was made with, or the
// interaction tool currently selected in the UI.
type Tool int

const (
	ToolPen Tool = iota
	ToolHighlighter
	ToolEraser
	ToolSelect
	ToolText
)

var toolNames = map[Tool]string{
	ToolPen:         "pen",
	ToolHighlighter: "highlighter",
	ToolEraser:      "eraser",
	ToolSelect:      "select",
	ToolText:        "text",
}

// String returns the tool name used in serialized state.
func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return "pen"
}

// ParseTool maps a serialized tool name back to a Tool.
// Unknown names default to the pen so old documents still load.
func ParseTool(name string) Tool {
	for t, n := range toolNames {
		if n == name {
			return t
		}
	}
	return ToolPen
}

// MarshalJSON implements json.Marshaler.
func (t Tool) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tool) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("tool: %w", err)
	}
	*t = ParseTool(name)
	return nil
}

// DefaultPressure is used when the input device reports no pressure.
const DefaultPressure = 0.5

// Point is a world-space sample of a stroke, with input pressure in [0,1].
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
}

// ToPoint2D drops the pressure channel.
func (p Point) ToPoint2D() geometry.Point2D {
	return geometry.Point2D{X: p.X, Y: p.Y}
}

// Points2D converts a point slice to plain geometry points.
func Points2D(points []Point) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = p.ToPoint2D()
	}
	return out
}

// Stroke is a committed freehand stroke in world space. Strokes are
// immutable once committed except for deletion. BBox is cached at commit
// time and must always equal the true bounding box of Points.
type Stroke struct {
	ID        string        `json:"id"`
	Tool      Tool          `json:"tool"`
	Color     string        `json:"color"`
	Width     float64       `json:"width"`
	Points    []Point       `json:"points"`
	Timestamp int64         `json:"timestamp"`
	BBox      geometry.Rect `json:"boundingBox"`
}

// NewStroke builds a committed stroke, assigning an ID, timestamp, and
// the cached bounding box.
func NewStroke(tool Tool, color string, width float64, points []Point) Stroke {
	return Stroke{
		ID:        uuid.NewString(),
		Tool:      tool,
		Color:     color,
		Width:     width,
		Points:    points,
		Timestamp: time.Now().UnixMilli(),
		BBox:      geometry.BoundingBox(Points2D(points)),
	}
}

// LocalStroke is a stroke inside a drawing block. Its points are in
// block-local coordinates, relative to the block's top-left corner, so the
// block can be exported as a standalone raster image.
type LocalStroke struct {
	ID        string  `json:"id"`
	Tool      Tool    `json:"tool"`
	Color     string  `json:"color"`
	Width     float64 `json:"width"`
	Points    []Point `json:"points"`
	Timestamp int64   `json:"timestamp"`
}

// NewLocalStroke builds a block-local stroke.
func NewLocalStroke(tool Tool, color string, width float64, points []Point) LocalStroke {
	return LocalStroke{
		ID:        uuid.NewString(),
		Tool:      tool,
		Color:     color,
		Width:     width,
		Points:    points,
		Timestamp: time.Now().UnixMilli(),
	}
}

// TextBlock is a movable text note anchored in world space. Unlike
// strokes it is mutable in place; a block whose text is empty when editing
// ends is deleted rather than persisted.
type TextBlock struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	W         float64 `json:"w"`
	FontSize  float64 `json:"fontSize"`
	Color     string  `json:"color"`
	Timestamp int64   `json:"timestamp"`
	Editing   bool    `json:"isEditing"`
}

// NewTextBlock creates an empty text block at a world position, ready
// for editing.
func NewTextBlock(x, y float64, color string) TextBlock {
	return TextBlock{
		ID:        uuid.NewString(),
		X:         x,
		Y:         y,
		W:         220,
		FontSize:  16,
		Color:     color,
		Timestamp: time.Now().UnixMilli(),
		Editing:   true,
	}
}

// Rect returns the block's bounding rectangle. Height is estimated from
// the font size since layout is owned by the rendering layer.
func (b TextBlock) Rect() geometry.Rect {
	return geometry.Rect{X: b.X, Y: b.Y, Width: b.W, Height: b.FontSize * 1.5}
}

// DrawingBlock is a fixed-size sub-canvas anchored in world space.
type DrawingBlock struct {
	ID        string        `json:"id"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	W         float64       `json:"w"`
	H         float64       `json:"h"`
	Strokes   []LocalStroke `json:"strokes"`
	Timestamp int64         `json:"timestamp"`
}

// NewDrawingBlock creates an empty drawing block at a world position.
func NewDrawingBlock(x, y, w, h float64) DrawingBlock {
	return DrawingBlock{
		ID:        uuid.NewString(),
		X:         x,
		Y:         y,
		W:         w,
		H:         h,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Rect returns the block's world-space rectangle.
func (b DrawingBlock) Rect() geometry.Rect {
	return geometry.Rect{X: b.X, Y: b.Y, Width: b.W, Height: b.H}
}

// Phase is a named camera bookmark. Order defines the presentation
// sequence and is kept dense: after any reorder or delete the set of
// order values is exactly {0..count-1}.
type Phase struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	ViewX     float64 `json:"viewX"`
	ViewY     float64 `json:"viewY"`
	Zoom      float64 `json:"zoom"`
	Order     int     `json:"order"`
	CreatedAt int64   `json:"createdAt"`
}

// State is the aggregate root of all persisted canvas content. It is
// owned exclusively by the Store; no other component retains a copy.
type State struct {
	Strokes       []Stroke       `json:"strokes"`
	TextBlocks    []TextBlock    `json:"textBlocks"`
	DrawingBlocks []DrawingBlock `json:"drawingBlocks"`
	Phases        []Phase        `json:"phases"`
	ViewX         float64        `json:"viewX"`
	ViewY         float64        `json:"viewY"`
	Zoom          float64        `json:"zoom"`
}

// NewState returns an empty canvas at the default camera.
func NewState() State {
	return State{
		Strokes:       []Stroke{},
		TextBlocks:    []TextBlock{},
		DrawingBlocks: []DrawingBlock{},
		Phases:        []Phase{},
		Zoom:          1,
	}
}

// BlockAt returns the drawing block whose rectangle contains the world
// point, or nil. Block rectangles do not overlap, so the first match wins.
func (s *State) BlockAt(x, y float64) *DrawingBlock {
	p := geometry.Point2D{X: x, Y: y}
	for i := range s.DrawingBlocks {
		if s.DrawingBlocks[i].Rect().Contains(p) {
			return &s.DrawingBlocks[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Strokes = make([]Stroke, len(s.Strokes))
	for i, st := range s.Strokes {
		out.Strokes[i] = st
		out.Strokes[i].Points = append([]Point(nil), st.Points...)
	}
	out.TextBlocks = make([]TextBlock, len(s.TextBlocks))
	copy(out.TextBlocks, s.TextBlocks)
	out.Phases = make([]Phase, len(s.Phases))
	copy(out.Phases, s.Phases)
	out.DrawingBlocks = make([]DrawingBlock, len(s.DrawingBlocks))
	for i, db := range s.DrawingBlocks {
		out.DrawingBlocks[i] = db
		out.DrawingBlocks[i].Strokes = make([]LocalStroke, len(db.Strokes))
		for j, ls := range db.Strokes {
			out.DrawingBlocks[i].Strokes[j] = ls
			out.DrawingBlocks[i].Strokes[j].Points = append([]Point(nil), ls.Points...)
		}
	}
	return out
}
