package gesture

import (
	"math"
	"testing"

	"ink-canvas/internal/canvas"
)

func newTestMachine() (*Machine, *canvas.Store) {
	store := canvas.NewStore()
	m := NewMachine(store)
	m.SetConfig(Config{Tool: canvas.ToolPen, Color: "#000000", BrushSize: 3})
	return m, store
}

func down(m *Machine, id int, x, y float64) {
	m.Handle(PointerEvent{ID: id, Kind: PointerDown, X: x, Y: y, Pressure: 0.5})
}

func move(m *Machine, id int, x, y float64) {
	m.Handle(PointerEvent{ID: id, Kind: PointerMove, X: x, Y: y, Pressure: 0.5})
}

func up(m *Machine, id int, x, y float64) {
	m.Handle(PointerEvent{ID: id, Kind: PointerUp, X: x, Y: y})
}

func TestDrawCommitsStroke(t *testing.T) {
	m, store := newTestMachine()

	down(m, 1, 0, 0)
	if m.State() != StateDraw {
		t.Fatalf("state = %v, want draw", m.State())
	}
	move(m, 1, 10, 0)
	move(m, 1, 20, 0)
	up(m, 1, 20, 0)

	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle", m.State())
	}
	strokes := store.State().Strokes
	if len(strokes) != 1 {
		t.Fatalf("strokes = %d, want 1", len(strokes))
	}
	if len(strokes[0].Points) != 3 {
		t.Errorf("points = %d, want 3", len(strokes[0].Points))
	}
}

func TestTapDiscarded(t *testing.T) {
	m, store := newTestMachine()

	down(m, 1, 5, 5)
	up(m, 1, 5, 5)

	if len(store.State().Strokes) != 0 {
		t.Error("accidental tap committed a stroke")
	}
}

func TestCancelDiscardsInProgressStroke(t *testing.T) {
	m, store := newTestMachine()

	down(m, 1, 0, 0)
	move(m, 1, 50, 0)
	move(m, 1, 100, 0)
	m.Handle(PointerEvent{ID: 1, Kind: PointerCancel})

	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle", m.State())
	}
	if len(store.State().Strokes) != 0 {
		t.Error("cancelled stroke was committed")
	}
}

func TestDrawDecimation(t *testing.T) {
	m, store := newTestMachine()

	// 100 samples 0.1 world units apart: far denser than the threshold.
	down(m, 1, 0, 0)
	inputs := 1
	for i := 1; i <= 100; i++ {
		move(m, 1, float64(i)*0.1, 0)
		inputs++
	}
	up(m, 1, 10, 0)

	strokes := store.State().Strokes
	if len(strokes) != 1 {
		t.Fatalf("strokes = %d, want 1", len(strokes))
	}
	pts := strokes[0].Points
	if len(pts) >= inputs {
		t.Errorf("decimation kept %d of %d samples", len(pts), inputs)
	}
	// Recorded points are an order-preserving subsequence.
	for i := 1; i < len(pts); i++ {
		if pts[i].X <= pts[i-1].X {
			t.Errorf("points out of order at %d: %v <= %v", i, pts[i].X, pts[i-1].X)
		}
	}
	// Consecutive recorded points respect the minimum spacing.
	for i := 1; i < len(pts); i++ {
		if d := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y); d <= MinPointDistance {
			t.Errorf("recorded points %d spaced %v, want > %v", i, d, MinPointDistance)
		}
	}
}

func TestPanTranslatesCamera(t *testing.T) {
	m, store := newTestMachine()
	m.SetConfig(Config{Tool: canvas.ToolSelect, BrushSize: 3})
	store.SetView(0, 0, 2)

	down(m, 1, 100, 100)
	move(m, 1, 140, 120)
	up(m, 1, 140, 120)

	cam := store.Camera()
	// Screen delta divided by zoom.
	if cam.ViewX != 20 || cam.ViewY != 10 {
		t.Errorf("view = (%v,%v), want (20,10)", cam.ViewX, cam.ViewY)
	}
	if store.CanUndo() {
		t.Error("panning must not be undoable")
	}
}

func TestTextToolCreatesBlockOnClick(t *testing.T) {
	m, store := newTestMachine()
	m.SetConfig(Config{Tool: canvas.ToolText, Color: "#000000"})

	var created string
	m.OnTextCreated = func(id string) { created = id }

	down(m, 1, 30, 40)

	blocks := store.State().TextBlocks
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if created != blocks[0].ID {
		t.Error("OnTextCreated not fired with the new block id")
	}
	if !blocks[0].Editing {
		t.Error("new block should be in editing state")
	}
}

func TestTextToolTouchPansInstead(t *testing.T) {
	m, store := newTestMachine()
	m.SetConfig(Config{Tool: canvas.ToolText})

	m.Handle(PointerEvent{ID: 1, Kind: PointerDown, X: 30, Y: 40, Touch: true})

	if len(store.State().TextBlocks) != 0 {
		t.Error("touch on text tool created a block")
	}
	if m.State() != StatePan {
		t.Errorf("state = %v, want pan", m.State())
	}
}

func TestTextDragCommitsBeyondJitter(t *testing.T) {
	m, store := newTestMachine()
	block := canvas.NewTextBlock(50, 50, "#000")
	store.Apply(canvas.AddTextBlock{Block: block})
	m.SetConfig(Config{Tool: canvas.ToolSelect})

	down(m, 1, 60, 55)
	if m.State() != StateTextDrag {
		t.Fatalf("state = %v, want textDrag", m.State())
	}
	move(m, 1, 90, 75)
	up(m, 1, 90, 75)

	b := store.State().TextBlocks[0]
	if b.X != 80 || b.Y != 70 {
		t.Errorf("block at (%v,%v), want (80,70)", b.X, b.Y)
	}
}

func TestTextDragBelowJitterLeavesBlock(t *testing.T) {
	m, store := newTestMachine()
	block := canvas.NewTextBlock(50, 50, "#000")
	store.Apply(canvas.AddTextBlock{Block: block})
	m.SetConfig(Config{Tool: canvas.ToolSelect})

	var tapped string
	m.OnTextTapped = func(id string) { tapped = id }

	down(m, 1, 60, 55)
	move(m, 1, 61, 55)
	up(m, 1, 61, 55)

	b := store.State().TextBlocks[0]
	if b.X != 50 || b.Y != 50 {
		t.Errorf("block moved to (%v,%v) on a tap", b.X, b.Y)
	}
	if tapped != block.ID {
		t.Error("tap did not open the block for editing")
	}
}

func TestPinchZoomPreservesMidpointWorld(t *testing.T) {
	m, store := newTestMachine()
	// Camera at default: screen (100,100) maps to world (100,100).

	m.Handle(PointerEvent{ID: 1, Kind: PointerDown, X: 50, Y: 100, Touch: true})
	m.Handle(PointerEvent{ID: 2, Kind: PointerDown, X: 150, Y: 100, Touch: true})
	if m.State() != StatePinch {
		t.Fatalf("state = %v, want pinch", m.State())
	}

	// Double the inter-finger distance, keeping the midpoint at (100,100).
	m.Handle(PointerEvent{ID: 1, Kind: PointerMove, X: 0, Y: 100, Touch: true})
	m.Handle(PointerEvent{ID: 2, Kind: PointerMove, X: 200, Y: 100, Touch: true})

	cam := store.Camera()
	if math.Abs(cam.Zoom-2.0) > 1e-9 {
		t.Errorf("zoom = %v, want 2.0", cam.Zoom)
	}
	wx, wy := cam.ToWorld(100, 100, 0, 0)
	if math.Abs(wx-100) > 1e-9 || math.Abs(wy-100) > 1e-9 {
		t.Errorf("world under midpoint = (%v,%v), want (100,100)", wx, wy)
	}

	// Lifting one finger ends the pinch.
	m.Handle(PointerEvent{ID: 1, Kind: PointerUp, Touch: true})
	m.Handle(PointerEvent{ID: 2, Kind: PointerMove, X: 190, Y: 100, Touch: true})
	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle after finger lift", m.State())
	}
}

func TestPinchDuringDrawDiscardsStroke(t *testing.T) {
	m, store := newTestMachine()

	m.Handle(PointerEvent{ID: 1, Kind: PointerDown, X: 0, Y: 0, Touch: true, Pressure: 0.5})
	m.Handle(PointerEvent{ID: 1, Kind: PointerMove, X: 40, Y: 0, Touch: true, Pressure: 0.5})
	m.Handle(PointerEvent{ID: 2, Kind: PointerDown, X: 100, Y: 100, Touch: true})

	if m.State() != StatePinch {
		t.Fatalf("state = %v, want pinch", m.State())
	}
	m.Handle(PointerEvent{ID: 1, Kind: PointerUp, Touch: true})
	m.Handle(PointerEvent{ID: 2, Kind: PointerUp, Touch: true})

	if len(store.State().Strokes) != 0 {
		t.Error("stroke begun before pinch was committed")
	}
}

func TestDrawInsideDrawingBlockUsesLocalCoords(t *testing.T) {
	m, store := newTestMachine()
	block := canvas.NewDrawingBlock(100, 100, 300, 200)
	store.Apply(canvas.AddDrawingBlock{Block: block})

	down(m, 1, 150, 160)
	move(m, 1, 180, 170)
	up(m, 1, 180, 170)

	blocks := store.State().DrawingBlocks
	if len(blocks[0].Strokes) != 1 {
		t.Fatalf("block strokes = %d, want 1", len(blocks[0].Strokes))
	}
	pts := blocks[0].Strokes[0].Points
	if pts[0].X != 50 || pts[0].Y != 60 {
		t.Errorf("first local point = (%v,%v), want (50,60)", pts[0].X, pts[0].Y)
	}
	if len(store.State().Strokes) != 0 {
		t.Error("block stroke leaked onto the free canvas")
	}
}

func TestEraserToolErasesOnDownAndMove(t *testing.T) {
	m, store := newTestMachine()
	store.Apply(canvas.AddStroke{Stroke: canvas.NewStroke(canvas.ToolPen, "#000", 3,
		[]canvas.Point{{0, 0, 0.5}, {100, 0, 0.5}})})
	store.Apply(canvas.AddStroke{Stroke: canvas.NewStroke(canvas.ToolPen, "#000", 3,
		[]canvas.Point{{0, 200, 0.5}, {100, 200, 0.5}})})

	m.SetConfig(Config{Tool: canvas.ToolEraser, BrushSize: 3})

	down(m, 1, 50, 5) // near the first stroke
	if n := len(store.State().Strokes); n != 1 {
		t.Fatalf("strokes after down = %d, want 1", n)
	}
	move(m, 1, 50, 195) // near the second
	up(m, 1, 50, 195)
	if n := len(store.State().Strokes); n != 0 {
		t.Errorf("strokes after move = %d, want 0", n)
	}
}
