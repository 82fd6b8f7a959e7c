package canvas

import (
	"reflect"
	"testing"
)

func testStroke(id string, pts ...Point) Stroke {
	s := NewStroke(ToolPen, "#000000", 3, pts)
	s.ID = id
	return s
}

func TestApplyPushesUndoSnapshot(t *testing.T) {
	store := NewStore()

	store.Apply(AddStroke{Stroke: testStroke("a", Point{0, 0, 0.5}, Point{10, 0, 0.5})})
	store.Apply(AddStroke{Stroke: testStroke("b", Point{0, 10, 0.5}, Point{10, 10, 0.5})})

	if n := len(store.State().Strokes); n != 2 {
		t.Fatalf("strokes = %d, want 2", n)
	}

	if !store.Undo() {
		t.Fatal("undo returned false")
	}
	if n := len(store.State().Strokes); n != 1 {
		t.Fatalf("after undo strokes = %d, want 1", n)
	}
	if store.State().Strokes[0].ID != "a" {
		t.Errorf("remaining stroke = %q, want a", store.State().Strokes[0].ID)
	}
}

func TestUndoNTimesRestoresInitialState(t *testing.T) {
	store := NewStore()
	initial := store.Snapshot()

	const n = 8
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			store.Apply(AddStroke{Stroke: testStroke("s", Point{float64(i), 0, 0.5}, Point{float64(i), 5, 0.5})})
		} else {
			store.Apply(AddPhase{Label: "p"})
		}
	}

	for i := 0; i < n; i++ {
		if !store.Undo() {
			t.Fatalf("undo %d returned false", i)
		}
	}

	if !reflect.DeepEqual(store.Snapshot(), initial) {
		t.Errorf("state after N undos differs from initial state")
	}

	// One more is a no-op, not an error.
	if store.Undo() {
		t.Error("undo past bottom of history should be a no-op")
	}
}

func TestHistoryBounded(t *testing.T) {
	store := NewStore()
	for i := 0; i < HistoryCapacity+20; i++ {
		store.Apply(AddStroke{Stroke: testStroke("s", Point{0, 0, 0.5}, Point{1, 1, 0.5})})
	}

	undos := 0
	for store.Undo() {
		undos++
	}
	if undos != HistoryCapacity {
		t.Errorf("undos = %d, want %d", undos, HistoryCapacity)
	}
}

func TestSetViewDoesNotPushHistory(t *testing.T) {
	store := NewStore()
	store.SetView(100, 200, 2)
	if store.CanUndo() {
		t.Error("camera change pushed history")
	}
	if store.Undo() {
		t.Error("undo after camera-only change should be a no-op")
	}

	cam := store.Camera()
	if cam.ViewX != 100 || cam.ViewY != 200 || cam.Zoom != 2 {
		t.Errorf("camera = %+v", cam)
	}
}

func TestSetViewClampsZoom(t *testing.T) {
	store := NewStore()
	store.SetView(0, 0, 99)
	if z := store.Camera().Zoom; z != MaxZoom {
		t.Errorf("zoom = %v, want %v", z, MaxZoom)
	}
}

func TestEmptyTextBlockDeletedOnBlur(t *testing.T) {
	store := NewStore()
	block := NewTextBlock(10, 10, "#000000")
	store.Apply(AddTextBlock{Block: block})

	text := "   "
	editing := false
	store.Apply(PatchTextBlock{ID: block.ID, Text: &text, Editing: &editing})

	if n := len(store.State().TextBlocks); n != 0 {
		t.Errorf("text blocks = %d, want 0 (empty block must not persist)", n)
	}
}

func TestNonEmptyTextBlockSurvivesBlur(t *testing.T) {
	store := NewStore()
	block := NewTextBlock(10, 10, "#000000")
	store.Apply(AddTextBlock{Block: block})

	text := "foo"
	editing := false
	store.Apply(PatchTextBlock{ID: block.ID, Text: &text, Editing: &editing})

	blocks := store.State().TextBlocks
	if len(blocks) != 1 || blocks[0].Text != "foo" || blocks[0].Editing {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestPhaseOrderStaysDense(t *testing.T) {
	store := NewStore()
	for i := 0; i < 5; i++ {
		store.Apply(AddPhase{Label: "p"})
	}

	ids := make([]string, 5)
	for i, p := range SortedPhases(store.State().Phases) {
		ids[i] = p.ID
	}

	store.Apply(ReorderPhase{ID: ids[4], To: 0})
	store.Apply(ReorderPhase{ID: ids[0], To: 99}) // clamped to end
	store.Apply(DeletePhase{ID: ids[2]})
	store.Apply(ReorderPhase{ID: ids[1], To: -5}) // clamped to start

	phases := store.State().Phases
	seen := make(map[int]bool)
	for _, p := range phases {
		if p.Order < 0 || p.Order >= len(phases) {
			t.Errorf("order %d out of range [0,%d)", p.Order, len(phases))
		}
		if seen[p.Order] {
			t.Errorf("duplicate order %d", p.Order)
		}
		seen[p.Order] = true
	}
}

func TestReorderPhaseMovesToTarget(t *testing.T) {
	store := NewStore()
	store.Apply(AddPhase{Label: "a"})
	store.Apply(AddPhase{Label: "b"})
	store.Apply(AddPhase{Label: "c"})

	ordered := SortedPhases(store.State().Phases)
	store.Apply(ReorderPhase{ID: ordered[2].ID, To: 0})

	got := SortedPhases(store.State().Phases)
	if got[0].Label != "c" || got[1].Label != "a" || got[2].Label != "b" {
		t.Errorf("order = %s,%s,%s, want c,a,b", got[0].Label, got[1].Label, got[2].Label)
	}
}

func TestAddPhaseCapturesCamera(t *testing.T) {
	store := NewStore()
	store.SetView(11, 22, 2)
	store.Apply(AddPhase{Label: "intro"})

	p := store.State().Phases[0]
	if p.ViewX != 11 || p.ViewY != 22 || p.Zoom != 2 || p.Order != 0 {
		t.Errorf("phase = %+v", p)
	}
}

func TestDrawingBlockStrokes(t *testing.T) {
	store := NewStore()
	block := NewDrawingBlock(100, 100, 300, 200)
	store.Apply(AddDrawingBlock{Block: block})

	ls := NewLocalStroke(ToolPen, "#000000", 3, []Point{{1, 1, 0.5}, {5, 5, 0.5}})
	store.Apply(AddBlockStroke{BlockID: block.ID, Stroke: ls})

	if n := len(store.State().DrawingBlocks[0].Strokes); n != 1 {
		t.Fatalf("block strokes = %d, want 1", n)
	}

	store.Apply(RemoveBlockStroke{BlockID: block.ID, Index: 0})
	if n := len(store.State().DrawingBlocks[0].Strokes); n != 0 {
		t.Fatalf("block strokes = %d, want 0", n)
	}

	// Block mutations are undoable: snapshots carry drawing blocks.
	store.Undo()
	if n := len(store.State().DrawingBlocks[0].Strokes); n != 1 {
		t.Errorf("after undo block strokes = %d, want 1", n)
	}
}

func TestLoadStateClearsHistory(t *testing.T) {
	store := NewStore()
	store.Apply(AddStroke{Stroke: testStroke("a", Point{0, 0, 0.5}, Point{1, 1, 0.5})})

	store.LoadState(NewState())
	if store.CanUndo() {
		t.Error("history not cleared by LoadState")
	}
}

func TestStoreEvents(t *testing.T) {
	store := NewStore()

	var content, camera, phases int
	var lastName string
	store.On(EventContentChanged, func(data interface{}) {
		content++
		// The status bar shows the applied command's name.
		name, ok := data.(string)
		if !ok {
			t.Errorf("content event payload is %T, want string", data)
		}
		lastName = name
	})
	store.On(EventCameraChanged, func(interface{}) { camera++ })
	store.On(EventPhasesChanged, func(interface{}) { phases++ })

	store.Apply(AddStroke{Stroke: testStroke("a", Point{0, 0, 0.5}, Point{1, 1, 0.5})})
	store.Apply(AddPhase{Label: "p"})
	store.SetView(1, 2, 1)

	if content != 2 {
		t.Errorf("content events = %d, want 2", content)
	}
	if lastName != "add_phase" {
		t.Errorf("last content payload = %q, want %q", lastName, "add_phase")
	}
	if camera != 1 {
		t.Errorf("camera events = %d, want 1", camera)
	}
	if phases != 1 {
		t.Errorf("phase events = %d, want 1", phases)
	}
}

func TestBlockAt(t *testing.T) {
	s := NewState()
	s.DrawingBlocks = append(s.DrawingBlocks, NewDrawingBlock(100, 100, 300, 200))

	if b := s.BlockAt(150, 150); b == nil {
		t.Error("point inside block not found")
	}
	if b := s.BlockAt(50, 50); b != nil {
		t.Error("point outside block matched")
	}
}
