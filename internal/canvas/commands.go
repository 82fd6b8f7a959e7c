package canvas

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// phaseCommand marks commands that alter the phase list so the store can
// emit EventPhasesChanged alongside EventContentChanged.
type phaseCommand interface {
	isPhaseCommand()
}

// AddStroke commits a finished stroke to the canvas.
type AddStroke struct {
	Stroke Stroke
}

func (AddStroke) Name() string { return "add_stroke" }

func (c AddStroke) apply(s *State) {
	s.Strokes = append(s.Strokes, c.Stroke)
}

// DeleteStroke removes a stroke by ID. Unknown IDs are a no-op.
type DeleteStroke struct {
	ID string
}

func (DeleteStroke) Name() string { return "delete_stroke" }

func (c DeleteStroke) apply(s *State) {
	for i := range s.Strokes {
		if s.Strokes[i].ID == c.ID {
			s.Strokes = append(s.Strokes[:i], s.Strokes[i+1:]...)
			return
		}
	}
}

// AddTextBlock places a new text block.
type AddTextBlock struct {
	Block TextBlock
}

func (AddTextBlock) Name() string { return "add_text_block" }

func (c AddTextBlock) apply(s *State) {
	s.TextBlocks = append(s.TextBlocks, c.Block)
}

// PatchTextBlock updates fields of an existing text block. Nil fields
// are left untouched. When editing ends with empty or whitespace-only
// text, the block is deleted instead of being persisted empty.
type PatchTextBlock struct {
	ID       string
	Text     *string
	X, Y     *float64
	W        *float64
	FontSize *float64
	Editing  *bool
}

func (PatchTextBlock) Name() string { return "patch_text_block" }

func (c PatchTextBlock) apply(s *State) {
	for i := range s.TextBlocks {
		b := &s.TextBlocks[i]
		if b.ID != c.ID {
			continue
		}
		if c.Text != nil {
			b.Text = *c.Text
		}
		if c.X != nil {
			b.X = *c.X
		}
		if c.Y != nil {
			b.Y = *c.Y
		}
		if c.W != nil {
			b.W = *c.W
		}
		if c.FontSize != nil {
			b.FontSize = *c.FontSize
		}
		if c.Editing != nil {
			b.Editing = *c.Editing
		}
		if !b.Editing && strings.TrimSpace(b.Text) == "" {
			s.TextBlocks = append(s.TextBlocks[:i], s.TextBlocks[i+1:]...)
		}
		return
	}
}

// DeleteTextBlock removes a text block by ID.
type DeleteTextBlock struct {
	ID string
}

func (DeleteTextBlock) Name() string { return "delete_text_block" }

func (c DeleteTextBlock) apply(s *State) {
	for i := range s.TextBlocks {
		if s.TextBlocks[i].ID == c.ID {
			s.TextBlocks = append(s.TextBlocks[:i], s.TextBlocks[i+1:]...)
			return
		}
	}
}

// AddPhase bookmarks the current camera under a label, appended at the
// next order index.
type AddPhase struct {
	Label string
}

func (AddPhase) Name() string    { return "add_phase" }
func (AddPhase) isPhaseCommand() {}

func (c AddPhase) apply(s *State) {
	s.Phases = append(s.Phases, Phase{
		ID:        uuid.NewString(),
		Label:     c.Label,
		ViewX:     s.ViewX,
		ViewY:     s.ViewY,
		Zoom:      s.Zoom,
		Order:     len(s.Phases),
		CreatedAt: time.Now().UnixMilli(),
	})
}

// DeletePhase removes a phase and renumbers the rest densely.
type DeletePhase struct {
	ID string
}

func (DeletePhase) Name() string    { return "delete_phase" }
func (DeletePhase) isPhaseCommand() {}

func (c DeletePhase) apply(s *State) {
	for i := range s.Phases {
		if s.Phases[i].ID == c.ID {
			s.Phases = append(s.Phases[:i], s.Phases[i+1:]...)
			renumberPhases(s.Phases)
			return
		}
	}
}

// ReorderPhase splices a phase out of the order-sorted list and
// reinserts it at a clamped target index, then renumbers densely.
type ReorderPhase struct {
	ID string
	To int
}

func (ReorderPhase) Name() string    { return "reorder_phase" }
func (ReorderPhase) isPhaseCommand() {}

func (c ReorderPhase) apply(s *State) {
	ordered := SortedPhases(s.Phases)

	from := -1
	for i := range ordered {
		if ordered[i].ID == c.ID {
			from = i
			break
		}
	}
	if from < 0 {
		return
	}

	to := c.To
	if to < 0 {
		to = 0
	}
	if to > len(ordered)-1 {
		to = len(ordered) - 1
	}

	moved := ordered[from]
	ordered = append(ordered[:from], ordered[from+1:]...)
	ordered = append(ordered[:to], append([]Phase{moved}, ordered[to:]...)...)

	renumberPhases(ordered)
	s.Phases = ordered
}

// renumberPhases assigns contiguous order values 0..n-1 following the
// slice order.
func renumberPhases(phases []Phase) {
	for i := range phases {
		phases[i].Order = i
	}
}

// SortedPhases returns a copy of the phases sorted by order.
func SortedPhases(phases []Phase) []Phase {
	out := append([]Phase(nil), phases...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// AddDrawingBlock anchors a new sub-canvas in world space.
type AddDrawingBlock struct {
	Block DrawingBlock
}

func (AddDrawingBlock) Name() string { return "add_drawing_block" }

func (c AddDrawingBlock) apply(s *State) {
	s.DrawingBlocks = append(s.DrawingBlocks, c.Block)
}

// RemoveDrawingBlock removes a drawing block, typically after its image
// has been ingested.
type RemoveDrawingBlock struct {
	ID string
}

func (RemoveDrawingBlock) Name() string { return "remove_drawing_block" }

func (c RemoveDrawingBlock) apply(s *State) {
	for i := range s.DrawingBlocks {
		if s.DrawingBlocks[i].ID == c.ID {
			s.DrawingBlocks = append(s.DrawingBlocks[:i], s.DrawingBlocks[i+1:]...)
			return
		}
	}
}

// AddBlockStroke commits a block-local stroke into a drawing block.
type AddBlockStroke struct {
	BlockID string
	Stroke  LocalStroke
}

func (AddBlockStroke) Name() string { return "add_block_stroke" }

func (c AddBlockStroke) apply(s *State) {
	for i := range s.DrawingBlocks {
		if s.DrawingBlocks[i].ID == c.BlockID {
			s.DrawingBlocks[i].Strokes = append(s.DrawingBlocks[i].Strokes, c.Stroke)
			return
		}
	}
}

// RemoveBlockStroke removes the stroke at Index from a drawing block.
type RemoveBlockStroke struct {
	BlockID string
	Index   int
}

func (RemoveBlockStroke) Name() string { return "remove_block_stroke" }

func (c RemoveBlockStroke) apply(s *State) {
	for i := range s.DrawingBlocks {
		b := &s.DrawingBlocks[i]
		if b.ID != c.BlockID {
			continue
		}
		if c.Index < 0 || c.Index >= len(b.Strokes) {
			return
		}
		b.Strokes = append(b.Strokes[:c.Index], b.Strokes[c.Index+1:]...)
		return
	}
}

// ReplaceContent swaps the stroke and text block lists wholesale. The
// polish transform uses it so one undo reverts the whole batch.
type ReplaceContent struct {
	Strokes    []Stroke
	TextBlocks []TextBlock
}

func (ReplaceContent) Name() string { return "replace_content" }

func (c ReplaceContent) apply(s *State) {
	s.Strokes = c.Strokes
	s.TextBlocks = c.TextBlocks
}
