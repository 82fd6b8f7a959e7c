package canvas

import (
	"encoding/json"
	"log"
)

// StateKey is the namespaced key under which a document may nest the
// canvas state.
const StateKey = "ink_canvas"

// EncodeState serializes the state to the persisted JSON contract.
func EncodeState(s State) ([]byte, error) {
	normalize(&s)
	return json.Marshal(s)
}

// DecodeDocument extracts canvas state from a loaded document. The state
// object may appear at the top level, nested under the namespaced key, or
// inside a "metadata" envelope. Missing arrays default to empty and a
// missing camera to (0,0,1). Malformed input falls back to an empty
// canvas rather than failing the load.
func DecodeDocument(data []byte) State {
	if len(data) == 0 {
		return NewState()
	}
	state, ok := decodeLevel(data, 2)
	if !ok {
		log.Printf("canvas: malformed saved state, starting empty")
		return NewState()
	}
	normalize(&state)
	return state
}

// decodeLevel tries the raw bytes as a state object, then descends into
// known envelope keys up to depth levels.
func decodeLevel(data []byte, depth int) (State, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return State{}, false
	}

	if looksLikeState(fields) {
		var s State
		if err := json.Unmarshal(data, &s); err != nil {
			return State{}, false
		}
		return s, true
	}

	if depth <= 0 {
		return State{}, false
	}
	for _, key := range []string{StateKey, "metadata"} {
		if nested, ok := fields[key]; ok {
			if s, ok := decodeLevel(nested, depth-1); ok {
				return s, true
			}
		}
	}
	return State{}, false
}

// looksLikeState reports whether the object carries any of the canvas
// contract's fields.
func looksLikeState(fields map[string]json.RawMessage) bool {
	for _, key := range []string{"strokes", "textBlocks", "drawingBlocks", "phases", "zoom"} {
		if _, ok := fields[key]; ok {
			return true
		}
	}
	return false
}

// normalize fills contract defaults: non-nil arrays and a unit zoom.
func normalize(s *State) {
	if s.Strokes == nil {
		s.Strokes = []Stroke{}
	}
	if s.TextBlocks == nil {
		s.TextBlocks = []TextBlock{}
	}
	if s.DrawingBlocks == nil {
		s.DrawingBlocks = []DrawingBlock{}
	}
	if s.Phases == nil {
		s.Phases = []Phase{}
	}
	if s.Zoom == 0 {
		s.Zoom = 1
	}
}
