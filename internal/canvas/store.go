package canvas

import (
	"sync"
)

// EventType identifies store events observed by the UI and autosave.
type EventType int

const (
	EventContentChanged EventType = iota
	EventCameraChanged
	EventPhasesChanged
	EventStateLoaded
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Command is a single mutation of canvas content. All content edits go
// through Store.Apply so the undo snapshot push cannot be bypassed by a
// direct field write.
type Command interface {
	// Name identifies the command in logs.
	Name() string
	// apply mutates the state in place.
	apply(*State)
}

// Store owns the canvas State. Mutation happens only through Apply,
// SetView, Undo, and LoadState. Reads from other goroutines (autosave)
// go through Snapshot.
type Store struct {
	mu        sync.RWMutex
	state     State
	history   *history
	listeners map[EventType][]EventListener
}

// NewStore creates a store with an empty canvas.
func NewStore() *Store {
	return &Store{
		state:     NewState(),
		history:   newHistory(HistoryCapacity),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Store) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Store) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// State returns the live state. Callers on the event loop may read it
// directly; they must not retain it across mutations.
func (s *Store) State() *State {
	return &s.state
}

// Snapshot returns a deep copy of the current state, safe to serialize
// from another goroutine.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Camera returns the current camera.
func (s *Store) Camera() Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Camera{ViewX: s.state.ViewX, ViewY: s.state.ViewY, Zoom: s.state.Zoom}
}

// Apply pushes an undo snapshot and then runs the command.
func (s *Store) Apply(cmd Command) {
	s.mu.Lock()
	s.history.Push(s.state)
	cmd.apply(&s.state)
	s.mu.Unlock()

	s.Emit(EventContentChanged, cmd.Name())
	if _, ok := cmd.(phaseCommand); ok {
		s.Emit(EventPhasesChanged, nil)
	}
}

// Undo pops the most recent snapshot and replaces the state wholesale.
// With an empty history it is a no-op and returns false.
func (s *Store) Undo() bool {
	s.mu.Lock()
	prev, ok := s.history.Pop()
	if ok {
		s.state = prev
	}
	s.mu.Unlock()

	if ok {
		s.Emit(EventContentChanged, "undo")
		s.Emit(EventPhasesChanged, nil)
	}
	return ok
}

// CanUndo reports whether an undo snapshot exists.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Len() > 0
}

// SetView moves the camera. Camera-only changes are not undoable and do
// not push history.
func (s *Store) SetView(viewX, viewY, zoom float64) {
	s.mu.Lock()
	s.state.ViewX = viewX
	s.state.ViewY = viewY
	s.state.Zoom = ClampZoom(zoom)
	s.mu.Unlock()

	s.Emit(EventCameraChanged, nil)
}

// SetCamera is SetView taking a Camera value.
func (s *Store) SetCamera(c Camera) {
	s.SetView(c.ViewX, c.ViewY, c.Zoom)
}

// LoadState resets the store to the given state and clears history
// atomically. Used when opening a saved canvas.
func (s *Store) LoadState(state State) {
	s.mu.Lock()
	s.state = state.Clone()
	if s.state.Zoom == 0 {
		s.state.Zoom = 1
	}
	s.history.Clear()
	s.mu.Unlock()

	s.Emit(EventStateLoaded, nil)
	s.Emit(EventPhasesChanged, nil)
}
