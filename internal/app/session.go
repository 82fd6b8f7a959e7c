// Package app wires the canvas store to persistence and the
// knowledge-ingestion collaborator: debounced autosave, capture with an
// OCR hint, and drawing-block export.
package app

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"ink-canvas/internal/api"
	"ink-canvas/internal/canvas"
	"ink-canvas/internal/ocr"
	"ink-canvas/internal/raster"
)

// SaveDelay is the autosave debounce: a save fires this long after the
// last mutation, and every new mutation restarts the countdown.
const SaveDelay = 2 * time.Second

// ErrCaptureInFlight is returned while a previous capture is still
// outstanding.
var ErrCaptureInFlight = fmt.Errorf("capture already in flight")

// Session owns one open canvas: its store, its identity on the
// collaborator service, and the background autosave.
type Session struct {
	store  *canvas.Store
	client *api.Client

	canvasID string
	title    string

	// ocr is optional. A nil engine means captures carry no text hint.
	ocr *ocr.Engine

	saveDelay time.Duration

	mu        sync.Mutex
	saveTimer *time.Timer
	closed    bool

	capturing atomic.Bool
}

// NewSession creates a session for one canvas. Call Start to enable
// autosave.
func NewSession(store *canvas.Store, client *api.Client, canvasID, title string) *Session {
	return &Session{
		store:     store,
		client:    client,
		canvasID:  canvasID,
		title:     title,
		saveDelay: SaveDelay,
	}
}

// SetOCR attaches an OCR engine used for capture hints.
func (s *Session) SetOCR(engine *ocr.Engine) { s.ocr = engine }

// Title returns the canvas title.
func (s *Session) Title() string { return s.title }

// SetTitle renames the canvas. The new title rides along with the next
// save.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
	s.scheduleSave()
}

// Load fetches the canvas from the collaborator and resets the store.
func (s *Session) Load(ctx context.Context) error {
	doc, err := s.client.LoadCanvas(ctx, s.canvasID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	s.mu.Lock()
	if doc.Title != "" {
		s.title = doc.Title
	}
	s.mu.Unlock()
	s.store.LoadState(doc.State)
	return nil
}

// Start subscribes autosave to store mutations. Camera-only changes do
// not trigger saves; content and phase edits do.
func (s *Session) Start() {
	s.store.On(canvas.EventContentChanged, func(interface{}) { s.scheduleSave() })
	s.store.On(canvas.EventPhasesChanged, func(interface{}) { s.scheduleSave() })
}

// Close stops the pending autosave and flushes one final save.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	hadPending := s.saveTimer != nil
	if hadPending {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	s.mu.Unlock()

	if hadPending {
		s.save()
	}
}

// scheduleSave restarts the debounce countdown. Last write wins: only
// the state at fire time is saved.
func (s *Session) scheduleSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(s.saveDelay, func() {
		s.mu.Lock()
		s.saveTimer = nil
		s.mu.Unlock()
		s.save()
	})
}

// save is best-effort: failures are logged and retried implicitly by the
// next mutation's debounce cycle.
func (s *Session) save() {
	state := s.store.Snapshot()
	s.mu.Lock()
	title := s.title
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.client.SaveCanvas(ctx, s.canvasID, title, state); err != nil {
		log.Printf("autosave failed: %v", err)
	}
}

// Capture submits the canvas for ingestion. Only one capture runs at a
// time; an OCR failure degrades to a capture without a hint, a network
// failure surfaces as an error with the canvas left untouched.
func (s *Session) Capture(ctx context.Context) (*api.CaptureResult, error) {
	if !s.capturing.CompareAndSwap(false, true) {
		return nil, ErrCaptureInFlight
	}
	defer s.capturing.Store(false)

	state := s.store.Snapshot()

	hint := ""
	if s.ocr != nil {
		img := raster.RenderState(&state, raster.Options{})
		text, err := s.ocr.HintFromImage(img)
		if err != nil {
			log.Printf("capture: ocr hint failed, continuing without: %v", err)
		} else {
			hint = text
		}
	}

	s.mu.Lock()
	title := s.title
	s.mu.Unlock()

	result, err := s.client.Capture(ctx, api.CaptureRequest{
		CanvasID: s.canvasID,
		Title:    title,
		State:    state,
		OCRText:  hint,
	})
	if err != nil {
		return nil, fmt.Errorf("capture canvas: %w", err)
	}
	return result, nil
}

// CaptureInFlight reports whether a capture is outstanding, so the UI
// can disable the action.
func (s *Session) CaptureInFlight() bool { return s.capturing.Load() }

// ExportBlock renders one drawing block to PNG and submits it for ink
// ingestion. On success the block is removed from the canvas.
func (s *Session) ExportBlock(ctx context.Context, blockID string) error {
	state := s.store.Snapshot()
	var block *canvas.DrawingBlock
	for i := range state.DrawingBlocks {
		if state.DrawingBlocks[i].ID == blockID {
			block = &state.DrawingBlocks[i]
			break
		}
	}
	if block == nil {
		return fmt.Errorf("export block: no block %s", blockID)
	}

	img := raster.RenderBlock(block, raster.DefaultScale)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("export block: encode: %w", err)
	}

	if err := s.client.IngestInk(ctx, s.canvasID, blockID, buf.Bytes()); err != nil {
		return fmt.Errorf("export block: %w", err)
	}

	s.store.Apply(canvas.RemoveDrawingBlock{ID: blockID})
	return nil
}
