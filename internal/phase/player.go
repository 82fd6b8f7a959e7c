// Package phase drives presentation playback over the camera bookmarks
// stored on a canvas. The player animates the camera between phases and
// optionally auto-advances on a fixed interval.
package phase

import (
	"sync"
	"time"

	"ink-canvas/internal/canvas"
)

const (
	// AdvanceInterval is the dwell time on a phase before auto-advance.
	AdvanceInterval = 3500 * time.Millisecond

	// AnimDuration is the camera transition time between phases.
	AnimDuration = 600 * time.Millisecond
)

// Player runs presentation mode. Tick is called once per frame from the
// playback goroutine while Next/Prev/Stop arrive from the UI event
// thread, so every entry point takes the mutex. The clock is a plain
// function so playback is testable without waiting.
type Player struct {
	store *canvas.Store
	now   func() time.Time

	mu sync.Mutex

	phases []canvas.Phase
	index  int
	active bool
	auto   bool

	animating bool
	animStart time.Time
	fromX     float64
	fromY     float64
	fromZoom  float64
	target    canvas.Camera

	arrivedAt time.Time
}

// NewPlayer creates an inactive player bound to a store.
func NewPlayer(store *canvas.Store) *Player {
	return &Player{store: store, now: time.Now}
}

// Start enters presentation mode on the current phase list, animating to
// the first phase. It is a no-op when the canvas has no phases.
func (p *Player) Start(autoAdvance bool) bool {
	phases := canvas.SortedPhases(p.store.State().Phases)
	if len(phases) == 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phases = phases
	p.active = true
	p.auto = autoAdvance
	p.index = 0
	p.beginAnim(p.phases[0])
	return true
}

// Stop exits presentation mode, leaving the camera wherever the current
// animation had reached.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	p.animating = false
}

// Active reports whether presentation mode is running.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Index returns the current phase position.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Next advances to the following phase. At the last phase it is a no-op;
// playback holds there until stopped.
func (p *Player) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next()
}

func (p *Player) next() {
	if !p.active || p.index+1 >= len(p.phases) {
		return
	}
	p.index++
	p.beginAnim(p.phases[p.index])
}

// Prev steps back to the preceding phase.
func (p *Player) Prev() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active || p.index == 0 {
		return
	}
	p.index--
	p.beginAnim(p.phases[p.index])
}

// Tick moves the animation forward one frame and fires auto-advance.
// It returns true while the player still needs frames.
func (p *Player) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return false
	}
	now := p.now()

	if p.animating {
		t := float64(now.Sub(p.animStart)) / float64(AnimDuration)
		if t >= 1 {
			p.store.SetView(p.target.ViewX, p.target.ViewY, p.target.Zoom)
			p.animating = false
			p.arrivedAt = now
			return true
		}
		e := easeOutCubic(t)
		p.store.SetView(
			p.fromX+(p.target.ViewX-p.fromX)*e,
			p.fromY+(p.target.ViewY-p.fromY)*e,
			p.fromZoom+(p.target.Zoom-p.fromZoom)*e,
		)
		return true
	}

	if p.auto && now.Sub(p.arrivedAt) >= AdvanceInterval {
		if p.index+1 < len(p.phases) {
			p.next()
		} else {
			// Dwell at the last phase; the timer stays satisfied.
			p.auto = false
		}
	}
	return true
}

func (p *Player) beginAnim(ph canvas.Phase) {
	cam := p.store.Camera()
	p.fromX, p.fromY, p.fromZoom = cam.ViewX, cam.ViewY, cam.Zoom
	p.target = canvas.Camera{ViewX: ph.ViewX, ViewY: ph.ViewY, Zoom: ph.Zoom}
	p.animStart = p.now()
	p.animating = true
}

func easeOutCubic(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}
