// Package panels provides the side panel tabs for the main window.
package panels

import (
	"fmt"

	"ink-canvas/internal/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// PhasesPanel manages the ordered list of camera bookmarks used for
// presenting.
type PhasesPanel struct {
	store     *canvas.Store
	container fyne.CanvasObject

	list        *widget.List
	labelEntry  *widget.Entry
	selectedIdx int

	// OnPresent is invoked with the auto-advance flag when the user
	// starts a presentation.
	OnPresent func(auto bool)
}

// NewPhasesPanel creates the phases tab bound to a store.
func NewPhasesPanel(store *canvas.Store) *PhasesPanel {
	pp := &PhasesPanel{
		store:       store,
		selectedIdx: -1,
	}

	pp.list = widget.NewList(
		func() int {
			return len(store.State().Phases)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Phase")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			phases := canvas.SortedPhases(store.State().Phases)
			if int(id) < len(phases) {
				ph := phases[id]
				name := ph.Label
				if name == "" {
					name = fmt.Sprintf("Phase %d", ph.Order+1)
				}
				label.SetText(fmt.Sprintf("%d. %s (%.0f%%)", ph.Order+1, name, ph.Zoom*100))
			}
		},
	)

	pp.list.OnSelected = func(id widget.ListItemID) {
		pp.selectedIdx = int(id)
		phases := canvas.SortedPhases(store.State().Phases)
		if pp.selectedIdx < len(phases) {
			ph := phases[pp.selectedIdx]
			// Jump the camera without animating; playback animates.
			store.SetView(ph.ViewX, ph.ViewY, ph.Zoom)
		}
	}

	pp.labelEntry = widget.NewEntry()
	pp.labelEntry.SetPlaceHolder("Phase label (optional)")

	addBtn := widget.NewButton("Add Phase", func() { pp.addPhase() })
	upBtn := widget.NewButton("Up", func() { pp.move(-1) })
	downBtn := widget.NewButton("Down", func() { pp.move(+1) })
	deleteBtn := widget.NewButton("Delete", func() { pp.deleteSelected() })

	presentBtn := widget.NewButton("Present", func() {
		if pp.OnPresent != nil {
			pp.OnPresent(false)
		}
	})
	autoBtn := widget.NewButton("Auto-Play", func() {
		if pp.OnPresent != nil {
			pp.OnPresent(true)
		}
	})

	controls := container.NewVBox(
		pp.labelEntry,
		container.NewHBox(addBtn, upBtn, downBtn, deleteBtn),
		container.NewHBox(presentBtn, autoBtn),
	)

	pp.container = container.NewBorder(nil, controls, nil, nil, pp.list)

	store.On(canvas.EventPhasesChanged, func(interface{}) {
		pp.list.Refresh()
	})
	store.On(canvas.EventStateLoaded, func(interface{}) {
		pp.selectedIdx = -1
		pp.list.UnselectAll()
		pp.list.Refresh()
	})

	return pp
}

// Container returns the panel content.
func (pp *PhasesPanel) Container() fyne.CanvasObject {
	return pp.container
}

// addPhase bookmarks the current camera at the end of the sequence.
func (pp *PhasesPanel) addPhase() {
	pp.store.Apply(canvas.AddPhase{Label: pp.labelEntry.Text})
	pp.labelEntry.SetText("")
}

func (pp *PhasesPanel) move(delta int) {
	phases := canvas.SortedPhases(pp.store.State().Phases)
	if pp.selectedIdx < 0 || pp.selectedIdx >= len(phases) {
		return
	}
	to := pp.selectedIdx + delta
	if to < 0 || to >= len(phases) {
		return
	}
	pp.store.Apply(canvas.ReorderPhase{ID: phases[pp.selectedIdx].ID, To: to})
	pp.selectedIdx = to
	pp.list.Select(widget.ListItemID(to))
}

func (pp *PhasesPanel) deleteSelected() {
	phases := canvas.SortedPhases(pp.store.State().Phases)
	if pp.selectedIdx < 0 || pp.selectedIdx >= len(phases) {
		return
	}
	pp.store.Apply(canvas.DeletePhase{ID: phases[pp.selectedIdx].ID})
	pp.selectedIdx = -1
	pp.list.UnselectAll()
}
