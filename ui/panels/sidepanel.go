package panels

import (
	"ink-canvas/internal/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel is the tabbed panel docked beside the canvas.
type SidePanel struct {
	container *container.AppTabs

	phasesPanel *PhasesPanel
	blocksPanel *BlocksPanel
}

// NewSidePanel creates the side panel with its tabs.
func NewSidePanel(store *canvas.Store) *SidePanel {
	sp := &SidePanel{}

	sp.phasesPanel = NewPhasesPanel(store)
	sp.blocksPanel = NewBlocksPanel(store)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Phases", sp.phasesPanel.Container()),
		container.NewTabItem("Blocks", sp.blocksPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Phases returns the phases tab.
func (sp *SidePanel) Phases() *PhasesPanel { return sp.phasesPanel }

// Blocks returns the blocks tab.
func (sp *SidePanel) Blocks() *BlocksPanel { return sp.blocksPanel }
