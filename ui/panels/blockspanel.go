package panels

import (
	"fmt"

	"ink-canvas/internal/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Default size of a newly placed drawing block, in world units.
const (
	defaultBlockW = 600
	defaultBlockH = 400
)

// BlocksPanel manages drawing blocks: fixed-size sub-canvases whose
// content can be exported to the notes server.
type BlocksPanel struct {
	store     *canvas.Store
	container fyne.CanvasObject

	list        *widget.List
	status      *widget.Label
	selectedIdx int

	// OnExport is invoked with the block id when the user sends a block
	// to the notes server.
	OnExport func(id string)

	// ViewportCenter supplies the world position for newly placed
	// blocks, normally the center of the visible canvas.
	ViewportCenter func() (x, y float64)

	// CenterOn pans the canvas so the given world point is centered.
	CenterOn func(x, y float64)
}

// NewBlocksPanel creates the blocks tab bound to a store.
func NewBlocksPanel(store *canvas.Store) *BlocksPanel {
	bp := &BlocksPanel{
		store:       store,
		selectedIdx: -1,
	}

	bp.list = widget.NewList(
		func() int {
			return len(store.State().DrawingBlocks)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Block")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			blocks := store.State().DrawingBlocks
			if int(id) < len(blocks) {
				b := blocks[id]
				label.SetText(fmt.Sprintf("Block %d (%d strokes)", int(id)+1, len(b.Strokes)))
			}
		},
	)

	bp.list.OnSelected = func(id widget.ListItemID) {
		bp.selectedIdx = int(id)
		blocks := bp.store.State().DrawingBlocks
		if bp.selectedIdx < len(blocks) && bp.CenterOn != nil {
			b := blocks[bp.selectedIdx]
			bp.CenterOn(b.X+b.W/2, b.Y+b.H/2)
		}
	}

	bp.status = widget.NewLabel("")

	newBtn := widget.NewButton("New Block", func() { bp.addBlock() })
	exportBtn := widget.NewButton("Send to Notes", func() { bp.exportSelected() })
	deleteBtn := widget.NewButton("Delete", func() { bp.deleteSelected() })

	controls := container.NewVBox(
		container.NewHBox(newBtn, exportBtn, deleteBtn),
		bp.status,
	)
	bp.container = container.NewBorder(nil, controls, nil, nil, bp.list)

	store.On(canvas.EventContentChanged, func(interface{}) {
		bp.list.Refresh()
	})
	store.On(canvas.EventStateLoaded, func(interface{}) {
		bp.selectedIdx = -1
		bp.list.UnselectAll()
		bp.list.Refresh()
	})

	return bp
}

// Container returns the panel content.
func (bp *BlocksPanel) Container() fyne.CanvasObject {
	return bp.container
}

// SetStatus shows a short status message under the controls.
func (bp *BlocksPanel) SetStatus(text string) {
	bp.status.SetText(text)
}

func (bp *BlocksPanel) addBlock() {
	var cx, cy float64
	if bp.ViewportCenter != nil {
		cx, cy = bp.ViewportCenter()
	}
	block := canvas.NewDrawingBlock(cx-defaultBlockW/2, cy-defaultBlockH/2, defaultBlockW, defaultBlockH)
	bp.store.Apply(canvas.AddDrawingBlock{Block: block})
}

func (bp *BlocksPanel) exportSelected() {
	blocks := bp.store.State().DrawingBlocks
	if bp.selectedIdx < 0 || bp.selectedIdx >= len(blocks) {
		return
	}
	if bp.OnExport != nil {
		bp.OnExport(blocks[bp.selectedIdx].ID)
	}
}

func (bp *BlocksPanel) deleteSelected() {
	blocks := bp.store.State().DrawingBlocks
	if bp.selectedIdx < 0 || bp.selectedIdx >= len(blocks) {
		return
	}
	bp.store.Apply(canvas.RemoveDrawingBlock{ID: blocks[bp.selectedIdx].ID})
	bp.selectedIdx = -1
	bp.list.UnselectAll()
}
