// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"
	"time"

	"ink-canvas/internal/app"
	"ink-canvas/internal/canvas"
	"ink-canvas/internal/export"
	"ink-canvas/internal/phase"
	"ink-canvas/internal/polish"
	"ink-canvas/internal/version"
	"ink-canvas/pkg/colorutil"
	uicanvas "ink-canvas/ui/canvas"
	"ink-canvas/ui/dialogs"
	"ink-canvas/ui/panels"
	"ink-canvas/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const presentFrameInterval = 16 * time.Millisecond

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	store   *canvas.Store
	session *app.Session
	prefs   *prefs.Prefs

	canvas    *uicanvas.InkCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	split     *container.Split

	undoBtn    *widget.Button
	captureBtn *widget.Button

	player     *phase.Player
	presenting bool
	presentEnd chan struct{}

	editingBlock string
	editorPopup  *widget.PopUp
}

// New creates the main window bound to a store and server session.
func New(fyneApp fyne.App, store *canvas.Store, session *app.Session, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Ink Canvas")

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		store:   store,
		session: session,
		prefs:   p,
		player:  phase.NewPlayer(store),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()
	mw.restorePrefs()

	win.SetCloseIntercept(func() {
		mw.savePrefs()
		fyneApp.Quit()
	})

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = uicanvas.NewInkCanvas(mw.store)
	mw.canvas.OnTextEdit(func(id string) { mw.openTextEditor(id) })

	mw.sidePanel = panels.NewSidePanel(mw.store)
	mw.sidePanel.Phases().OnPresent = func(auto bool) { mw.startPresentation(auto) }
	mw.sidePanel.Blocks().OnExport = func(id string) { mw.exportBlock(id) }
	mw.sidePanel.Blocks().ViewportCenter = func() (float64, float64) {
		size := mw.canvas.Size()
		return mw.canvas.WidgetToWorld(fyne.NewPos(size.Width/2, size.Height/2))
	}
	mw.sidePanel.Blocks().CenterOn = func(x, y float64) {
		cam := mw.store.Camera()
		size := mw.canvas.Size()
		mw.store.SetView(
			float64(size.Width)/2/cam.Zoom-x,
			float64(size.Height)/2/cam.Zoom-y,
			cam.Zoom,
		)
	}

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar, // top
		nil,     // bottom
		nil,     // left
		nil,     // right
		mw.canvas,
	)

	mw.split = container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	mw.split.SetOffset(0.22)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		mw.split,                          // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1280, 800))
}

// createToolbar creates the tool and action bar above the canvas.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	toolSelect := widget.NewSelect(
		[]string{"Pen", "Highlighter", "Eraser", "Text"},
		func(name string) {
			switch name {
			case "Pen":
				mw.canvas.SetTool(canvas.ToolPen)
			case "Highlighter":
				mw.canvas.SetTool(canvas.ToolHighlighter)
			case "Eraser":
				mw.canvas.SetTool(canvas.ToolEraser)
			case "Text":
				mw.canvas.SetTool(canvas.ToolText)
			}
			mw.prefs.SetString(prefs.KeyLastTool, name)
		},
	)
	toolSelect.SetSelected("Pen")

	colorSelect := widget.NewSelect(
		colorutil.Names,
		func(name string) {
			if hex, ok := colorutil.Palette[name]; ok {
				mw.canvas.SetColor(hex)
				mw.prefs.SetString(prefs.KeyLastColor, name)
			}
		},
	)
	colorSelect.SetSelected("Ink")

	brushSlider := widget.NewSlider(1, 24)
	brushSlider.Value = 3
	brushSlider.OnChanged = func(v float64) {
		mw.canvas.SetBrushSize(v)
		mw.prefs.SetFloat(prefs.KeyBrushSize, v)
	}

	mw.undoBtn = widget.NewButton("Undo", func() { mw.onUndo() })
	polishBtn := widget.NewButton("Polish", func() { mw.onPolish() })
	mw.captureBtn = widget.NewButton("Capture", func() { mw.onCapture() })

	zoomOutBtn := widget.NewButton("-", func() { mw.canvas.ZoomOut() })
	zoomInBtn := widget.NewButton("+", func() { mw.canvas.ZoomIn() })
	actualBtn := widget.NewButton("1:1", func() { mw.canvas.ActualSize() })

	return container.NewHBox(
		toolSelect,
		colorSelect,
		brushSlider,
		widget.NewSeparator(),
		mw.undoBtn,
		polishBtn,
		mw.captureBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Export PDF...", mw.onExportPDF),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Connection...", mw.onConnectionSettings),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.savePrefs()
			mw.app.Quit()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Polish Shapes", mw.onPolish),
		fyne.NewMenuItem("Polish + Straighten Arrows", mw.onPolishStraighten),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.canvas.ZoomIn() }),
		fyne.NewMenuItem("Zoom Out", func() { mw.canvas.ZoomOut() }),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.ActualSize() }),
	)

	phasesMenu := fyne.NewMenu("Phases",
		fyne.NewMenuItem("Present", func() { mw.startPresentation(false) }),
		fyne.NewMenuItem("Present (Auto-Play)", func() { mw.startPresentation(true) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, editMenu, viewMenu, phasesMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

// setupEventHandlers registers for store events.
func (mw *MainWindow) setupEventHandlers() {
	mw.store.On(canvas.EventContentChanged, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.updateStatus(name)
		}
		mw.undoBtn.Enable()
	})
	mw.store.On(canvas.EventStateLoaded, func(interface{}) {
		mw.SetTitle("Ink Canvas - " + mw.session.Title())
		mw.updateStatus("Canvas loaded")
	})
}

// setupKeys installs the presentation key bindings.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if !mw.presenting {
			return
		}
		switch ev.Name {
		case fyne.KeyRight, fyne.KeySpace:
			mw.player.Next()
		case fyne.KeyLeft:
			mw.player.Prev()
		case fyne.KeyEscape:
			mw.stopPresentation()
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onUndo() {
	if !mw.store.Undo() {
		mw.updateStatus("Nothing to undo")
		return
	}
	mw.updateStatus("Undone")
}

func (mw *MainWindow) onPolish() {
	mw.polish(polish.Options{})
}

func (mw *MainWindow) onPolishStraighten() {
	mw.polish(polish.Options{StraightenArrows: true})
}

func (mw *MainWindow) polish(opts polish.Options) {
	res := polish.Apply(mw.store, opts)
	mw.updateStatus(fmt.Sprintf(
		"Polished: %d shapes, %d arrows, %d labels merged",
		res.ShapesPolished, res.ArrowsStraightened, res.LabelsMerged,
	))
}

// onCapture sends the canvas to the notes server for analysis. The
// request runs off the UI goroutine; the button is disabled while a
// capture is in flight.
func (mw *MainWindow) onCapture() {
	if mw.session.CaptureInFlight() {
		return
	}
	mw.captureBtn.Disable()
	mw.updateStatus("Capturing...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		res, err := mw.session.Capture(ctx)

		mw.captureBtn.Enable()
		if err != nil {
			log.Printf("capture failed: %v", err)
			mw.updateStatus("Capture failed: " + err.Error())
			return
		}
		mw.updateStatus(fmt.Sprintf(
			"Captured: %d notes created, %d updated, %d links",
			len(res.NodesCreated), len(res.NodesUpdated), len(res.LinksCreated),
		))
	}()
}

// exportBlock renders a drawing block and sends it to the notes server.
func (mw *MainWindow) exportBlock(id string) {
	mw.sidePanel.Blocks().SetStatus("Sending...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mw.session.ExportBlock(ctx, id); err != nil {
			log.Printf("block export failed: %v", err)
			mw.sidePanel.Blocks().SetStatus("Send failed: " + err.Error())
			return
		}
		mw.sidePanel.Blocks().SetStatus("Sent")
	}()
}

func (mw *MainWindow) onExportPDF() {
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		snapshot := mw.store.Snapshot()
		if exportErr := export.PDF(&snapshot, mw.session.Title(), path); exportErr != nil {
			dialog.ShowError(exportErr, mw.Window)
			return
		}
		mw.updateStatus("Exported " + path)
	}, mw.Window)
	fileDialog.SetFileName(mw.session.Title() + ".pdf")
	fileDialog.Show()
}

func (mw *MainWindow) onConnectionSettings() {
	current := dialogs.ServerSettings{
		URL:      mw.prefs.String(prefs.KeyServerURL),
		CanvasID: mw.prefs.String(prefs.KeyLastCanvas),
		Title:    mw.session.Title(),
	}
	dialogs.ShowServerSettings(mw.Window, current, func(s dialogs.ServerSettings) {
		mw.prefs.SetString(prefs.KeyServerURL, s.URL)
		mw.prefs.SetString(prefs.KeyLastCanvas, s.CanvasID)
		mw.session.SetTitle(s.Title)
		mw.SetTitle("Ink Canvas - " + s.Title)
		if err := mw.prefs.Save(); err != nil {
			log.Printf("saving preferences: %v", err)
		}
		mw.updateStatus("Settings saved; restart to reconnect")
	})
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("Ink Canvas",
		"Version "+version.Full()+"\n\n"+
			"An infinite canvas for handwritten notes.\n"+
			"Draw, phase, present, and capture into your knowledge base.",
		mw.Window)
}

// startPresentation enters presentation mode and drives the phase
// player at frame rate until it is stopped.
func (mw *MainWindow) startPresentation(auto bool) {
	if mw.presenting {
		return
	}
	if !mw.player.Start(auto) {
		mw.updateStatus("No phases to present")
		return
	}
	mw.presenting = true
	mw.presentEnd = make(chan struct{})
	mw.split.SetOffset(0) // collapse the side panel
	mw.updateStatus("Presenting (Esc to exit)")

	go func() {
		ticker := time.NewTicker(presentFrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-mw.presentEnd:
				return
			case <-ticker.C:
				mw.player.Tick()
			}
		}
	}()
}

func (mw *MainWindow) stopPresentation() {
	if !mw.presenting {
		return
	}
	mw.presenting = false
	close(mw.presentEnd)
	mw.player.Stop()
	mw.split.SetOffset(0.22)
	mw.updateStatus("Ready")
}

// openTextEditor pops a multiline entry over the text block so editing
// uses the toolkit's text handling.
func (mw *MainWindow) openTextEditor(id string) {
	var block *canvas.TextBlock
	s := mw.store.State()
	for i := range s.TextBlocks {
		if s.TextBlocks[i].ID == id {
			block = &s.TextBlocks[i]
			break
		}
	}
	if block == nil {
		return
	}

	editing := true
	mw.store.Apply(canvas.PatchTextBlock{ID: id, Editing: &editing})
	mw.editingBlock = id

	entry := widget.NewMultiLineEntry()
	entry.SetText(block.Text)
	entry.Wrapping = fyne.TextWrapWord

	doneBtn := widget.NewButton("Done", func() { mw.closeTextEditor(entry.Text) })
	box := container.NewBorder(nil, doneBtn, nil, nil, entry)

	pos := mw.canvas.WorldToWidget(block.X, block.Y)
	cam := mw.store.Camera()
	w := float32(block.W * cam.Zoom)
	h := float32(120)

	mw.editorPopup = widget.NewPopUp(box, mw.Canvas())
	mw.editorPopup.Resize(fyne.NewSize(w, h))
	mw.editorPopup.ShowAtPosition(pos)
	mw.Canvas().Focus(entry)
}

func (mw *MainWindow) closeTextEditor(text string) {
	if mw.editingBlock == "" {
		return
	}
	done := false
	mw.store.Apply(canvas.PatchTextBlock{
		ID:      mw.editingBlock,
		Text:    &text,
		Editing: &done,
	})
	mw.editingBlock = ""
	if mw.editorPopup != nil {
		mw.editorPopup.Hide()
		mw.editorPopup = nil
	}
}

// restorePrefs applies the saved tool configuration and window size.
func (mw *MainWindow) restorePrefs() {
	if size := mw.prefs.Float(prefs.KeyBrushSize); size > 0 {
		mw.canvas.SetBrushSize(size)
	}
	if name := mw.prefs.String(prefs.KeyLastColor); name != "" {
		if hex, ok := colorutil.Palette[name]; ok {
			mw.canvas.SetColor(hex)
		}
	}
	w := mw.prefs.Float(prefs.KeyWindowW)
	h := mw.prefs.Float(prefs.KeyWindowH)
	if w > 200 && h > 200 {
		mw.Resize(fyne.NewSize(float32(w), float32(h)))
	}
}

// savePrefs persists the window size and tool configuration.
func (mw *MainWindow) savePrefs() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowW, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowH, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("saving preferences: %v", err)
	}
}
