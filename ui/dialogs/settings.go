// Package dialogs provides modal dialogs for the main window.
package dialogs

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ServerSettings holds the connection settings edited by the dialog.
type ServerSettings struct {
	URL      string
	CanvasID string
	Title    string
}

// ShowServerSettings opens the connection settings form. onSave is only
// called when the user confirms.
func ShowServerSettings(parent fyne.Window, current ServerSettings, onSave func(ServerSettings)) {
	urlEntry := widget.NewEntry()
	urlEntry.SetText(current.URL)
	urlEntry.SetPlaceHolder("http://localhost:3000")

	idEntry := widget.NewEntry()
	idEntry.SetText(current.CanvasID)

	titleEntry := widget.NewEntry()
	titleEntry.SetText(current.Title)

	items := []*widget.FormItem{
		widget.NewFormItem("Server URL", urlEntry),
		widget.NewFormItem("Canvas ID", idEntry),
		widget.NewFormItem("Title", titleEntry),
	}

	dialog.ShowForm("Connection", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		onSave(ServerSettings{
			URL:      urlEntry.Text,
			CanvasID: idEntry.Text,
			Title:    titleEntry.Text,
		})
	}, parent)
}
