// Package colorutil provides the shared brush palette for the ink canvas
// application.
package colorutil

// Palette maps the brush color names shown in the UI to their serialized
// hex values. Stroke colors are stored as hex so saved canvases render
// the same everywhere.
var Palette = map[string]string{
	"Ink":    "#1a1a2e",
	"Blue":   "#3949ab",
	"Red":    "#e53935",
	"Green":  "#2e7d32",
	"Orange": "#fb8c00",
}

// Names lists the palette in display order.
var Names = []string{"Ink", "Blue", "Red", "Green", "Orange"}

// DefaultColor is the stroke color for a fresh launch.
const DefaultColor = "#1a1a2e"
