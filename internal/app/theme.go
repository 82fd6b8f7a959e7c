package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// InkTheme tunes the default theme for long drawing sessions: a calm
// indigo accent and a soft selection tint that does not fight the ink.
type InkTheme struct{}

var _ fyne.Theme = (*InkTheme)(nil)

func (t *InkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x3F, G: 0x51, B: 0xB5, A: 0xFF}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x3F, G: 0x51, B: 0xB5, A: 0x40}
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *InkTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *InkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *InkTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 14
	default:
		return theme.DefaultTheme().Size(name)
	}
}
