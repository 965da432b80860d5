// Package ui provides the BlockPack desktop application.
//
// This file defines a compact Fyne theme for a dense layout.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// BlockPackTheme wraps the default Fyne theme with compact sizing overrides
// and a fixed light/dark variant.
type BlockPackTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	system  bool
}

// NewBlockPackTheme creates a theme for a config value: "light", "dark",
// or anything else to follow the system.
func NewBlockPackTheme(name string) *BlockPackTheme {
	t := &BlockPackTheme{base: theme.DefaultTheme()}
	t.SetMode(name)
	return t
}

// SetMode switches between "light", "dark" and "system".
func (t *BlockPackTheme) SetMode(name string) {
	switch name {
	case "light":
		t.variant, t.system = theme.VariantLight, false
	case "dark":
		t.variant, t.system = theme.VariantDark, false
	default:
		t.system = true
	}
}

// Color delegates to the base theme, forcing the chosen variant.
func (t *BlockPackTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if !t.system {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

func (t *BlockPackTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *BlockPackTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *BlockPackTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
