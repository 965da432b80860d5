package ui

import (
	"fyne.io/fyne/v2"

	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
)

// newIconButtonWithTooltip creates an icon-only toolbar button with a hover
// tooltip.
func newIconButtonWithTooltip(icon fyne.Resource, tooltip string, tapped func()) *ttwidget.Button {
	btn := ttwidget.NewButtonWithIcon("", icon, tapped)
	btn.SetToolTip(tooltip)
	return btn
}

// withTooltipLayer wraps window content so tooltips can be shown above it.
func withTooltipLayer(content fyne.CanvasObject, w fyne.Window) fyne.CanvasObject {
	return fynetooltip.AddWindowToolTipLayer(content, w.Canvas())
}
