package display

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// windowCSS makes bar windows fully transparent so only cairo output shows.
const windowCSS = `
window.notchbar,
window.notchbar > * {
	background: transparent;
	box-shadow: none;
	border: none;
}
`

// InstallCSS registers the bar window stylesheet on the default display.
func InstallCSS() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}
	provider := gtk.NewCSSProvider()
	provider.LoadFromString(windowCSS)
	gtk.StyleContextAddProviderForDisplay(display, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}
