// Package display implements the GTK4 layer-shell side of notchbard: the
// display directory backed by GDK monitors, one transparent layer-shell
// window per slot, a cairo/pango renderer for layouts, and the GLib
// scheduler the reconciler runs on.
package display
