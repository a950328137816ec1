package reconcile

import (
	"fmt"
	"time"

	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/notch"
)

// DisplayInfo describes an attached display. Geometry is in display-local
// points with a y-up axis.
type DisplayInfo struct {
	ID     model.DisplayID
	Name   string
	Main   bool
	Width  float64
	Height float64
	// Notch is the notch region, or nil when the display has none.
	Notch *layout.Rect
}

// Topology reports the attached displays and their fullscreen state.
type Topology interface {
	Displays() []DisplayInfo
	Fullscreen(id model.DisplayID) bool
}

// NodeSource supplies the nodes of a display.
type NodeSource interface {
	Nodes(display model.DisplayID) []model.Node
}

// SlotKey identifies a window slot.
type SlotKey struct {
	Display   model.DisplayID
	Alignment notch.Alignment
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%d/%s", k.Display, k.Alignment)
}

// Window is a native overlay window owned by a slot.
type Window interface {
	// Update moves the window to frame on display d and replaces its
	// content. d is the display's current geometry. The first update after
	// creation is never animated.
	Update(d DisplayInfo, frame layout.Rect, content *layout.Layout, animate bool)
	// SetHidden hides or shows the window without destroying it.
	SetHidden(hidden bool)
	// Destroy releases the window.
	Destroy()
}

// Backend creates native windows.
type Backend interface {
	CreateWindow(key SlotKey, display DisplayInfo) (Window, error)
}

// Timer is a pending scheduled call.
type Timer interface {
	// Stop cancels the call. It reports whether the call was still pending.
	Stop() bool
}

// Scheduler runs functions after a delay on the reconciler's serialization
// context and provides the current time.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}
