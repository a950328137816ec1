// Package reconciletest provides a virtual clock, a scripted display
// topology and a recording window backend for exercising the reconciler
// without a windowing system.
package reconciletest

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/reconcile"
)

// Scheduler is a manually advanced clock. Callbacks run synchronously
// inside Advance.
type Scheduler struct {
	now    time.Time
	timers []*Timer
}

// NewScheduler returns a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now implements reconcile.Scheduler.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// AfterFunc implements reconcile.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) reconcile.Timer {
	t := &Timer{when: s.now.Add(d), f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in deadline order.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.now.Add(d)
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.when
		next.done = true
		next.f()
	}
	s.now = target
	s.timers = slices.DeleteFunc(s.timers, func(t *Timer) bool { return t.done })
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (s *Scheduler) nextDue(target time.Time) *Timer {
	var next *Timer
	for _, t := range s.timers {
		if t.done || t.when.After(target) {
			continue
		}
		if next == nil || t.when.Before(next.when) {
			next = t
		}
	}
	return next
}

// Timer is a scheduled callback of Scheduler.
type Timer struct {
	when time.Time
	f    func()
	done bool
}

// Stop implements reconcile.Timer.
func (t *Timer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Topology is a scripted display directory.
type Topology struct {
	mu         sync.Mutex
	displays   []reconcile.DisplayInfo
	fullscreen map[model.DisplayID]bool
}

// NewTopology returns a topology with the given displays attached.
func NewTopology(displays ...reconcile.DisplayInfo) *Topology {
	return &Topology{
		displays:   displays,
		fullscreen: make(map[model.DisplayID]bool),
	}
}

// Displays implements reconcile.Topology.
func (t *Topology) Displays() []reconcile.DisplayInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.displays)
}

// Fullscreen implements reconcile.Topology.
func (t *Topology) Fullscreen(id model.DisplayID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fullscreen[id]
}

// Attach adds or replaces a display.
func (t *Topology) Attach(d reconcile.DisplayInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.displays = slices.DeleteFunc(t.displays, func(x reconcile.DisplayInfo) bool { return x.ID == d.ID })
	t.displays = append(t.displays, d)
}

// Detach removes a display.
func (t *Topology) Detach(id model.DisplayID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.displays = slices.DeleteFunc(t.displays, func(x reconcile.DisplayInfo) bool { return x.ID == id })
}

// SetFullscreen sets the fullscreen state of a display.
func (t *Topology) SetFullscreen(id model.DisplayID, fullscreen bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fullscreen[id] = fullscreen
}

// Display returns a display of the given size without a notch.
func Display(id model.DisplayID, width, height float64) reconcile.DisplayInfo {
	return reconcile.DisplayInfo{ID: id, Name: "display", Width: width, Height: height, Main: id == 1}
}

// NotchedDisplay returns a display with a centered notch of the given size.
func NotchedDisplay(id model.DisplayID, width, height, notchWidth, notchHeight float64) reconcile.DisplayInfo {
	d := Display(id, width, height)
	d.Notch = &layout.Rect{
		X:      (width - notchWidth) / 2,
		Y:      height - notchHeight,
		Width:  notchWidth,
		Height: notchHeight,
	}
	return d
}

// ErrCreateFailed is returned by Backend for keys listed in FailFor.
var ErrCreateFailed = errors.New("window creation failed")

// Backend records window operations.
type Backend struct {
	// FailFor makes CreateWindow fail for the listed slots.
	FailFor map[reconcile.SlotKey]bool

	Windows   map[reconcile.SlotKey]*Window
	Created   int
	Destroyed int
}

// NewBackend returns an empty recording backend.
func NewBackend() *Backend {
	return &Backend{
		FailFor: make(map[reconcile.SlotKey]bool),
		Windows: make(map[reconcile.SlotKey]*Window),
	}
}

// CreateWindow implements reconcile.Backend.
func (b *Backend) CreateWindow(key reconcile.SlotKey, _ reconcile.DisplayInfo) (reconcile.Window, error) {
	if b.FailFor[key] {
		return nil, ErrCreateFailed
	}
	w := &Window{Key: key, backend: b}
	b.Windows[key] = w
	b.Created++
	return w, nil
}

var (
	_ reconcile.Backend = (*Backend)(nil)
	_ reconcile.Window  = (*Window)(nil)
)

// Window records the state of one fake window.
type Window struct {
	Key     reconcile.SlotKey
	Display reconcile.DisplayInfo
	Frame   layout.Rect
	Content *layout.Layout
	Hidden  bool
	// Updates records the animate flag of every Update call.
	Updates   []bool
	Destroyed bool

	backend *Backend
}

// Update implements reconcile.Window.
func (w *Window) Update(d reconcile.DisplayInfo, frame layout.Rect, content *layout.Layout, animate bool) {
	w.Display = d
	w.Frame = frame
	w.Content = content
	w.Updates = append(w.Updates, animate)
}

// SetHidden implements reconcile.Window.
func (w *Window) SetHidden(hidden bool) {
	w.Hidden = hidden
}

// Destroy implements reconcile.Window.
func (w *Window) Destroy() {
	w.Destroyed = true
	w.backend.Destroyed++
	if w.backend.Windows[w.Key] == w {
		delete(w.backend.Windows, w.Key)
	}
}
