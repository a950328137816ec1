package display

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/notchbar/internal/reconcile"
)

// Invoke runs fn on the GTK main loop and waits for it to return. Called
// from the main loop, it runs fn directly.
func Invoke(fn func()) {
	if glib.MainContextDefault().IsOwner() {
		fn()
		return
	}
	done := make(chan struct{})
	glib.IdleAdd(func() {
		defer close(done)
		fn()
	})
	<-done
}

// Scheduler runs callbacks as GLib timeout sources on the main loop.
type Scheduler struct{}

// Now implements reconcile.Scheduler.
func (Scheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc implements reconcile.Scheduler.
func (Scheduler) AfterFunc(d time.Duration, f func()) reconcile.Timer {
	t := &timer{}
	ms := max(d.Milliseconds(), 0)
	t.handle = glib.TimeoutAdd(uint(ms), func() bool {
		if t.done {
			return false
		}
		t.done = true
		f()
		return false
	})
	return t
}

// timer is a pending GLib timeout. All access happens on the main loop.
type timer struct {
	handle glib.SourceHandle
	done   bool
}

// Stop removes the timeout source if it has not fired yet.
func (t *timer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	glib.SourceRemove(t.handle)
	return true
}
