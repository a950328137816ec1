package reconcile_test

import (
	"io"
	"log/slog"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/notch"
	"github.com/jmylchreest/notchbar/internal/reconcile"
	"github.com/jmylchreest/notchbar/internal/reconcile/reconciletest"
	"github.com/jmylchreest/notchbar/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedMeasurer struct{}

func (fixedMeasurer) Measure(text string, _ layout.FontSpec) float64 {
	return float64(utf8.RuneCountInString(text)) * 7
}

func (fixedMeasurer) LineHeight(layout.FontSpec) float64 {
	return 16
}

type fixture struct {
	store   *store.Store
	topo    *reconciletest.Topology
	backend *reconciletest.Backend
	sched   *reconciletest.Scheduler
	rec     *reconcile.Reconciler
}

func newFixture(t *testing.T, displays ...reconcile.DisplayInfo) *fixture {
	t.Helper()
	f := &fixture{
		store:   store.NewStore(),
		topo:    reconciletest.NewTopology(displays...),
		backend: reconciletest.NewBackend(),
		sched:   reconciletest.NewScheduler(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	f.rec = reconcile.New(reconcile.Config{
		Interval: 16 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, f.store, f.topo, f.backend, layout.NewEngine(fixedMeasurer{}), f.sched)
	t.Cleanup(func() { _ = f.store.Close() })
	return f
}

// apply mutates the store and notifies the reconciler the way the daemon does.
func (f *fixture) apply(t *testing.T, ev store.Event) {
	t.Helper()
	affected, err := f.store.Apply(ev)
	require.NoError(t, err)
	f.rec.NotifyChanged(affected...)
}

func (f *fixture) settle() {
	f.sched.Advance(100 * time.Millisecond)
}

func label(name, text string, display model.DisplayID) model.Node {
	n := model.NewNode(name, display)
	n.Label = text
	return n
}

func key(d model.DisplayID, a notch.Alignment) reconcile.SlotKey {
	return reconcile.SlotKey{Display: d, Alignment: a}
}

func TestDebounce_CoalescesBurst(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))

	for i := range 5 {
		f.apply(t, store.Added(label(string(rune('a'+i)), "x", 1)))
		f.sched.Advance(time.Millisecond)
	}
	assert.Equal(t, 0, f.rec.Stats().Passes)
	assert.True(t, f.rec.Pending())

	f.sched.Advance(16 * time.Millisecond)
	assert.Equal(t, 1, f.rec.Stats().Passes)
	assert.Equal(t, 1, f.backend.Created)
	assert.False(t, f.rec.Pending())

	w := f.backend.Windows[key(1, notch.Center)]
	require.NotNil(t, w)
	assert.Len(t, w.Content.Frames, 5)
}

func TestDebounce_EachMutationRearms(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))

	f.apply(t, store.Added(label("a", "x", 1)))
	f.sched.Advance(10 * time.Millisecond)
	f.apply(t, store.Updated(label("a", "y", 1)))
	f.sched.Advance(10 * time.Millisecond)
	assert.Equal(t, 0, f.rec.Stats().Passes)

	f.sched.Advance(6 * time.Millisecond)
	assert.Equal(t, 1, f.rec.Stats().Passes)
	assert.NotEmpty(t, f.rec.Stats().LastPassID)
	assert.Equal(t, f.sched.Now(), f.rec.Stats().LastPass)
}

func TestLazyCreationAndTeardown(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))

	f.rec.NotifyChanged(1)
	f.settle()
	assert.Equal(t, 0, f.backend.Created, "no window without content")

	f.apply(t, store.Added(label("clock", "12:00", 1)))
	f.settle()
	w := f.backend.Windows[key(1, notch.Center)]
	require.NotNil(t, w)
	assert.Equal(t, []bool{false}, w.Updates, "first positioning is not animated")
	assert.Equal(t, layout.Rect{X: 482.5, Y: 584, Width: 35, Height: 16}, w.Frame)

	f.apply(t, store.Updated(label("clock", "12:01:30", 1)))
	f.settle()
	assert.Equal(t, []bool{false, true}, w.Updates)
	assert.Equal(t, 56.0, w.Frame.Width)
	assert.Equal(t, 1, f.backend.Created)

	f.apply(t, store.Removed(1, "clock"))
	f.settle()
	assert.True(t, w.Destroyed)
	assert.Empty(t, f.rec.Slots())
}

func TestNotchSplitsIntoTwoWindows(t *testing.T) {
	f := newFixture(t, reconciletest.NotchedDisplay(1, 1000, 600, 200, 30))

	left := label("apps", "abc", 1)
	left.Style.NotchAlign = model.NotchLeft
	f.apply(t, store.Added(left))
	f.apply(t, store.Added(label("battery", "99%", 1)))
	f.settle()

	require.Len(t, f.rec.Slots(), 2)
	l := f.backend.Windows[key(1, notch.Left)]
	r := f.backend.Windows[key(1, notch.Right)]
	require.NotNil(t, l)
	require.NotNil(t, r)
	assert.Nil(t, f.backend.Windows[key(1, notch.Center)])

	assert.Equal(t, 400.0, l.Frame.Right(), "left window ends at the notch")
	assert.Equal(t, 600.0, r.Frame.X, "right window starts after the notch")
	assert.Equal(t, 600.0, l.Frame.Top())

	_, ok := l.Content.Frame("apps")
	assert.True(t, ok)
	_, ok = r.Content.Frame("battery")
	assert.True(t, ok)
}

func TestNotchAppearingTearsDownCenter(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))
	f.apply(t, store.Added(label("clock", "12:00", 1)))
	f.settle()
	center := f.backend.Windows[key(1, notch.Center)]
	require.NotNil(t, center)

	f.topo.Attach(reconciletest.NotchedDisplay(1, 1000, 600, 200, 30))
	f.rec.DisplaysChanged()

	assert.True(t, center.Destroyed)
	assert.NotNil(t, f.backend.Windows[key(1, notch.Right)])
	require.Len(t, f.rec.Slots(), 1)
	assert.Equal(t, key(1, notch.Right), f.rec.Slots()[0].Key)
}

func TestDisconnectAndReconnectRestoresGeometry(t *testing.T) {
	display := reconciletest.Display(2, 1920, 1080)
	f := newFixture(t, reconciletest.Display(1, 1000, 600), display)

	f.apply(t, store.Added(label("cpu", "12%", 2)))
	f.settle()
	before := f.backend.Windows[key(2, notch.Center)]
	require.NotNil(t, before)
	frame := before.Frame

	f.topo.Detach(2)
	f.rec.DisplaysChanged()
	assert.True(t, before.Destroyed)
	assert.Empty(t, f.rec.Slots())
	assert.Equal(t, 1, f.store.Count(2), "node data survives detach")

	f.topo.Attach(display)
	f.rec.DisplaysChanged()
	after := f.backend.Windows[key(2, notch.Center)]
	require.NotNil(t, after)
	assert.NotSame(t, before, after)
	assert.Equal(t, frame, after.Frame)
	assert.Equal(t, []bool{false}, after.Updates)
}

func TestFullscreenHidesWithoutRelayout(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))
	f.apply(t, store.Added(label("clock", "12:00", 1)))
	f.settle()
	w := f.backend.Windows[key(1, notch.Center)]
	require.NotNil(t, w)
	passes := f.rec.Stats().Passes

	f.topo.SetFullscreen(1, true)
	f.rec.SyncFullscreen()
	assert.True(t, w.Hidden)
	assert.False(t, w.Destroyed)
	assert.Len(t, w.Updates, 1)
	assert.Equal(t, passes, f.rec.Stats().Passes)
	assert.True(t, f.rec.Slots()[0].Hidden)

	f.topo.SetFullscreen(1, false)
	f.rec.SyncFullscreen()
	assert.False(t, w.Hidden)
	assert.Len(t, w.Updates, 1)
	assert.Equal(t, 1, f.backend.Created)
}

func TestNewSlotOnFullscreenDisplayStartsHidden(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))
	f.topo.SetFullscreen(1, true)
	f.rec.SyncFullscreen()

	f.apply(t, store.Added(label("clock", "12:00", 1)))
	f.settle()
	w := f.backend.Windows[key(1, notch.Center)]
	require.NotNil(t, w)
	assert.True(t, w.Hidden)
}

func TestCrossDisplayMoveReconcilesBothInOnePass(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600), reconciletest.Display(2, 1000, 600))
	f.apply(t, store.Added(label("clock", "12:00", 1)))
	f.settle()
	old := f.backend.Windows[key(1, notch.Center)]
	require.NotNil(t, old)
	passes := f.rec.Stats().Passes

	f.apply(t, store.Moved(1, label("clock", "12:00", 2)))
	f.settle()

	assert.Equal(t, passes+1, f.rec.Stats().Passes)
	assert.True(t, old.Destroyed)
	assert.NotNil(t, f.backend.Windows[key(2, notch.Center)])
}

func TestDisplayVanishingBeforeFlushDropsWork(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))
	f.apply(t, store.Added(label("clock", "12:00", 1)))
	f.topo.Detach(1)

	f.settle()
	assert.Equal(t, 0, f.backend.Created)
	assert.Equal(t, 1, f.rec.Stats().Passes)
	assert.Equal(t, 1, f.store.Count(1))
}

func TestCreateFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, reconciletest.NotchedDisplay(1, 1000, 600, 200, 30))
	f.backend.FailFor[key(1, notch.Right)] = true

	left := label("apps", "abc", 1)
	left.Style.NotchAlign = model.NotchLeft
	f.apply(t, store.Added(left))
	f.apply(t, store.Added(label("battery", "99%", 1)))
	f.settle()

	assert.NotNil(t, f.backend.Windows[key(1, notch.Left)])
	assert.Nil(t, f.backend.Windows[key(1, notch.Right)])

	delete(f.backend.FailFor, key(1, notch.Right))
	f.rec.NotifyChanged(1)
	f.settle()
	assert.NotNil(t, f.backend.Windows[key(1, notch.Right)])
}

func TestOrphansStayInvisible(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))
	orphan := label("lost", "x", 1)
	orphan.Parent = "missing"
	f.apply(t, store.Added(orphan))
	f.settle()
	assert.Equal(t, 0, f.backend.Created)

	parent := model.NewNode("missing", 1)
	parent.Kind = model.KindRow
	f.apply(t, store.Added(parent))
	f.settle()
	w := f.backend.Windows[key(1, notch.Center)]
	require.NotNil(t, w)
	_, ok := w.Content.Frame("lost")
	assert.True(t, ok)
}

func TestClose(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1000, 600))
	f.apply(t, store.Added(label("clock", "12:00", 1)))
	f.settle()
	f.apply(t, store.Updated(label("clock", "12:01", 1)))

	f.rec.Close()
	assert.Empty(t, f.rec.Slots())
	assert.Equal(t, 1, f.backend.Destroyed)
	assert.Equal(t, 0, f.sched.Pending())
}

func TestPlacement(t *testing.T) {
	p := reconcile.Placement{OffsetTop: 4}
	notched := reconciletest.NotchedDisplay(1, 1000, 600, 200, 30)
	plain := reconciletest.Display(1, 1000, 600)
	size := layout.Size{Width: 100, Height: 20}

	assert.Equal(t, layout.Rect{X: 450, Y: 576, Width: 100, Height: 20}, p.Place(plain, notch.Center, size))
	assert.Equal(t, layout.Rect{X: 300, Y: 576, Width: 100, Height: 20}, p.Place(notched, notch.Left, size))
	assert.Equal(t, layout.Rect{X: 600, Y: 576, Width: 100, Height: 20}, p.Place(notched, notch.Right, size))

	wide := layout.Size{Width: 2000, Height: 20}
	assert.Equal(t, 0.0, p.Place(plain, notch.Center, wide).X)
	assert.Equal(t, 0.0, p.Place(notched, notch.Left, wide).X)
}

func TestTopMargin(t *testing.T) {
	p := reconcile.Placement{OffsetTop: 4}
	size := layout.Size{Width: 100, Height: 20}

	for _, height := range []float64{600, 1080, 1440} {
		d := reconciletest.Display(1, 1920, height)
		assert.Equal(t, 4.0, reconcile.TopMargin(d, p.Place(d, notch.Center, size)), "height %v", height)
	}
}

func TestResolutionChangeUpdatesWindowDisplay(t *testing.T) {
	f := newFixture(t, reconciletest.Display(1, 1920, 1080))

	f.apply(t, store.Added(label("clock", "12:00", 1)))
	f.settle()
	w := f.backend.Windows[key(1, notch.Center)]
	require.NotNil(t, w)
	assert.Equal(t, 1080.0, w.Display.Height)
	assert.Equal(t, 0.0, reconcile.TopMargin(w.Display, w.Frame))

	f.topo.Attach(reconciletest.Display(1, 2560, 1440))
	f.rec.DisplaysChanged()

	assert.Same(t, w, f.backend.Windows[key(1, notch.Center)], "resize updates the window in place")
	assert.Equal(t, []bool{false, true}, w.Updates)
	assert.Equal(t, 1440.0, w.Display.Height)
	assert.Equal(t, 1424.0, w.Frame.Y)
	assert.Equal(t, 0.0, reconcile.TopMargin(w.Display, w.Frame))
}
