// Package reconcile keeps the set of native bar windows in step with the
// node store and the display topology.
//
// Every display has up to three window slots (left, center, right). A slot is
// created the first time it has content and destroyed when its content
// becomes empty. Store mutations are coalesced by a debounce timer; display
// and fullscreen changes are handled immediately. All methods must be called
// from the same serialization context that runs the Scheduler's callbacks.
package reconcile

import (
	"cmp"
	"crypto/rand"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/notch"
	"github.com/jmylchreest/notchbar/internal/tree"
)

// DefaultInterval is the default debounce interval, about one frame.
const DefaultInterval = 16 * time.Millisecond

// Config holds reconciler settings.
type Config struct {
	Interval  time.Duration
	Placement Placement
	Logger    *slog.Logger
}

// Stats describes completed reconciliation passes.
type Stats struct {
	Passes     int
	LastPass   time.Time
	LastPassID string
}

// SlotInfo is a snapshot of an active slot.
type SlotInfo struct {
	Key    SlotKey
	Frame  layout.Rect
	Hidden bool
}

type slot struct {
	key     SlotKey
	window  Window
	frame   layout.Rect
	content *layout.Layout
	hidden  bool
}

// Reconciler maps store content onto window slots.
type Reconciler struct {
	nodes     NodeSource
	topology  Topology
	backend   Backend
	engine    *layout.Engine
	scheduler Scheduler

	interval  time.Duration
	placement Placement
	logger    *slog.Logger

	slots      map[SlotKey]*slot
	pending    map[model.DisplayID]struct{}
	timer      Timer
	present    map[model.DisplayID]DisplayInfo
	fullscreen map[model.DisplayID]bool
	stats      Stats
}

// New creates a Reconciler. No windows exist until content is reconciled.
func New(cfg Config, nodes NodeSource, topology Topology, backend Backend, engine *layout.Engine, scheduler Scheduler) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	r := &Reconciler{
		nodes:      nodes,
		topology:   topology,
		backend:    backend,
		engine:     engine,
		scheduler:  scheduler,
		interval:   interval,
		placement:  cfg.Placement,
		logger:     logger,
		slots:      make(map[SlotKey]*slot),
		pending:    make(map[model.DisplayID]struct{}),
		present:    make(map[model.DisplayID]DisplayInfo),
		fullscreen: make(map[model.DisplayID]bool),
	}
	r.snapshotTopology()
	return r
}

// SetInterval changes the debounce interval for subsequent notifications.
func (r *Reconciler) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultInterval
	}
	r.interval = d
}

// SetLayout replaces the layout engine and window placement. Callers
// should follow with NotifyChanged for the displays to relayout.
func (r *Reconciler) SetLayout(engine *layout.Engine, placement Placement) {
	r.engine = engine
	r.placement = placement
}

// NotifyChanged marks displays as needing reconciliation and (re)arms the
// debounce timer. Every call pushes the pass back by a full interval.
func (r *Reconciler) NotifyChanged(displays ...model.DisplayID) {
	for _, d := range displays {
		r.pending[d] = struct{}{}
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = r.scheduler.AfterFunc(r.interval, r.Flush)
}

// Flush reconciles every pending display now.
func (r *Reconciler) Flush() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if len(r.pending) == 0 {
		return
	}

	ids := slices.Sorted(maps.Keys(r.pending))
	r.pending = make(map[model.DisplayID]struct{})

	r.snapshotTopology()
	pass := r.newPassID()
	r.logger.Debug("reconcile pass", "pass", pass, "displays", ids)
	for _, id := range ids {
		r.reconcileDisplay(pass, id)
	}

	r.stats.Passes++
	r.stats.LastPass = r.scheduler.Now()
	r.stats.LastPassID = pass
}

// DisplaysChanged handles attach, detach and geometry changes. Slots of
// detached displays are destroyed while their nodes stay in the store.
// Attached displays with content but no window, and displays whose
// geometry or notch changed, are reconciled immediately.
func (r *Reconciler) DisplaysChanged() {
	previous := r.present
	r.snapshotTopology()

	for _, key := range r.sortedKeys() {
		if _, ok := r.present[key.Display]; !ok {
			r.logger.Info("display detached, closing window", "slot", key)
			r.destroy(key)
		}
	}
	for id := range r.fullscreen {
		if _, ok := r.present[id]; !ok {
			delete(r.fullscreen, id)
		}
	}

	pass := r.newPassID()
	for _, id := range slices.Sorted(maps.Keys(r.present)) {
		info := r.present[id]
		old, known := previous[id]
		changed := known && !sameDisplay(old, info)
		if changed || (!r.hasActiveSlot(id) && len(r.nodes.Nodes(id)) > 0) {
			r.logger.Debug("reconciling display after topology change",
				"pass", pass, "display", id, "name", info.Name, "changed", changed)
			delete(r.pending, id)
			r.reconcileDisplay(pass, id)
		}
	}
}

// SyncFullscreen hides or shows the slots of every display whose fullscreen
// state changed. Windows are neither relaid out nor destroyed.
func (r *Reconciler) SyncFullscreen() {
	for _, id := range slices.Sorted(maps.Keys(r.present)) {
		fs := r.topology.Fullscreen(id)
		if fs == r.fullscreen[id] {
			continue
		}
		if fs {
			r.fullscreen[id] = true
		} else {
			delete(r.fullscreen, id)
		}

		r.logger.Debug("fullscreen changed", "display", id, "fullscreen", fs)
		for _, key := range r.sortedKeys() {
			if key.Display != id {
				continue
			}
			s := r.slots[key]
			s.window.SetHidden(fs)
			s.hidden = fs
		}
	}
}

// Close destroys every window and cancels pending work.
func (r *Reconciler) Close() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.pending = make(map[model.DisplayID]struct{})
	for _, key := range r.sortedKeys() {
		r.destroy(key)
	}
}

// Slots returns the active slots ordered by display and alignment.
func (r *Reconciler) Slots() []SlotInfo {
	out := make([]SlotInfo, 0, len(r.slots))
	for _, key := range r.sortedKeys() {
		s := r.slots[key]
		out = append(out, SlotInfo{Key: key, Frame: s.frame, Hidden: s.hidden})
	}
	return out
}

// Layout returns the last layout applied to a slot.
func (r *Reconciler) Layout(key SlotKey) (*layout.Layout, bool) {
	s, ok := r.slots[key]
	if !ok {
		return nil, false
	}
	return s.content, true
}

// Stats returns pass statistics.
func (r *Reconciler) Stats() Stats {
	return r.stats
}

// Pending reports whether a debounced pass is scheduled.
func (r *Reconciler) Pending() bool {
	return r.timer != nil
}

func (r *Reconciler) reconcileDisplay(pass string, id model.DisplayID) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconcile panic recovered", "pass", pass, "display", id, "error", err)
		}
	}()

	info, ok := r.present[id]
	if !ok {
		r.logger.Debug("display not attached, dropping work", "pass", pass, "display", id)
		r.destroyDisplay(id)
		return
	}

	forest := tree.Resolve(r.nodes.Nodes(id))
	buckets := notch.Split(forest, info.Notch != nil)

	for _, a := range notch.Alignments() {
		key := SlotKey{Display: id, Alignment: a}
		roots := buckets[a]
		s, active := r.slots[key]

		if len(roots) == 0 {
			if active {
				r.logger.Debug("slot empty, closing window", "pass", pass, "slot", key)
				r.destroy(key)
			}
			continue
		}

		content := r.engine.LayoutWindow(forest, roots)
		frame := r.placement.Place(info, a, content.Size)

		if !active {
			win, err := r.backend.CreateWindow(key, info)
			if err != nil {
				r.logger.Warn("failed to create window", "pass", pass, "slot", key, "error", err)
				continue
			}
			s = &slot{key: key, window: win}
			r.slots[key] = s
			if r.fullscreen[id] {
				win.SetHidden(true)
				s.hidden = true
			}
			win.Update(info, frame, content, false)
			r.logger.Debug("created window", "pass", pass, "slot", key,
				"x", frame.X, "y", frame.Y, "width", frame.Width, "height", frame.Height)
		} else {
			s.window.Update(info, frame, content, true)
		}
		s.frame = frame
		s.content = content
	}
}

func (r *Reconciler) destroy(key SlotKey) {
	s, ok := r.slots[key]
	if !ok {
		return
	}
	delete(r.slots, key)
	s.window.Destroy()
}

func (r *Reconciler) destroyDisplay(id model.DisplayID) {
	for _, key := range r.sortedKeys() {
		if key.Display == id {
			r.destroy(key)
		}
	}
}

func (r *Reconciler) hasActiveSlot(id model.DisplayID) bool {
	for key := range r.slots {
		if key.Display == id {
			return true
		}
	}
	return false
}

func (r *Reconciler) snapshotTopology() {
	present := make(map[model.DisplayID]DisplayInfo)
	for _, d := range r.topology.Displays() {
		present[d.ID] = d
	}
	r.present = present
}

func (r *Reconciler) sortedKeys() []SlotKey {
	keys := slices.Collect(maps.Keys(r.slots))
	slices.SortFunc(keys, func(a, b SlotKey) int {
		if c := cmp.Compare(a.Display, b.Display); c != 0 {
			return c
		}
		return cmp.Compare(alignmentOrder(a.Alignment), alignmentOrder(b.Alignment))
	})
	return keys
}

func (r *Reconciler) newPassID() string {
	id, err := ulid.New(ulid.Timestamp(r.scheduler.Now()), rand.Reader)
	if err != nil {
		return ""
	}
	return id.String()
}

func alignmentOrder(a notch.Alignment) int {
	return slices.Index(notch.Alignments(), a)
}

func sameDisplay(a, b DisplayInfo) bool {
	if a.Width != b.Width || a.Height != b.Height || a.Name != b.Name {
		return false
	}
	if (a.Notch == nil) != (b.Notch == nil) {
		return false
	}
	return a.Notch == nil || *a.Notch == *b.Notch
}
