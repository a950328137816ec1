package display

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/notchbar/internal/config"
	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/reconcile"
)

// MonitorInfo is the part of a GDK monitor the directory needs.
type MonitorInfo struct {
	Connector string
	Width     float64
	Height    float64
}

// Topology is the display directory. Display ids are assigned per connector
// on first sight and stay stable across disconnects. The first monitor GDK
// reports is the main display.
type Topology struct {
	mu     sync.RWMutex
	logger *slog.Logger

	ids        map[string]model.DisplayID
	next       model.DisplayID
	displays   []reconcile.DisplayInfo
	monitors   map[model.DisplayID]*gdk.Monitor
	notches    []config.NotchConfig
	fullscreen map[model.DisplayID]bool
}

// NewTopology creates an empty directory using the notches in cfg.
func NewTopology(cfg *config.DaemonConfig, logger *slog.Logger) *Topology {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Topology{
		logger:     logger,
		ids:        make(map[string]model.DisplayID),
		next:       1,
		monitors:   make(map[model.DisplayID]*gdk.Monitor),
		fullscreen: make(map[model.DisplayID]bool),
	}
	if cfg != nil {
		t.notches = slices.Clone(cfg.Notches)
	}
	return t
}

// Displays implements reconcile.Topology.
func (t *Topology) Displays() []reconcile.DisplayInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.displays)
}

// Display returns an attached display.
func (t *Topology) Display(id model.DisplayID) (reconcile.DisplayInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, d := range t.displays {
		if d.ID == id {
			return d, true
		}
	}
	return reconcile.DisplayInfo{}, false
}

// Fullscreen implements reconcile.Topology.
func (t *Topology) Fullscreen(id model.DisplayID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fullscreen[id]
}

// SetFullscreen records whether a display shows a fullscreen window.
func (t *Topology) SetFullscreen(id model.DisplayID, fullscreen bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fullscreen {
		t.fullscreen[id] = true
	} else {
		delete(t.fullscreen, id)
	}
}

// Configure replaces the configured notches and recomputes display bounds.
func (t *Topology) Configure(cfg *config.DaemonConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notches = slices.Clone(cfg.Notches)
	for i := range t.displays {
		t.displays[i].Notch = t.notchFor(t.displays[i].Name, t.displays[i].Width, t.displays[i].Height)
	}
}

// Monitor returns the GDK monitor backing a display.
func (t *Topology) Monitor(id model.DisplayID) (*gdk.Monitor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.monitors[id]
	return m, ok
}

// Scan enumerates the monitors of the default GDK display.
func (t *Topology) Scan() error {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return fmt.Errorf("no GDK display available")
	}
	list := display.Monitors()
	if list == nil {
		return fmt.Errorf("no monitor list available")
	}

	infos := make([]MonitorInfo, 0, list.NItems())
	monitors := make([]*gdk.Monitor, 0, list.NItems())
	for i := range list.NItems() {
		m := wrapMonitor(list.Item(i))
		if m == nil {
			continue
		}
		geom := m.Geometry()
		connector := m.Connector()
		if connector == "" {
			connector = fmt.Sprintf("monitor-%d", i)
		}
		infos = append(infos, MonitorInfo{
			Connector: connector,
			Width:     float64(geom.Width()),
			Height:    float64(geom.Height()),
		})
		monitors = append(monitors, m)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.update(infos)
	t.monitors = make(map[model.DisplayID]*gdk.Monitor, len(monitors))
	for i, d := range t.displays {
		t.monitors[d.ID] = monitors[i]
	}
	t.logger.Debug("scanned monitors", "count", len(t.displays))
	return nil
}

// Watch rescans on monitor hot-plug and then calls onChange. Both run on
// the main loop.
func (t *Topology) Watch(onChange func()) {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}
	display.Monitors().ConnectItemsChanged(func(position, removed, added uint) {
		t.logger.Info("monitors changed", "removed", removed, "added", added)
		if err := t.Scan(); err != nil {
			t.logger.Warn("failed to rescan monitors", "error", err)
			return
		}
		onChange()
	})
}

// update replaces the attached displays. Must be called with the lock held.
func (t *Topology) update(infos []MonitorInfo) {
	displays := make([]reconcile.DisplayInfo, 0, len(infos))
	for i, info := range infos {
		id, ok := t.ids[info.Connector]
		if !ok {
			id = t.next
			t.next++
			t.ids[info.Connector] = id
		}
		displays = append(displays, reconcile.DisplayInfo{
			ID:     id,
			Name:   info.Connector,
			Main:   i == 0,
			Width:  info.Width,
			Height: info.Height,
			Notch:  t.notchFor(info.Connector, info.Width, info.Height),
		})
	}
	for id := range t.fullscreen {
		if !slices.ContainsFunc(displays, func(d reconcile.DisplayInfo) bool { return d.ID == id }) {
			delete(t.fullscreen, id)
		}
	}
	t.displays = displays
}

// notchFor returns the notch bounds of a display in y-up display
// coordinates, or nil when none is configured.
func (t *Topology) notchFor(connector string, width, height float64) *layout.Rect {
	for _, n := range t.notches {
		if n.Connector != connector {
			continue
		}
		return &layout.Rect{
			X:      (width-n.Width)/2 + n.Offset,
			Y:      height - n.Height,
			Width:  n.Width,
			Height: n.Height,
		}
	}
	return nil
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor.
// This is necessary because gotk4 doesn't expose the wrapMonitor function.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
