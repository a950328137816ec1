package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/jmylchreest/notchbar/internal/config"
	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/reconcile"
	"github.com/jmylchreest/notchbar/internal/store"
)

// Invoker runs fn in the serialization context that owns the reconciler
// and returns once fn has completed.
type Invoker func(fn func())

// Direct runs fn on the calling goroutine.
func Direct(fn func()) { fn() }

// Topology is the display directory the controller drives.
type Topology interface {
	reconcile.Topology
	SetFullscreen(id model.DisplayID, fullscreen bool)
}

// Configurable is implemented by topologies that derive display geometry
// from the daemon configuration.
type Configurable interface {
	Configure(cfg *config.DaemonConfig)
}

// Errors returned by the controller.
var (
	ErrNotContainer    = errors.New("parent is not a container")
	ErrDisplayNotFound = errors.New("display not found")
	ErrDuplicateName   = errors.New("duplicate node name")
)

// DisplayReport describes one display for the Displays command.
type DisplayReport struct {
	ID         model.DisplayID `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	Main       bool            `json:"main" yaml:"main"`
	Attached   bool            `json:"attached" yaml:"attached"`
	Width      float64         `json:"width" yaml:"width"`
	Height     float64         `json:"height" yaml:"height"`
	Notch      *layout.Rect    `json:"notch,omitempty" yaml:"notch,omitempty"`
	Fullscreen bool            `json:"fullscreen" yaml:"fullscreen"`
	Nodes      int             `json:"nodes" yaml:"nodes"`
	Windows    []WindowReport  `json:"windows,omitempty" yaml:"windows,omitempty"`
}

// WindowReport describes an active slot window.
type WindowReport struct {
	Alignment string      `json:"alignment" yaml:"alignment"`
	Frame     layout.Rect `json:"frame" yaml:"frame"`
	Hidden    bool        `json:"hidden" yaml:"hidden"`
}

// Status is the daemon status returned by the Status command.
type Status struct {
	Version    string    `json:"version" yaml:"version"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	Nodes      int       `json:"nodes" yaml:"nodes"`
	Displays   int       `json:"displays" yaml:"displays"`
	Windows    int       `json:"windows" yaml:"windows"`
	Passes     int       `json:"passes" yaml:"passes"`
	LastPass   time.Time `json:"last_pass,omitzero" yaml:"last_pass,omitempty"`
	LastPassID string    `json:"last_pass_id,omitempty" yaml:"last_pass_id,omitempty"`
	Pending    bool      `json:"pending" yaml:"pending"`
}

// Controller executes node commands against the store and keeps the
// reconciler informed. It is safe for concurrent use; every mutation is
// routed through the Invoker.
type Controller struct {
	store      *store.Store
	reconciler *reconcile.Reconciler
	topology   Topology
	invoke     Invoker
	logger     *slog.Logger

	version   string
	startedAt time.Time
}

// ControllerConfig holds controller settings.
type ControllerConfig struct {
	Version string
	Invoker Invoker
	Logger  *slog.Logger
}

// NewController creates a Controller.
func NewController(cfg ControllerConfig, st *store.Store, rec *reconcile.Reconciler, topology Topology) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	invoke := cfg.Invoker
	if invoke == nil {
		invoke = Direct
	}
	return &Controller{
		store:      st,
		reconciler: rec,
		topology:   topology,
		invoke:     invoke,
		logger:     logger,
		version:    cfg.Version,
		startedAt:  time.Now(),
	}
}

// Add creates a node. The node is placed on the main display unless the
// properties name one. Names are unique across all displays.
func (c *Controller) Add(name string, props map[string]string) error {
	var err error
	c.invoke(func() { err = c.add(name, props) })
	return err
}

func (c *Controller) add(name string, props map[string]string) error {
	if _, exists := c.store.Find(name); exists {
		return fmt.Errorf("add %q: %w", name, store.ErrNodeExists)
	}

	n := model.NewNode(name, c.mainDisplay())
	if err := model.ApplyProperties(&n, props); err != nil {
		return fmt.Errorf("add %q: %w", name, err)
	}
	if err := c.check(&n); err != nil {
		return fmt.Errorf("add %q: %w", name, err)
	}

	return c.apply(store.Added(n))
}

// Set updates the properties of an existing node. Changing the display
// moves the node together with its descendants.
func (c *Controller) Set(name string, props map[string]string) error {
	var err error
	c.invoke(func() { err = c.set(name, props) })
	return err
}

func (c *Controller) set(name string, props map[string]string) error {
	current, ok := c.store.Find(name)
	if !ok {
		return fmt.Errorf("set %q: %w", name, store.ErrNodeNotFound)
	}

	n := current
	if err := model.ApplyProperties(&n, props); err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}
	if err := c.check(&n); err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}
	if !n.Kind.IsContainer() && c.hasChildren(current) {
		return fmt.Errorf("set %q: %w: type %s cannot keep its children", name, ErrNotContainer, n.Kind)
	}

	if n.Display != current.Display {
		return c.apply(store.Moved(current.Display, n))
	}
	return c.apply(store.Updated(n))
}

// Remove deletes a node and its descendants.
func (c *Controller) Remove(name string) error {
	var err error
	c.invoke(func() {
		n, ok := c.store.Find(name)
		if !ok {
			err = fmt.Errorf("remove %q: %w", name, store.ErrNodeNotFound)
			return
		}
		err = c.apply(store.Removed(n.Display, name))
	})
	return err
}

// Query returns nodes in display order. An empty name matches every node;
// a nil display matches every display.
func (c *Controller) Query(name string, display *model.DisplayID) []model.Node {
	ids := c.store.Displays()
	if display != nil {
		ids = []model.DisplayID{*display}
	}

	out := make([]model.Node, 0)
	for _, id := range ids {
		for _, n := range c.store.Nodes(id) {
			if name == "" || n.Name == name {
				out = append(out, n)
			}
		}
	}
	return out
}

// Refresh replaces the content of a display.
func (c *Controller) Refresh(display model.DisplayID, nodes []model.Node) error {
	var err error
	c.invoke(func() { err = c.refresh(display, nodes) })
	return err
}

func (c *Controller) refresh(display model.DisplayID, nodes []model.Node) error {
	seen := make(map[string]bool, len(nodes))
	batch := make([]model.Node, len(nodes))
	for i, n := range nodes {
		n.Display = display
		if n.Kind == "" {
			n.Kind = model.KindItem
		}
		if err := n.Validate(); err != nil {
			return fmt.Errorf("refresh display %d: %w", display, err)
		}
		if seen[n.Name] {
			return fmt.Errorf("refresh display %d: %w: %q", display, ErrDuplicateName, n.Name)
		}
		seen[n.Name] = true
		if other, ok := c.store.Find(n.Name); ok && other.Display != display {
			return fmt.Errorf("refresh display %d: %q exists on display %d: %w",
				display, n.Name, other.Display, store.ErrNodeExists)
		}
		batch[i] = n
	}

	kinds := make(map[string]model.Kind, len(batch))
	for _, n := range batch {
		kinds[n.Name] = n.Kind
	}
	for _, n := range batch {
		if kind, ok := kinds[n.Parent]; ok && !kind.IsContainer() {
			return fmt.Errorf("refresh display %d: %q: %w: %q is of type %s",
				display, n.Name, ErrNotContainer, n.Parent, kind)
		}
	}

	return c.apply(store.Refreshed(display, batch))
}

// SetFullscreen records the fullscreen state of a display and hides or
// shows its windows.
func (c *Controller) SetFullscreen(display model.DisplayID, fullscreen bool) error {
	var err error
	c.invoke(func() {
		if !c.attached(display) {
			err = fmt.Errorf("display %d: %w", display, ErrDisplayNotFound)
			return
		}
		c.topology.SetFullscreen(display, fullscreen)
		c.reconciler.SyncFullscreen()
		c.logger.Debug("fullscreen set", "display", display, "fullscreen", fullscreen)
	})
	return err
}

// DisplaysChanged forwards a topology change to the reconciler.
func (c *Controller) DisplaysChanged() {
	c.invoke(c.reconciler.DisplaysChanged)
}

// Reconfigure applies a new daemon configuration and relays out every
// display with content.
func (c *Controller) Reconfigure(engine *layout.Engine, cfg *config.DaemonConfig) {
	c.invoke(func() {
		c.reconciler.SetInterval(cfg.Bar.Debounce.Duration())
		c.reconciler.SetLayout(engine, reconcile.Placement{OffsetTop: cfg.Bar.OffsetTop})
		if t, ok := c.topology.(Configurable); ok {
			t.Configure(cfg)
			c.reconciler.DisplaysChanged()
		}
		if ids := c.store.Displays(); len(ids) > 0 {
			c.reconciler.NotifyChanged(ids...)
		}
		c.logger.Info("configuration applied", "debounce", cfg.Bar.Debounce.Duration(), "notches", len(cfg.Notches))
	})
}

// Displays reports every attached display and every detached display that
// still holds nodes.
func (c *Controller) Displays() []DisplayReport {
	var out []DisplayReport
	c.invoke(func() { out = c.displays() })
	return out
}

func (c *Controller) displays() []DisplayReport {
	reports := make(map[model.DisplayID]*DisplayReport)
	for _, d := range c.topology.Displays() {
		reports[d.ID] = &DisplayReport{
			ID:         d.ID,
			Name:       d.Name,
			Main:       d.Main,
			Attached:   true,
			Width:      d.Width,
			Height:     d.Height,
			Notch:      d.Notch,
			Fullscreen: c.topology.Fullscreen(d.ID),
		}
	}
	for _, id := range c.store.Displays() {
		r, ok := reports[id]
		if !ok {
			r = &DisplayReport{ID: id}
			reports[id] = r
		}
		r.Nodes = c.store.Count(id)
	}
	for _, s := range c.reconciler.Slots() {
		r, ok := reports[s.Key.Display]
		if !ok {
			continue
		}
		r.Windows = append(r.Windows, WindowReport{
			Alignment: string(s.Key.Alignment),
			Frame:     s.Frame,
			Hidden:    s.Hidden,
		})
	}

	out := make([]DisplayReport, 0, len(reports))
	for _, id := range slices.Sorted(maps.Keys(reports)) {
		out = append(out, *reports[id])
	}
	return out
}

// Status returns daemon statistics.
func (c *Controller) Status() Status {
	var st Status
	c.invoke(func() {
		stats := c.reconciler.Stats()
		st = Status{
			Version:    c.version,
			StartedAt:  c.startedAt,
			Nodes:      c.store.Total(),
			Displays:   len(c.topology.Displays()),
			Windows:    len(c.reconciler.Slots()),
			Passes:     stats.Passes,
			LastPass:   stats.LastPass,
			LastPassID: stats.LastPassID,
			Pending:    c.reconciler.Pending(),
		}
	})
	return st
}

// check validates a node and its parent reference. A parent that does not
// exist yet is accepted; the node stays hidden until it appears.
func (c *Controller) check(n *model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if !n.HasParent() {
		return nil
	}
	parent, ok := c.store.Get(n.Display, n.Parent)
	if !ok {
		c.logger.Debug("parent not present", "node", n.Name, "parent", n.Parent, "display", n.Display)
		return nil
	}
	if !parent.Kind.IsContainer() {
		return fmt.Errorf("%w: %q is of type %s", ErrNotContainer, parent.Name, parent.Kind)
	}
	return nil
}

func (c *Controller) hasChildren(n model.Node) bool {
	return slices.ContainsFunc(c.store.Nodes(n.Display), func(child model.Node) bool {
		return child.Parent == n.Name
	})
}

func (c *Controller) apply(ev store.Event) error {
	ids, err := c.store.Apply(ev)
	if err != nil {
		return err
	}
	c.logger.Debug("node event applied", "type", ev.Type, "name", ev.Name, "displays", ids)
	c.reconciler.NotifyChanged(ids...)
	return nil
}

func (c *Controller) attached(id model.DisplayID) bool {
	return slices.ContainsFunc(c.topology.Displays(), func(d reconcile.DisplayInfo) bool {
		return d.ID == id
	})
}

// mainDisplay returns the main display, the lowest attached display when
// none is flagged main, or display 1 when nothing is attached.
func (c *Controller) mainDisplay() model.DisplayID {
	displays := c.topology.Displays()
	if len(displays) == 0 {
		return 1
	}
	lowest := displays[0].ID
	for _, d := range displays {
		if d.Main {
			return d.ID
		}
		lowest = min(lowest, d.ID)
	}
	return lowest
}
