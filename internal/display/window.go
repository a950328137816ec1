package display

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/notchbar/internal/config"
	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/reconcile"
)

var (
	_ reconcile.Backend = (*Backend)(nil)
	_ reconcile.Window  = (*Window)(nil)
)

// Backend creates layer-shell bar windows. All methods run on the main loop
// except SetClickCallback.
type Backend struct {
	app      *gtk.Application
	topology *Topology
	runner   *CommandRunner
	renderer *renderer
	logger   *slog.Logger

	layer     layershell.Layer
	namespace string
	windows   map[*Window]struct{}

	mu      sync.RWMutex
	onClick func(name string)
}

// NewBackend creates a window backend for app.
func NewBackend(app *gtk.Application, topology *Topology, cfg *config.DaemonConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{
		app:      app,
		topology: topology,
		runner:   NewCommandRunner(logger),
		renderer: &renderer{images: newImageCache(logger)},
		logger:   logger,
		windows:  make(map[*Window]struct{}),
	}
	b.Configure(cfg)
	return b
}

// SetClickCallback sets the function called with the name of a clicked node.
func (b *Backend) SetClickCallback(fn func(name string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onClick = fn
}

// Configure applies the bar layer and namespace. The layer is applied to
// open windows, the namespace only to new ones.
func (b *Backend) Configure(cfg *config.DaemonConfig) {
	b.layer = layershell.LayerShellLayerTop
	if config.Layer(cfg.Bar.Layer) == config.LayerOverlay {
		b.layer = layershell.LayerShellLayerOverlay
	}
	b.namespace = cfg.Bar.Namespace
	for w := range b.windows {
		layershell.SetLayer(w.window, b.layer)
	}
}

// CreateWindow implements reconcile.Backend.
func (b *Backend) CreateWindow(key reconcile.SlotKey, d reconcile.DisplayInfo) (reconcile.Window, error) {
	monitor, ok := b.topology.Monitor(d.ID)
	if !ok {
		return nil, fmt.Errorf("no monitor for display %d", d.ID)
	}

	w := &Window{backend: b, key: key}

	w.window = gtk.NewWindow()
	w.window.SetApplication(b.app)
	w.window.SetDecorated(false)
	w.window.SetResizable(false)
	w.window.AddCSSClass("notchbar")
	w.window.AddCSSClass("notchbar-" + string(key.Alignment))

	layershell.InitForWindow(w.window)
	layershell.SetLayer(w.window, b.layer)
	layershell.SetNamespace(w.window, b.namespace)
	layershell.SetExclusiveZone(w.window, 0)
	layershell.SetKeyboardMode(w.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetMonitor(w.window, monitor)
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeLeft, true)

	w.area = gtk.NewDrawingArea()
	w.area.SetDrawFunc(func(area *gtk.DrawingArea, cr *cairo.Context, width, height int) {
		b.renderer.draw(area, cr, w.layout, w.hovered)
	})
	w.window.SetChild(w.area)
	w.connectSignals()

	b.windows[w] = struct{}{}
	b.logger.Debug("created window", "slot", key.String(), "display", d.Name)
	return w, nil
}

func (b *Backend) clicked(name, command string) {
	b.runner.Run(name, command)

	b.mu.RLock()
	fn := b.onClick
	b.mu.RUnlock()
	if fn != nil {
		fn(name)
	}
}

// Window is one transparent layer-shell surface drawing a slot's layout.
type Window struct {
	backend *Backend
	key     reconcile.SlotKey

	window *gtk.Window
	area   *gtk.DrawingArea

	layout  *layout.Layout
	frame   layout.Rect
	hovered string
	hidden  bool
	mapped  bool
}

func (w *Window) connectSignals() {
	motion := gtk.NewEventControllerMotion()
	motion.ConnectMotion(func(x, y float64) {
		w.setHovered(hoverTarget(w.layout, w.point(x, y)))
	})
	motion.ConnectLeave(func() {
		w.setHovered("")
	})
	w.area.AddController(motion)

	click := gtk.NewGestureClick()
	click.ConnectReleased(func(nPress int, x, y float64) {
		f, ok := clickTarget(w.layout, w.point(x, y))
		if !ok {
			return
		}
		w.backend.clicked(f.Name, f.OnClick)
	})
	w.area.AddController(click)
}

func (w *Window) point(x, y float64) layout.Point {
	if w.layout == nil {
		return layout.Point{X: x, Y: y}
	}
	return toLayoutPoint(x, y, w.layout.Size.Height)
}

func (w *Window) setHovered(name string) {
	if name == w.hovered {
		return
	}
	w.hovered = name
	w.area.QueueDraw()
}

// Update implements reconcile.Window. Changes are applied immediately.
func (w *Window) Update(d reconcile.DisplayInfo, frame layout.Rect, content *layout.Layout, animate bool) {
	w.frame = frame
	w.layout = content

	width := int(math.Ceil(frame.Width))
	height := int(math.Ceil(frame.Height))
	w.area.SetContentWidth(width)
	w.area.SetContentHeight(height)
	w.window.SetDefaultSize(width, height)

	layershell.SetMargin(w.window, layershell.LayerShellEdgeLeft, int(math.Round(frame.X)))
	layershell.SetMargin(w.window, layershell.LayerShellEdgeTop, int(math.Round(reconcile.TopMargin(d, frame))))

	if w.hovered != "" {
		if _, ok := content.Frame(w.hovered); !ok {
			w.hovered = ""
		}
	}
	w.area.QueueDraw()

	if !w.hidden && !w.mapped {
		w.window.Present()
		w.mapped = true
	}
}

// SetHidden implements reconcile.Window.
func (w *Window) SetHidden(hidden bool) {
	if hidden == w.hidden {
		return
	}
	w.hidden = hidden
	if hidden {
		w.window.SetVisible(false)
		w.mapped = false
		return
	}
	if w.layout != nil {
		w.window.Present()
		w.mapped = true
	}
}

// Destroy implements reconcile.Window.
func (w *Window) Destroy() {
	delete(w.backend.windows, w)
	w.window.Destroy()
	w.backend.logger.Debug("destroyed window", "slot", w.key.String())
}
