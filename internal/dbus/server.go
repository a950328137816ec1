package dbus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/store"
)

const (
	// DBusInterface is the notchbar interface name.
	DBusInterface = "io.github.jmylchreest.Notchbar"
	// DBusPath is the notchbar object path.
	DBusPath = "/io/github/jmylchreest/Notchbar"
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.Notchbar"
)

// Service executes the commands exported over D-Bus.
type Service interface {
	Add(name string, props map[string]string) error
	Set(name string, props map[string]string) error
	Remove(name string) error
	Query(name string, display *model.DisplayID) []model.Node
	Refresh(display model.DisplayID, nodes []model.Node) error
	SetFullscreen(display model.DisplayID, fullscreen bool) error
	Displays() []daemon.DisplayReport
	Status() daemon.Status
}

// Server exports a Service on the session bus.
type Server struct {
	conn    *dbus.Conn
	service Service
	logger  *slog.Logger

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
}

// NewServer creates a new Server.
func NewServer(service Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		service: service,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start connects to the session bus and exports the notchbar service.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: serverMethods(),
				Signals: serverSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken, is notchbard already running?", DBusBusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("D-Bus server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	close(s.stopCh)
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus server stopped")
	return nil
}

// ForwardChanges emits a Changed signal for every store change received on
// ch until ch is closed or the server stops.
func (s *Server) ForwardChanges(ch <-chan store.ChangeEvent) {
	s.mu.RLock()
	stop := s.stopCh
	s.mu.RUnlock()

	go func() {
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := s.EmitChanged(ev); err != nil {
					s.logger.Debug("failed to emit Changed signal", "error", err)
				}
			}
		}
	}()
}

// Add creates a node.
// D-Bus method: Add(sa{ss}) -> nothing
func (s *Server) Add(name string, props map[string]string) *dbus.Error {
	s.logger.Debug("Add called", "name", name, "props", len(props))
	return toDBusError(s.service.Add(name, props))
}

// Set updates the properties of a node.
// D-Bus method: Set(sa{ss}) -> nothing
func (s *Server) Set(name string, props map[string]string) *dbus.Error {
	s.logger.Debug("Set called", "name", name, "props", len(props))
	return toDBusError(s.service.Set(name, props))
}

// Remove deletes a node and its descendants.
// D-Bus method: Remove(s) -> nothing
func (s *Server) Remove(name string) *dbus.Error {
	s.logger.Debug("Remove called", "name", name)
	return toDBusError(s.service.Remove(name))
}

// Query returns matching nodes as a JSON array. An empty name matches all
// nodes and a negative display matches all displays.
// D-Bus method: Query(si) -> s
func (s *Server) Query(name string, display int32) (string, *dbus.Error) {
	s.logger.Debug("Query called", "name", name, "display", display)
	out, err := EncodeNodes(s.service.Query(name, queryDisplay(display)))
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return out, nil
}

// Refresh replaces the content of a display with a JSON node list.
// D-Bus method: Refresh(us) -> nothing
func (s *Server) Refresh(display uint32, nodes string) *dbus.Error {
	decoded, err := DecodeNodes(nodes)
	if err != nil {
		return dbus.NewError(ErrorInvalidArgs, []any{err.Error()})
	}
	s.logger.Debug("Refresh called", "display", display, "nodes", len(decoded))
	return toDBusError(s.service.Refresh(model.DisplayID(display), decoded))
}

// SetFullscreen records whether a display shows a fullscreen window.
// D-Bus method: SetFullscreen(ub) -> nothing
func (s *Server) SetFullscreen(display uint32, fullscreen bool) *dbus.Error {
	s.logger.Debug("SetFullscreen called", "display", display, "fullscreen", fullscreen)
	return toDBusError(s.service.SetFullscreen(model.DisplayID(display), fullscreen))
}

// Displays returns the display report as JSON.
// D-Bus method: Displays() -> s
func (s *Server) Displays() (string, *dbus.Error) {
	return encodeJSON(s.service.Displays())
}

// Status returns daemon statistics as JSON.
// D-Bus method: Status() -> s
func (s *Server) Status() (string, *dbus.Error) {
	return encodeJSON(s.service.Status())
}

func encodeJSON(v any) (string, *dbus.Error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// serverMethods returns the D-Bus method introspection data.
func serverMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Add",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "in"},
				{Name: "props", Type: "a{ss}", Direction: "in"},
			},
		},
		{
			Name: "Set",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "in"},
				{Name: "props", Type: "a{ss}", Direction: "in"},
			},
		},
		{
			Name: "Remove",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Query",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "in"},
				{Name: "display", Type: "i", Direction: "in"},
				{Name: "nodes", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Refresh",
			Args: []introspect.Arg{
				{Name: "display", Type: "u", Direction: "in"},
				{Name: "nodes", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "SetFullscreen",
			Args: []introspect.Arg{
				{Name: "display", Type: "u", Direction: "in"},
				{Name: "fullscreen", Type: "b", Direction: "in"},
			},
		},
		{
			Name: "Displays",
			Args: []introspect.Arg{
				{Name: "displays", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "status", Type: "s", Direction: "out"},
			},
		},
	}
}

// serverSignals returns the D-Bus signal introspection data.
func serverSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "Clicked",
			Args: []introspect.Arg{
				{Name: "name", Type: "s"},
			},
		},
		{
			Name: "Changed",
			Args: []introspect.Arg{
				{Name: "type", Type: "s"},
				{Name: "displays", Type: "au"},
				{Name: "count", Type: "u"},
			},
		},
	}
}
