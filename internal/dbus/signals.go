package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/notchbar/internal/store"
)

// EmitClicked emits the Clicked signal.
// This signal is emitted when the user clicks a node.
func (s *Server) EmitClicked(name string) error {
	conn := s.connection()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := conn.Emit(DBusPath, DBusInterface+".Clicked", name); err != nil {
		return fmt.Errorf("failed to emit Clicked signal: %w", err)
	}

	s.logger.Debug("emitted Clicked signal", "name", name)
	return nil
}

// EmitChanged emits the Changed signal for a store change.
func (s *Server) EmitChanged(ev store.ChangeEvent) error {
	conn := s.connection()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	sig := changeSignal(ev)
	if err := conn.Emit(DBusPath, DBusInterface+".Changed", sig.Type, sig.Displays, sig.Count); err != nil {
		return fmt.Errorf("failed to emit Changed signal: %w", err)
	}
	return nil
}

func changeSignal(ev store.ChangeEvent) ChangeSignal {
	displays := make([]uint32, len(ev.Displays))
	for i, d := range ev.Displays {
		displays[i] = uint32(d)
	}
	return ChangeSignal{Type: ev.Type.String(), Displays: displays, Count: uint32(ev.Count)}
}

// Connection returns the underlying D-Bus connection.
func (s *Server) Connection() *dbus.Conn {
	return s.connection()
}

func (s *Server) connection() *dbus.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}
