package dbus

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// ClickHandler is called when a node is clicked.
type ClickHandler func(name string)

// ChangeHandler is called when the daemon's node store changes.
type ChangeHandler func(sig ChangeSignal)

// Monitor observes the signals emitted by the daemon.
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger

	onClick  ClickHandler
	onChange ChangeHandler
	signals  chan *dbus.Signal
}

// NewMonitor creates a new signal monitor.
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger: logger,
	}
}

// SetClickHandler sets the callback for Clicked signals.
func (m *Monitor) SetClickHandler(handler ClickHandler) {
	m.onClick = handler
}

// SetChangeHandler sets the callback for Changed signals.
func (m *Monitor) SetChangeHandler(handler ChangeHandler) {
	m.onChange = handler
}

// Start subscribes to the daemon's signals. Handlers run on the monitor's
// goroutine.
func (m *Monitor) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.conn = conn

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchObjectPath(DBusPath),
	); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to add match rule: %w", err)
	}

	m.signals = make(chan *dbus.Signal, 100)
	conn.Signal(m.signals)

	m.logger.Debug("started D-Bus signal monitor", "interface", DBusInterface)

	go m.processSignals()

	return nil
}

// processSignals dispatches signals until the connection is closed.
func (m *Monitor) processSignals() {
	for sig := range m.signals {
		m.dispatch(sig)
	}
}

func (m *Monitor) dispatch(sig *dbus.Signal) {
	switch sig.Name {
	case DBusInterface + ".Clicked":
		if len(sig.Body) < 1 {
			m.logger.Warn("malformed Clicked signal", "body_len", len(sig.Body))
			return
		}
		name, ok := sig.Body[0].(string)
		if !ok {
			m.logger.Warn("invalid Clicked name type")
			return
		}
		if m.onClick != nil {
			m.onClick(name)
		}

	case DBusInterface + ".Changed":
		if len(sig.Body) < 3 {
			m.logger.Warn("malformed Changed signal", "body_len", len(sig.Body))
			return
		}
		var change ChangeSignal
		var ok bool
		if change.Type, ok = sig.Body[0].(string); !ok {
			m.logger.Warn("invalid Changed type")
			return
		}
		if change.Displays, ok = sig.Body[1].([]uint32); !ok {
			m.logger.Warn("invalid Changed displays type")
			return
		}
		if change.Count, ok = sig.Body[2].(uint32); !ok {
			m.logger.Warn("invalid Changed count type")
			return
		}
		if m.onChange != nil {
			m.onChange(change)
		}
	}
}

// Stop closes the monitor's connection.
func (m *Monitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
