package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/notchbar/internal/daemon"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
)

// SendNotification delivers an internal notification to the desktop
// notification server over the server's session bus connection.
func (s *Server) SendNotification(n daemon.Notification) error {
	conn := s.connection()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(n.Level.Urgency()),
		"category":      dbus.MakeVariant("device"),
		"transient":     dbus.MakeVariant(true),
		"desktop-entry": dbus.MakeVariant("notchbard"),
	}

	obj := conn.Object(notificationsName, notificationsPath)
	call := obj.Call(notificationsName+".Notify", 0,
		"notchbard",
		uint32(0),
		n.Level.Icon(),
		n.Summary,
		n.Body,
		[]string{},
		hints,
		int32(n.Expire.Milliseconds()),
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}
