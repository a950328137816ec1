package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/model"
)

// Client calls the notchbar daemon over the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Connect returns a client bound to the running daemon.
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(DBusBusName, DBusPath),
	}, nil
}

// Close closes the client's private bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Running reports whether the daemon currently owns its bus name.
func (c *Client) Running() (bool, error) {
	var has bool
	err := c.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, DBusBusName).Store(&has)
	if err != nil {
		return false, fmt.Errorf("failed to query bus name: %w", err)
	}
	return has, nil
}

// Add creates a node.
func (c *Client) Add(name string, props map[string]string) error {
	return c.call("Add", nil, name, nonNil(props))
}

// Set updates the properties of a node.
func (c *Client) Set(name string, props map[string]string) error {
	return c.call("Set", nil, name, nonNil(props))
}

// Remove deletes a node and its descendants.
func (c *Client) Remove(name string) error {
	return c.call("Remove", nil, name)
}

// Query returns nodes matching name on a display, or on every display when
// display is nil.
func (c *Client) Query(name string, display *model.DisplayID) ([]model.Node, error) {
	arg := AllDisplays
	if display != nil {
		arg = int32(*display)
	}
	var out string
	if err := c.call("Query", &out, name, arg); err != nil {
		return nil, err
	}
	return DecodeNodes(out)
}

// Refresh replaces the content of a display.
func (c *Client) Refresh(display model.DisplayID, nodes []model.Node) error {
	payload, err := EncodeNodes(nodes)
	if err != nil {
		return err
	}
	return c.call("Refresh", nil, uint32(display), payload)
}

// SetFullscreen records whether a display shows a fullscreen window.
func (c *Client) SetFullscreen(display model.DisplayID, fullscreen bool) error {
	return c.call("SetFullscreen", nil, uint32(display), fullscreen)
}

// Displays returns the daemon's display report.
func (c *Client) Displays() ([]daemon.DisplayReport, error) {
	var out string
	if err := c.call("Displays", &out); err != nil {
		return nil, err
	}
	return DecodeDisplays(out)
}

// Status returns daemon statistics.
func (c *Client) Status() (daemon.Status, error) {
	var out string
	if err := c.call("Status", &out); err != nil {
		return daemon.Status{}, err
	}
	return DecodeStatus(out)
}

func (c *Client) call(method string, out *string, args ...any) error {
	call := c.obj.Call(DBusInterface+"."+method, 0, args...)
	if call.Err != nil {
		return fromDBusError(call.Err)
	}
	if out == nil {
		return nil
	}
	if err := call.Store(out); err != nil {
		return fmt.Errorf("failed to read %s reply: %w", method, err)
	}
	return nil
}

func nonNil(props map[string]string) map[string]string {
	if props == nil {
		return map[string]string{}
	}
	return props
}
