package dbus

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/store"
)

// D-Bus error names returned by the server.
const (
	ErrorNotFound        = DBusInterface + ".Error.NotFound"
	ErrorExists          = DBusInterface + ".Error.Exists"
	ErrorInvalidProperty = DBusInterface + ".Error.InvalidProperty"
	ErrorInvalidArgs     = DBusInterface + ".Error.InvalidArgs"
	ErrorFailed          = "org.freedesktop.DBus.Error.Failed"
)

// AllDisplays is the Query display argument that matches every display.
const AllDisplays int32 = -1

// ChangeSignal is the payload of the Changed signal.
type ChangeSignal struct {
	Type     string
	Displays []uint32
	Count    uint32
}

// EncodeNodes marshals nodes for the Query and Refresh methods.
func EncodeNodes(nodes []model.Node) (string, error) {
	if nodes == nil {
		nodes = []model.Node{}
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		return "", fmt.Errorf("failed to encode nodes: %w", err)
	}
	return string(data), nil
}

// DecodeNodes unmarshals a JSON node list.
func DecodeNodes(s string) ([]model.Node, error) {
	var nodes []model.Node
	if err := json.Unmarshal([]byte(s), &nodes); err != nil {
		return nil, fmt.Errorf("failed to decode nodes: %w", err)
	}
	return nodes, nil
}

// DecodeDisplays unmarshals the Displays method result.
func DecodeDisplays(s string) ([]daemon.DisplayReport, error) {
	var reports []daemon.DisplayReport
	if err := json.Unmarshal([]byte(s), &reports); err != nil {
		return nil, fmt.Errorf("failed to decode displays: %w", err)
	}
	return reports, nil
}

// DecodeStatus unmarshals the Status method result.
func DecodeStatus(s string) (daemon.Status, error) {
	var st daemon.Status
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		return daemon.Status{}, fmt.Errorf("failed to decode status: %w", err)
	}
	return st, nil
}

// queryDisplay converts the Query display argument to a filter.
func queryDisplay(display int32) *model.DisplayID {
	if display < 0 {
		return nil
	}
	id := model.DisplayID(display)
	return &id
}

// toDBusError maps a command error onto a named D-Bus error.
func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	var perr *model.PropertyError
	switch {
	case errors.As(err, &perr):
		return dbus.NewError(ErrorInvalidProperty, []any{err.Error()})
	case errors.Is(err, store.ErrNodeNotFound), errors.Is(err, daemon.ErrDisplayNotFound):
		return dbus.NewError(ErrorNotFound, []any{err.Error()})
	case errors.Is(err, store.ErrNodeExists), errors.Is(err, daemon.ErrDuplicateName):
		return dbus.NewError(ErrorExists, []any{err.Error()})
	default:
		return dbus.MakeFailedError(err)
	}
}

// RemoteError is an error returned by the daemon.
type RemoteError struct {
	Name    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel matching the error name, so callers can
// test remote errors with errors.Is.
func (e *RemoteError) Unwrap() error {
	switch e.Name {
	case ErrorNotFound:
		return store.ErrNodeNotFound
	case ErrorExists:
		return store.ErrNodeExists
	default:
		return nil
	}
}

// fromDBusError converts a D-Bus call error into a RemoteError.
func fromDBusError(err error) error {
	var derr dbus.Error
	if errors.As(err, &derr) {
		return &RemoteError{Name: derr.Name, Message: derr.Error()}
	}
	var pderr *dbus.Error
	if errors.As(err, &pderr) {
		return &RemoteError{Name: pderr.Name, Message: pderr.Error()}
	}
	return err
}
