// Package dbus implements the io.github.jmylchreest.Notchbar D-Bus interface.
// It provides the server exported by notchbard, the client used by the
// notchbar CLI, and a monitor for the Clicked and Changed signals.
package dbus
