// Package daemon provides the main orchestration for notchbard.
// It routes node commands into the store, drives the window reconciler,
// and reloads the configuration when the config file changes.
package daemon
