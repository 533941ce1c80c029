// Package server wires and runs the snapshot service's HTTP transport.
//
// It owns the server lifecycle: startup, OS signal handling, and graceful
// shutdown with a bounded drain window.
package server
