// Package agent implements the sync agent application runtime.
//
// It wires the local store, the remote adapter, the sync coordinator, and
// background workers into a single process lifecycle.
package agent
