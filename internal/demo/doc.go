// Package demo is a small end-to-end application for the vstate
// packages: a shared counter held in one store, mutated by commands
// from WebSocket clients and pushed back to every client whenever the
// broadcast projection of the state changes.
//
// All store access happens on the hub goroutine, which is the one
// logical thread of control the core requires. WebSocket read and
// write pumps only exchange messages with the hub over channels.
package demo
