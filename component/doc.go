// Package component defines the lifecycle contract shared by test servers
// and test clients.
//
// A Component is started once, stopped once, and can report its health.
// The testutil package builds test setup and teardown on top of it.
package component
