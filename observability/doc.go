// Package observability wraps OpenTelemetry for the test client: one client
// span per dispatched request, and W3C trace-context propagation into the
// outgoing request headers so the service under test can join the trace.
//
// Spans go to whatever TracerProvider the caller supplies, or the global
// one; with no SDK installed they are no-ops.
package observability
