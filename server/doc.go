// Package server runs a request-handling service on an ephemeral loopback
// port for the lifetime of a test.
//
// A Handle binds Host:0 synchronously, so the OS-assigned port is known and
// accepting connections as soon as Start returns, then serves from a
// background goroutine using net/http. Connections are handled
// concurrently. HTTP/2 cleartext (h2c) is accepted alongside HTTP/1.1 unless
// disabled.
//
// Stop is abrupt: the listener and every open connection are closed and
// in-flight requests are abandoned. It returns once the serve loop has
// exited, so the port is free for the next test.
//
//	h, err := server.Spawn(handler, server.Config{}, nil)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//	resp, err := http.Get(h.URL() + "/health")
package server
