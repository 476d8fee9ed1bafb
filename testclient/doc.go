// Package testclient drives a request-handling service over real loopback
// HTTP from inside a test.
//
// A TestClient starts the service on an ephemeral port (see package server)
// and exposes a fluent RequestBuilder for each method:
//
//	func TestCreateUser(t *testing.T) {
//	    client := testclient.NewT(t, api.Routes())
//
//	    resp, err := client.Post("/users").
//	        JSON(User{Name: "gopher"}).
//	        Send(context.Background())
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    if resp.Status() != http.StatusCreated {
//	        t.Fatalf("status %d", resp.Status())
//	    }
//	    user, err := testclient.DecodeJSON[User](resp)
//	    ...
//	}
//
// Send returns once the status line and headers arrive. The body can then
// be read whole with Bytes, Text or JSON, or incrementally with Chunk,
// Chunks or Events. The two modes are mutually exclusive per response.
//
// Failures are returned, never retried, as *errors.AppError values whose
// code identifies the kind: DISPATCH_FAILED when no response was received,
// BODY_READ_FAILED and DECODE_FAILED for body access, INVALID_REQUEST when
// the builder could not form a request.
//
// Redirects are not followed and cookies are not stored unless enabled with
// WithFollowRedirects and WithCookies. Each request is wrapped in an
// OpenTelemetry client span whose context is propagated to the service.
package testclient
