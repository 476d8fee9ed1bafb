// Package errors provides the error taxonomy for the test harness.
//
// Every failure surfaced by the server and testclient packages is an
// *AppError carrying a machine-readable ErrorCode and the underlying cause.
// Nothing in the harness retries: errors are returned to the caller of the
// operation that failed, unchanged.
//
// # Usage
//
//	res, err := client.Get("/health").Send(ctx)
//	if errors.IsDispatchError(err) {
//	    t.Fatalf("server unreachable: %v", err)
//	}
package errors
