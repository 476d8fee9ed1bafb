// Package testutil provides setup and teardown helpers for test components
// such as test servers and test clients.
//
// # Quick Start
//
//	func TestMyHandler(t *testing.T) {
//	    client := testclient.NewUnstarted(handler)
//	    testutil.T(t).Setup(client)
//	    // client is stopped, and its port released, when the test ends
//	}
//
// Managing several components:
//
//	manager := testutil.NewManager(ctx)
//	manager.Add(clientA)
//	manager.Add(clientB)
//	if err := manager.StartAll(); err != nil { ... }
//	defer manager.Cleanup()
//
// All Manager operations are safe for concurrent use.
package testutil
