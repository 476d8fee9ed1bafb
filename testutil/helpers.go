package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/httptestkit/component"
)

// CleanupFunc is a function that performs cleanup, typically stopping a component.
type CleanupFunc func() error

// Setup starts a component and returns a cleanup function that stops it.
//
//	cleanup, err := testutil.Setup(client)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
func Setup(c component.Component) (CleanupFunc, error) {
	return SetupWithContext(context.Background(), c)
}

// SetupWithContext starts a component with a custom context and returns a cleanup function.
func SetupWithContext(ctx context.Context, c component.Component) (CleanupFunc, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	cleanup := func() error {
		return c.Stop(ctx)
	}

	return cleanup, nil
}

// Teardown stops a component.
func Teardown(c component.Component) error {
	return c.Stop(context.Background())
}

// THelper provides testing.TB integration for easier test setup.
type THelper struct {
	tb  testing.TB
	ctx context.Context
}

// T wraps a testing.TB to provide helper methods.
//
//	func TestMyFeature(t *testing.T) {
//	    testutil.T(t).Setup(client)
//	}
func T(tb testing.TB) *THelper {
	return &THelper{
		tb:  tb,
		ctx: context.Background(),
	}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts a component and registers its Stop with tb.Cleanup.
// A start failure ends the test immediately.
func (h *THelper) Setup(c component.Component) {
	h.tb.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.tb.Fatalf("failed to start component %s: %v", c.Name(), err)
	}

	// The test's own context is already cancelled when cleanups run.
	stopCtx := context.WithoutCancel(h.ctx)
	h.tb.Cleanup(func() {
		if err := c.Stop(stopCtx); err != nil {
			h.tb.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Reset resets a component to its initial state.
func (h *THelper) Reset(c TestComponent) {
	h.tb.Helper()
	if err := c.Reset(h.ctx); err != nil {
		h.tb.Fatalf("failed to reset component %s: %v", c.Name(), err)
	}
}
