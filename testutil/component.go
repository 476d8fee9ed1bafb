package testutil

import (
	"context"

	"github.com/kbukum/httptestkit/component"
)

// TestComponent extends component.Component with a Reset used between test
// cases to return the component to its freshly started state without
// rebinding resources.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error
}
