package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/httptestkit/component"
)

// Manager provides lifecycle management for multiple components, e.g. a
// set of independent test clients exercised side by side.
type Manager struct {
	ctx        context.Context
	components []component.Component
	mu         sync.RWMutex
}

// NewManager creates a new component manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{
		ctx:        ctx,
		components: make([]component.Component, 0),
	}
}

// Add registers a component with the manager.
func (m *Manager) Add(c component.Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// Components returns all registered components.
func (m *Manager) Components() []component.Component {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]component.Component, len(m.components))
	copy(result, m.components)
	return result
}

// Get retrieves a component by name.
// Returns nil if no component with the given name is found.
func (m *Manager) Get(name string) component.Component {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts all registered components in order.
// If any component fails to start, returns immediately with that error.
func (m *Manager) StartAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.components {
		if err := c.Start(m.ctx); err != nil {
			return fmt.Errorf("failed to start component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// StopAll stops all registered components in reverse order.
// Even if some components fail to stop, continues stopping others and
// returns a combined error with all failures.
func (m *Manager) StopAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		c := m.components[i]
		if err := c.Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", c.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// ResetAll resets every registered component that implements TestComponent.
// If any component fails to reset, returns immediately with that error.
func (m *Manager) ResetAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.components {
		tc, ok := c.(TestComponent)
		if !ok {
			continue
		}
		if err := tc.Reset(m.ctx); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// Health returns the health of every registered component.
func (m *Manager) Health() []component.Health {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]component.Health, 0, len(m.components))
	for _, c := range m.components {
		result = append(result, c.Health(m.ctx))
	}
	return result
}

// Cleanup is an alias for StopAll, for use with defer or tb.Cleanup.
func (m *Manager) Cleanup() error {
	return m.StopAll()
}
