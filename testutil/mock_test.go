package testutil_test

import (
	"context"
	"sync"

	"github.com/kbukum/httptestkit/component"
)

type mockComponent struct {
	name     string
	mu       sync.Mutex
	started  bool
	stopped  bool
	resets   int
	startErr error
	stopErr  error
	resetErr error
	stopLog  *[]string
}

func newMockComponent(name string) *mockComponent {
	return &mockComponent{name: name}
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	return nil
}

func (m *mockComponent) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopLog != nil {
		*m.stopLog = append(*m.stopLog, m.name)
	}
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stopped = true
	return nil
}

func (m *mockComponent) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets++
	return nil
}

func (m *mockComponent) Health(context.Context) component.Health {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started && !m.stopped {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return component.Health{Name: m.name, Status: component.StatusUnhealthy, Message: "not running"}
}

// plainComponent shadows Reset with a different signature so it is not a TestComponent.
type plainComponent struct{ *mockComponent }

func (p plainComponent) Reset() {}
