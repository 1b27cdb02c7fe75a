package mock

import (
	"context"
	"sync"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields. Safe for
// concurrent use; configure the function fields before handing it out.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns Response.
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	// Response is returned by Complete when CompleteFunc is nil.
	Response string

	mu         sync.Mutex
	lastSystem string
	lastUser   string
	callCount  int
}

// NewMockCompleter creates a mock completer that echoes a canned response.
// Note: Returns concrete type to allow test assertions.
func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{Response: response}
}

// Complete records the prompts and returns the scripted response.
func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastSystem = system
	m.lastUser = user
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}
	return m.Response, nil
}

// LastSystem returns the system prompt of the most recent call.
func (m *MockCompleter) LastSystem() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSystem
}

// LastUser returns the user prompt of the most recent call.
func (m *MockCompleter) LastUser() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUser
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears captured state and injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastSystem = ""
	m.lastUser = ""
	m.CompleteFunc = nil
}
