package mock

import "github.com/inkwelldocs/inkwell/ai"

// MockProvider is a test double for ai.Provider wiring the mock embedder
// and completer together.
type MockProvider struct {
	embedder  *MockEmbedder
	completer *MockCompleter
}

// NewMockProvider creates a provider backed by default mocks.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		completer: NewMockCompleter("mock answer"),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the mock completion service.
func (p *MockProvider) Completer() ai.Completer {
	return p.completer
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockCompleter returns the concrete mock for test assertions.
func (p *MockProvider) GetMockCompleter() *MockCompleter {
	return p.completer
}
