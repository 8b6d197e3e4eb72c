package mock

import (
	"context"
	"sync"
)

// CompleteCall records the arguments of one Complete invocation.
type CompleteCall struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields and records every
// call for assertions.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns the fixed Response.
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)

	// Response is returned by Complete when CompleteFunc is nil.
	Response string

	// Err is returned by Complete when CompleteFunc is nil and Err is set.
	Err error

	// BackendName is returned by Name. Defaults to "mock".
	BackendName string

	mu    sync.Mutex
	calls []CompleteCall
}

// NewMockCompleter creates a mock completer returning the given response.
// Note: Returns concrete type to allow test assertions.
func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{Response: response}
}

// Complete returns the injected behavior, the configured error, or the fixed
// response, in that order of precedence.
func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, CompleteCall{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    maxTokens,
	})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt, maxTokens)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Name identifies the backend for logging and answer attribution.
func (m *MockCompleter) Name() string {
	if m.BackendName != "" {
		return m.BackendName
	}
	return "mock"
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded invocations.
func (m *MockCompleter) Calls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]CompleteCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// LastCall returns the most recent invocation, or a zero value when none.
func (m *MockCompleter) LastCall() CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return CompleteCall{}
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears the recorded calls and any injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.CompleteFunc = nil
	m.Err = nil
}
