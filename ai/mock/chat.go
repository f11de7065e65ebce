package mock

import (
	"context"
	"sync"

	"github.com/poiesic/depositbot/ai"
)

// MockChatModel is a test double for ai.ChatModel.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete echoes the user prompt with an "echo: " prefix.
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	mu        sync.Mutex
	callCount int
	requests  []ai.CompletionRequest
}

// NewMockChatModel creates a mock chat model with echo behavior.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// NewScriptedChatModel returns a mock that replies with the given responses
// in order, repeating the last one once the script runs out.
func NewScriptedChatModel(responses ...string) *MockChatModel {
	m := &MockChatModel{}
	m.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
		if len(responses) == 0 {
			return "", nil
		}
		i := min(m.CallCount(), len(responses)) - 1
		return responses[i], nil
	}
	return m
}

// Complete records the request and delegates to CompleteFunc.
func (m *MockChatModel) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "echo: " + req.User, nil
}

// CallCount returns the number of Complete calls.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request, or the zero value if none.
func (m *MockChatModel) LastRequest() ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ai.CompletionRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// Reset clears recorded calls and injected behavior.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.requests = nil
	m.CompleteFunc = nil
}
