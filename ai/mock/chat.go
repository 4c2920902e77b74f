package mock

import (
	"context"
	"sync"

	"github.com/poiesic/lexis/ai"
)

// DefaultReply is returned by MockChatModel when no CompleteFunc is set.
const DefaultReply = "mock reply"

type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns DefaultReply.
	CompleteFunc func(ctx context.Context, req ai.ChatRequest) (string, error)

	mu       sync.Mutex
	requests []ai.ChatRequest
}

func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// NewReplyingChatModel returns a mock that answers every request with reply and err.
func NewReplyingChatModel(reply string, err error) *MockChatModel {
	return &MockChatModel{
		CompleteFunc: func(context.Context, ai.ChatRequest) (string, error) {
			return reply, err
		},
	}
}

func (m *MockChatModel) Complete(ctx context.Context, req ai.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return DefaultReply, nil
}

// Requests returns a copy of every request received so far.
func (m *MockChatModel) Requests() []ai.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.CompleteFunc = nil
}
