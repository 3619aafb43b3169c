package mocks

import (
	"context"
	"sync"

	"github.com/pep299/daily-news-digest/internal/repository"
)

// Mock LLM Repository
type MockLLMRepo struct {
	Response string
	Err      error

	mu       sync.Mutex
	Requests []repository.ChatRequest
}

func (m *MockLLMRepo) Complete(ctx context.Context, req repository.ChatRequest) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockLLMRepo) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
