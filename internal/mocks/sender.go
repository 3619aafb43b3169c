package mocks

import (
	"context"
	"sync"

	"github.com/pep299/daily-news-digest/internal/repository/notify"
)

// Mock Sender
type MockSender struct {
	Result notify.Result

	mu        sync.Mutex
	Summaries []string
}

func (m *MockSender) Send(ctx context.Context, summary string) notify.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Summaries = append(m.Summaries, summary)
	return m.Result
}

func (m *MockSender) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Summaries)
}
