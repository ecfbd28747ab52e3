package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real. Es seguro para uso
// concurrente: las llamadas registradas se protegen con un mutex.
type MockClient struct {
	Response         string
	Err              error
	ImageDescription string
	ImageErr         error

	mu            sync.Mutex
	CompleteCalls []string
	ImageCalls    []string
}

func (m *MockClient) Complete(ctx context.Context, instructions, prompt string) (string, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, prompt)
	m.mu.Unlock()
	return m.Response, m.Err
}

func (m *MockClient) DescribeImage(ctx context.Context, imageURL string) (string, error) {
	m.mu.Lock()
	m.ImageCalls = append(m.ImageCalls, imageURL)
	m.mu.Unlock()
	return m.ImageDescription, m.ImageErr
}
