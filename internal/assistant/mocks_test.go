package assistant

import (
	"context"
	"encoding/json"
	"sync"

	"trialsight/internal/genai"
)

// mockClient scripts the fast-tier completion and session opening.
type mockClient struct {
	mu sync.Mutex

	completeText string
	completeErr  error
	openErr      error
	session      *mockSession

	completePrompts []string
	openInstruction string
}

func (m *mockClient) Complete(_ context.Context, prompt string, _ genai.Tier, _ ...genai.CallOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completePrompts = append(m.completePrompts, prompt)
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return m.completeText, nil
}

func (m *mockClient) CompleteStructured(context.Context, string, *genai.Schema, genai.Tier, ...genai.CallOption) (json.RawMessage, error) {
	panic("not used in assistant tests")
}

func (m *mockClient) OpenSession(_ context.Context, systemInstruction string) (genai.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openInstruction = systemInstruction
	if m.openErr != nil {
		return nil, m.openErr
	}
	if m.session == nil {
		m.session = &mockSession{reply: "ok"}
	}
	return m.session, nil
}

// mockSession scripts replies; block lets tests hold a send in flight.
type mockSession struct {
	mu     sync.Mutex
	reply  string
	err    error
	block  chan struct{}
	sent   []string
	closed bool
}

func (s *mockSession) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	s.sent = append(s.sent, text)
	block := s.block
	reply, err := s.reply, s.err
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (s *mockSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
