package app

import (
	"context"
	"encoding/json"
	"sync"

	"trialsight/internal/genai"
)

type mockClient struct {
	mu sync.Mutex

	completeText   string
	completeErr    error
	structuredJSON string
	structuredErr  error
	openErr        error

	opens   int
	prompts []string
}

func (m *mockClient) Complete(_ context.Context, prompt string, _ genai.Tier, _ ...genai.CallOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return m.completeText, nil
}

func (m *mockClient) CompleteStructured(_ context.Context, prompt string, schema *genai.Schema, _ genai.Tier, _ ...genai.CallOption) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.structuredErr != nil {
		return nil, m.structuredErr
	}
	raw := json.RawMessage(m.structuredJSON)
	if err := schema.Validate(raw); err != nil {
		return nil, &genai.GenerationError{Stage: genai.StageValidate, Model: "mock", Err: err}
	}
	return raw, nil
}

func (m *mockClient) OpenSession(context.Context, string) (genai.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return &mockSession{reply: "chat reply"}, nil
}

type mockSession struct {
	mu     sync.Mutex
	reply  string
	err    error
	closed bool
}

func (s *mockSession) Send(context.Context, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *mockSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
