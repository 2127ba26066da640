package simulation

import (
	"context"
	"encoding/json"

	"trialsight/internal/genai"
)

type mockClient struct {
	structuredJSON string
	structuredErr  error

	prompts []string
	tiers   []genai.Tier
}

func (m *mockClient) Complete(context.Context, string, genai.Tier, ...genai.CallOption) (string, error) {
	panic("not used in simulation tests")
}

func (m *mockClient) CompleteStructured(_ context.Context, prompt string, schema *genai.Schema, tier genai.Tier, _ ...genai.CallOption) (json.RawMessage, error) {
	m.prompts = append(m.prompts, prompt)
	m.tiers = append(m.tiers, tier)
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
	panic("not used in simulation tests")
}
