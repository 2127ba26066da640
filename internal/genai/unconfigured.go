package genai

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoAPIKey is the cause carried by every call on an unconfigured client.
var ErrNoAPIKey = errors.New("no API key configured (set GEMINI_API_KEY)")

// Unconfigured returns a Client whose every call fails with a
// GenerationError wrapping ErrNoAPIKey. It lets the rest of the system run
// without credentials; only generation-backed operations degrade.
func Unconfigured() Client {
	return unconfigured{}
}

type unconfigured struct{}

func (unconfigured) Complete(context.Context, string, Tier, ...CallOption) (string, error) {
	return "", genErr(StageRequest, "unconfigured", ErrNoAPIKey)
}

func (unconfigured) CompleteStructured(context.Context, string, *Schema, Tier, ...CallOption) (json.RawMessage, error) {
	return nil, genErr(StageRequest, "unconfigured", ErrNoAPIKey)
}

func (unconfigured) OpenSession(context.Context, string) (Session, error) {
	return nil, genErr(StageRequest, "unconfigured", ErrNoAPIKey)
}
