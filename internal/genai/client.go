// Package genai is the structured generation client. It wraps the Gemini SDK
// behind a small interface with two model tiers: a fast tier for low-latency
// drafting and a deep tier for analysis, simulation, and the assistant chat.
// Structured calls constrain the response with a schema on the request and
// validate the decoded JSON again at the boundary before any caller sees it.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tier selects which model serves a request.
type Tier string

const (
	// TierFast serves latency-sensitive drafting (smart replies, email drafts).
	TierFast Tier = "fast"
	// TierDeep serves reasoning-heavy work (analysis, simulation, chat).
	TierDeep Tier = "deep"
)

// Default model ids per tier.
const (
	DefaultFastModel = "gemini-2.5-flash-lite"
	DefaultDeepModel = "gemini-3-pro-preview"
)

// Client is the generation surface the pipelines depend on. Implementations
// must be safe for concurrent use.
type Client interface {
	// Complete returns free-form text for a prompt.
	Complete(ctx context.Context, prompt string, tier Tier, opts ...CallOption) (string, error)

	// CompleteStructured returns JSON conforming to schema. The raw message
	// has already passed boundary validation when this returns nil error.
	CompleteStructured(ctx context.Context, prompt string, schema *Schema, tier Tier, opts ...CallOption) (json.RawMessage, error)

	// OpenSession starts a multi-turn chat on the deep tier with the given
	// system instruction.
	OpenSession(ctx context.Context, systemInstruction string) (Session, error)
}

// Session is one multi-turn conversation. Sessions are not safe for
// concurrent sends; callers serialize.
type Session interface {
	Send(ctx context.Context, text string) (string, error)
	Close()
}

// Stage names where in a generation call a failure happened.
type Stage string

const (
	StageRequest  Stage = "request"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
)

// GenerationError wraps any failure of a generation call: transport, empty
// response, undecodable output, or schema violation. Callers that degrade
// gracefully match on this type.
type GenerationError struct {
	Stage Stage
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s, model=%s): %v", e.Stage, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func genErr(stage Stage, model string, err error) *GenerationError {
	return &GenerationError{Stage: stage, Model: model, Err: err}
}
