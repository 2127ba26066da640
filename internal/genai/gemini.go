package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	genaisdk "google.golang.org/genai"

	"trialsight/internal/logging"
)

// Options configures the Gemini-backed client.
type Options struct {
	APIKey    string
	FastModel string // defaults to DefaultFastModel
	DeepModel string // defaults to DefaultDeepModel
	Timeout   time.Duration
}

// defaultTimeout bounds calls whose context carries no deadline.
const defaultTimeout = 120 * time.Second

// minRequestInterval throttles outbound requests across all tiers.
const minRequestInterval = 600 * time.Millisecond

// Gemini implements Client over the Google GenAI SDK.
type Gemini struct {
	client    *genaisdk.Client
	fastModel string
	deepModel string
	timeout   time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// New creates a Gemini-backed client.
func New(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genaisdk.NewClient(ctx, &genaisdk.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	g := &Gemini{
		client:    client,
		fastModel: opts.FastModel,
		deepModel: opts.DeepModel,
		timeout:   opts.Timeout,
	}
	if g.fastModel == "" {
		g.fastModel = DefaultFastModel
	}
	if g.deepModel == "" {
		g.deepModel = DefaultDeepModel
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	return g, nil
}

func (g *Gemini) modelFor(tier Tier) string {
	if tier == TierDeep {
		return g.deepModel
	}
	return g.fastModel
}

// withDeadline bounds ctx when the caller supplied no deadline of its own.
func (g *Gemini) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

// throttle spaces requests out. The Gemini free tier rate-limits hard; one
// in-flight request per interval keeps bursts from tripping 429s.
func (g *Gemini) throttle() {
	g.mu.Lock()
	elapsed := time.Since(g.lastRequest)
	if elapsed < minRequestInterval {
		time.Sleep(minRequestInterval - elapsed)
	}
	g.lastRequest = time.Now()
	g.mu.Unlock()
}

// CallOption tunes a single generation call.
type CallOption func(*genaisdk.GenerateContentConfig)

// WithSystemInstruction sets the system instruction for one call.
func WithSystemInstruction(text string) CallOption {
	return func(cfg *genaisdk.GenerateContentConfig) {
		cfg.SystemInstruction = genaisdk.NewContentFromText(text, genaisdk.RoleUser)
	}
}

// WithTemperature sets the sampling temperature for one call.
func WithTemperature(t float32) CallOption {
	return func(cfg *genaisdk.GenerateContentConfig) {
		cfg.Temperature = genaisdk.Ptr(t)
	}
}

// WithThinkingBudget caps the model's reasoning token budget for one call.
func WithThinkingBudget(tokens int32) CallOption {
	return func(cfg *genaisdk.GenerateContentConfig) {
		cfg.ThinkingConfig = &genaisdk.ThinkingConfig{ThinkingBudget: genaisdk.Ptr(tokens)}
	}
}

// Complete returns free-form text for a prompt.
func (g *Gemini) Complete(ctx context.Context, prompt string, tier Tier, opts ...CallOption) (string, error) {
	cfg := &genaisdk.GenerateContentConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	model := g.modelFor(tier)

	text, err := g.generate(ctx, model, prompt, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// CompleteStructured returns schema-conforming JSON for a prompt. The request
// carries the schema so the model emits JSON directly; the decoded response
// is validated again before being returned.
func (g *Gemini) CompleteStructured(ctx context.Context, prompt string, schema *Schema, tier Tier, opts ...CallOption) (json.RawMessage, error) {
	cfg := &genaisdk.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema.ToGenAI(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	model := g.modelFor(tier)

	text, err := g.generate(ctx, model, prompt, cfg)
	if err != nil {
		return nil, err
	}

	raw := json.RawMessage(strings.TrimSpace(text))
	if !json.Valid(raw) {
		logging.GenAIError("model %s returned undecodable JSON (%d bytes)", model, len(raw))
		return nil, genErr(StageDecode, model, fmt.Errorf("response is not valid JSON"))
	}
	if err := schema.Validate(raw); err != nil {
		logging.GenAIError("model %s response failed schema validation: %v", model, err)
		return nil, genErr(StageValidate, model, err)
	}
	return raw, nil
}

// generate runs one GenerateContent call with throttling, a bounded deadline,
// and a single retry on transient failures.
func (g *Gemini) generate(ctx context.Context, model, prompt string, cfg *genaisdk.GenerateContentConfig) (string, error) {
	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	contents := []*genaisdk.Content{
		genaisdk.NewContentFromText(prompt, genaisdk.RoleUser),
	}

	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			logging.GenAIWarn("retrying %s after transient error: %v", model, lastErr)
			select {
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			case <-ctx.Done():
				return "", genErr(StageRequest, model, ctx.Err())
			}
		}
		g.throttle()

		start := time.Now()
		resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			lastErr = err
			if isTransient(err) && ctx.Err() == nil {
				continue
			}
			return "", genErr(StageRequest, model, err)
		}

		text := resp.Text()
		if text == "" {
			return "", genErr(StageDecode, model, fmt.Errorf("empty response"))
		}
		logging.GenAIDebug("%s completed in %v (%d chars)", model, time.Since(start).Round(time.Millisecond), len(text))
		return text, nil
	}
	return "", genErr(StageRequest, model, lastErr)
}

// isTransient reports whether an error is worth one retry: rate limiting or
// server-side unavailability, never schema or auth failures.
func isTransient(err error) bool {
	var apiErr genaisdk.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 503, 504:
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "connection reset")
}

// OpenSession starts a multi-turn chat on the deep tier.
func (g *Gemini) OpenSession(ctx context.Context, systemInstruction string) (Session, error) {
	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	model := g.deepModel
	cfg := &genaisdk.GenerateContentConfig{
		SystemInstruction: genaisdk.NewContentFromText(systemInstruction, genaisdk.RoleUser),
	}
	chat, err := g.client.Chats.Create(ctx, model, cfg, nil)
	if err != nil {
		return nil, genErr(StageRequest, model, err)
	}
	logging.GenAI("chat session opened on %s", model)
	return &geminiSession{g: g, chat: chat, model: model}, nil
}

type geminiSession struct {
	g     *Gemini
	chat  *genaisdk.Chat
	model string
}

// Send delivers one user turn and returns the model's reply. The SDK chat
// carries the running history, so a failed send leaves it unchanged.
func (s *geminiSession) Send(ctx context.Context, text string) (string, error) {
	ctx, cancel := s.g.withDeadline(ctx)
	defer cancel()

	s.g.throttle()
	resp, err := s.chat.SendMessage(ctx, genaisdk.Part{Text: text})
	if err != nil {
		return "", genErr(StageRequest, s.model, err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", genErr(StageDecode, s.model, fmt.Errorf("empty response"))
	}
	return out, nil
}

// Close discards the session. The SDK holds no connection state per chat, so
// dropping the history is all there is to it.
func (s *geminiSession) Close() {
	s.chat = nil
}
