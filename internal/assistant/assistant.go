// Package assistant hosts the conversational trial assistant: a multi-turn
// chat session on the deep tier, grounded in the active trial's protocol
// context and task board, plus the one-shot draft helpers for replies and
// site emails.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"trialsight/internal/genai"
	"trialsight/internal/logging"
	"trialsight/internal/types"
)

// State is the assistant session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateGreeting            // opening: session + greeting in flight
	StateReady
	StateSending
	StateClosed
)

var (
	// ErrBusy is returned when a send overlaps an in-flight one. Turns are
	// strictly serialized; the caller retries after the current turn lands.
	ErrBusy = errors.New("assistant is handling another message")
	// ErrNotReady is returned for sends before Open succeeds or after Close.
	ErrNotReady = errors.New("assistant session is not ready")
)

// sendFailureReply is appended in place of a model turn when the network
// call fails. The conversation stays usable.
const sendFailureReply = "I'm having trouble connecting to the network right now. Please try again."

// Session is one trial-scoped conversation. All history lives here;
// switching trials means discarding the session and building a new one.
type Session struct {
	client genai.Client
	trial  types.Trial
	tasks  []types.Task

	mu      sync.Mutex
	state   State
	chat    genai.Session
	history []types.ChatMessage
}

// NewSession builds an unopened session for a trial. The task slice feeds the
// greeting and context; it is captured as-is at session start.
func NewSession(client genai.Client, trial types.Trial, tasks []types.Task) *Session {
	return &Session{client: client, trial: trial, tasks: tasks}
}

// Trial returns the trial this session is scoped to.
func (s *Session) Trial() types.Trial { return s.trial }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open starts the chat session and fetches the greeting concurrently. The
// chat opens on the deep tier while the fast tier drafts the greeting; a
// greeting failure falls back to a static line and never blocks readiness,
// but a chat-open failure aborts and leaves the session retryable.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return fmt.Errorf("assistant session already opened")
	}
	s.state = StateGreeting
	s.mu.Unlock()

	contextStr := s.contextString()

	var (
		chat     genai.Session
		greeting string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opened, err := s.client.OpenSession(gctx, systemInstruction(contextStr))
		if err != nil {
			return err
		}
		chat = opened
		return nil
	})
	g.Go(func() error {
		text, err := s.client.Complete(gctx, greetingPrompt(contextStr, s.tasks), genai.TierFast)
		if err != nil {
			logging.AssistantDebug("greeting fetch failed, using fallback: %v", err)
			greeting = fmt.Sprintf("Hello! I'm your TrialSight assistant for %s. How can I help you today?", s.trial.Name)
			return nil
		}
		greeting = text
		return nil
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.state = StateUninitialized
		s.mu.Unlock()
		return fmt.Errorf("opening assistant session: %w", err)
	}

	s.mu.Lock()
	s.chat = chat
	s.history = append(s.history, modelTurn(greeting))
	s.state = StateReady
	s.mu.Unlock()

	logging.Assistant("session ready for %s (%s)", s.trial.Name, s.trial.ProtocolID)
	return nil
}

// Send delivers one user turn. Turns are serialized: a send while another is
// in flight returns ErrBusy without touching the history. A network failure
// appends a fixed apology as the model turn; the session stays Ready.
func (s *Session) Send(ctx context.Context, text string) (types.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.ChatMessage{}, fmt.Errorf("empty message")
	}

	s.mu.Lock()
	switch s.state {
	case StateSending:
		s.mu.Unlock()
		return types.ChatMessage{}, ErrBusy
	case StateReady:
	default:
		s.mu.Unlock()
		return types.ChatMessage{}, ErrNotReady
	}
	s.state = StateSending
	s.history = append(s.history, types.ChatMessage{
		ID:        uuid.NewString(),
		Role:      types.RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	})
	chat := s.chat
	s.mu.Unlock()

	reply, err := chat.Send(ctx, text)
	if err != nil {
		logging.AssistantError("send failed for %s: %v", s.trial.ProtocolID, err)
		reply = sendFailureReply
	}

	turn := modelTurn(reply)
	s.mu.Lock()
	defer s.mu.Unlock()
	// A Close during the network call wins: the session stays closed and the
	// late turn is dropped rather than resurrecting the conversation.
	if s.state != StateSending {
		return types.ChatMessage{}, ErrNotReady
	}
	s.history = append(s.history, turn)
	s.state = StateReady
	return turn, nil
}

// History returns a copy of the conversation so far, oldest first.
func (s *Session) History() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Close discards the session. History does not survive; a trial switch
// builds a fresh session with no carried-over turns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat != nil {
		s.chat.Close()
		s.chat = nil
	}
	s.state = StateClosed
}

func modelTurn(text string) types.ChatMessage {
	return types.ChatMessage{
		ID:        uuid.NewString(),
		Role:      types.RoleModel,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// contextString renders the trial context block shared by the system
// instruction and the greeting prompt.
func (s *Session) contextString() string {
	var highPrio []string
	for _, t := range s.tasks {
		if t.Priority == types.PriorityHigh || t.Priority == types.PriorityCritical {
			highPrio = append(highPrio, fmt.Sprintf("- %s (%s)", t.Title, t.Status))
		}
	}
	return fmt.Sprintf(`Active Protocol: %s (%s)
Phase: %s
Status: %s
Recruitment: %d / %d
Investigator: %s

Current High Priority Tasks (%d):
%s

General Context:
%s`,
		s.trial.Name, s.trial.ProtocolID,
		s.trial.Phase,
		s.trial.Status,
		s.trial.CurrentRecruitment, s.trial.TargetRecruitment,
		s.trial.Investigator,
		len(highPrio),
		strings.Join(highPrio, "\n"),
		s.trial.AIContext)
}

func systemInstruction(contextStr string) string {
	return fmt.Sprintf(`You are an intelligent, competent Clinical Trial Assistant (like a high-level secretary or trial manager).

Your Goal: Assist the user in managing the clinical trial efficiently.

Behavior:
- Be friendly but professional.
- Be proactive: suggest actions based on risks or deadlines.
- Be context-aware: You know the current protocol status, recruitment numbers, and active tasks.

Context:
%s

If asked about tasks, deadlines, or risks, refer to the provided context.`, contextStr)
}

func greetingPrompt(contextStr string, tasks []types.Task) string {
	titles := make([]string, 0, 5)
	for _, t := range tasks {
		if len(titles) == 5 {
			break
		}
		titles = append(titles, t.Title)
	}
	return fmt.Sprintf(`You are an efficient, friendly clinical trial secretary.

Context:
%s

Current Tasks:
%s

Provide a very short, friendly greeting and list 3 bullet points of high-priority focus items for the trial manager right now.
Be concise.`, contextStr, strings.Join(titles, ", "))
}
