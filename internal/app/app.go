// Package app is the consumer surface of the trial operations core. It binds
// the catalog, store, audit log, generation client, and pipelines behind the
// operations a frontend needs, holding the one piece of session state the
// core has: the active trial and its assistant session.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"trialsight/internal/analysis"
	"trialsight/internal/assistant"
	"trialsight/internal/audit"
	"trialsight/internal/catalog"
	"trialsight/internal/genai"
	"trialsight/internal/logging"
	"trialsight/internal/simulation"
	"trialsight/internal/store"
	"trialsight/internal/types"
)

// ValidationError reports malformed caller input: an unknown trial, task,
// message, or document identifier.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func validationErr(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// App wires the whole core. Safe for concurrent use: the store and audit log
// carry their own locks, and App's own mutex guards the active-trial state.
type App struct {
	catalog  *catalog.Catalog
	store    *store.Store
	audit    *audit.Log
	client   genai.Client
	analysis *analysis.Pipeline
	risks    *simulation.Engine

	mu       sync.Mutex
	activeID string
	session  *assistant.Session
	lastSim  *simulation.Result
}

// New builds the façade. The active trial starts as the catalog's first
// entry.
func New(cat *catalog.Catalog, st *store.Store, log *audit.Log, client genai.Client) *App {
	return &App{
		catalog:  cat,
		store:    st,
		audit:    log,
		client:   client,
		analysis: analysis.New(client, st, log),
		risks:    simulation.New(client, log),
		activeID: cat.First().ID,
	}
}

// Trials lists all trials in the catalog.
func (a *App) Trials() []types.Trial {
	return a.catalog.List()
}

// ActiveTrial returns the currently selected trial.
func (a *App) ActiveTrial() types.Trial {
	a.mu.Lock()
	id := a.activeID
	a.mu.Unlock()
	t, _ := a.catalog.Get(id)
	return t
}

// SelectTrial switches the active trial. The assistant session and the last
// simulation result are trial-scoped, so both are discarded on a switch.
// Selecting the already-active trial is a no-op.
func (a *App) SelectTrial(id string) error {
	if _, ok := a.catalog.Get(id); !ok {
		return validationErr("unknown trial %q", id)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if id == a.activeID {
		return nil
	}
	if a.session != nil {
		a.session.Close()
		a.session = nil
	}
	a.lastSim = nil
	a.activeID = id
	logging.Boot("active trial switched to %s", id)
	return nil
}

// ProjectEntities returns the active trial's tasks, documents, and messages.
func (a *App) ProjectEntities() store.Projection {
	return a.store.Project(a.ActiveTrial().ID)
}

// UnreadMessages returns the active trial's unread message count.
func (a *App) UnreadMessages() int {
	return a.store.UnreadCount(a.ActiveTrial().ID)
}

// UpdateTaskStatus moves a task through its workflow and records the change.
func (a *App) UpdateTaskStatus(id string, status types.TaskStatus) (types.Task, error) {
	if !status.Valid() {
		return types.Task{}, validationErr("unknown task status %q", status)
	}
	task, err := a.store.UpdateTaskStatus(id, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidTransition) {
			return types.Task{}, &ValidationError{Msg: fmt.Sprintf("task %q", id), Err: err}
		}
		return types.Task{}, err
	}
	a.audit.Record(types.ActorUser, audit.ActionTaskUpdate,
		fmt.Sprintf("Task %s status changed to %s", id, status.Label()), a.ActiveTrial().ProtocolID)
	return task, nil
}

// MarkMessageRead flips a message to read and records the change.
func (a *App) MarkMessageRead(id string) (types.Message, error) {
	msg, err := a.store.MarkMessageRead(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Message{}, &ValidationError{Msg: fmt.Sprintf("message %q", id), Err: err}
		}
		return types.Message{}, err
	}
	a.audit.Record(types.ActorUser, audit.ActionCommunication,
		fmt.Sprintf("Read message from %s", msg.Sender), a.ActiveTrial().ProtocolID)
	return msg, nil
}

// AnalyzeDocument runs the analysis pipeline against the active trial.
func (a *App) AnalyzeDocument(ctx context.Context, up analysis.Upload) (*analysis.Outcome, error) {
	return a.analysis.AnalyzeDocument(ctx, a.ActiveTrial(), up)
}

// RunSimulation runs a risk simulation for the active trial. A successful
// run replaces the retained result; a failed run leaves it untouched.
func (a *App) RunSimulation(ctx context.Context, parameters string) (*simulation.Result, error) {
	result, err := a.risks.Simulate(ctx, a.ActiveTrial(), parameters)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.lastSim = result
	a.mu.Unlock()
	return result, nil
}

// LastSimulation returns the most recent successful simulation for the
// active trial, or nil.
func (a *App) LastSimulation() *simulation.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSim
}

// SendChatMessage sends one turn to the assistant, opening the session
// lazily on first use.
func (a *App) SendChatMessage(ctx context.Context, text string) (types.ChatMessage, error) {
	session, err := a.ensureSession(ctx)
	if err != nil {
		return types.ChatMessage{}, err
	}
	return session.Send(ctx, text)
}

// ChatHistory returns the assistant conversation for the active trial.
// Empty until the first send or OpenAssistant call.
func (a *App) ChatHistory() []types.ChatMessage {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()
	if session == nil {
		return nil
	}
	return session.History()
}

// OpenAssistant eagerly opens the assistant session, returning its greeting.
func (a *App) OpenAssistant(ctx context.Context) (types.ChatMessage, error) {
	session, err := a.ensureSession(ctx)
	if err != nil {
		return types.ChatMessage{}, err
	}
	history := session.History()
	if len(history) == 0 {
		return types.ChatMessage{}, fmt.Errorf("assistant session has no greeting")
	}
	return history[0], nil
}

// ensureSession returns the live session for the active trial, building and
// opening one if needed.
func (a *App) ensureSession(ctx context.Context) (*assistant.Session, error) {
	a.mu.Lock()
	if a.session != nil {
		session := a.session
		a.mu.Unlock()
		return session, nil
	}
	trial := mustGet(a.catalog, a.activeID)
	a.mu.Unlock()

	tasks := a.store.Project(trial.ID).Tasks
	session := assistant.NewSession(a.client, trial, tasks)
	if err := session.Open(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// A concurrent open or trial switch may have won; keep the session only
	// if the trial is still active and the slot is still empty.
	if a.session != nil {
		session.Close()
		return a.session, nil
	}
	if a.activeID != trial.ID {
		session.Close()
		return nil, validationErr("trial switched while opening assistant")
	}
	a.session = session
	return session, nil
}

// DraftReply drafts a reply to a stored message and records the assist.
func (a *App) DraftReply(ctx context.Context, messageID string) (string, error) {
	msg, err := a.store.GetMessage(messageID)
	if err != nil {
		return "", &ValidationError{Msg: fmt.Sprintf("message %q", messageID), Err: err}
	}
	trial := a.ActiveTrial()
	draft := assistant.DraftReply(ctx, a.client, trial, msg)
	a.audit.Record(types.ActorAI, audit.ActionAIAssistance,
		fmt.Sprintf("Generated smart reply for message from %s", msg.Sender), trial.ProtocolID)
	return draft, nil
}

// DraftEmail drafts a site-coordinator email for a stored task and records
// the assist.
func (a *App) DraftEmail(ctx context.Context, taskID string) (string, error) {
	task, err := a.store.GetTask(taskID)
	if err != nil {
		return "", &ValidationError{Msg: fmt.Sprintf("task %q", taskID), Err: err}
	}
	trial := a.ActiveTrial()
	draft := assistant.DraftEmail(ctx, a.client, trial, task)
	a.audit.Record(types.ActorAI, audit.ActionIntegration,
		fmt.Sprintf("Drafted site email for task %s", task.ID), trial.ProtocolID)
	return draft, nil
}

// AuditEntries exposes the audit trail, newest first.
func (a *App) AuditEntries() []types.AuditLogEntry {
	return a.audit.Entries()
}

func mustGet(cat *catalog.Catalog, id string) types.Trial {
	t, ok := cat.Get(id)
	if !ok {
		// The active id is always validated on the way in.
		panic(fmt.Sprintf("active trial %q missing from catalog", id))
	}
	return t
}
