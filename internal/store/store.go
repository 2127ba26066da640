// Package store is the in-memory entity store for tasks, documents, and
// messages. All collections live for the process lifetime only; persistence
// is out of scope. Every accessor returns copies, so callers can never alias
// internal state.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"trialsight/internal/logging"
	"trialsight/internal/types"
)

// ErrNotFound is returned when an entity id does not exist.
var ErrNotFound = errors.New("entity not found")

// ErrInvalidTransition is returned when a status change is not allowed by the
// entity's lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store holds all mutable entities, guarded by a single RWMutex. Generation
// calls run on other goroutines while the store is read, so every exported
// method takes the lock.
type Store struct {
	mu        sync.RWMutex
	tasks     []types.Task
	documents []types.Document
	messages  []types.Message
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Projection is the trial-scoped view of the store. Slices are copies.
type Projection struct {
	Tasks     []types.Task
	Documents []types.Document
	Messages  []types.Message
}

// Project returns all entities scoped to trialID. Messages with no trial id
// are system-wide and excluded from every per-trial projection.
func (s *Store) Project(trialID string) Projection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := Projection{}
	for _, t := range s.tasks {
		if t.TrialID == trialID {
			p.Tasks = append(p.Tasks, t)
		}
	}
	for _, d := range s.documents {
		if d.TrialID == trialID {
			p.Documents = append(p.Documents, d)
		}
	}
	for _, m := range s.messages {
		if m.TrialID == trialID {
			p.Messages = append(p.Messages, m)
		}
	}
	return p
}

// InsertTask adds a task. A missing id gets a fresh uuid. Returns the stored
// task.
func (s *Store) InsertTask(t types.Task) types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tasks = append(s.tasks, t)
	logging.StoreDebug("task %s inserted (trial=%s, source=%s)", t.ID, t.TrialID, t.Source)
	return t
}

// InsertTasks adds a batch of tasks in one critical section, preserving order.
func (s *Store) InsertTasks(tasks []types.Task) []types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.tasks = append(s.tasks, t)
		out = append(out, t)
	}
	logging.StoreDebug("%d task(s) inserted", len(out))
	return out
}

// UpdateTaskStatus moves a task to a new status. The transition rules in
// types.TaskStatus apply; a disallowed move or unknown id is an error.
func (s *Store) UpdateTaskStatus(id string, status types.TaskStatus) (types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		cur := s.tasks[i].Status
		if !cur.CanTransitionTo(status) {
			return types.Task{}, fmt.Errorf("task %s: %w: %s -> %s", id, ErrInvalidTransition, cur, status)
		}
		s.tasks[i].Status = status
		logging.Store("task %s: %s -> %s", id, cur, status)
		return s.tasks[i], nil
	}
	return types.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(id string) (types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return types.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
}

// InsertDocument adds a document. A missing id gets a fresh uuid; a missing
// upload date gets the current time.
func (s *Store) InsertDocument(d types.Document) types.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadDate.IsZero() {
		d.UploadDate = time.Now()
	}
	s.documents = append(s.documents, d)
	logging.StoreDebug("document %s inserted (trial=%s, type=%s)", d.ID, d.TrialID, d.Type)
	return d
}

// SetDocumentOutcome resolves a pending document to Analyzed or Error,
// recording the risk score. The one-way lifecycle in types.DocStatus applies.
func (s *Store) SetDocumentOutcome(id string, status types.DocStatus, riskScore int) (types.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.documents {
		if s.documents[i].ID != id {
			continue
		}
		cur := s.documents[i].Status
		if !cur.CanTransitionTo(status) {
			return types.Document{}, fmt.Errorf("document %s: %w: %s -> %s", id, ErrInvalidTransition, cur, status)
		}
		s.documents[i].Status = status
		s.documents[i].RiskScore = riskScore
		logging.Store("document %s: %s -> %s (risk=%d)", id, cur, status, riskScore)
		return s.documents[i], nil
	}
	return types.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
}

// GetDocument returns the document with the given id.
func (s *Store) GetDocument(id string) (types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.documents {
		if d.ID == id {
			return d, nil
		}
	}
	return types.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
}

// InsertMessage adds a message. A missing id gets a fresh uuid; a missing
// timestamp gets the current time.
func (s *Store) InsertMessage(m types.Message) types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	s.messages = append(s.messages, m)
	return m
}

// GetMessage returns the message with the given id.
func (s *Store) GetMessage(id string) (types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return types.Message{}, fmt.Errorf("message %s: %w", id, ErrNotFound)
}

// MarkMessageRead flips a message's read flag on. The flag is monotonic:
// marking an already-read message again is a no-op, not an error.
func (s *Store) MarkMessageRead(id string) (types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID != id {
			continue
		}
		s.messages[i].Read = true
		return s.messages[i], nil
	}
	return types.Message{}, fmt.Errorf("message %s: %w", id, ErrNotFound)
}

// UnreadCount returns the number of unread messages scoped to trialID.
func (s *Store) UnreadCount(trialID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, m := range s.messages {
		if m.TrialID == trialID && !m.Read {
			n++
		}
	}
	return n
}

// Seed loads initial entities in one shot. Meant for startup fixtures; ids
// are taken as-is.
func (s *Store) Seed(tasks []types.Task, docs []types.Document, messages []types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, tasks...)
	s.documents = append(s.documents, docs...)
	s.messages = append(s.messages, messages...)
	logging.Store("seeded %d task(s), %d document(s), %d message(s)", len(tasks), len(docs), len(messages))
}
