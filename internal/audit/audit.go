// Package audit keeps the append-only record of state-mutating operations.
// Entries are never edited or removed; the newest entry is always first.
// Every record is also mirrored to the audit log file so the trail survives
// the process even though the in-memory log does not.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"trialsight/internal/logging"
	"trialsight/internal/types"
)

// Known audit actions. Callers pass these rather than free-form strings so
// the trail stays queryable.
const (
	ActionDocumentUpload = "Document Upload"
	ActionAIAnalysis     = "AI Analysis"
	ActionSimulation     = "Simulation"
	ActionTaskUpdate     = "Task Update"
	ActionAIAssistance   = "AI Assistance"
	ActionCommunication  = "Communication"
	ActionIntegration    = "Integration"
	ActionAIGeneration   = "AI Generation"
	ActionError          = "Error"
)

// Log is the in-memory audit trail.
type Log struct {
	mu      sync.RWMutex
	entries []types.AuditLogEntry
}

// New returns an empty audit log.
func New() *Log {
	return &Log{}
}

// Record appends an entry with a fresh id and the current time. The entry is
// prepended so Entries reads newest-first without sorting.
func (l *Log) Record(actor types.Actor, action, details, entityID string) types.AuditLogEntry {
	entry := types.AuditLogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		EntityID:  entityID,
	}

	l.mu.Lock()
	l.entries = append([]types.AuditLogEntry{entry}, l.entries...)
	l.mu.Unlock()

	logging.Audit("[%s] %s: %s (entity=%s)", actor, action, details, entityID)
	return entry
}

// Entries returns a copy of the trail, newest first.
func (l *Log) Entries() []types.AuditLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.AuditLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
