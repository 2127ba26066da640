package types

import "fmt"

// TaskStatus is the workflow state of a Task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "Todo"
	TaskInProgress TaskStatus = "InProgress"
	TaskReview     TaskStatus = "Review"
	TaskDone       TaskStatus = "Done"
)

// Label returns the human-readable board label.
func (s TaskStatus) Label() string {
	switch s {
	case TaskTodo:
		return "To Do"
	case TaskInProgress:
		return "In Progress"
	case TaskReview:
		return "In Review"
	case TaskDone:
		return "Completed"
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// CanTransitionTo reports whether a status change is allowed. Tasks only move
// forward or back along the board; Done is terminal.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == TaskDone {
		return false
	}
	return s != next
}

// TaskPriority ranks a Task's urgency.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank maps priorities to a sortable order, Critical highest.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 0
	}
	return -1
}

// ParsePriority converts a string (e.g. from a generated response) into a
// TaskPriority, rejecting anything outside the closed set.
func ParsePriority(s string) (TaskPriority, error) {
	p := TaskPriority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown task priority %q", s)
	}
	return p, nil
}

// DocType is the eTMF classification of an uploaded document.
type DocType string

const (
	DocProtocol         DocType = "Protocol"
	DocMonitoringReport DocType = "Monitoring Report"
	DocInformedConsent  DocType = "Informed Consent"
	DocLabResult        DocType = "Lab Result"
	DocRegulatory       DocType = "Regulatory"
)

// DocTypes lists all document types in display order.
func DocTypes() []DocType {
	return []DocType{DocProtocol, DocMonitoringReport, DocInformedConsent, DocLabResult, DocRegulatory}
}

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	switch t {
	case DocProtocol, DocMonitoringReport, DocInformedConsent, DocLabResult, DocRegulatory:
		return true
	}
	return false
}

// DocStatus is the analysis state of a Document. Documents are created Pending
// and move to Analyzed or Error exactly once; there is no backward transition.
type DocStatus string

const (
	DocPending  DocStatus = "Pending"
	DocAnalyzed DocStatus = "Analyzed"
	DocError    DocStatus = "Error"
)

// CanTransitionTo enforces the one-way Pending -> Analyzed|Error lifecycle.
func (s DocStatus) CanTransitionTo(next DocStatus) bool {
	return s == DocPending && (next == DocAnalyzed || next == DocError)
}

// Provenance records who created a Task.
type Provenance string

const (
	SourceUser   Provenance = "User"
	SourceAI     Provenance = "AI"
	SourceSystem Provenance = "System"
)

// Actor identifies who performed an audited operation.
type Actor string

const (
	ActorUser Actor = "User"
	ActorAI   Actor = "AI"
)

// MessageType distinguishes inbox messages.
type MessageType string

const (
	MessageEmail  MessageType = "Email"
	MessageSystem MessageType = "System"
)

// TrialStatus is the lifecycle phase of a trial.
type TrialStatus string

const (
	TrialRecruiting TrialStatus = "Recruiting"
	TrialActive     TrialStatus = "Active"
	TrialAnalysis   TrialStatus = "Analysis"
)

// RiskLevel categorizes a simulated risk scenario.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// Valid reports whether l is a known risk level.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// ChatRole is the author of a chat turn.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)
