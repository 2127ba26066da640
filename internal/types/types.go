// Package types provides the shared domain types used across trialsight
// packages. This package exists to break import cycles between the store,
// audit, and AI pipeline packages. Types here are foundational data
// structures with no complex dependencies.
package types

import (
	"math"
	"time"
)

// RecruitmentSite is one row of a trial's per-site recruitment dataset.
type RecruitmentSite struct {
	Label  string `json:"label" yaml:"label"`
	Actual int    `json:"actual" yaml:"actual"`
	Target int    `json:"target" yaml:"target"`
}

// EndpointCount is one observed endpoint tally for the dashboard.
type EndpointCount struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
	Color string `json:"color" yaml:"color"`
}

// AdherencePoint is a per-timepoint adherence measurement for both arms.
type AdherencePoint struct {
	Timepoint string `json:"timepoint" yaml:"timepoint"`
	ArmA      int    `json:"armA" yaml:"arm_a"`
	ArmB      int    `json:"armB" yaml:"arm_b"`
}

// Trial is a clinical study record, the top-level scoping unit for tasks,
// documents, and most messages. Trials are read-only reference data for the
// lifetime of a session; AIContext is passed verbatim as grounding for every
// generation request touching this trial.
type Trial struct {
	ID                 string      `json:"id" yaml:"id"`
	ProtocolID         string      `json:"protocolId" yaml:"protocol_id"`
	Name               string      `json:"name" yaml:"name"`
	Phase              string      `json:"phase" yaml:"phase"`
	Description        string      `json:"description" yaml:"description"`
	Investigator       string      `json:"investigator" yaml:"investigator"`
	Status             TrialStatus `json:"status" yaml:"status"`
	TargetRecruitment  int         `json:"targetRecruitment" yaml:"target_recruitment"`
	CurrentRecruitment int         `json:"currentRecruitment" yaml:"current_recruitment"`

	RecruitmentData []RecruitmentSite `json:"recruitmentData" yaml:"recruitment_data"`
	EndpointData    []EndpointCount   `json:"endpointData" yaml:"endpoint_data"`
	AdherenceData   []AdherencePoint  `json:"adherenceData" yaml:"adherence_data"`

	AIContext string `json:"aiContext" yaml:"ai_context"`
}

// RecruitmentPercent returns the rounded percentage of target recruitment
// reached, or 0 when no target is set.
func (t Trial) RecruitmentPercent() int {
	if t.TargetRecruitment <= 0 {
		return 0
	}
	return int(math.Round(float64(t.CurrentRecruitment) / float64(t.TargetRecruitment) * 100))
}

// Task is a unit of operational work scoped to one trial. Tasks are mutated
// only through status transitions and are never deleted.
type Task struct {
	ID           string       `json:"id"`
	TrialID      string       `json:"trialId"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	DueDate      time.Time    `json:"dueDate"`
	Assignee     string       `json:"assignee"`
	Source       Provenance   `json:"source"`
	RelatedDocID string       `json:"relatedDocId,omitempty"`
}

// Document is an eTMF upload scoped to one trial. RiskScore is meaningful
// only when Status is Analyzed.
type Document struct {
	ID         string    `json:"id"`
	TrialID    string    `json:"trialId"`
	Name       string    `json:"name"`
	Type       DocType   `json:"type"`
	UploadDate time.Time `json:"uploadDate"`
	Size       string    `json:"size"`
	Status     DocStatus `json:"status"`
	RiskScore  int       `json:"riskScore"`
}

// Message is an inbox item. TrialID may be empty for system-wide messages,
// which are excluded from every per-trial projection. The read flag is
// monotonic: once read, never unread.
type Message struct {
	ID        string      `json:"id"`
	TrialID   string      `json:"trialId,omitempty"`
	Sender    string      `json:"sender"`
	Subject   string      `json:"subject"`
	Preview   string      `json:"preview"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Read      bool        `json:"read"`
	Type      MessageType `json:"type"`
}

// AuditLogEntry is one immutable record of a state-mutating operation.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     Actor     `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	EntityID  string    `json:"entityId,omitempty"`
}

// ChatMessage is one turn in an assistant session's append-only history.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
