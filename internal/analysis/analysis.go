// Package analysis is the document analysis pipeline: a document upload goes
// in, and a risk assessment plus AI-generated follow-up tasks come out. Every
// run leaves an audit trail whether it succeeds or fails.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trialsight/internal/audit"
	"trialsight/internal/genai"
	"trialsight/internal/logging"
	"trialsight/internal/store"
	"trialsight/internal/types"
)

// thinkingBudget caps reasoning tokens for analysis calls.
const thinkingBudget = 1024

// taskDueOffset is how far out AI-generated follow-up tasks are due.
const taskDueOffset = 7 * 24 * time.Hour

// defaultAssignee receives AI-generated tasks.
const defaultAssignee = "CRA"

// analysisSchema constrains the model's assessment. Priority is a closed
// enum, so an out-of-vocabulary priority fails boundary validation instead of
// leaking into the task board.
var analysisSchema = &genai.Schema{
	Type: "object",
	Properties: map[string]*genai.Schema{
		"summary": {Type: "string", Description: "Executive summary of the document content."},
		"riskScore": {
			Type:        "integer",
			Description: "A risk score from 0 to 100 based on compliance issues.",
			Minimum:     genai.Float(0),
			Maximum:     genai.Float(100),
		},
		"risks": {
			Type:        "array",
			Items:       &genai.Schema{Type: "string"},
			Description: "List of identified operational or compliance risks.",
		},
		"tasks": {
			Type: "array",
			Items: &genai.Schema{
				Type: "object",
				Properties: map[string]*genai.Schema{
					"title":       {Type: "string"},
					"description": {Type: "string"},
					"priority":    {Type: "string", Enum: []string{"Low", "Medium", "High", "Critical"}},
				},
				Required: []string{"title", "description", "priority"},
			},
			Description: "Recommended follow-up tasks based on the findings.",
		},
	},
	Required: []string{"summary", "riskScore", "risks", "tasks"},
}

// Result is the decoded assessment of one document.
type Result struct {
	Summary   string          `json:"summary"`
	RiskScore int             `json:"riskScore"`
	Risks     []string        `json:"risks"`
	Tasks     []GeneratedTask `json:"tasks"`
}

// GeneratedTask is one follow-up recommendation before it becomes a stored Task.
type GeneratedTask struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    types.TaskPriority `json:"priority"`
}

// Upload describes the document being analyzed.
type Upload struct {
	Name    string
	Type    types.DocType
	Size    string
	Content string
}

// Pipeline runs document analysis against a trial.
type Pipeline struct {
	client genai.Client
	store  *store.Store
	audit  *audit.Log
}

// New wires the pipeline.
func New(client genai.Client, st *store.Store, log *audit.Log) *Pipeline {
	return &Pipeline{client: client, store: st, audit: log}
}

// Outcome is everything a successful analysis produced.
type Outcome struct {
	Document types.Document
	Result   Result
	Tasks    []types.Task
}

// AnalyzeDocument records the upload, asks the deep tier for an assessment,
// and on success stores the analyzed document and its follow-up tasks. On any
// failure the document is marked Error and an Error audit entry is recorded;
// nothing else is stored.
func (p *Pipeline) AnalyzeDocument(ctx context.Context, trial types.Trial, up Upload) (*Outcome, error) {
	if !up.Type.Valid() {
		return nil, fmt.Errorf("unknown document type %q", up.Type)
	}

	doc := p.store.InsertDocument(types.Document{
		TrialID: trial.ID,
		Name:    up.Name,
		Type:    up.Type,
		Size:    up.Size,
		Status:  types.DocPending,
	})
	p.audit.Record(types.ActorUser, audit.ActionDocumentUpload,
		fmt.Sprintf("Uploaded %s for %s", doc.Name, trial.ProtocolID), trial.ProtocolID)

	result, err := p.assess(ctx, trial, up)
	if err != nil {
		logging.AnalysisError("analysis of %s failed: %v", doc.Name, err)
		if _, serr := p.store.SetDocumentOutcome(doc.ID, types.DocError, 0); serr != nil {
			logging.AnalysisError("marking document %s failed: %v", doc.ID, serr)
		}
		p.audit.Record(types.ActorAI, audit.ActionError, "Analysis failed for document", trial.ProtocolID)
		return nil, err
	}

	analyzed, err := p.store.SetDocumentOutcome(doc.ID, types.DocAnalyzed, result.RiskScore)
	if err != nil {
		return nil, err
	}
	tasks := p.store.InsertTasks(p.buildTasks(trial, analyzed, result))

	// One outcome entry covers the analysis and its generated tasks; the
	// upload entry above makes exactly two per invocation.
	details := fmt.Sprintf("Analyzed %s in context of %s. Risk: %d", doc.Name, trial.ProtocolID, result.RiskScore)
	if len(tasks) > 0 {
		details += fmt.Sprintf(" Generated %d tasks from document analysis.", len(tasks))
	}
	p.audit.Record(types.ActorAI, audit.ActionAIAnalysis, details, trial.ProtocolID)

	logging.Analysis("analyzed %s (risk=%d, tasks=%d)", doc.Name, result.RiskScore, len(tasks))
	return &Outcome{Document: analyzed, Result: *result, Tasks: tasks}, nil
}

// assess runs the structured generation call and decodes the result.
func (p *Pipeline) assess(ctx context.Context, trial types.Trial, up Upload) (*Result, error) {
	prompt := fmt.Sprintf(`You are an expert Clinical Trial Assistant.

CURRENT TRIAL PROTOCOL CONTEXT:
%s

TASK:
Analyze the following %s content for compliance with the protocol above, safety risks, and operational bottlenecks.

DOCUMENT CONTENT:
%s

Extract specific risks and generate actionable tasks.`, trial.AIContext, up.Type, up.Content)

	raw, err := p.client.CompleteStructured(ctx, prompt, analysisSchema, genai.TierDeep,
		genai.WithThinkingBudget(thinkingBudget))
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding analysis result: %w", err)
	}
	return &result, nil
}

// buildTasks converts generated recommendations into board tasks linked to
// the analyzed document.
func (p *Pipeline) buildTasks(trial types.Trial, doc types.Document, result *Result) []types.Task {
	due := doc.UploadDate.Add(taskDueOffset)
	tasks := make([]types.Task, 0, len(result.Tasks))
	for _, g := range result.Tasks {
		tasks = append(tasks, types.Task{
			TrialID:      trial.ID,
			Title:        g.Title,
			Description:  g.Description,
			Status:       types.TaskTodo,
			Priority:     g.Priority,
			DueDate:      due,
			Assignee:     defaultAssignee,
			Source:       types.SourceAI,
			RelatedDocID: doc.ID,
		})
	}
	return tasks
}
