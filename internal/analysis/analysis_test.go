package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trialsight/internal/audit"
	"trialsight/internal/genai"
	"trialsight/internal/store"
	"trialsight/internal/types"
)

func secureTrial() types.Trial {
	return types.Trial{
		ID:         "trial_1",
		ProtocolID: "633765",
		Name:       "SECURE",
		AIContext:  "Protocol: SECURE. Key Risks: Hypotension.",
	}
}

func monitoringUpload() Upload {
	return Upload{
		Name:    "Site004_Monitoring.pdf",
		Type:    types.DocMonitoringReport,
		Size:    "1.2 MB",
		Content: "Findings: minor deviation in dosing schedule for Patient 102.",
	}
}

const goodAnalysis = `{
	"summary": "Minor dosing deviation at Site 004.",
	"riskScore": 35,
	"risks": ["Dosing deviation", "GCP training gap"],
	"tasks": [
		{"title": "Retrain site staff", "description": "Schedule GCP refresher.", "priority": "High"},
		{"title": "File deviation report", "description": "Document Patient 102 deviation.", "priority": "Medium"}
	]
}`

func TestAnalyzeDocumentSuccess(t *testing.T) {
	client := &mockClient{structuredJSON: goodAnalysis}
	st := store.New()
	log := audit.New()
	p := New(client, st, log)

	out, err := p.AnalyzeDocument(context.Background(), secureTrial(), monitoringUpload())
	require.NoError(t, err)

	assert.Equal(t, types.DocAnalyzed, out.Document.Status)
	assert.Equal(t, 35, out.Document.RiskScore)
	assert.Equal(t, "Minor dosing deviation at Site 004.", out.Result.Summary)
	assert.Len(t, out.Result.Risks, 2)

	// Deep tier with the trial context and document content in the prompt.
	require.Len(t, client.tiers, 1)
	assert.Equal(t, genai.TierDeep, client.tiers[0])
	assert.Contains(t, client.prompts[0], "Protocol: SECURE")
	assert.Contains(t, client.prompts[0], "Patient 102")
	assert.Contains(t, client.prompts[0], string(types.DocMonitoringReport))

	// Generated tasks are stored, AI-sourced, assigned to the CRA, linked to
	// the document, and due a week after upload.
	require.Len(t, out.Tasks, 2)
	for _, task := range out.Tasks {
		assert.Equal(t, types.SourceAI, task.Source)
		assert.Equal(t, types.TaskTodo, task.Status)
		assert.Equal(t, "CRA", task.Assignee)
		assert.Equal(t, out.Document.ID, task.RelatedDocID)
		assert.WithinDuration(t, out.Document.UploadDate.Add(7*24*time.Hour), task.DueDate, time.Second)
	}
	assert.Equal(t, types.PriorityHigh, out.Tasks[0].Priority)
	assert.Len(t, st.Project("trial_1").Tasks, 2)

	// Exactly two audit entries per invocation: upload, then outcome.
	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionAIAnalysis, entries[0].Action)
	assert.Contains(t, entries[0].Details, "Risk: 35")
	assert.Contains(t, entries[0].Details, "Generated 2 tasks")
	assert.Equal(t, audit.ActionDocumentUpload, entries[1].Action)
	assert.Equal(t, types.ActorUser, entries[1].Actor)
}

func TestAnalyzeDocumentFailureMarksError(t *testing.T) {
	client := &mockClient{structuredErr: &genai.GenerationError{
		Stage: genai.StageRequest, Model: "m", Err: errors.New("network down"),
	}}
	st := store.New()
	log := audit.New()
	p := New(client, st, log)

	_, err := p.AnalyzeDocument(context.Background(), secureTrial(), monitoringUpload())
	require.Error(t, err)

	var genErr *genai.GenerationError
	assert.True(t, errors.As(err, &genErr))

	// The upload is kept, marked Error; no tasks appear.
	proj := st.Project("trial_1")
	require.Len(t, proj.Documents, 1)
	assert.Equal(t, types.DocError, proj.Documents[0].Status)
	assert.Empty(t, proj.Tasks)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionError, entries[0].Action)
	assert.Equal(t, audit.ActionDocumentUpload, entries[1].Action)
}

func TestAnalyzeDocumentRejectsSchemaViolation(t *testing.T) {
	// Priority outside the closed enum fails boundary validation.
	client := &mockClient{structuredJSON: `{
		"summary": "s", "riskScore": 10, "risks": [],
		"tasks": [{"title": "t", "description": "d", "priority": "Urgent"}]
	}`}
	st := store.New()
	p := New(client, st, audit.New())

	_, err := p.AnalyzeDocument(context.Background(), secureTrial(), monitoringUpload())
	require.Error(t, err)
	assert.Equal(t, types.DocError, st.Project("trial_1").Documents[0].Status)
}

func TestAnalyzeDocumentRejectsOutOfRangeRiskScore(t *testing.T) {
	// The schema bounds the score to 0-100; an overshoot fails boundary
	// validation like any other shape violation.
	client := &mockClient{structuredJSON: `{
		"summary": "s", "riskScore": 140, "risks": [], "tasks": []
	}`}
	st := store.New()
	p := New(client, st, audit.New())

	_, err := p.AnalyzeDocument(context.Background(), secureTrial(), monitoringUpload())
	require.Error(t, err)
	assert.Equal(t, types.DocError, st.Project("trial_1").Documents[0].Status)
}

func TestAnalyzeDocumentUnknownType(t *testing.T) {
	p := New(&mockClient{}, store.New(), audit.New())
	up := monitoringUpload()
	up.Type = "Spreadsheet"

	_, err := p.AnalyzeDocument(context.Background(), secureTrial(), up)
	assert.Error(t, err)
}

func TestNoTasksGenerated(t *testing.T) {
	client := &mockClient{structuredJSON: `{
		"summary": "clean", "riskScore": 0, "risks": [], "tasks": []
	}`}
	log := audit.New()
	p := New(client, store.New(), log)

	out, err := p.AnalyzeDocument(context.Background(), secureTrial(), monitoringUpload())
	require.NoError(t, err)
	assert.Empty(t, out.Tasks)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionAIAnalysis, entries[0].Action)
	assert.NotContains(t, entries[0].Details, "Generated")
}
