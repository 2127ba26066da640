package store

import (
	"time"

	"trialsight/internal/types"
)

// Fixtures returns the seed entities for the built-in trials. Timestamps are
// relative to now so the seeded inbox and task board look current.
func Fixtures() (tasks []types.Task, docs []types.Document, messages []types.Message) {
	now := time.Now()

	tasks = []types.Task{
		{
			ID:          "1",
			TrialID:     "trial_1",
			Title:       "Verify Ramipril Titration - Site 002",
			Description: "Subject 1002-004 blood pressure drop noted. Confirm down-titration to 2.5mg.",
			Status:      types.TaskInProgress,
			Priority:    types.PriorityHigh,
			DueDate:     now,
			Assignee:    "CRA",
			Source:      types.SourceUser,
		},
		{
			ID:          "2",
			TrialID:     "trial_1",
			Title:       "Polypill Supply Reshipment",
			Description: "Batch 445 expiring at German depot.",
			Status:      types.TaskTodo,
			Priority:    types.PriorityMedium,
			DueDate:     now,
			Assignee:    "Logistics",
			Source:      types.SourceSystem,
		},
		{
			ID:          "3",
			TrialID:     "trial_2",
			Title:       "Collect Ablation Procedure Reports",
			Description: "Site Madrid-01 missing 3 procedure logs.",
			Status:      types.TaskTodo,
			Priority:    types.PriorityHigh,
			DueDate:     now,
			Assignee:    "CRA",
			Source:      types.SourceSystem,
		},
	}

	docs = []types.Document{
		{
			ID:         "1",
			TrialID:    "trial_1",
			Name:       "SECURE_Protocol_v5.0.pdf",
			Type:       types.DocProtocol,
			UploadDate: now,
			Size:       "2.4 MB",
			Status:     types.DocAnalyzed,
			RiskScore:  0,
		},
		{
			ID:         "2",
			TrialID:    "trial_2",
			Name:       "AF_Informed_Consent_ES.pdf",
			Type:       types.DocInformedConsent,
			UploadDate: now,
			Size:       "0.8 MB",
			Status:     types.DocAnalyzed,
			RiskScore:  15,
		},
	}

	messages = []types.Message{
		{
			ID:        "1",
			TrialID:   "trial_1",
			Sender:    "Dr. Valentin Fuster",
			Subject:   "Recruitment lag in Germany",
			Preview:   "We need to discuss the recruitment numbers...",
			Content:   "Dear Team, recruitment in Berlin is lagging.",
			Timestamp: now.Add(-2 * time.Hour),
			Read:      false,
			Type:      types.MessageEmail,
		},
		{
			ID:        "2",
			TrialID:   "trial_2",
			Sender:    "Dr. Maria Gonzalez",
			Subject:   "New Site Activation",
			Preview:   "Valencia site is ready to recruit...",
			Content:   "Good news, the Valencia site has passed SIV and is ready to screen.",
			Timestamp: now.Add(-24 * time.Hour),
			Read:      true,
			Type:      types.MessageEmail,
		},
	}

	return tasks, docs, messages
}
