package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trialsight/internal/types"
)

func TestDraftReply(t *testing.T) {
	client := &mockClient{completeText: "Dear Dr. Fuster, thank you for flagging the Berlin numbers..."}
	msg := types.Message{
		Sender:  "Dr. Valentin Fuster",
		Subject: "Recruitment lag in Germany",
		Content: "Dear Team, recruitment in Berlin is lagging.",
	}

	out := DraftReply(context.Background(), client, secureTrial(), msg)
	assert.Equal(t, "Dear Dr. Fuster, thank you for flagging the Berlin numbers...", out)

	require.Len(t, client.completePrompts, 1)
	prompt := client.completePrompts[0]
	assert.Contains(t, prompt, "Sender: Dr. Valentin Fuster")
	assert.Contains(t, prompt, "Subject: Recruitment lag in Germany")
	assert.Contains(t, prompt, "SAE (Serious Adverse Event)")
	assert.Contains(t, prompt, "Protocol: SECURE.")
}

func TestDraftReplyFallback(t *testing.T) {
	client := &mockClient{completeErr: errors.New("offline")}
	out := DraftReply(context.Background(), client, secureTrial(), types.Message{Sender: "x"})
	assert.Equal(t, "Unable to generate draft reply.", out)
}

func TestDraftEmail(t *testing.T) {
	client := &mockClient{completeText: "Subject: Ramipril Titration Follow-up\n\nDear Site Coordinator,..."}
	task := types.Task{
		Title:       "Verify Ramipril Titration - Site 002",
		Description: "Subject 1002-004 blood pressure drop noted.",
	}

	out := DraftEmail(context.Background(), client, secureTrial(), task)
	assert.Contains(t, out, "Ramipril Titration")

	require.Len(t, client.completePrompts, 1)
	prompt := client.completePrompts[0]
	assert.Contains(t, prompt, "clinical trial: SECURE")
	assert.Contains(t, prompt, "Task: Verify Ramipril Titration - Site 002")
	assert.Contains(t, prompt, "GCP compliance")
}

func TestDraftEmailFallback(t *testing.T) {
	client := &mockClient{completeErr: errors.New("offline")}
	out := DraftEmail(context.Background(), client, secureTrial(), types.Task{Title: "x"})
	assert.Equal(t, "Error generating draft.", out)
}
