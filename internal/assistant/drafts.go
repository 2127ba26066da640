package assistant

import (
	"context"
	"fmt"

	"trialsight/internal/genai"
	"trialsight/internal/logging"
	"trialsight/internal/types"
)

// Draft-failure fallbacks. The helpers never return an error; a failed draft
// degrades to a fixed string the user can see and retry from.
const (
	replyFallback = "Unable to generate draft reply."
	emailFallback = "Error generating draft."
)

// DraftReply drafts a response to an inbox message on the fast tier. An SAE
// in the source message steers the draft toward the protocol's safety
// reporting guidelines.
func DraftReply(ctx context.Context, client genai.Client, trial types.Trial, msg types.Message) string {
	prompt := fmt.Sprintf(`You are the Clinical Trial Manager.

TRIAL CONTEXT:
%s

Draft a reply to:
Sender: %s
Subject: %s
Message Content: %s

If this is an SAE (Serious Adverse Event), reference the specific protocol safety reporting guidelines.`,
		trial.AIContext, msg.Sender, msg.Subject, msg.Content)

	text, err := client.Complete(ctx, prompt, genai.TierFast)
	if err != nil {
		logging.AssistantError("smart reply for %s failed: %v", trial.ProtocolID, err)
		return replyFallback
	}
	return text
}

// DraftEmail drafts a site-coordinator email about a task on the fast tier.
func DraftEmail(ctx context.Context, client genai.Client, trial types.Trial, task types.Task) string {
	prompt := fmt.Sprintf(`Draft a professional email to the site coordinator regarding the clinical trial: %s.
Task: %s
Details: %s

Tone should be collaborative but firm on GCP compliance.`,
		trial.Name, task.Title, task.Description)

	text, err := client.Complete(ctx, prompt, genai.TierFast)
	if err != nil {
		logging.AssistantError("email draft for %s failed: %v", trial.ProtocolID, err)
		return emailFallback
	}
	return text
}
