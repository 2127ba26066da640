package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"trialsight/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func secureTrial() types.Trial {
	return types.Trial{
		ID:                 "trial_1",
		ProtocolID:         "633765",
		Name:               "SECURE",
		Phase:              "III",
		Status:             types.TrialRecruiting,
		TargetRecruitment:  2514,
		CurrentRecruitment: 1450,
		Investigator:       "Dr. Valentin Fuster",
		AIContext:          "Protocol: SECURE.",
	}
}

func boardTasks() []types.Task {
	return []types.Task{
		{Title: "Verify Ramipril Titration - Site 002", Status: types.TaskInProgress, Priority: types.PriorityHigh},
		{Title: "Polypill Supply Reshipment", Status: types.TaskTodo, Priority: types.PriorityMedium},
	}
}

func TestOpenReadyWithGreeting(t *testing.T) {
	client := &mockClient{completeText: "Good morning! Focus on: titration, supply, recruitment."}
	s := NewSession(client, secureTrial(), boardTasks())
	require.Equal(t, StateUninitialized, s.State())

	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, StateReady, s.State())

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, types.RoleModel, history[0].Role)
	assert.Equal(t, "Good morning! Focus on: titration, supply, recruitment.", history[0].Text)

	// System instruction carries the trial context; only high-priority tasks
	// are listed there.
	assert.Contains(t, client.openInstruction, "Active Protocol: SECURE (633765)")
	assert.Contains(t, client.openInstruction, "Recruitment: 1450 / 2514")
	assert.Contains(t, client.openInstruction, "Verify Ramipril Titration")
	assert.NotContains(t, client.openInstruction, "Polypill Supply Reshipment")

	// Greeting prompt lists task titles regardless of priority.
	require.Len(t, client.completePrompts, 1)
	assert.Contains(t, client.completePrompts[0], "Polypill Supply Reshipment")
}

func TestOpenGreetingFailureFallsBack(t *testing.T) {
	client := &mockClient{completeErr: errors.New("fast tier down")}
	s := NewSession(client, secureTrial(), nil)

	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, StateReady, s.State())

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, "Hello! I'm your TrialSight assistant for SECURE. How can I help you today?", history[0].Text)
}

func TestOpenSessionFailureIsRetryable(t *testing.T) {
	client := &mockClient{openErr: errors.New("deep tier down"), completeText: "hi"}
	s := NewSession(client, secureTrial(), nil)

	require.Error(t, s.Open(context.Background()))
	assert.Equal(t, StateUninitialized, s.State())
	assert.Empty(t, s.History())

	// Retry succeeds once the tier recovers.
	client.mu.Lock()
	client.openErr = nil
	client.mu.Unlock()
	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, StateReady, s.State())
}

func TestDoubleOpenRejected(t *testing.T) {
	client := &mockClient{completeText: "hi"}
	s := NewSession(client, secureTrial(), nil)
	require.NoError(t, s.Open(context.Background()))
	assert.Error(t, s.Open(context.Background()))
}

func TestSendAppendsTurns(t *testing.T) {
	client := &mockClient{completeText: "hi", session: &mockSession{reply: "Recruitment is at 58%."}}
	s := NewSession(client, secureTrial(), nil)
	require.NoError(t, s.Open(context.Background()))

	turn, err := s.Send(context.Background(), "How is recruitment?")
	require.NoError(t, err)
	assert.Equal(t, "Recruitment is at 58%.", turn.Text)
	assert.Equal(t, types.RoleModel, turn.Role)

	history := s.History()
	require.Len(t, history, 3) // greeting, user, model
	assert.Equal(t, types.RoleUser, history[1].Role)
	assert.Equal(t, "How is recruitment?", history[1].Text)
	assert.Equal(t, StateReady, s.State())
}

func TestSendFailureAppendsApology(t *testing.T) {
	client := &mockClient{completeText: "hi", session: &mockSession{err: errors.New("conn reset")}}
	s := NewSession(client, secureTrial(), nil)
	require.NoError(t, s.Open(context.Background()))

	turn, err := s.Send(context.Background(), "hello?")
	require.NoError(t, err)
	assert.Equal(t, sendFailureReply, turn.Text)

	// Session stays usable.
	assert.Equal(t, StateReady, s.State())
	assert.Len(t, s.History(), 3)
}

func TestSendWhileSendingReturnsBusy(t *testing.T) {
	block := make(chan struct{})
	client := &mockClient{completeText: "hi", session: &mockSession{reply: "done", block: block}}
	s := NewSession(client, secureTrial(), nil)
	require.NoError(t, s.Open(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Send(context.Background(), "slow question")
		assert.NoError(t, err)
	}()

	// Wait until the first send is in flight.
	require.Eventually(t, func() bool { return s.State() == StateSending }, 2*time.Second, 5*time.Millisecond)

	_, err := s.Send(context.Background(), "impatient question")
	assert.ErrorIs(t, err, ErrBusy)

	close(block)
	wg.Wait()
	assert.Equal(t, StateReady, s.State())

	// The rejected send left no trace in the history.
	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, "slow question", history[1].Text)
}

func TestSendValidation(t *testing.T) {
	client := &mockClient{completeText: "hi"}
	s := NewSession(client, secureTrial(), nil)

	_, err := s.Send(context.Background(), "before open")
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, s.Open(context.Background()))
	_, err = s.Send(context.Background(), "   ")
	assert.Error(t, err)

	s.Close()
	_, err = s.Send(context.Background(), "after close")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCloseDuringSendStaysClosed(t *testing.T) {
	block := make(chan struct{})
	client := &mockClient{completeText: "hi", session: &mockSession{reply: "late reply", block: block}}
	s := NewSession(client, secureTrial(), nil)
	require.NoError(t, s.Open(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Send(context.Background(), "doomed question")
		assert.ErrorIs(t, err, ErrNotReady)
	}()
	require.Eventually(t, func() bool { return s.State() == StateSending }, 2*time.Second, 5*time.Millisecond)

	// A trial switch closes the session while the turn is still in flight.
	s.Close()
	close(block)
	wg.Wait()

	// The close wins: no resurrection, no late model turn, and further sends
	// are rejected instead of dereferencing the discarded chat.
	assert.Equal(t, StateClosed, s.State())
	history := s.History()
	require.Len(t, history, 2) // greeting + user turn
	assert.Equal(t, "doomed question", history[1].Text)

	_, err := s.Send(context.Background(), "after close")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCloseDiscardsChat(t *testing.T) {
	session := &mockSession{reply: "x"}
	client := &mockClient{completeText: "hi", session: session}
	s := NewSession(client, secureTrial(), nil)
	require.NoError(t, s.Open(context.Background()))

	s.Close()
	assert.Equal(t, StateClosed, s.State())
	session.mu.Lock()
	assert.True(t, session.closed)
	session.mu.Unlock()
}

func TestHistoryReturnsCopy(t *testing.T) {
	client := &mockClient{completeText: "hi"}
	s := NewSession(client, secureTrial(), nil)
	require.NoError(t, s.Open(context.Background()))

	history := s.History()
	history[0].Text = "mutated"
	assert.Equal(t, "hi", s.History()[0].Text)
}
