package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusLabels(t *testing.T) {
	cases := map[TaskStatus]string{
		TaskTodo:       "To Do",
		TaskInProgress: "In Progress",
		TaskReview:     "In Review",
		TaskDone:       "Completed",
	}
	for status, want := range cases {
		assert.Equal(t, want, status.Label())
		assert.True(t, status.Valid())
	}
	assert.False(t, TaskStatus("Archived").Valid())
}

func TestTaskStatusTransitions(t *testing.T) {
	assert.True(t, TaskTodo.CanTransitionTo(TaskInProgress))
	assert.True(t, TaskReview.CanTransitionTo(TaskTodo))
	assert.False(t, TaskDone.CanTransitionTo(TaskTodo), "Done is terminal")
	assert.False(t, TaskTodo.CanTransitionTo(TaskTodo), "no-op transitions rejected")
	assert.False(t, TaskTodo.CanTransitionTo(TaskStatus("Archived")))
}

func TestDocStatusLifecycle(t *testing.T) {
	assert.True(t, DocPending.CanTransitionTo(DocAnalyzed))
	assert.True(t, DocPending.CanTransitionTo(DocError))
	assert.False(t, DocAnalyzed.CanTransitionTo(DocPending), "no backward transition")
	assert.False(t, DocError.CanTransitionTo(DocAnalyzed))
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("High")
	assert.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("Urgent")
	assert.Error(t, err)
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
}

func TestRecruitmentPercent(t *testing.T) {
	trial := Trial{CurrentRecruitment: 45, TargetRecruitment: 300}
	assert.Equal(t, 15, trial.RecruitmentPercent())

	trial = Trial{CurrentRecruitment: 1450, TargetRecruitment: 2514}
	assert.Equal(t, 58, trial.RecruitmentPercent())

	trial = Trial{CurrentRecruitment: 10, TargetRecruitment: 0}
	assert.Equal(t, 0, trial.RecruitmentPercent(), "zero target must not divide")
}

func TestDocTypesClosedSet(t *testing.T) {
	for _, dt := range DocTypes() {
		assert.True(t, dt.Valid())
	}
	assert.False(t, DocType("Invoice").Valid())
}
