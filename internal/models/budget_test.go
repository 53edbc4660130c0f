package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBudget(t *testing.T) {
	b := NewBudget(2.50)
	assert.InDelta(t, 2.50, b.TotalBudget, 1e-9)
	assert.Zero(t, b.Used)
	assert.InDelta(t, 2.50, b.Remaining, 1e-9)
	assert.InDelta(t, DefaultWarningThreshold, b.WarningThreshold, 1e-9)
	assert.False(t, b.IsWarning())
	assert.False(t, b.IsExceeded())
}

func TestApplyCostKeepsRemainingConsistent(t *testing.T) {
	b := NewBudget(1.00)
	b.ApplyCost(0.30)
	b.ApplyCost(0.25)
	assert.InDelta(t, 0.55, b.Used, 1e-9)
	assert.InDelta(t, b.TotalBudget-b.Used, b.Remaining, 1e-9)
}

func TestApplyCostIgnoresNegative(t *testing.T) {
	b := NewBudget(1.00)
	b.ApplyCost(0.40)
	b.ApplyCost(-0.40)
	assert.InDelta(t, 0.40, b.Used, 1e-9)
}

func TestWarningAndExceededThresholds(t *testing.T) {
	b := NewBudget(1.00)

	b.ApplyCost(0.79)
	assert.False(t, b.IsWarning())

	b.ApplyCost(0.01)
	assert.True(t, b.IsWarning(), "warning trips at exactly the threshold")
	assert.False(t, b.IsExceeded())

	b.ApplyCost(0.20)
	assert.True(t, b.IsExceeded(), "exceeded trips at exactly the total")
	assert.True(t, b.IsWarning(), "exceeded implies warning")
}

func TestOverspendGoesNegativeRemaining(t *testing.T) {
	b := NewBudget(1.00)
	b.ApplyCost(1.30)
	assert.True(t, b.IsExceeded())
	assert.InDelta(t, -0.30, b.Remaining, 1e-9)
}

func TestSessionNextIterationNumber(t *testing.T) {
	s := &Session{}
	assert.Equal(t, 1, s.NextIterationNumber())
	s.Iterations = append(s.Iterations, Iteration{IterationNumber: 1})
	assert.Equal(t, 2, s.NextIterationNumber())
}

func TestIterationMessageCost(t *testing.T) {
	it := &Iteration{Messages: []AgentMessage{{Cost: 0.02}, {Cost: 0.03}, {Cost: 0}}}
	assert.InDelta(t, 0.05, it.MessageCost(), 1e-9)
}

func TestSessionStatusIsValid(t *testing.T) {
	for _, s := range []SessionStatus{StatusActive, StatusCompleted, StatusPaused, StatusError} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, SessionStatus("archived").IsValid())
}

func TestSessionAgentByID(t *testing.T) {
	s := &Session{Agents: []*AgentConfig{{ID: "Ray-1"}, {ID: "Ray-2"}}}
	assert.NotNil(t, s.AgentByID("Ray-2"))
	assert.Nil(t, s.AgentByID("Ray-9"))
}
