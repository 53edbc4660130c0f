// Package models defines the domain and API types for Anjoman, a structured
// multi-LLM deliberation service. Field names follow the JSON wire format
// consumed by the frontend, so changing a tag is a breaking change.
package models

import "time"

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusPaused    SessionStatus = "paused"
	StatusError     SessionStatus = "error"
)

// IsValid reports whether the status is one of the known states.
func (s SessionStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusPaused, StatusError:
		return true
	}
	return false
}

// AgentConfig is one Ray: a discussion participant with an assigned backend
// model. The counters accumulate across every turn the agent takes and are
// never reset within a session.
type AgentConfig struct {
	ID        string  `json:"id"`
	Role      string  `json:"role"`
	Style     string  `json:"style,omitempty"`
	Model     string  `json:"model"`
	CostUsed  float64 `json:"cost_used"`
	TokensIn  int     `json:"tokens_in"`
	TokensOut int     `json:"tokens_out"`
}

// AgentMessage is a single contribution to an iteration. AgentRole is a
// snapshot taken at speaking time so history stays stable even if the
// agent's metadata changes later. Immutable once created.
type AgentMessage struct {
	AgentID   string    `json:"agent_id"`
	AgentRole string    `json:"agent_role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	TokensIn  int       `json:"tokens_in"`
	TokensOut int       `json:"tokens_out"`
	Cost      float64   `json:"cost"`
}

// SuggestedDirection is one of Dana's proposed next steps for the discussion.
type SuggestedDirection struct {
	Option      string `json:"option"`
	Description string `json:"description"`
}

// IterationSummary is Dana's synthesis of one iteration. TotalCost is always
// the sum of the iteration's message costs, computed locally and never taken
// from the LLM response.
type IterationSummary struct {
	IterationNumber     int                  `json:"iteration_number"`
	Summary             string               `json:"summary"`
	KeyDisagreements    []string             `json:"key_disagreements,omitempty"`
	SuggestedDirections []SuggestedDirection `json:"suggested_directions"`
	TotalCost           float64              `json:"total_cost"`
	Timestamp           time.Time            `json:"timestamp"`
}

// Iteration is one complete pass of the discussion: every agent speaks once
// (budget permitting), then Dana summarizes. Iterations are append-only; a
// finalized iteration is never modified.
type Iteration struct {
	IterationNumber int               `json:"iteration_number"`
	Messages        []AgentMessage    `json:"messages"`
	Summary         *IterationSummary `json:"summary,omitempty"`
	UserGuidance    string            `json:"user_guidance,omitempty"`
}

// MessageCost returns the sum of the iteration's message costs.
func (it *Iteration) MessageCost() float64 {
	var total float64
	for _, msg := range it.Messages {
		total += msg.Cost
	}
	return total
}

// Session is the root aggregate: one issue deliberated across iterations by
// a fixed roster of agents under a budget.
type Session struct {
	SessionID  string         `json:"session_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Issue      string         `json:"issue"`
	Agents     []*AgentConfig `json:"agents"`
	Iterations []Iteration    `json:"iterations"`
	Budget     BudgetInfo     `json:"budget"`
	Status     SessionStatus  `json:"status"`
}

// NextIterationNumber returns the number the next iteration will carry.
// Numbers are 1-based and gapless.
func (s *Session) NextIterationNumber() int {
	return len(s.Iterations) + 1
}

// AgentByID returns the agent with the given id, or nil.
func (s *Session) AgentByID(id string) *AgentConfig {
	for _, a := range s.Agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// SessionListItem is the lightweight projection returned by list endpoints.
type SessionListItem struct {
	SessionID      string        `json:"session_id"`
	CreatedAt      time.Time     `json:"created_at"`
	Issue          string        `json:"issue"`
	Status         SessionStatus `json:"status"`
	TotalCost      float64       `json:"total_cost"`
	IterationCount int           `json:"iteration_count"`
}

// SessionProposal is Dana's suggested roster for an issue.
type SessionProposal struct {
	ProposedAgents []*AgentConfig `json:"proposed_agents"`
	Rationale      string         `json:"rationale"`
}

// CreateSessionRequest creates a session from a confirmed roster.
type CreateSessionRequest struct {
	Issue  string         `json:"issue"`
	Budget float64        `json:"budget"`
	Agents []*AgentConfig `json:"agents"`
}

// ProposeRequest asks Dana for a roster proposal.
type ProposeRequest struct {
	Issue           string  `json:"issue"`
	Budget          float64 `json:"budget"`
	NumAgents       int     `json:"num_agents,omitempty"`
	ModelPreference string  `json:"model_preference,omitempty"`
}

// ContinueSessionRequest runs one more iteration, optionally steered by
// user guidance.
type ContinueSessionRequest struct {
	UserGuidance string `json:"user_guidance,omitempty"`
}
