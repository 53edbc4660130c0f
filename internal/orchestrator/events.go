package orchestrator

import "anjoman/internal/models"

// EventType identifies one progress event emitted while an iteration runs.
type EventType string

const (
	EventIterationStart    EventType = "iteration_start"
	EventAgentStart        EventType = "agent_start"
	EventAgentMessage      EventType = "agent_message"
	EventBudgetExhausted   EventType = "budget_exhausted"
	EventSummarizing       EventType = "summarizing"
	EventIterationComplete EventType = "iteration_complete"
	EventError             EventType = "error"
)

// Event is one entry in the totally ordered progress stream of a running
// iteration. Which fields are set depends on Type; the zero values of the
// rest are omitted on the wire.
type Event struct {
	Type            EventType                `json:"type"`
	IterationNumber int                      `json:"iteration_number,omitempty"`
	TotalAgents     int                      `json:"total_agents,omitempty"`
	AgentID         string                   `json:"agent_id,omitempty"`
	AgentRole       string                   `json:"agent_role,omitempty"`
	Message         *models.AgentMessage     `json:"message,omitempty"`
	Budget          *models.BudgetInfo       `json:"budget,omitempty"`
	AgentsSpoken    int                      `json:"agents_spoken,omitempty"`
	AgentsSkipped   int                      `json:"agents_skipped,omitempty"`
	Summary         *models.IterationSummary `json:"summary,omitempty"`
	Session         *models.Session          `json:"session,omitempty"`
	Code            string                   `json:"code,omitempty"`
	Error           string                   `json:"error,omitempty"`
}
