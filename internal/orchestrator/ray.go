package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"anjoman/internal/llm"
	"anjoman/internal/models"
	"anjoman/internal/prompts"
)

// Ray executes single agent turns. A Ray never fails an iteration: when the
// backend model errors, the turn produces a placeholder message with zero
// usage and the agent's counters are left untouched.
type Ray struct {
	client      Completer
	logger      *slog.Logger
	temperature float64
	maxTokens   int
}

// NewRay creates a turn executor. temperature <= 0 and maxTokens <= 0 select
// the defaults.
func NewRay(client Completer, temperature float64, maxTokens int, logger *slog.Logger) *Ray {
	if temperature <= 0 {
		temperature = defaultAgentTemperature
	}
	if maxTokens <= 0 {
		maxTokens = defaultAgentMaxTokens
	}
	return &Ray{
		client:      client,
		logger:      logger,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Speak runs one turn for the agent: builds the layered context, calls the
// backend model, updates the agent's counters on success, and returns the
// resulting message. previous is the in-iteration transcript so far.
func (r *Ray) Speak(ctx context.Context, agent *models.AgentConfig, session *models.Session, iterationNumber int, previous []models.AgentMessage) models.AgentMessage {
	prompt := prompts.BuildAgentPrompt(agent, session, iterationNumber, previous)

	resp, err := r.client.Complete(ctx, llm.Request{
		Model:       agent.Model,
		Prompt:      prompt,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	})
	if err != nil {
		r.logger.Warn("agent turn failed",
			"agent_id", agent.ID,
			"model", agent.Model,
			"error", err)
		return models.AgentMessage{
			AgentID:   agent.ID,
			AgentRole: agent.Role,
			Content:   fmt.Sprintf("[Error: unable to get response from %s]", agent.Model),
			Timestamp: time.Now().UTC(),
		}
	}

	agent.CostUsed += resp.Cost
	agent.TokensIn += resp.TokensIn
	agent.TokensOut += resp.TokensOut

	return models.AgentMessage{
		AgentID:   agent.ID,
		AgentRole: agent.Role,
		Content:   resp.Text,
		Timestamp: time.Now().UTC(),
		TokensIn:  resp.TokensIn,
		TokensOut: resp.TokensOut,
		Cost:      resp.Cost,
	}
}
