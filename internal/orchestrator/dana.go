// Package orchestrator contains the deliberation engine: Dana (the
// moderator) proposes rosters and synthesizes iterations, Ray runs single
// agent turns, and the Runner drives complete iterations against the budget.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"anjoman/internal/catalog"
	"anjoman/internal/llm"
	"anjoman/internal/models"
	"anjoman/internal/prompts"
)

// Completer is the one external dependency of the engine: an opaque
// completion service. *llm.Router satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

const (
	defaultAgentTemperature = 0.7
	defaultAgentMaxTokens   = 500
	moderatorTemperature    = 0.3
	moderatorMaxTokens      = 1024

	minProposedAgents = 3
	maxProposedAgents = 5
)

// defaultRoles is the deterministic fallback roster, cycled when the
// moderator call fails or a proposal needs padding to a requested count.
var defaultRoles = []struct {
	Role  string
	Style string
}{
	{"Analyst", "data-driven"},
	{"Critic", "skeptical"},
	{"Strategist", "pragmatic"},
	{"Synthesizer", "integrative"},
	{"Domain Expert", "specialized"},
}

// Dana is the moderator. Both of its operations degrade to a deterministic
// fallback on any service failure; neither ever returns an error.
type Dana struct {
	client Completer
	cat    *catalog.Catalog
	model  string
	logger *slog.Logger
}

// NewDana creates a moderator calling the given model for its own reasoning.
func NewDana(client Completer, cat *catalog.Catalog, model string, logger *slog.Logger) *Dana {
	return &Dana{client: client, cat: cat, model: model, logger: logger}
}

type proposalPayload struct {
	Agents []struct {
		Role  string `json:"role"`
		Style string `json:"style"`
		Model string `json:"model"`
	} `json:"agents"`
	Rationale string `json:"rationale"`
}

// ProposeAgents asks the moderator model for a roster. numAgents 0 lets Dana
// decide (clamped to 3-5); a positive count is honored exactly, truncating
// or padding the model's answer as needed. Proposed backend models are
// validated against the catalog and the available providers; invalid ones
// are replaced with the tier default.
func (d *Dana) ProposeAgents(ctx context.Context, issue string, budget float64, numAgents int, preference catalog.Tier, providers []string) *models.SessionProposal {
	if !preference.IsValid() {
		preference = catalog.TierBalanced
	}

	prompt := prompts.BuildProposalPrompt(issue, budget, numAgents, preference, providers, d.cat.ExamplesByTier(providers))

	resp, err := d.client.Complete(ctx, llm.Request{
		Model:        d.model,
		System:       prompts.DanaSystem,
		Prompt:       prompt,
		Temperature:  moderatorTemperature,
		MaxTokens:    moderatorMaxTokens,
		JSONResponse: true,
	})
	if err != nil {
		d.logger.Warn("agent proposal failed, using default roster", "error", err)
		return d.fallbackProposal(numAgents, preference, providers)
	}

	var payload proposalPayload
	if err := json.Unmarshal([]byte(resp.Text), &payload); err != nil || len(payload.Agents) == 0 {
		d.logger.Warn("agent proposal malformed, using default roster", "error", err)
		return d.fallbackProposal(numAgents, preference, providers)
	}

	fallbackModel := d.fallbackModel(preference, providers)
	var agents []*models.AgentConfig
	for _, a := range payload.Agents {
		role := strings.TrimSpace(a.Role)
		if role == "" {
			continue
		}
		model := a.Model
		if m := d.cat.ByID(model); m == nil || !providerAvailable(providers, m.Provider) {
			model = fallbackModel
		}
		agents = append(agents, &models.AgentConfig{
			ID:    fmt.Sprintf("Ray-%d", len(agents)+1),
			Role:  role,
			Style: strings.TrimSpace(a.Style),
			Model: model,
		})
	}

	want := numAgents
	if want <= 0 {
		// Dana decides, within bounds.
		want = len(agents)
		if want < minProposedAgents {
			want = minProposedAgents
		}
		if want > maxProposedAgents {
			want = maxProposedAgents
		}
	}
	agents = resizeRoster(agents, want, fallbackModel)

	rationale := strings.TrimSpace(payload.Rationale)
	if rationale == "" {
		rationale = "Proposed roster for the issue."
	}
	return &models.SessionProposal{ProposedAgents: agents, Rationale: rationale}
}

// fallbackProposal builds the deterministic default roster. It cannot fail.
func (d *Dana) fallbackProposal(numAgents int, preference catalog.Tier, providers []string) *models.SessionProposal {
	count := numAgents
	if count <= 0 {
		count = minProposedAgents
	}
	model := d.fallbackModel(preference, providers)

	agents := make([]*models.AgentConfig, count)
	for i := 0; i < count; i++ {
		r := defaultRoles[i%len(defaultRoles)]
		agents[i] = &models.AgentConfig{
			ID:    fmt.Sprintf("Ray-%d", i+1),
			Role:  r.Role,
			Style: r.Style,
			Model: model,
		}
	}
	return &models.SessionProposal{
		ProposedAgents: agents,
		Rationale:      "Default balanced configuration with diverse perspectives.",
	}
}

// fallbackModel picks a usable default backend model, falling back to the
// first catalog entry when no provider is configured so the proposal is
// still well-formed.
func (d *Dana) fallbackModel(preference catalog.Tier, providers []string) string {
	if m := d.cat.DefaultModel(preference, providers); m != "" {
		return m
	}
	if all := d.cat.All(); len(all) > 0 {
		return all[0].ModelID
	}
	return ""
}

// resizeRoster truncates or pads the roster to exactly want entries, keeping
// ids sequential. Padding cycles the default roles.
func resizeRoster(agents []*models.AgentConfig, want int, model string) []*models.AgentConfig {
	if len(agents) > want {
		return agents[:want]
	}
	for len(agents) < want {
		r := defaultRoles[len(agents)%len(defaultRoles)]
		agents = append(agents, &models.AgentConfig{
			ID:    fmt.Sprintf("Ray-%d", len(agents)+1),
			Role:  r.Role,
			Style: r.Style,
			Model: model,
		})
	}
	return agents
}

func providerAvailable(providers []string, provider string) bool {
	for _, p := range providers {
		if p == provider {
			return true
		}
	}
	return false
}

type summaryPayload struct {
	Summary             string   `json:"summary"`
	KeyDisagreements    []string `json:"key_disagreements"`
	SuggestedDirections []struct {
		Option      string `json:"option"`
		Description string `json:"description"`
	} `json:"suggested_directions"`
}

const maxSuggestedDirections = 4

// SummarizeIteration synthesizes one iteration into a summary. TotalCost is
// always the locally computed sum of the iteration's message costs; the
// service response is never trusted for it. On any failure a degraded
// summary with a single generic direction is returned.
func (d *Dana) SummarizeIteration(ctx context.Context, session *models.Session, iteration *models.Iteration) *models.IterationSummary {
	totalCost := iteration.MessageCost()

	resp, err := d.client.Complete(ctx, llm.Request{
		Model:        d.model,
		System:       prompts.DanaSystem,
		Prompt:       prompts.BuildSummaryPrompt(session, iteration),
		Temperature:  moderatorTemperature,
		MaxTokens:    moderatorMaxTokens,
		JSONResponse: true,
	})
	if err != nil {
		d.logger.Warn("iteration summary failed", "iteration", iteration.IterationNumber, "error", err)
		return d.fallbackSummary(iteration.IterationNumber, totalCost)
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(resp.Text), &payload); err != nil ||
		strings.TrimSpace(payload.Summary) == "" || len(payload.SuggestedDirections) == 0 {
		d.logger.Warn("iteration summary malformed", "iteration", iteration.IterationNumber, "error", err)
		return d.fallbackSummary(iteration.IterationNumber, totalCost)
	}

	directions := payload.SuggestedDirections
	if len(directions) > maxSuggestedDirections {
		directions = directions[:maxSuggestedDirections]
	}
	suggested := make([]models.SuggestedDirection, len(directions))
	for i, dir := range directions {
		suggested[i] = models.SuggestedDirection{
			Option:      strings.TrimSpace(dir.Option),
			Description: strings.TrimSpace(dir.Description),
		}
	}

	return &models.IterationSummary{
		IterationNumber:     iteration.IterationNumber,
		Summary:             strings.TrimSpace(payload.Summary),
		KeyDisagreements:    payload.KeyDisagreements,
		SuggestedDirections: suggested,
		TotalCost:           totalCost,
		Timestamp:           time.Now().UTC(),
	}
}

func (d *Dana) fallbackSummary(iterationNumber int, totalCost float64) *models.IterationSummary {
	return &models.IterationSummary{
		IterationNumber: iterationNumber,
		Summary:         "Unable to generate a summary for this iteration.",
		SuggestedDirections: []models.SuggestedDirection{
			{
				Option:      "Continue discussion",
				Description: "Run another iteration to develop the conversation further.",
			},
		},
		TotalCost: totalCost,
		Timestamp: time.Now().UTC(),
	}
}
