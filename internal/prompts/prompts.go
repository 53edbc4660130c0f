// Package prompts builds the layered text context handed to agents and to
// the moderator. Layer order for an agent turn is fixed: full prior-iteration
// history first (oldest iteration first), then the in-round transcript in
// speaking order, then the agent's own framing and the issue. Later speakers
// must be able to react to everything said before them.
package prompts

import (
	"fmt"
	"strings"

	"anjoman/internal/catalog"
	"anjoman/internal/models"
)

// DanaSystem is the moderator system prompt, shared by roster proposals and
// iteration summaries.
const DanaSystem = `You are Dana, the moderator of Anjoman - a structured multi-LLM deliberation system.

Your responsibilities:
1. Propose agent setups (number, roles, models) based on the user's issue
2. Summarize discussions after each iteration
3. Identify key disagreements
4. Suggest directions for the next iteration

You are NOT a decision maker. You facilitate structured thinking.

When proposing agents:
- Suggest 3-5 agents with diverse perspectives
- Assign clear, distinct roles
- Consider the complexity of the issue
- Recommend appropriate models for each role

When summarizing:
- Be concise (3-5 sentences)
- Highlight key insights and disagreements
- Suggest a concrete direction forward`

// BuildAgentPrompt renders the full context for one agent turn.
func BuildAgentPrompt(agent *models.AgentConfig, session *models.Session, iterationNumber int, previous []models.AgentMessage) string {
	var b strings.Builder

	// Layer 1: every prior iteration, oldest first.
	if len(session.Iterations) > 0 {
		b.WriteString("=== PREVIOUS ITERATIONS CONTEXT ===\n")
		for _, prev := range session.Iterations {
			fmt.Fprintf(&b, "\n--- Iteration %d ---\n", prev.IterationNumber)
			if prev.UserGuidance != "" {
				fmt.Fprintf(&b, "User Guidance: %s\n\n", prev.UserGuidance)
			}
			if prev.Summary != nil {
				fmt.Fprintf(&b, "Summary: %s\n", prev.Summary.Summary)
				if len(prev.Summary.KeyDisagreements) > 0 {
					fmt.Fprintf(&b, "Key Disagreements: %s\n", strings.Join(prev.Summary.KeyDisagreements, ", "))
				}
				if len(prev.Summary.SuggestedDirections) > 0 {
					titles := make([]string, len(prev.Summary.SuggestedDirections))
					for i, d := range prev.Summary.SuggestedDirections {
						titles[i] = d.Option
					}
					fmt.Fprintf(&b, "Directions Suggested: %s\n", strings.Join(titles, ", "))
				}
			}
		}
		b.WriteString("\n=== END PREVIOUS CONTEXT ===\n\n")
	}

	// Layer 2: what has already been said this iteration, in speaking order.
	if len(previous) > 0 {
		b.WriteString("Conversation so far in this iteration:\n")
		for _, msg := range previous {
			fmt.Fprintf(&b, "\n%s (%s):\n%s\n", msg.AgentRole, msg.AgentID, msg.Content)
		}
		b.WriteString("\n")
	}

	// Layer 3: the agent's own framing, the issue, and the task.
	styleNote := ""
	if agent.Style != "" {
		styleNote = fmt.Sprintf("\nYour style: %s", agent.Style)
	}
	fmt.Fprintf(&b, `You are %s, a %s in the Anjoman deliberation system.%s

Issue under discussion:
%s

This is Iteration %d.

Your task:
- Review the previous iterations context above to understand what has been discussed
- Build on insights from previous iterations - don't repeat what's already been covered
- Address any unresolved points or disagreements from earlier discussions
- Provide your unique perspective considering the discussion's progression
- Challenge assumptions where appropriate
- Contribute NEW insights or arguments that advance the discussion

Guidelines:
- Stay true to your role and style
- Be analytical and thoughtful
- Respectful of other perspectives
- Focused on moving the discussion forward
- Acknowledge and reference previous points when relevant

Length: 150-300 words (be concise but thorough).

Provide your analysis:`, agent.ID, agent.Role, styleNote, session.Issue, iterationNumber)

	return b.String()
}

// BuildSummaryPrompt renders the moderator context for synthesizing one
// iteration: the full round transcript plus the original issue.
func BuildSummaryPrompt(session *models.Session, iteration *models.Iteration) string {
	var transcript strings.Builder
	for i, msg := range iteration.Messages {
		if i > 0 {
			transcript.WriteString("\n\n")
		}
		fmt.Fprintf(&transcript, "%s (%s):\n%s", msg.AgentRole, msg.AgentID, msg.Content)
	}

	return fmt.Sprintf(`Summarize this iteration of the Anjoman discussion.

Original Issue: %s

Iteration %d Discussion:
%s

Provide:
1. A concise summary (3-5 sentences)
2. Key disagreements or tensions (if any)
3. Multiple suggested directions for the next iteration (2-4 specific, actionable options)

Respond in JSON format:
{
  "summary": "...",
  "key_disagreements": ["...", "..."],
  "suggested_directions": [
    {"option": "Focus on clarifying key terms and definitions", "description": "Examine what each participant means by core concepts"},
    {"option": "Evaluate specific arguments in detail", "description": "Deep dive into one or two key arguments"}
  ]
}

Each suggested direction should be:
- Specific and actionable (not vague)
- Concise (the "option" should be 5-10 words)
- Different from the others
- Relevant to where the discussion is now`, session.Issue, iteration.IterationNumber, transcript.String())
}

// BuildProposalPrompt renders the moderator context for proposing a roster.
// numAgents 0 means Dana decides the count; examples seed the tier guidance
// with model ids the caller can actually use.
func BuildProposalPrompt(issue string, budget float64, numAgents int, preference catalog.Tier, providers []string, examples map[catalog.Tier][]string) string {
	countInstruction := "3-5 agents (Rays) - you decide the optimal number"
	if numAgents > 0 {
		countInstruction = fmt.Sprintf("exactly %d agents (Rays)", numAgents)
	}

	exampleLine := func(t catalog.Tier) string {
		if ids := examples[t]; len(ids) > 0 {
			return strings.Join(ids, ", ")
		}
		return "any available model"
	}

	return fmt.Sprintf(`Given this issue, propose %s to discuss it.

Issue: %s

Budget: $%.2f
Model Preference: %s (budget-friendly / balanced / performance-focused)

Available providers: %s

Based on the model preference:
- If "budget": Choose economical models (e.g., %s)
- If "balanced": Choose mid-tier models (e.g., %s)
- If "performance": Choose most capable models (e.g., %s)

For each Ray, specify:
- role (e.g., Analyst, Critic, Strategist, Domain Expert, Ethicist, Synthesizer)
- style (brief behavioral description, e.g., "data-driven", "skeptical", "creative")
- model (choose appropriate models from available providers based on the preference tier)

Consider:
- Complexity of the issue
- Need for diverse perspectives
- Budget constraints
- Model preference (use appropriate tier models)
- Diverse model selection across available providers when possible

Respond in JSON format:
{
  "agents": [
    {"role": "Analyst", "style": "data-driven", "model": "%s"},
    ...
  ],
  "rationale": "Brief explanation of your choices and agent count decision"
}`,
		countInstruction, issue, budget, preference,
		strings.Join(providers, ", "),
		exampleLine(catalog.TierBudget),
		exampleLine(catalog.TierBalanced),
		exampleLine(catalog.TierPerformance),
		firstExample(examples, preference))
}

func firstExample(examples map[catalog.Tier][]string, preference catalog.Tier) string {
	if ids := examples[preference]; len(ids) > 0 {
		return ids[0]
	}
	return "model-id"
}
