package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"anjoman/internal/models"
)

// ErrBudgetExceeded is returned when an iteration is refused because the
// session budget is already spent.
var ErrBudgetExceeded = errors.New("session budget exceeded")

// SessionStore persists sessions. Satisfied by *sessions.Store.
type SessionStore interface {
	Save(session *models.Session) error
}

// Runner drives complete iterations: every agent speaks once in roster
// order (budget permitting), Dana summarizes, and the session is persisted
// exactly once at the end. The blocking and streaming entry points share one
// code path; streaming only adds an emit callback.
type Runner struct {
	dana   *Dana
	ray    *Ray
	store  SessionStore
	logger *slog.Logger
}

// NewRunner wires the iteration engine.
func NewRunner(dana *Dana, ray *Ray, store SessionStore, logger *slog.Logger) *Runner {
	return &Runner{dana: dana, ray: ray, store: store, logger: logger}
}

// RunIteration executes one full iteration and blocks until the session is
// persisted. The session is mutated in place: the new iteration is appended,
// budget and agent counters advance, and UpdatedAt is bumped.
func (r *Runner) RunIteration(ctx context.Context, session *models.Session, guidance string) error {
	return r.run(ctx, session, guidance, func(Event) {})
}

// RunIterationStream executes one full iteration, emitting progress events
// on the returned channel. The channel is closed when the iteration ends;
// any failure, including a budget refusal, arrives as a terminal error
// event rather than an error return.
func (r *Runner) RunIterationStream(ctx context.Context, session *models.Session, guidance string) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		emit := func(ev Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}
		if err := r.run(ctx, session, guidance, emit); err != nil {
			code := "internal_error"
			if errors.Is(err, ErrBudgetExceeded) {
				code = "budget_exceeded"
			}
			emit(Event{Type: EventError, Code: code, Error: err.Error()})
		}
	}()
	return events
}

func (r *Runner) run(ctx context.Context, session *models.Session, guidance string, emit func(Event)) error {
	// Refuse before any agent speaks when the budget is already spent.
	if session.Budget.IsExceeded() {
		session.Status = models.StatusPaused
		session.UpdatedAt = time.Now().UTC()
		if err := r.store.Save(session); err != nil {
			return fmt.Errorf("save paused session: %w", err)
		}
		return fmt.Errorf("%w: used $%.4f of $%.2f",
			ErrBudgetExceeded, session.Budget.Used, session.Budget.TotalBudget)
	}

	number := session.NextIterationNumber()
	r.logger.Info("iteration started",
		"session_id", session.SessionID,
		"iteration", number,
		"agents", len(session.Agents))
	emit(Event{
		Type:            EventIterationStart,
		IterationNumber: number,
		TotalAgents:     len(session.Agents),
	})

	var messages []models.AgentMessage
	for i, agent := range session.Agents {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Mid-iteration cutoff: remaining agents are skipped, the
		// iteration still gets summarized over what was said.
		if session.Budget.Used >= session.Budget.TotalBudget {
			r.logger.Warn("budget exhausted mid-iteration",
				"session_id", session.SessionID,
				"iteration", number,
				"agents_spoken", i,
				"agents_skipped", len(session.Agents)-i)
			budget := session.Budget
			emit(Event{
				Type:          EventBudgetExhausted,
				AgentsSpoken:  i,
				AgentsSkipped: len(session.Agents) - i,
				Budget:        &budget,
			})
			break
		}

		emit(Event{
			Type:      EventAgentStart,
			AgentID:   agent.ID,
			AgentRole: agent.Role,
		})

		msg := r.ray.Speak(ctx, agent, session, number, messages)
		messages = append(messages, msg)
		session.Budget.ApplyCost(msg.Cost)

		budget := session.Budget
		emit(Event{
			Type:    EventAgentMessage,
			Message: &msg,
			Budget:  &budget,
		})
	}

	iteration := models.Iteration{
		IterationNumber: number,
		Messages:        messages,
		UserGuidance:    guidance,
	}

	emit(Event{Type: EventSummarizing, IterationNumber: number})
	iteration.Summary = r.dana.SummarizeIteration(ctx, session, &iteration)

	session.Iterations = append(session.Iterations, iteration)
	session.UpdatedAt = time.Now().UTC()

	if session.Budget.IsExceeded() {
		session.Status = models.StatusPaused
	}
	if session.Budget.IsWarning() && !session.Budget.IsExceeded() {
		r.logger.Warn("budget warning threshold crossed",
			"session_id", session.SessionID,
			"used", session.Budget.Used,
			"total", session.Budget.TotalBudget)
	}

	if err := r.store.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	r.logger.Info("iteration complete",
		"session_id", session.SessionID,
		"iteration", number,
		"messages", len(messages),
		"cost", iteration.MessageCost(),
		"budget_used", session.Budget.Used)
	emit(Event{
		Type:            EventIterationComplete,
		IterationNumber: number,
		Summary:         iteration.Summary,
		Session:         session,
	})
	return nil
}
