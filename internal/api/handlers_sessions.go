package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"anjoman/internal/catalog"
	"anjoman/internal/models"
	"anjoman/internal/orchestrator"
	"anjoman/internal/sessions"
)

// SessionHandler handles session-related HTTP requests.
type SessionHandler struct {
	store         *sessions.Store
	dana          *orchestrator.Dana
	runner        *orchestrator.Runner
	providers     Providers
	defaultBudget float64
	logger        *slog.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(
	store *sessions.Store,
	dana *orchestrator.Dana,
	runner *orchestrator.Runner,
	providers Providers,
	defaultBudget float64,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		store:         store,
		dana:          dana,
		runner:        runner,
		providers:     providers,
		defaultBudget: defaultBudget,
		logger:        logger,
	}
}

// Propose handles POST /sessions/propose
func (h *SessionHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req models.ProposeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Issue) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "issue is required")
		return
	}
	if req.NumAgents < 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "num_agents must not be negative")
		return
	}
	budget := req.Budget
	if budget <= 0 {
		budget = h.defaultBudget
	}

	proposal := h.dana.ProposeAgents(r.Context(), req.Issue, budget, req.NumAgents,
		catalog.Tier(req.ModelPreference), h.providers.Providers())
	writeJSON(w, http.StatusOK, proposal)
}

// Create handles POST /sessions. The roster must be confirmed by the caller;
// a session is never created without one.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Issue) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "issue is required")
		return
	}
	if len(req.Agents) == 0 {
		writeError(w, http.StatusBadRequest, CodeRosterRequired, "agents roster is required; call /sessions/propose first")
		return
	}
	for i, a := range req.Agents {
		if a == nil || strings.TrimSpace(a.Role) == "" || strings.TrimSpace(a.Model) == "" {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest,
				fmt.Sprintf("agent %d must have a role and a model", i+1))
			return
		}
		if a.ID == "" {
			a.ID = fmt.Sprintf("Ray-%d", i+1)
		}
	}
	budget := req.Budget
	if budget <= 0 {
		budget = h.defaultBudget
	}

	now := time.Now().UTC()
	session := &models.Session{
		SessionID: sessions.NewSessionID(),
		CreatedAt: now,
		UpdatedAt: now,
		Issue:     req.Issue,
		Agents:    req.Agents,
		Budget:    models.NewBudget(budget),
		Status:    models.StatusActive,
	}

	if err := h.store.Save(session); err != nil {
		h.logger.Error("create session failed", "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "create session")
		return
	}

	h.logger.Info("session created",
		"session_id", session.SessionID,
		"agents", len(session.Agents),
		"budget", budget)
	writeJSON(w, http.StatusCreated, session)
}

// List handles GET /sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": items})
}

// Get handles GET /sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := h.store.Delete(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, CodeSessionNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Complete handles POST /sessions/{id}/complete
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.store.UpdateStatus(id, models.StatusCompleted)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, CodeSessionNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// loadSession resolves {id} and writes the 404/500 response itself on
// failure.
func (h *SessionHandler) loadSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	id := chi.URLParam(r, "id")
	session, err := h.store.Load(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternalError, err.Error())
		return nil, false
	}
	if session == nil {
		writeError(w, http.StatusNotFound, CodeSessionNotFound, "session not found")
		return nil, false
	}
	return session, true
}
