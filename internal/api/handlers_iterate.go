package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"anjoman/internal/models"
	"anjoman/internal/orchestrator"
)

// Iterate handles POST /sessions/{id}/iterate. It blocks until the full
// iteration (every agent plus the summary) has run and been persisted.
func (h *SessionHandler) Iterate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req models.ContinueSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.runner.RunIteration(r.Context(), session, req.UserGuidance); err != nil {
		if errors.Is(err, orchestrator.ErrBudgetExceeded) {
			writeError(w, http.StatusConflict, CodeBudgetExceeded, err.Error())
			return
		}
		h.logger.Error("iteration failed", "session_id", session.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "iteration failed")
		return
	}

	latest := session.Iterations[len(session.Iterations)-1]
	writeJSON(w, http.StatusOK, map[string]any{
		"iteration": latest,
		"session":   session,
	})
}

// IterateStream handles POST /sessions/{id}/iterate/stream. The iteration
// runs exactly as in Iterate, but progress is pushed as Server-Sent Events;
// any failure arrives as a terminal error event on the open stream.
func (h *SessionHandler) IterateStream(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req models.ContinueSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, CodeInternalError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range h.runner.RunIterationStream(r.Context(), session, req.UserGuidance) {
		data, err := json.Marshal(ev)
		if err != nil {
			h.logger.Error("marshal stream event", "type", ev.Type, "error", err)
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
		flusher.Flush()
	}
}
