package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Stable machine-readable error codes. Clients branch on these, so adding
// is fine and renaming is a breaking change.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeRosterRequired  = "roster_required"
	CodeSessionNotFound = "session_not_found"
	CodeBudgetExceeded  = "budget_exceeded"
	CodeInternalError   = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// decodeJSON decodes a request body, tolerating an entirely empty body so
// optional-body endpoints can share it.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
