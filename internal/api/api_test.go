package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anjoman/internal/catalog"
	"anjoman/internal/llm"
	"anjoman/internal/models"
	"anjoman/internal/orchestrator"
	"anjoman/internal/sessions"
	"anjoman/internal/store"
)

type fakeCompleter struct {
	fn func(req llm.Request) (*llm.Response, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	return f.fn(req)
}

type stubProviders []string

func (s stubProviders) Providers() []string { return []string(s) }

const testSummaryJSON = `{
  "summary": "Two positions emerged.",
  "suggested_directions": [
    {"option": "Compare costs", "description": "Quantify both options"},
    {"option": "Prototype", "description": "Build a spike"}
  ]
}`

type testEnv struct {
	router *chi.Mux
	store  *sessions.Store
}

func newTestEnv(t *testing.T, complete func(req llm.Request) (*llm.Response, error)) *testEnv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "anjoman.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if complete == nil {
		complete = func(req llm.Request) (*llm.Response, error) {
			if req.JSONResponse {
				return &llm.Response{Text: testSummaryJSON}, nil
			}
			return &llm.Response{Text: "a position", TokensIn: 100, TokensOut: 50, Cost: 0.01}, nil
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.Default()
	client := &fakeCompleter{fn: complete}
	sessStore := sessions.NewStore(db)
	dana := orchestrator.NewDana(client, cat, "gpt-4o", logger)
	ray := orchestrator.NewRay(client, 0, 0, logger)
	runner := orchestrator.NewRunner(dana, ray, sessStore, logger)
	providers := stubProviders{catalog.ProviderOpenAI}

	return &testEnv{
		router: NewRouter(db, sessStore, dana, runner, cat, providers, 1.0, "", logger),
		store:  sessStore,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createSession(t *testing.T, e *testEnv, budget float64) *models.Session {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/sessions", models.CreateSessionRequest{
		Issue:  "Should we rewrite the billing service?",
		Budget: budget,
		Agents: []*models.AgentConfig{
			{ID: "Ray-1", Role: "Analyst", Model: "gpt-4o-mini"},
			{ID: "Ray-2", Role: "Critic", Model: "gpt-4o-mini"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decodeBody[*models.Session](t, rec)
	return sess
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "anjoman", body["service"])
	assert.Equal(t, "ok", body["status"])
}

func TestListModelsFiltersByProvider(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Providers []string        `json:"providers"`
		Models    []catalog.Model `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{catalog.ProviderOpenAI}, body.Providers)
	require.NotEmpty(t, body.Models)
	for _, m := range body.Models {
		assert.Equal(t, catalog.ProviderOpenAI, m.Provider)
	}
}

func TestProposeRequiresIssue(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/sessions/propose", models.ProposeRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, CodeInvalidRequest, body["code"])
}

func TestProposeReturnsRoster(t *testing.T) {
	proposal := `{"agents": [
	  {"role": "Analyst", "style": "data-driven", "model": "gpt-4o-mini"},
	  {"role": "Critic", "style": "skeptical", "model": "gpt-4o"},
	  {"role": "Strategist", "style": "pragmatic", "model": "gpt-4o"}
	], "rationale": "balanced trio"}`
	e := newTestEnv(t, func(req llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: proposal}, nil
	})

	rec := e.do(t, http.MethodPost, "/sessions/propose", models.ProposeRequest{
		Issue: "Monolith or services?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[*models.SessionProposal](t, rec)
	require.Len(t, got.ProposedAgents, 3)
	assert.Equal(t, "Ray-1", got.ProposedAgents[0].ID)
	assert.Equal(t, "balanced trio", got.Rationale)
}

func TestCreateSessionRequiresRoster(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/sessions", models.CreateSessionRequest{
		Issue: "an issue with no roster",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, CodeRosterRequired, body["code"])
}

func TestSessionLifecycle(t *testing.T) {
	e := newTestEnv(t, nil)
	sess := createSession(t, e, 2.0)
	assert.True(t, strings.HasPrefix(sess.SessionID, "anj-"))
	assert.Equal(t, models.StatusActive, sess.Status)
	assert.InDelta(t, 2.0, sess.Budget.TotalBudget, 1e-9)

	rec := e.do(t, http.MethodGet, "/sessions/"+sess.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Sessions []models.SessionListItem `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, sess.SessionID, list.Sessions[0].SessionID)

	rec = e.do(t, http.MethodPost, "/sessions/"+sess.SessionID+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decodeBody[*models.Session](t, rec)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	rec = e.do(t, http.MethodDelete, "/sessions/"+sess.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/sessions/"+sess.SessionID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, CodeSessionNotFound, body["code"])
}

func TestGetUnknownSession(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/sessions/anj-missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, CodeSessionNotFound, body["code"])
}

func TestIterateRunsFullIteration(t *testing.T) {
	e := newTestEnv(t, nil)
	sess := createSession(t, e, 2.0)

	rec := e.do(t, http.MethodPost, "/sessions/"+sess.SessionID+"/iterate",
		models.ContinueSessionRequest{UserGuidance: "start broad"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Iteration models.Iteration `json:"iteration"`
		Session   *models.Session  `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Iteration.IterationNumber)
	assert.Len(t, body.Iteration.Messages, 2)
	require.NotNil(t, body.Iteration.Summary)
	assert.Equal(t, "start broad", body.Iteration.UserGuidance)

	// Persisted, not just returned.
	stored, err := e.store.Load(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, stored.Iterations, 1)
	assert.InDelta(t, 0.02, stored.Budget.Used, 1e-9)
}

func TestIterateWithEmptyBody(t *testing.T) {
	e := newTestEnv(t, nil)
	sess := createSession(t, e, 2.0)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.SessionID+"/iterate", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestIterateOnSpentBudgetReturnsConflict(t *testing.T) {
	e := newTestEnv(t, func(req llm.Request) (*llm.Response, error) {
		if req.JSONResponse {
			return &llm.Response{Text: testSummaryJSON}, nil
		}
		return &llm.Response{Text: "expensive words", Cost: 0.80}, nil
	})
	sess := createSession(t, e, 1.0)

	rec := e.do(t, http.MethodPost, "/sessions/"+sess.SessionID+"/iterate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/sessions/"+sess.SessionID+"/iterate", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, CodeBudgetExceeded, body["code"])

	stored, err := e.store.Load(sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, stored.Status)
}

func TestIterateUnknownSession(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/sessions/anj-missing/iterate", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIterateStreamEmitsOrderedEvents(t *testing.T) {
	e := newTestEnv(t, nil)
	sess := createSession(t, e, 2.0)

	rec := e.do(t, http.MethodPost, "/sessions/"+sess.SessionID+"/iterate/stream", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var types []string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if after, ok := strings.CutPrefix(line, "event: "); ok {
			types = append(types, after)
		}
	}
	assert.Equal(t, []string{
		"iteration_start",
		"agent_start", "agent_message",
		"agent_start", "agent_message",
		"summarizing",
		"iteration_complete",
	}, types)
}

func TestIterateStreamTerminalErrorOnSpentBudget(t *testing.T) {
	e := newTestEnv(t, nil)
	sess := createSession(t, e, 1.0)
	stored, err := e.store.Load(sess.SessionID)
	require.NoError(t, err)
	stored.Budget.ApplyCost(1.0)
	require.NoError(t, e.store.Save(stored))

	rec := e.do(t, http.MethodPost, "/sessions/"+sess.SessionID+"/iterate/stream", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "event: error")
	assert.Contains(t, body, `"code":"budget_exceeded"`)
}

func TestAgentFailureSurfacesInTranscriptNotAsError(t *testing.T) {
	e := newTestEnv(t, func(req llm.Request) (*llm.Response, error) {
		if req.JSONResponse {
			return &llm.Response{Text: testSummaryJSON}, nil
		}
		return nil, errors.New("provider down")
	})
	sess := createSession(t, e, 1.0)

	rec := e.do(t, http.MethodPost, "/sessions/"+sess.SessionID+"/iterate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Iteration models.Iteration `json:"iteration"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Iteration.Messages, 2)
	for _, msg := range body.Iteration.Messages {
		assert.Equal(t, fmt.Sprintf("[Error: unable to get response from %s]", "gpt-4o-mini"), msg.Content)
		assert.Zero(t, msg.Cost)
	}
}

func TestBearerAuth(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "anjoman.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.Default()
	client := &fakeCompleter{fn: func(req llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: "{}"}, nil
	}}
	sessStore := sessions.NewStore(db)
	dana := orchestrator.NewDana(client, cat, "gpt-4o", logger)
	runner := orchestrator.NewRunner(dana, orchestrator.NewRay(client, 0, 0, logger), sessStore, logger)
	router := NewRouter(db, sessStore, dana, runner, cat, stubProviders{catalog.ProviderOpenAI}, 1.0, "secret", logger)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
