package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelab/scenic"
	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/lexicon"
	"github.com/framelab/scenic/pkg/script"
)

const intakeScript = `
name: intake
lines:
  - text: "Who am I speaking with?"
    responses:
      - frame: caller
        action: continue
  - text: "Thanks, $caller.name."
frames:
  - name: caller
    fields:
      - name: name
        lexical: [NNP]
        senses: "*"
`

func testHandler(t *testing.T, opts ...scenic.Option) http.Handler {
	t.Helper()
	sc, err := script.Parse([]byte(intakeScript))
	require.NoError(t, err)
	reg, err := script.NewRegistry([]*domain.Scenario{sc}, nil)
	require.NoError(t, err)

	lex := lexicon.NewStatic([]lexicon.Entry{
		{Word: "mary", POS: "NNP", Senses: []domain.Sense{"person.n.01"}},
	}, nil)

	engine, err := scenic.New(reg, lex, opts...)
	require.NoError(t, err)
	return NewHandler(engine, lex.Tag)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_SessionLifecycle(t *testing.T) {
	h := testHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/sessions", startRequest{Scenario: "intake", SessionID: "call-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var turn turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, "call-1", turn.SessionID)
	assert.Equal(t, []string{"Who am I speaking with?"}, turn.Prompts)
	assert.Equal(t, domain.StatusAwaiting, turn.Status)

	// Raw text goes through the fallback tagger.
	rec = doJSON(t, h, http.MethodPost, "/sessions/call-1/utterances", utteranceRequest{Text: "Mary"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, []string{"Thanks, Mary."}, turn.Prompts)
	assert.Equal(t, domain.StatusCompleted, turn.Status)

	rec = doJSON(t, h, http.MethodGet, "/sessions/call-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state domain.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, domain.StatusCompleted, state.Status)

	rec = doJSON(t, h, http.MethodDelete, "/sessions/call-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/sessions/call-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PreTaggedTokens(t *testing.T) {
	h := testHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/sessions", startRequest{Scenario: "intake", SessionID: "call-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/sessions/call-1/utterances", utteranceRequest{
		Tokens: []domain.Token{{Text: "Zana", POS: "NNP"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var turn turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, []string{"Thanks, Zana."}, turn.Prompts)
}

func TestServer_StartValidation(t *testing.T) {
	h := testHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/sessions", startRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/sessions", startRequest{Scenario: "marketing"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_StartDuplicateSessionConflicts(t *testing.T) {
	h := testHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/sessions", startRequest{Scenario: "intake", SessionID: "call-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/sessions", startRequest{Scenario: "intake", SessionID: "call-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_SubmitErrors(t *testing.T) {
	h := testHandler(t, scenic.WithConfig(domain.Config{MaxRetries: 1}))

	rec := doJSON(t, h, http.MethodPost, "/sessions/ghost/utterances", utteranceRequest{Text: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/sessions", startRequest{Scenario: "intake", SessionID: "call-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/sessions/call-1/utterances", utteranceRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// One failed resolution exhausts the single-retry budget.
	rec = doJSON(t, h, http.MethodPost, "/sessions/call-1/utterances", utteranceRequest{Text: "mumble"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var er errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.True(t, er.RetryExhausted)

	// The session stays live; a terminal session then conflicts.
	rec = doJSON(t, h, http.MethodPost, "/sessions/call-1/utterances", utteranceRequest{Text: "Mary"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/sessions/call-1/utterances", utteranceRequest{Text: "Mary"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_Healthz(t *testing.T) {
	h := testHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
