package assistant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/assistant"
	speechModel "github.com/zhouzirui/crystal-voice/backend/internal/model/speech"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/knowledge"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/llm"
)

type stubVoice struct{}

func (stubVoice) Playback() speechModel.Playback { return speechModel.DefaultPlayback() }
func (stubVoice) Capture() speechModel.Capture   { return speechModel.DefaultCapture("") }
func (stubVoice) SynthesisEnabled() bool         { return false }

func setupRouter() *chi.Mux {
	h := New(assistant.Default(), knowledge.NewDefaultMatcher(), stubVoice{}, llm.Unconfigured{ModelName: "gpt-4o-mini"})
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestProfile(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/assistant", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Name       string               `json:"name"`
		Welcome    string               `json:"welcomeMessage"`
		Examples   []string             `json:"examples"`
		Overview   string               `json:"overview"`
		Categories []string             `json:"categories"`
		Playback   speechModel.Playback `json:"playback"`
		Capture    speechModel.Capture  `json:"capture"`
		LLM        llmStatus            `json:"llm"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "Crystal Group Voice Assistant", body.Name)
	assert.Len(t, body.Examples, 4)
	assert.Equal(t, knowledge.Overview, body.Overview)
	assert.Equal(t, "company", body.Categories[0])
	assert.InDelta(t, 0.9, body.Playback.Rate, 0.0001)
	assert.Equal(t, "en-US", body.Capture.Language)
	assert.False(t, body.Capture.Continuous)
	assert.True(t, body.Capture.InterimResults)
	assert.False(t, body.LLM.Configured)
	assert.Equal(t, "gpt-4o-mini", body.LLM.Model)
}

func TestKnowledgeByCategory(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/assistant/knowledge?category=contact", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var entries []knowledge.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, "contact", e.Category)
	}
}

func TestKnowledgeListsEveryEntry(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/assistant/knowledge", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var entries []knowledge.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.Len(t, entries, len(knowledge.DefaultEntries()))
}

func TestKnowledgeUnknownCategory(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/assistant/knowledge?category=weather", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
