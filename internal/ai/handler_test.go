package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(provider *fakeProvider) *Handler {
	return NewHandler(NewAssistant(provider, nil), zerolog.Nop())
}

func TestHandleModerate(t *testing.T) {
	provider := &fakeProvider{
		response: `{"isSpam":true,"confidence":0.9,"reason":"link farm","isToxic":false,"severity":"none","action":"allow"}`,
	}
	handler := newTestHandler(provider)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/moderate",
		strings.NewReader(`{"content":"BUY NOW!!! click here"}`))
	rec := httptest.NewRecorder()
	handler.HandleModerate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp moderationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Spam.IsSpam)
	assert.Equal(t, "link farm", resp.Spam.Reason)
	assert.False(t, resp.Toxicity.IsToxic)
	assert.Equal(t, "allow", resp.Toxicity.Action)

	// One provider call per analysis.
	assert.Len(t, provider.prompts, 2)
}

func TestHandleModerateRejectsBadRequests(t *testing.T) {
	handler := newTestHandler(&fakeProvider{response: "{}"})

	req := httptest.NewRequest(http.MethodGet, "/api/ai/moderate", nil)
	rec := httptest.NewRecorder()
	handler.HandleModerate(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/ai/moderate", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	handler.HandleModerate(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleModerateUnconfiguredProvider(t *testing.T) {
	handler := NewHandler(NewAssistant(NewOpenAIProvider("", ""), nil), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/moderate",
		strings.NewReader(`{"content":"hello"}`))
	rec := httptest.NewRecorder()
	handler.HandleModerate(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
