package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optibuy/pkg/apperr"
)

func candidateBody(text string) string {
	body := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestGenerateJSONReturnsFirstCandidateText(t *testing.T) {
	var gotPath string
	var gotPayload generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateBody(`{"ok":true}`)))
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-2.5-flash", srv.URL)
	text, err := client.GenerateJSON(context.Background(), "compare these proposals", map[string]string{"type": "OBJECT"})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	require.Len(t, gotPayload.Contents, 1)
	assert.Equal(t, "compare these proposals", gotPayload.Contents[0].Parts[0].Text)
	assert.Equal(t, "application/json", gotPayload.GenerationConfig.ResponseMimeType)
}

func TestGenerateJSONServiceErrorOnHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-key", "", srv.URL)
	_, err := client.GenerateJSON(context.Background(), "prompt", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindService, apperr.KindOf(err))
}

func TestGenerateJSONServiceErrorOnEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "", srv.URL)
	_, err := client.GenerateJSON(context.Background(), "prompt", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindService, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "empty response")
}

func TestGenerateJSONServiceErrorWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down immediately

	client := NewClient("test-key", "", srv.URL)
	_, err := client.GenerateJSON(context.Background(), "prompt", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindService, apperr.KindOf(err))
}
