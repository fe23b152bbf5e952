package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lferrors "github.com/scan-io-git/lintfix/internal/errors"
	"github.com/scan-io-git/lintfix/internal/issues"
)

func fixRequest() issues.FixRequest {
	return issues.FixRequest{
		FilePath:         "foo.py",
		OriginalContents: "import os\nprint(1)\n",
		Issues:           []issues.Issue{{FilePath: "foo.py", Line: 1, RuleCode: "F401", Message: "'os' imported but unused"}},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("sk-test", Options{APIURL: server.URL, Model: "test-model"}, nil, nil)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Model: "test-model",
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}, FinishReason: openai.FinishReasonStop},
		},
	}
}

func TestRequestFixSuccess(t *testing.T) {
	var received openai.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeJSON(w, http.StatusOK, completion("print(1)"))
	})

	resp, err := client.RequestFix(context.Background(), fixRequest())
	require.NoError(t, err)

	assert.Equal(t, issues.FixResponse{FilePath: "foo.py", NewContents: "print(1)\n"}, resp)
	assert.Equal(t, "test-model", received.Model)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, received.Messages[0].Role)
	assert.Contains(t, received.Messages[1].Content, "[F401] line 1")
}

func TestRequestFixFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name: "api error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
					"error": map[string]interface{}{"message": "Incorrect API key provided", "type": "invalid_request_error"},
				})
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Incorrect API key provided",
		},
		{
			name: "server error plain text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream exploded", http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "upstream exploded",
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, openai.ChatCompletionResponse{})
			},
			wantStatus: http.StatusOK,
			wantMsg:    "no choices",
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, completion("   \n"))
			},
			wantStatus: http.StatusOK,
			wantMsg:    "empty",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"choices": [`))
			},
			wantStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			_, err := client.RequestFix(context.Background(), fixRequest())

			var apiErr *lferrors.ApiError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "foo.py", apiErr.Path)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NotContains(t, err.Error(), "sk-test")
		})
	}
}

func TestRequestFixNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient("sk-test", Options{APIURL: url}, nil, nil)
	require.NoError(t, err)

	_, err = client.RequestFix(context.Background(), fixRequest())
	assert.Equal(t, lferrors.KindAPI, lferrors.KindOf(err))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(" ", Options{}, nil, nil)
	assert.Error(t, err)
}

func TestRequestFixTemperature(t *testing.T) {
	zero := float32(0)
	half := float32(0.5)
	tests := []struct {
		name        string
		temperature *float32
		wantPresent bool
		want        float64
	}{
		{"unset uses api default", nil, false, 0},
		{"explicit zero is sent", &zero, true, 0},
		{"non-zero is sent", &half, true, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]interface{}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				writeJSON(w, http.StatusOK, completion("print(1)"))
			}))
			t.Cleanup(server.Close)

			client, err := NewClient("sk-test", Options{APIURL: server.URL, Model: "test-model", Temperature: tt.temperature}, nil, nil)
			require.NoError(t, err)
			_, err = client.RequestFix(context.Background(), fixRequest())
			require.NoError(t, err)

			value, present := body["temperature"]
			assert.Equal(t, tt.wantPresent, present)
			if tt.wantPresent {
				assert.InDelta(t, tt.want, value, 1e-6)
			}
			assert.Equal(t, "test-model", body["model"])
		})
	}
}
