package chatcompletion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletion(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     string
		wantID      string
		wantContent string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"id": "cmpl-123",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": " 2\n"}}],
				"usage": {"prompt_tokens": 10, "completion_tokens": 1}
			}`,
			wantID:      "cmpl-123",
			wantContent: " 2\n",
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"error": {"message": "invalid api key"}}`,
			wantErr: "unexpected status 401",
		},
		{
			name:    "server_error",
			status:  http.StatusInternalServerError,
			body:    `{"error": "internal server error"}`,
			wantErr: "unexpected status 500",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			header := http.Header{}
			header.Set("Authorization", "Bearer test-key")
			header.Set("Content-Type", "application/json")

			temp := 0.0
			resp, err := NewClient().ChatCompletion(context.Background(), srv.URL+"/v1/chat/completions", header, Request{
				Model:       "m",
				Messages:    []Message{{Role: "user", Content: "hi"}},
				Temperature: &temp,
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, resp.ID)
			content, err := resp.Content()
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, content)
		})
	}
}

func TestChatCompletion_RequestBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"1"}}]}`))
	}))
	defer srv.Close()

	temp := 0.0
	_, err := NewClient().ChatCompletion(context.Background(), srv.URL, nil, Request{
		Model:       "llama",
		Messages:    []Message{{Role: "user", Content: "rate this"}},
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, "llama", got["model"])
	// Zero temperature must be sent, not omitted.
	require.Contains(t, got, "temperature")
	assert.Equal(t, 0.0, got["temperature"])
	assert.NotContains(t, got, "max_tokens")
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "rate this"}, msgs[0])
}

func TestChatCompletion_ErrorBodyTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	_, err := NewClient().ChatCompletion(context.Background(), srv.URL, nil, Request{Model: "m"})
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 1024)
}

func TestChatCompletion_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := NewClient(WithTimeout(50*time.Millisecond)).ChatCompletion(context.Background(), srv.URL, nil, Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}

func TestChatCompletion_BadEndpoint(t *testing.T) {
	_, err := NewClient().ChatCompletion(context.Background(), "://bad", nil, Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create request")
}

func TestResponseContent_NoChoices(t *testing.T) {
	_, err := (&Response{}).Content()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := NewClient(WithHTTPClient(hc)).(*httpClient)
	assert.Same(t, hc, c.http)
}
