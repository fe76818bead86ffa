package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"faqbot-go/internal/config"

	"github.com/stretchr/testify/require"
)

func TestStreamChatCopiesRawBody(t *testing.T) {
	upstream := "{\"response\":\"Hel\"}\n{\"response\":\"lo\"}\n[DONE]\n"

	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range []string{"{\"response\":\"Hel\"}\n", "{\"response\":\"lo\"}\n", "[DONE]\n"} {
			fmt.Fprint(w, line)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	client := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})

	var out bytes.Buffer
	err := client.StreamChat(context.Background(), []Message{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "hi"},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, upstream, out.String())

	require.True(t, gotReq.Stream)
	require.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	require.Equal(t, "user", gotReq.Messages[1].Role)
}

func TestStreamChatNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	}))
	defer srv.Close()

	client := NewClient(config.LLMConfig{BaseURL: srv.URL, Model: "m"})

	var out bytes.Buffer
	err := client.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}}, &out)
	require.Error(t, err)
	require.Zero(t, out.Len(), "nothing is relayed on an upstream error")
}
