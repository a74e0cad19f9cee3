package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mppise/eaappreciate/internal/prompts"
)

func testPrompt() prompts.ResolvedPrompt {
	return prompts.ResolvedPrompt{
		System:  "You are a test assistant",
		Context: "Some context",
		Task:    "Do the thing",
		Format:  "Plain text",
	}
}

func newTestServers(t *testing.T, tokenStatus int, completionHandler http.HandlerFunc) (*ChatClient, *int) {
	t.Helper()

	tokenCalls := 0
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		if tokenStatus != http.StatusOK {
			w.WriteHeader(tokenStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	}))
	t.Cleanup(tokenServer.Close)

	completionServer := httptest.NewServer(completionHandler)
	t.Cleanup(completionServer.Close)

	client := NewChatClient(ChatClientConfig{
		DeploymentURL: completionServer.URL,
		TokenURL:      tokenServer.URL,
		ClientID:      "id",
		ClientSecret:  "secret",
		Temperature:   0.82,
	})
	return client, &tokenCalls
}

func TestChatClient_Complete(t *testing.T) {
	var captured chatRequest
	client, tokenCalls := newTestServers(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "generated text"}},
			},
		})
	})

	out, err := client.Complete(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "generated text", out)

	// System message carries the system part; the user message is
	// context + task + format joined by blank lines.
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "You are a test assistant", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "Some context\n\nDo the thing\n\nPlain text", captured.Messages[1].Content)
	assert.Equal(t, 0.82, captured.Temperature)

	// A fresh token is fetched per call.
	assert.Equal(t, 1, *tokenCalls)
	_, err = client.Complete(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, 2, *tokenCalls)
}

func TestChatClient_TokenExchangeFailure(t *testing.T) {
	client, _ := newTestServers(t, http.StatusForbidden, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("completion endpoint must not be called when auth fails")
	})

	_, err := client.Complete(context.Background(), testPrompt())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusForbidden, authErr.Status)
}

func TestChatClient_CompletionFailure(t *testing.T) {
	client, _ := newTestServers(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Complete(context.Background(), testPrompt())

	var callErr *LLMCallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, http.StatusBadGateway, callErr.Status)
}

func TestChatClient_EmptyChoices(t *testing.T) {
	client, _ := newTestServers(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.Complete(context.Background(), testPrompt())

	var callErr *LLMCallError
	assert.ErrorAs(t, err, &callErr)
}
