package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mppise/eaappreciate/internal/prompts"
)

// Client executes a resolved prompt against a generative-text backend and
// returns the raw completion text. Implementations never retry; callers
// decide whether to retry or fall back.
type Client interface {
	Complete(ctx context.Context, prompt prompts.ResolvedPrompt) (string, error)
}

// ChatClientConfig configures the bespoke deployment-endpoint client.
type ChatClientConfig struct {
	DeploymentURL string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	Temperature   float64
	HTTPClient    *http.Client
}

// ChatClient talks to a fixed chat-completion deployment behind a
// client-credentials token exchange. A token is fetched fresh per call; there
// is no local cache, so concurrent calls each pay an auth round-trip.
type ChatClient struct {
	config     ChatClientConfig
	httpClient *http.Client
}

// NewChatClient creates a client for the configured deployment endpoint.
func NewChatClient(config ChatClientConfig) *ChatClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ChatClient{config: config, httpClient: httpClient}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// acquireToken exchanges the stored client credentials for a bearer token.
func (c *ChatClient) acquireToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{Status: resp.StatusCode}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", &AuthError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if token.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("token response missing access_token")}
	}
	return token.AccessToken, nil
}

// Complete sends a chat-style request built from the resolved prompt: the
// system field as the system message, and context, task, and format joined
// with blank lines as the user message. Returns the first completion's text.
func (c *ChatClient) Complete(ctx context.Context, prompt prompts.ResolvedPrompt) (string, error) {
	token, err := c.acquireToken(ctx)
	if err != nil {
		return "", err
	}

	payload := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.Context + "\n\n" + prompt.Task + "\n\n" + prompt.Format},
		},
		Temperature: c.config.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &LLMCallError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.DeploymentURL,
		bytes.NewReader(body))
	if err != nil {
		return "", &LLMCallError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &LLMCallError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		log.Debug().
			Int("status", resp.StatusCode).
			Str("body", truncateForLog(string(respBody), 200)).
			Msg("Completion request rejected")
		return "", &LLMCallError{Status: resp.StatusCode}
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", &LLMCallError{Err: fmt.Errorf("decode completion response: %w", err)}
	}
	if len(completion.Choices) == 0 {
		return "", &LLMCallError{Err: fmt.Errorf("completion response has no choices")}
	}

	return completion.Choices[0].Message.Content, nil
}

// truncateForLog truncates text for logging purposes
func truncateForLog(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
