package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mppise/eaappreciate/internal/config"
	"github.com/mppise/eaappreciate/internal/prompts"
)

// Connector satisfies Client using a langchain model, for installations that
// point at a standard provider instead of the bespoke deployment endpoint.
type Connector struct {
	llm         llms.Model
	provider    string
	temperature float64
}

// NewConnector creates a langchain-backed client for the configured provider.
func NewConnector(ctx context.Context, cfg *config.Config) (*Connector, error) {
	var model llms.Model
	var err error

	log.Debug().
		Str("provider", cfg.AI.Provider).
		Str("model", cfg.AI.Model).
		Float64("temperature", cfg.AI.Temperature).
		Msg("Creating AI connector")

	switch cfg.AI.Provider {
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.AI.APIKey),
		}
		if cfg.AI.Model != "" {
			opts = append(opts, openai.WithModel(cfg.AI.Model))
		}
		if cfg.AI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.AI.BaseURL))
		}
		model, err = openai.New(opts...)
	case "gemini":
		model, err = googleai.New(ctx, googleai.WithAPIKey(cfg.AI.APIKey))
	case "ollama":
		baseURL := cfg.AI.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model, err = ollama.New(
			ollama.WithServerURL(baseURL),
			ollama.WithModel(cfg.AI.Model),
		)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.AI.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", cfg.AI.Provider, err)
	}

	return &Connector{
		llm:         model,
		provider:    cfg.AI.Provider,
		temperature: cfg.AI.Temperature,
	}, nil
}

// Complete sends the resolved prompt as a system + user message pair and
// returns the first completion's text.
func (c *Connector) Complete(ctx context.Context, prompt prompts.ResolvedPrompt) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompt.System),
		llms.TextParts(llms.ChatMessageTypeHuman,
			prompt.Context+"\n\n"+prompt.Task+"\n\n"+prompt.Format),
	}

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(c.temperature))
	if err != nil {
		return "", &LLMCallError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &LLMCallError{Err: fmt.Errorf("model returned no choices")}
	}

	return resp.Choices[0].Content, nil
}

// NewClientFromConfig selects the right Client implementation for the
// configured provider.
func NewClientFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	if cfg.AI.Provider == "deployment" {
		return NewChatClient(ChatClientConfig{
			DeploymentURL: cfg.AI.DeploymentURL,
			TokenURL:      cfg.AI.TokenURL,
			ClientID:      cfg.AI.ClientID,
			ClientSecret:  cfg.AI.ClientSecret,
			Temperature:   cfg.AI.Temperature,
		}), nil
	}
	return NewConnector(ctx, cfg)
}
