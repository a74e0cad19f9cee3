package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	General struct {
		Port      int    `koanf:"port"`
		JWTSecret string `koanf:"jwt_secret"`
	} `koanf:"general"`

	AI struct {
		Provider      string  `koanf:"provider"` // "deployment", "openai", "gemini", "ollama"
		Model         string  `koanf:"model"`
		APIKey        string  `koanf:"api_key"`
		BaseURL       string  `koanf:"base_url"`
		Temperature   float64 `koanf:"temperature"`
		DeploymentURL string  `koanf:"deployment_url"`
		TokenURL      string  `koanf:"token_url"`
		ClientID      string  `koanf:"client_id"`
		ClientSecret  string  `koanf:"client_secret"`
	} `koanf:"ai"`

	Prompts struct {
		// Optional JSON file with prompt template overrides; built-in
		// defaults are used for any template the file does not define.
		TemplatesFile string `koanf:"templates_file"`
	} `koanf:"prompts"`

	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"general.port":   8888,
		"ai.provider":    "deployment",
		"ai.temperature": 0.82,
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try to load from default locations
		defaultPaths := []string{"./eaappreciate.toml", "$HOME/.eaappreciate.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix EAAPPRECIATE_
	k.Load(env.Provider("EAAPPRECIATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "EAAPPRECIATE_")), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	// Create sample configuration
	sampleConfig := `# EaAppreciate Configuration

[general]
port = 8888
jwt_secret = "change-me"

[ai]
provider = "deployment"
temperature = 0.82
deployment_url = "https://llm.example.com/v1/chat/completions"
token_url = "https://auth.example.com/oauth2/token"
client_id = "your-client-id"
client_secret = "your-client-secret"

[prompts]
# templates_file = "./prompts.json"

[database]
url = "postgres://localhost:5432/eaappreciate?sslmode=disable"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	switch config.AI.Provider {
	case "deployment":
		if config.AI.DeploymentURL == "" {
			return fmt.Errorf("ai deployment_url is required")
		}
		if config.AI.TokenURL == "" {
			return fmt.Errorf("ai token_url is required")
		}
		if config.AI.ClientID == "" || config.AI.ClientSecret == "" {
			return fmt.Errorf("ai client_id and client_secret are required")
		}
	case "openai", "gemini":
		if config.AI.APIKey == "" {
			return fmt.Errorf("ai api_key is required for provider %s", config.AI.Provider)
		}
	case "ollama":
		// Base URL defaults to localhost; nothing required.
	default:
		return fmt.Errorf("unsupported AI provider: %s", config.AI.Provider)
	}

	if config.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}

	return nil
}
