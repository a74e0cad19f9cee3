package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	// A nonexistent explicit path is an error.
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestInitAndLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eaappreciate.toml")
	require.NoError(t, InitConfig(path))

	// Second init must not overwrite.
	assert.Error(t, InitConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8888, cfg.General.Port)
	assert.Equal(t, "deployment", cfg.AI.Provider)
	assert.InDelta(t, 0.82, cfg.AI.Temperature, 0.0001)
	assert.NotEmpty(t, cfg.Database.URL)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eaappreciate.toml")
	require.NoError(t, InitConfig(path))

	os.Setenv("EAAPPRECIATE_GENERAL_PORT", "9100")
	os.Setenv("EAAPPRECIATE_AI_PROVIDER", "ollama")
	defer os.Unsetenv("EAAPPRECIATE_GENERAL_PORT")
	defer os.Unsetenv("EAAPPRECIATE_AI_PROVIDER")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.General.Port)
	assert.Equal(t, "ollama", cfg.AI.Provider)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Database.URL = "postgres://localhost/eaappreciate"
		return cfg
	}

	cfg := base()
	cfg.AI.Provider = "deployment"
	assert.Error(t, Validate(cfg), "deployment requires endpoint and credentials")

	cfg.AI.DeploymentURL = "https://llm.example.com/v1/chat/completions"
	cfg.AI.TokenURL = "https://auth.example.com/token"
	cfg.AI.ClientID = "id"
	cfg.AI.ClientSecret = "secret"
	assert.NoError(t, Validate(cfg))

	cfg = base()
	cfg.AI.Provider = "openai"
	assert.Error(t, Validate(cfg), "openai requires api key")
	cfg.AI.APIKey = "sk-test"
	assert.NoError(t, Validate(cfg))

	cfg = base()
	cfg.AI.Provider = "ollama"
	assert.NoError(t, Validate(cfg))

	cfg = base()
	cfg.AI.Provider = "carrier-pigeon"
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.AI.Provider = "ollama"
	cfg.Database.URL = ""
	assert.Error(t, Validate(cfg))
}
