package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4.1", cfg.CompletionModel)
}

func TestNewConfigAppliesOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://localhost:11434"),
		WithAPIKey("sk-test"),
		WithEmbeddingModel("embeddinggemma"),
		WithCompletionModel("qwen2.5:3b"),
	)

	assert.Equal(t, "http://localhost:11434", cfg.Host)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.CompletionModel)
}

func TestNormalizeAddsV1Suffix(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"bare host", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already canonical", "http://localhost:11434/v1", "http://localhost:11434/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
		})
	}
}

func TestNormalizeDefaultsAPIKey(t *testing.T) {
	cfg := NewConfig(WithAPIKey(""))
	cfg.Normalize()
	assert.Equal(t, "none", cfg.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing host", func(c *Config) { c.Host = "" }, true},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, true},
		{"missing completion model", func(c *Config) { c.CompletionModel = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
