// Copyright 2026 Inkwell Documents
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Host is the base URL for the OpenAI-compatible API.
	// Example: "https://api.openai.com/v1", "http://localhost:11434/v1"
	Host string

	// APIKey authenticates against the API. Use "none" for local
	// OpenAI-compatible services that don't require authentication.
	APIKey string

	// EmbeddingModel is the model identifier used for text embeddings.
	// Example: "text-embedding-3-small"
	// The index is only valid within one embedding model epoch; changing
	// this value invalidates every previously ingested collection.
	EmbeddingModel string

	// CompletionModel is the model identifier used for answer generation.
	// Example: "gpt-4.1"
	CompletionModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the API base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCompletionModel sets the completion model identifier.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// DefaultConfig returns a Config with the defaults the pipeline was built
// against: OpenAI's hosted API, text-embedding-3-small, gpt-4.1.
func DefaultConfig() *Config {
	return &Config{
		Host:            "https://api.openai.com/v1",
		APIKey:          "none",
		EmbeddingModel:  "text-embedding-3-small",
		CompletionModel: "gpt-4.1",
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the host if missing, which is required by
// most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.CompletionModel == "" {
		return errors.New("ai config: CompletionModel is required")
	}
	return nil
}
