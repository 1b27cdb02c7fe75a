package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/inkwelldocs/inkwell/ai"
	"github.com/inkwelldocs/inkwell/core"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client: client,
		model:  config.CompletionModel,
		logger: slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete runs one chat completion with a system instruction and a user turn.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	c.logger.Debug("generating completion", "model", c.model, "system_len", len(system), "user_len", len(user))

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}

	resp, err := c.client.GenerateContent(ctx, content)
	if err != nil {
		c.logger.Error("completion failed", "err", err)
		return "", fmt.Errorf("%w: %w", core.ErrGenerationProvider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", core.ErrGenerationProvider)
	}

	return resp.Choices[0].Content, nil
}
