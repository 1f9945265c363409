// Package llm wraps the Anthropic Messages API as the pipeline's
// generation collaborator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/duncanfisher/patchpilot/internal/config"
	"github.com/duncanfisher/patchpilot/internal/logging"
)

// Generator produces raw text from a completion prompt. The pipeline treats
// the generation service as a black box behind this interface.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client implements Generator against the Anthropic Messages API.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClient creates an Anthropic client from the injected configuration.
func NewClient(cfg config.AnthropicConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key not found in configuration")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	logging.Info("anthropic configuration",
		"model", cfg.Model,
		"api_key", logging.MaskSensitive(cfg.APIKey))

	return &Client{
		client:    client,
		model:     cfg.Model,
		maxTokens: 4096,
	}, nil
}

// Complete sends the prompt as a single user message and returns the
// concatenated text blocks of the response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		if IsBillingError(err) {
			return "", fmt.Errorf("generation service rejected the request for billing or permission reasons, check the Anthropic account and API key: %w", err)
		}
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(b.Text)
		}
	}

	text := sb.String()
	logging.Debug("generation completed",
		"model", c.model,
		"output_length", len(text),
		"stop_reason", string(message.StopReason))

	return text, nil
}

// IsBillingError reports whether err is the billing/permission class of
// provider error that needs operator intervention rather than a retry.
func IsBillingError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 402, 403:
			return true
		}
	}
	return strings.Contains(strings.ToLower(fmt.Sprint(err)), "credit balance")
}
