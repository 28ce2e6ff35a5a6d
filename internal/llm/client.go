// Package llm binds the abstract classification capability to the Anthropic API.
package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/spec-kit/support-router/internal/config"
)

const maxTokens = 64

// Client is a thin wrapper over the Anthropic messages API.
type Client struct {
	client  anthropic.Client
	model   anthropic.Model
	enabled bool
}

// NewClient builds the capability client. Returns nil when the capability is
// disabled or no API key is configured, so callers wire a nil capability and
// the classifier stays on its rule-based path.
func NewClient(cfg config.CapabilityConfig) *Client {
	if !cfg.Enabled || strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	return &Client{
		client:  anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   anthropic.Model(cfg.Model),
		enabled: true,
	}
}

// Chat sends one system+user exchange and returns the text of the reply.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	if c == nil || !c.enabled {
		return "", errors.New("capability disabled")
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}

	var parts []string
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
