// Package claude implements llm.Completer on the Anthropic Messages API.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/claimgate/internal/llm"
)

const defaultMaxTokens = 4096

// Client calls the Claude API for single-shot completions.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New creates a Claude client for the given API key and model name.
func New(apiKey, model string) *Client {
	return &Client{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: defaultMaxTokens,
	}
}

// Complete sends one system+user prompt pair and returns the text answer.
func (c *Client) Complete(ctx context.Context, system, user string) (*llm.Completion, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude messages: %w", err)
	}
	return fromSDKMessage(c.model, msg), nil
}

// fromSDKMessage flattens the SDK response into a completion, joining all
// text blocks in order.
func fromSDKMessage(model string, msg *anthropic.Message) *llm.Completion {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return &llm.Completion{
		Content:      sb.String(),
		Model:        model,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}
}
