// Package anthropic implements the inference boundary against the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

const defaultMaxTokens = 4096

// Client wraps the official Anthropic SDK.
type Client struct {
	client anthropic.Client
	logger *zap.Logger
}

// NewClient creates a new Anthropic client
func NewClient(apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}, nil
}

// Generate sends one message exchange and returns the concatenated text blocks
func (c *Client) Generate(ctx context.Context, req *ports.GenerateRequest) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Images)+1)
	for _, image := range req.Images {
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", image))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message failed: %w", err)
	}

	var text string
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text += b.Text
		}
	}

	c.logger.Debug("anthropic generate completed",
		zap.String("model", req.Model),
		zap.Int("response_length", len(text)))

	return text, nil
}

// Embed is not supported by the Anthropic API. Deployments using the
// anthropic provider must point the knowledge-retrieval agent at a
// collection indexed elsewhere or run a local provider for embeddings.
func (c *Client) Embed(ctx context.Context, text, model string) ([]float32, error) {
	return nil, fmt.Errorf("anthropic provider does not support embeddings")
}

var _ ports.LLMClient = (*Client)(nil)
