// Package ollama implements the inference boundary against a local Ollama
// server over its REST API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// Client talks to an Ollama server. Generation and embedding use separate
// HTTP clients because their latency profiles differ by an order of
// magnitude.
type Client struct {
	baseURL     string
	generateHC  *http.Client
	embeddingHC *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Ollama client
func NewClient(baseURL string, generateTimeout, embeddingTimeout time.Duration, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ollama base URL is required")
	}

	return &Client{
		baseURL:     baseURL,
		generateHC:  &http.Client{Timeout: generateTimeout},
		embeddingHC: &http.Client{Timeout: embeddingTimeout},
		logger:      logger,
	}, nil
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	System string   `json:"system,omitempty"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Generate sends a non-streaming completion request
func (c *Client) Generate(ctx context.Context, req *ports.GenerateRequest) (string, error) {
	body := generateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		System: req.SystemPrompt,
		Images: req.Images,
		Stream: false,
	}

	var resp generateResponse
	if err := c.post(ctx, c.generateHC, "/api/generate", body, &resp); err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}

	c.logger.Debug("ollama generate completed",
		zap.String("model", req.Model),
		zap.Int("response_length", len(resp.Response)))

	return resp.Response, nil
}

// Embed computes the embedding vector for the given text
func (c *Client) Embed(ctx context.Context, text, model string) ([]float32, error) {
	body := embeddingRequest{
		Model:  model,
		Prompt: text,
	}

	var resp embeddingResponse
	if err := c.post(ctx, c.embeddingHC, "/api/embeddings", body, &resp); err != nil {
		return nil, fmt.Errorf("ollama embedding failed: %w", err)
	}

	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding for model %s", model)
	}

	return resp.Embedding, nil
}

// post sends one JSON request and decodes the JSON response
func (c *Client) post(ctx context.Context, hc *http.Client, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, data)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
