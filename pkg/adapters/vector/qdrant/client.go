// Package qdrant implements vector-similarity search against a Qdrant server
// over its REST API.
package qdrant

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

const searchTimeout = 30 * time.Second

// Client performs point searches against one Qdrant deployment.
type Client struct {
	baseURL string
	hc      *http.Client
	logger  *zap.Logger
}

// NewClient creates a new Qdrant client
func NewClient(baseURL string, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}

	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: searchTimeout},
		logger:  logger,
	}, nil
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64                `json:"score"`
		Payload map[string]interface{} `json:"payload"`
	} `json:"result"`
}

// Search returns the top hits for the vector in one collection, best first
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int) ([]ports.VectorHit, error) {
	body := searchRequest{
		Vector:      vector,
		Limit:       limit,
		WithPayload: true,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("qdrant returned status %d: %s", resp.StatusCode, data)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]ports.VectorHit, 0, len(decoded.Result))
	for _, point := range decoded.Result {
		hits = append(hits, ports.VectorHit{
			Score:      point.Score,
			Payload:    renderPayload(point.Payload),
			Collection: collection,
		})
	}

	c.logger.Debug("qdrant search completed",
		zap.String("collection", collection),
		zap.Int("hits", len(hits)))

	return hits, nil
}

// renderPayload flattens a point payload to text. A "text" field is used
// as-is; anything else is rendered as JSON.
func renderPayload(payload map[string]interface{}) string {
	if text, ok := payload["text"].(string); ok {
		return text
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}

var _ ports.VectorStore = (*Client)(nil)
