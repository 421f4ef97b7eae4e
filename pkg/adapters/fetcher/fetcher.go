// Package fetcher pulls document content from source URLs for the document
// analysis agent.
package fetcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

const (
	fetchTimeout = 60 * time.Second

	// maxContentSize caps one fetched document at 10 MiB
	maxContentSize = 10 << 20
)

// HTTPFetcher downloads URL content and classifies it as text or image by
// Content-Type. Images are returned base64-encoded for the vision models.
type HTTPFetcher struct {
	hc     *http.Client
	logger *zap.Logger
}

// New creates a new HTTP content fetcher
func New(logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		hc:     &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// FetchURLs downloads every URL. One unreachable URL fails the whole batch;
// the caller decides whether that degrades or aborts its step.
func (f *HTTPFetcher) FetchURLs(ctx context.Context, urls []string) ([]ports.FetchedContent, error) {
	contents := make([]ports.FetchedContent, 0, len(urls))

	for _, url := range urls {
		content, err := f.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		contents = append(contents, content)

		f.logger.Debug("fetched URL content",
			zap.String("url", url),
			zap.String("type", content.Type))
	}

	return contents, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) (ports.FetchedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.FetchedContent{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.hc.Do(req)
	if err != nil {
		return ports.FetchedContent{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.FetchedContent{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return ports.FetchedContent{}, fmt.Errorf("failed to read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		return ports.FetchedContent{
			Type:    "image",
			Content: base64.StdEncoding.EncodeToString(data),
		}, nil
	}

	return ports.FetchedContent{
		Type:    "text",
		Content: string(data),
	}, nil
}

var _ ports.ContentFetcher = (*HTTPFetcher)(nil)
