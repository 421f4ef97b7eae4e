package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/progress"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// documentConfidence is the fixed confidence reported for document analysis.
const documentConfidence = 0.95

// documentTypes is the heuristic classification vocabulary, checked in order.
var documentTypes = []string{"invoice", "receipt", "contract", "report"}

// DocumentAgent extracts and analyzes text and images from the request
// context and any source URLs.
type DocumentAgent struct {
	llm      ports.LLMClient
	fetcher  ports.ContentFetcher
	metrics  ports.MetricsCollector
	reporter *progress.Reporter
	logger   *zap.Logger
	model    string
	prompt   string
}

// Kind returns the step kind this executor handles
func (a *DocumentAgent) Kind() domain.StepKind {
	return domain.StepKindDocumentAnalysis
}

// Execute runs document analysis over the context text, attached images and
// URL content. With nothing to analyze it falls back to the query itself.
func (a *DocumentAgent) Execute(ctx context.Context, query string, stepCtx domain.RequestContext) (*domain.StepResult, error) {
	textParts := []string{stepCtx.Text}
	imageParts := append([]string(nil), stepCtx.Images...)

	if len(stepCtx.URLs) > 0 && a.fetcher != nil {
		a.reporter.Report(ctx, a.Kind().Label(),
			fmt.Sprintf("Fetching content from %d URLs...", len(stepCtx.URLs)), false)

		contents, err := a.fetcher.FetchURLs(ctx, stepCtx.URLs)
		if err != nil {
			a.reporter.Report(ctx, a.Kind().Label(),
				fmt.Sprintf("Error fetching URL content: %v", err), true)
		} else {
			for _, item := range contents {
				switch item.Type {
				case "text":
					textParts = append(textParts, item.Content)
				case "image":
					imageParts = append(imageParts, item.Content)
				}
			}
			a.reporter.Report(ctx, a.Kind().Label(), "URL content fetched successfully.", false)
		}
	}

	var nonEmpty []string
	for _, part := range textParts {
		if strings.TrimSpace(part) != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	text := strings.Join(nonEmpty, "\n\n")

	if text == "" && len(imageParts) == 0 {
		text = query
		a.reporter.Report(ctx, a.Kind().Label(),
			"No text or image content found, using query as text to analyze.", false)
	}

	prompt := fmt.Sprintf(`Analyze the following text and images based on the user's query: %q.
Document Text: %q

Provide your analysis in the following format:
Document Type: [type]
Confidence: [0-1]
Key Information: [bullet points of extracted data]`, query, text)

	start := time.Now()
	analysis, err := a.llm.Generate(ctx, &ports.GenerateRequest{
		Prompt:       prompt,
		SystemPrompt: a.prompt,
		Model:        a.model,
		Images:       imageParts,
	})
	elapsed := time.Since(start)
	a.metrics.RecordLLMCall(a.model, elapsed)

	if err != nil {
		return nil, fmt.Errorf("document analysis failed: %w", err)
	}

	return &domain.StepResult{
		Kind:         domain.StepKindDocumentAnalysis,
		Text:         text,
		Analysis:     analysis,
		Confidence:   documentConfidence,
		DocumentType: detectDocumentType(text),
		Model:        a.model,
		Elapsed:      elapsed,
	}, nil
}

// detectDocumentType classifies a document by keyword match over a fixed
// small vocabulary.
func detectDocumentType(text string) string {
	lower := strings.ToLower(text)
	for _, docType := range documentTypes {
		if strings.Contains(lower, docType) {
			return docType
		}
	}
	return "general document"
}
