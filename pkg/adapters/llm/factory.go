package llm

import (
	"fmt"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/adapters/llm/anthropic"
	"github.com/ebarrios-ai/trivium/pkg/adapters/llm/ollama"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// Config holds LLM client configuration
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string

	GenerateTimeout  time.Duration
	EmbeddingTimeout time.Duration

	Logger *zap.Logger
}

// NewClient creates a new LLM client based on provider
func NewClient(cfg *Config) (ports.LLMClient, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewClient(cfg.BaseURL, cfg.GenerateTimeout, cfg.EmbeddingTimeout, cfg.Logger)
	case "anthropic":
		return anthropic.NewClient(cfg.APIKey, cfg.Logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
