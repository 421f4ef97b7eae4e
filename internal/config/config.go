package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the Trivium orchestrator
type Config struct {
	// Server configuration
	HTTPPort int    `env:"TRIVIUM_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"TRIVIUM_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis configuration
	Redis RedisConfig

	// LLM configuration
	LLM LLMConfig

	// Qdrant configuration
	Qdrant QdrantConfig

	// Worker configuration
	Workers WorkerConfig

	// Cache TTLs
	Cache CacheConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"ollama"`
	APIKey   string `env:"LLM_API_KEY"`
	BaseURL  string `env:"LLM_BASE_URL" envDefault:"http://localhost:11434"`

	// Per-agent model assignments
	OrchestratorModel string `env:"LLM_ORCHESTRATOR_MODEL" envDefault:"qwen3-vl:4b"`
	DocumentModel     string `env:"LLM_DOCUMENT_MODEL" envDefault:"qwen3-vl:4b"`
	LookupModel       string `env:"LLM_LOOKUP_MODEL" envDefault:"qwen3-vl:4b"`
	RetrievalModel    string `env:"LLM_RETRIEVAL_MODEL" envDefault:"qwen3-vl:4b"`
	EmbeddingModel    string `env:"LLM_EMBEDDING_MODEL" envDefault:"qwen3-embedding:8b"`

	GenerateTimeout  time.Duration `env:"LLM_GENERATE_TIMEOUT" envDefault:"600s"`
	EmbeddingTimeout time.Duration `env:"LLM_EMBEDDING_TIMEOUT" envDefault:"120s"`
}

// QdrantConfig holds knowledge-store configuration
type QdrantConfig struct {
	URL               string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	DefaultCollection string `env:"QDRANT_DEFAULT_COLLECTION" envDefault:"documents"`
	SearchLimit       int    `env:"QDRANT_SEARCH_LIMIT" envDefault:"3"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	PoolSize            int           `env:"WORKER_POOL_SIZE" envDefault:"5"`
	QueueSize           int           `env:"WORKER_QUEUE_SIZE" envDefault:"100"`
	HealthCheckInterval time.Duration `env:"WORKER_HEALTH_CHECK_INTERVAL" envDefault:"30s"`
}

// CacheConfig holds cache TTL configuration
type CacheConfig struct {
	TTLShort  time.Duration `env:"CACHE_TTL_SHORT" envDefault:"5m"`
	TTLMedium time.Duration `env:"CACHE_TTL_MEDIUM" envDefault:"30m"`
	TTLLong   time.Duration `env:"CACHE_TTL_LONG" envDefault:"24h"`

	// History sessions are retained for this long
	HistoryTTL time.Duration `env:"CACHE_TTL_HISTORY" envDefault:"720h"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ExecutionTimeout time.Duration `env:"TIMEOUT_EXECUTION" envDefault:"1800s"`
	StepTimeout      time.Duration `env:"TIMEOUT_STEP" envDefault:"600s"`
	ShutdownTimeout  time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server ports
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	// Validate Redis config
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	// Validate LLM config
	switch c.LLM.Provider {
	case "ollama":
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("LLM base URL is required for ollama provider")
		}
	case "anthropic":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM API key is required for anthropic provider")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s (must be 'ollama' or 'anthropic')", c.LLM.Provider)
	}

	// Validate Qdrant config
	if c.Qdrant.URL == "" {
		return fmt.Errorf("qdrant URL is required")
	}

	// Validate worker config
	if c.Workers.PoolSize < 1 {
		return fmt.Errorf("worker pool size must be at least 1")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
