package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ebarrios-ai/trivium/internal/application/agents"
	"github.com/ebarrios-ai/trivium/internal/application/orchestrator"
	"github.com/ebarrios-ai/trivium/internal/application/workers"
	"github.com/ebarrios-ai/trivium/internal/config"
	redisbus "github.com/ebarrios-ai/trivium/pkg/adapters/bus/redis"
	"github.com/ebarrios-ai/trivium/pkg/adapters/fetcher"
	"github.com/ebarrios-ai/trivium/pkg/adapters/llm"
	"github.com/ebarrios-ai/trivium/pkg/adapters/metrics/prometheus"
	redisstorage "github.com/ebarrios-ai/trivium/pkg/adapters/storage/redis"
	"github.com/ebarrios-ai/trivium/pkg/adapters/vector/qdrant"
	"github.com/ebarrios-ai/trivium/pkg/api/grpc"
	"github.com/ebarrios-ai/trivium/pkg/api/http"
	"github.com/ebarrios-ai/trivium/pkg/api/websocket"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting Trivium orchestrator",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Initialize Redis client
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Initialize adapters
	bus := redisbus.NewPubSubBus(redisClient, logger)
	cache := redisstorage.NewCache(redisClient, logger)
	history := redisstorage.NewHistoryStore(redisClient, cfg.Cache.HistoryTTL, logger)

	llmClient, err := llm.NewClient(&llm.Config{
		Provider:         cfg.LLM.Provider,
		APIKey:           cfg.LLM.APIKey,
		BaseURL:          cfg.LLM.BaseURL,
		GenerateTimeout:  cfg.LLM.GenerateTimeout,
		EmbeddingTimeout: cfg.LLM.EmbeddingTimeout,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}

	vectorStore, err := qdrant.NewClient(cfg.Qdrant.URL, logger)
	if err != nil {
		logger.Fatal("failed to create Qdrant client", zap.Error(err))
	}

	contentFetcher := fetcher.New(logger)
	metricsCollector := prometheus.NewCollector()

	// Initialize application components
	agentFactory := agents.NewFactory(agents.FactoryConfig{
		LLM:     llmClient,
		Cache:   cache,
		Vector:  vectorStore,
		Fetcher: contentFetcher,
		Metrics: metricsCollector,
		Logger:  logger,
		Models: agents.ModelSet{
			Document:  cfg.LLM.DocumentModel,
			Lookup:    cfg.LLM.LookupModel,
			Retrieval: cfg.LLM.RetrievalModel,
			Embedding: cfg.LLM.EmbeddingModel,
		},
		Prompts:           agents.DefaultPrompts(),
		DefaultCollection: cfg.Qdrant.DefaultCollection,
		SearchLimit:       cfg.Qdrant.SearchLimit,
		CacheTTL:          cfg.Cache.TTLMedium,
	})

	orchestratorMgr := orchestrator.NewManager(orchestrator.ManagerConfig{
		Bus:               bus,
		Cache:             cache,
		History:           history,
		Metrics:           metricsCollector,
		Logger:            logger,
		Factory:           agentFactory,
		ExecutionTimeout:  cfg.Timeouts.ExecutionTimeout,
		StepTimeout:       cfg.Timeouts.StepTimeout,
		OrchestratorModel: cfg.LLM.OrchestratorModel,
	})

	workerPool := workers.NewPool(
		cfg.Workers.PoolSize,
		cfg.Workers.QueueSize,
		orchestratorMgr,
		metricsCollector,
		logger,
		cfg.Workers.HealthCheckInterval,
	)

	// Start worker pool
	if err := workerPool.Start(); err != nil {
		logger.Fatal("failed to start worker pool", zap.Error(err))
	}

	// Start the event relay before the API surfaces so no published event
	// precedes the subscription
	relayCtx, relayCancel := context.WithCancel(ctx)
	defer relayCancel()

	registry := websocket.NewRegistry(metricsCollector, logger)
	wsHandler := websocket.NewHandler(bus, registry, metricsCollector, logger)
	if err := wsHandler.Start(relayCtx); err != nil {
		logger.Fatal("failed to start event relay", zap.Error(err))
	}

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Port:         cfg.HTTPPort,
		Orchestrator: orchestratorMgr,
		Pool:         workerPool,
		History:      history,
		WebSocket:    wsHandler,
		Logger:       logger,
	})

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:         cfg.GRPCPort,
		Orchestrator: orchestratorMgr,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("Trivium orchestrator started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("worker_pool_size", cfg.Workers.PoolSize))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	// Shutdown components
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker pool shutdown error", zap.Error(err))
	}

	relayCancel()

	if err := bus.Close(); err != nil {
		logger.Error("bus close error", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("Redis close error", zap.Error(err))
	}

	logger.Info("Trivium orchestrator shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
