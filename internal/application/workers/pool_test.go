package workers

import (
	"context"
	"testing"
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/agents"
	"github.com/ebarrios-ai/trivium/internal/application/orchestrator"
	busmemory "github.com/ebarrios-ai/trivium/pkg/adapters/bus/memory"
	storagememory "github.com/ebarrios-ai/trivium/pkg/adapters/storage/memory"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

type nopMetrics struct{}

func (nopMetrics) RecordRequestSubmitted(string) {}
func (nopMetrics) RecordRequestCompleted(string, time.Duration) {}
func (nopMetrics) RecordStepExecuted(string, string, time.Duration) {}
func (nopMetrics) RecordLLMCall(string, time.Duration) {}
func (nopMetrics) RecordEventPublished(string) {}
func (nopMetrics) RecordEventDelivered() {}
func (nopMetrics) RecordEventDropped() {}
func (nopMetrics) SetLiveConnections(int) {}
func (nopMetrics) RecordWorkerPoolStatus(int, int, int) {}

// gatedLLM blocks every Generate call until released
type gatedLLM struct {
	release chan struct{}
}

func (g *gatedLLM) Generate(ctx context.Context, req *ports.GenerateRequest) (string, error) {
	select {
	case <-g.release:
		return "done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *gatedLLM) Embed(ctx context.Context, text, model string) ([]float32, error) {
	return []float32{1}, nil
}

type emptyVector struct{}

func (emptyVector) Search(ctx context.Context, collection string, vector []float32, limit int) ([]ports.VectorHit, error) {
	return nil, nil
}

func newTestPool(t *testing.T, poolSize, queueSize int, llm ports.LLMClient) *Pool {
	t.Helper()

	bus := busmemory.NewInMemoryBus()
	t.Cleanup(func() { _ = bus.Close() })

	factory := agents.NewFactory(agents.FactoryConfig{
		LLM:               llm,
		Cache:             storagememory.NewCache(),
		Vector:            emptyVector{},
		Metrics:           nopMetrics{},
		Logger:            zap.NewNop(),
		Models:            agents.ModelSet{Document: "d", Lookup: "l", Retrieval: "r", Embedding: "e"},
		Prompts:           agents.DefaultPrompts(),
		DefaultCollection: "documents",
		CacheTTL:          time.Minute,
	})

	manager := orchestrator.NewManager(orchestrator.ManagerConfig{
		Bus:               bus,
		Cache:             storagememory.NewCache(),
		History:           storagememory.NewHistoryStore(),
		Metrics:           nopMetrics{},
		Logger:            zap.NewNop(),
		Factory:           factory,
		ExecutionTimeout:  10 * time.Second,
		StepTimeout:       5 * time.Second,
		OrchestratorModel: "orch",
	})

	return NewPool(poolSize, queueSize, manager, nopMetrics{}, zap.NewNop(), time.Minute)
}

func TestPoolExecutesSubmittedTask(t *testing.T) {
	llm := &gatedLLM{release: make(chan struct{})}
	close(llm.release)

	pool := newTestPool(t, 1, 4, llm)
	if err := pool.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer shutdownPool(t, pool)

	if err := pool.Submit(Task{ID: "t1", Request: domain.Request{Query: "hello"}}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Wait for the worker to drain the queue and go idle again
	deadline := time.Now().Add(2 * time.Second)
	for {
		status := pool.Health().GetStatus()
		if status.QueueDepth == 0 && status.BusyWorkers == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("task never completed: %+v", status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	llm := &gatedLLM{release: make(chan struct{})}

	pool := newTestPool(t, 1, 1, llm)
	if err := pool.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		close(llm.release)
		shutdownPool(t, pool)
	}()

	// First task occupies the single worker
	if err := pool.Submit(Task{ID: "t1", Request: domain.Request{Query: "a"}}); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	// Wait until the worker has picked it up so the queue slot is free
	deadline := time.Now().Add(2 * time.Second)
	for pool.Health().GetStatus().BusyWorkers != 1 {
		if time.Now().After(deadline) {
			t.Fatal("worker never became busy")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Second task fills the queue
	if err := pool.Submit(Task{ID: "t2", Request: domain.Request{Query: "b"}}); err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}

	// Third must be rejected
	if err := pool.Submit(Task{ID: "t3", Request: domain.Request{Query: "c"}}); err == nil {
		t.Fatal("third Submit succeeded, want queue-full error")
	}
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	llm := &gatedLLM{release: make(chan struct{})}
	close(llm.release)

	pool := newTestPool(t, 1, 1, llm)
	if err := pool.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	shutdownPool(t, pool)

	if err := pool.Submit(Task{ID: "t1", Request: domain.Request{Query: "late"}}); err == nil {
		t.Fatal("Submit after shutdown succeeded, want error")
	}
}

func shutdownPool(t *testing.T, pool *Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}
