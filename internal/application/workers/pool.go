package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/orchestrator"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// Task is one queued asynchronous execution.
type Task struct {
	ID       string
	ClientID string
	Request  domain.Request
}

// Pool manages a pool of worker goroutines draining the task queue
type Pool struct {
	size    int
	manager *orchestrator.Manager
	metrics ports.MetricsCollector
	logger  *zap.Logger
	health  *HealthMonitor

	queue   chan Task
	workers []*worker
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// worker represents a single worker goroutine
type worker struct {
	id      string
	pool    *Pool
	status  WorkerStatus
	mu      sync.RWMutex
	lastJob time.Time
}

// WorkerStatus represents worker status
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusBusy    WorkerStatus = "busy"
	WorkerStatusStopped WorkerStatus = "stopped"
)

// NewPool creates a new worker pool
func NewPool(
	size int,
	queueSize int,
	manager *orchestrator.Manager,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	healthCheckInterval time.Duration,
) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		size:    size,
		manager: manager,
		metrics: metrics,
		logger:  logger,
		queue:   make(chan Task, queueSize),
		workers: make([]*worker, size),
		ctx:     ctx,
		cancel:  cancel,
	}

	pool.health = NewHealthMonitor(pool, healthCheckInterval, logger)

	return pool
}

// Start starts the worker pool
func (p *Pool) Start() error {
	p.logger.Info("starting worker pool", zap.Int("size", p.size))

	for i := 0; i < p.size; i++ {
		w := &worker{
			id:      fmt.Sprintf("worker-%d", i),
			pool:    p,
			status:  WorkerStatusIdle,
			lastJob: time.Now(),
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(p.ctx)
	}

	p.health.Start()

	p.logger.Info("worker pool started", zap.Int("workers", p.size))
	return nil
}

// Submit enqueues one task. It never blocks: a full queue rejects the task.
func (p *Pool) Submit(task Task) error {
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shut down")
	default:
	}

	select {
	case p.queue <- task:
		p.metrics.RecordRequestSubmitted("accepted")
		return nil
	default:
		p.metrics.RecordRequestSubmitted("rejected")
		return fmt.Errorf("task queue is full")
	}
}

// Health returns the pool's health monitor
func (p *Pool) Health() *HealthMonitor {
	return p.health
}

// Shutdown gracefully shuts down the worker pool
func (p *Pool) Shutdown(ctx context.Context) error {
	p.logger.Info("shutting down worker pool")

	p.health.Stop()
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shut down complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout")
	}
}

// GetStatus returns the status of all workers
func (p *Pool) GetStatus() map[string]WorkerStatus {
	status := make(map[string]WorkerStatus)
	for _, w := range p.workers {
		w.mu.RLock()
		status[w.id] = w.status
		w.mu.RUnlock()
	}
	return status
}

// run is the main worker loop
func (w *worker) run(ctx context.Context) {
	defer w.pool.wg.Done()

	w.pool.logger.Info("worker started", zap.String("worker_id", w.id))

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.status = WorkerStatusStopped
			w.mu.Unlock()
			w.pool.logger.Info("worker stopped", zap.String("worker_id", w.id))
			return
		case task := <-w.pool.queue:
			w.handleTask(ctx, task)
		}
	}
}

// handleTask runs one queued execution through the manager
func (w *worker) handleTask(ctx context.Context, task Task) {
	w.mu.Lock()
	w.status = WorkerStatusBusy
	w.lastJob = time.Now()
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.status = WorkerStatusIdle
		w.mu.Unlock()
	}()

	w.pool.logger.Info("executing task",
		zap.String("worker_id", w.id),
		zap.String("task_id", task.ID),
		zap.String("client_id", task.ClientID))

	outcome := w.pool.manager.ExecuteTask(ctx, task.ID, &task.Request, task.ClientID)

	if outcome != nil && outcome.Status == domain.ExecutionStatusSuccess {
		w.pool.logger.Info("task completed",
			zap.String("worker_id", w.id),
			zap.String("task_id", task.ID),
			zap.Duration("duration", outcome.Duration))
	} else {
		w.pool.logger.Warn("task failed",
			zap.String("worker_id", w.id),
			zap.String("task_id", task.ID))
	}
}
