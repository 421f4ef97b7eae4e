// Package progress publishes activity events on behalf of executing agents.
package progress

import (
	"context"
	"encoding/json"

	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// Reporter forwards activity messages to a client's bus channel. Reporting is
// fire-and-forget: failures are logged and never surface to the caller, so a
// missing subscriber can never stall an execution.
type Reporter struct {
	bus      ports.ProgressBus
	clientID string
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// NewReporter creates a reporter bound to one client's activity channel.
// A nil bus or empty client id yields a reporter that drops everything,
// which is how direct synchronous calls without a live connection run.
func NewReporter(bus ports.ProgressBus, clientID string, metrics ports.MetricsCollector, logger *zap.Logger) *Reporter {
	return &Reporter{
		bus:      bus,
		clientID: clientID,
		metrics:  metrics,
		logger:   logger,
	}
}

// Report publishes one activity event under the given agent name.
func (r *Reporter) Report(ctx context.Context, agent, message string, isError bool) {
	if r == nil || r.bus == nil || r.clientID == "" {
		return
	}

	event := domain.NewProgressEvent(agent, message, isError)
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("failed to marshal progress event", zap.Error(err))
		return
	}

	if err := r.bus.Publish(ctx, domain.ActivityChannel(r.clientID), payload); err != nil {
		r.logger.Warn("failed to publish progress event",
			zap.String("client_id", r.clientID),
			zap.String("agent", agent),
			zap.Error(err))
		return
	}

	if r.metrics != nil {
		r.metrics.RecordEventPublished("activity")
	}
}

// ClientID returns the client this reporter publishes for.
func (r *Reporter) ClientID() string {
	if r == nil {
		return ""
	}
	return r.clientID
}
