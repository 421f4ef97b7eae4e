package progress

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/adapters/bus/memory"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"go.uber.org/zap"
)

func TestReportPublishesToClientChannel(t *testing.T) {
	bus := memory.NewInMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan domain.ProgressEvent, 10)
	channels := make(chan string, 10)

	err := bus.PSubscribe(ctx, func(ctx context.Context, channel string, payload []byte) {
		var event domain.ProgressEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Errorf("payload is not a progress event: %v", err)
			return
		}
		channels <- channel
		events <- event
	}, domain.ActivityPattern)
	if err != nil {
		t.Fatalf("PSubscribe failed: %v", err)
	}

	reporter := NewReporter(bus, "client-3", nil, zap.NewNop())
	reporter.Report(ctx, "Document Agent", "Fetching content...", false)

	select {
	case channel := <-channels:
		if want := domain.ActivityChannel("client-3"); channel != want {
			t.Errorf("published on %q, want %q", channel, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}

	event := <-events
	if event.Type != domain.EventTypeActivity {
		t.Errorf("event type = %s, want %s", event.Type, domain.EventTypeActivity)
	}
	if event.Agent != "Document Agent" || event.Message != "Fetching content..." || event.IsError {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestSilentReporters(t *testing.T) {
	// Nil receiver, nil bus, and empty client id must all be safe no-ops.
	var nilReporter *Reporter
	nilReporter.Report(context.Background(), "a", "m", false)

	if id := nilReporter.ClientID(); id != "" {
		t.Errorf("nil reporter ClientID = %q, want empty", id)
	}

	NewReporter(nil, "client", nil, zap.NewNop()).Report(context.Background(), "a", "m", false)

	bus := memory.NewInMemoryBus()
	defer bus.Close()
	NewReporter(bus, "", nil, zap.NewNop()).Report(context.Background(), "a", "m", true)
}
