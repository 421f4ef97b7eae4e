package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/domain"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	if err := bus.Publish(context.Background(), "agent_activity:nobody", []byte("{}")); err != nil {
		t.Fatalf("Publish with no subscribers failed: %v", err)
	}
}

func TestPerChannelOrdering(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []string

	err := bus.PSubscribe(ctx, func(ctx context.Context, channel string, payload []byte) {
		mu.Lock()
		received = append(received, string(payload))
		mu.Unlock()
	}, domain.ActivityPattern)
	if err != nil {
		t.Fatalf("PSubscribe failed: %v", err)
	}

	const n = 50
	channel := domain.ActivityChannel("client-1")
	for i := 0; i < n; i++ {
		if err := bus.Publish(ctx, channel, []byte(fmt.Sprintf("msg-%d", i))); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		count := len(received)
		mu.Unlock()
		if count == n {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("received %d messages, want %d", count, n)
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, msg := range received {
		if want := fmt.Sprintf("msg-%d", i); msg != want {
			t.Fatalf("message %d = %q, want %q (order violated)", i, msg, want)
		}
	}
}

func TestPatternIsolation(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	activity := make(chan string, 10)
	err := bus.PSubscribe(ctx, func(ctx context.Context, channel string, payload []byte) {
		activity <- channel
	}, domain.ActivityPattern)
	if err != nil {
		t.Fatalf("PSubscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, domain.ResultsChannel("client-1"), []byte("{}")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := bus.Publish(ctx, domain.ActivityChannel("client-1"), []byte("{}")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case channel := <-activity:
		if channel != domain.ActivityChannel("client-1") {
			t.Fatalf("received on %q, want activity channel only", channel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("activity message never delivered")
	}

	select {
	case channel := <-activity:
		t.Fatalf("unexpected extra delivery on %q", channel)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionStopsOnContextCancel(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())

	delivered := make(chan struct{}, 10)
	err := bus.PSubscribe(ctx, func(ctx context.Context, channel string, payload []byte) {
		delivered <- struct{}{}
	}, domain.ActivityPattern)
	if err != nil {
		t.Fatalf("PSubscribe failed: %v", err)
	}

	cancel()
	// Give the pump a moment to observe cancellation
	time.Sleep(20 * time.Millisecond)

	if err := bus.Publish(context.Background(), domain.ActivityChannel("c"), []byte("{}")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-delivered:
		t.Fatal("message delivered after subscription context cancelled")
	case <-time.After(100 * time.Millisecond):
	}
}
