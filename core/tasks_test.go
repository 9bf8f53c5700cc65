package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTaskRegistryRemovesFinishedTasks(t *testing.T) {
	registry := newTaskRegistry()
	done := make(chan struct{})

	if !registry.spawn(context.Background(), "test", uuid.New(), nil, func(context.Context) { close(done) }) {
		t.Fatalf("expected task to be spawned")
	}
	<-done

	deadline := time.After(time.Second)
	for registry.len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("expected finished task to leave the registry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestTaskRegistryRefusesAfterClose(t *testing.T) {
	registry := newTaskRegistry()
	registry.closeAndJoin(time.Millisecond)

	ran := false
	if registry.spawn(context.Background(), "late", uuid.New(), nil, func(context.Context) { ran = true }) {
		t.Fatalf("expected closed registry to refuse tasks")
	}
	if ran {
		t.Fatalf("expected refused task not to run")
	}
}

func TestTaskRegistryRespectsAllow(t *testing.T) {
	registry := newTaskRegistry()

	if registry.spawn(context.Background(), "blocked", uuid.New(), func() bool { return false }, func(context.Context) {}) {
		t.Fatalf("expected spawn to be refused")
	}
	if registry.len() != 0 {
		t.Fatalf("expected refused task not to be registered")
	}
}

func TestTaskRegistryJoinCountsAbandoned(t *testing.T) {
	registry := newTaskRegistry()
	release := make(chan struct{})
	defer close(release)

	registry.spawn(context.Background(), "quick", uuid.New(), nil, func(context.Context) {})
	registry.spawn(context.Background(), "stuck", uuid.New(), nil, func(context.Context) { <-release })

	if abandoned := registry.closeAndJoin(20 * time.Millisecond); abandoned != 1 {
		t.Fatalf("expected one abandoned task, got %d", abandoned)
	}
	if registry.len() != 0 {
		t.Fatalf("expected registry to be cleared")
	}
}

func TestPanicSafeNamedWorker(t *testing.T) {
	err := panicSafeNamedWorker("capture", func(context.Context) error { panic("boom") })(context.Background())
	if err == nil || !strings.Contains(err.Error(), "capture task panicked: boom") {
		t.Fatalf("expected recovered panic, got %v", err)
	}

	cause := errors.New("failed")
	err = panicSafeNamedWorker("capture", func(context.Context) error { return cause })(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}

	if err := panicSafeNamedWorker("capture", func(context.Context) error { return nil })(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
