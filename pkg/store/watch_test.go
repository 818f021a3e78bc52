package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tableflip.dev/storefront/pkg/record"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func TestPersistenceWatchEmitsKindChanges(t *testing.T) {
	base := t.TempDir()
	p, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if err := p.Put(record.KindProducts, json.RawMessage(`{"Id":"01t1","Name":"Mug"}`)); err != nil {
		t.Fatalf("put record: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventMirrorInvalidated {
				return
			}
			if evt.Kind != record.KindProducts {
				t.Fatalf("expected kind %q, got %q", record.KindProducts, evt.Kind)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for kind change event")
		}
	}
}

func TestEventThrottleCoalescesBursts(t *testing.T) {
	th := newEventThrottle(20 * time.Millisecond)
	defer th.Stop()

	got := make(chan Event, 8)
	send := func(ev Event) { got <- ev }
	for i := 0; i < 5; i++ {
		th.Enqueue(Event{Type: EventKindChanged, Kind: record.KindOrders}, send)
	}

	select {
	case ev := <-got:
		if ev.Kind != record.KindOrders {
			t.Fatalf("unexpected event %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for flush")
	}
	select {
	case ev := <-got:
		t.Fatalf("expected one coalesced event, got extra %#v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestEventThrottleInvalidationWins(t *testing.T) {
	th := newEventThrottle(10 * time.Millisecond)
	defer th.Stop()

	got := make(chan Event, 8)
	send := func(ev Event) { got <- ev }
	th.Enqueue(Event{Type: EventKindChanged, Kind: record.KindOrders}, send)
	th.Enqueue(Event{Type: EventMirrorInvalidated}, send)

	select {
	case ev := <-got:
		if ev.Type != EventMirrorInvalidated {
			t.Fatalf("expected invalidation, got %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for flush")
	}
}
