package syncaction

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/notify"
)

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
	// seen records how many notifications existed when Invalidate ran.
	seen []int
	rec  *notify.Recorder
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.rec != nil {
		c.seen = append(c.seen, len(c.rec.All()))
	}
	return nil
}

func TestTriggerSuccessNotifiesThenInvalidatesOnce(t *testing.T) {
	rec := &notify.Recorder{}
	inv := &countingInvalidator{rec: rec}
	c := New(Options{
		Name:         "sync-products",
		Title:        "Products",
		Run:          func(context.Context) (string, error) { return "", nil },
		Notifier:     rec,
		Messages:     Messages{Start: "Syncing products...", Success: "Products synchronized"},
		Invalidators: []Invalidator{inv},
	})

	if err := c.Trigger(context.Background()); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	kinds := rec.Kinds()
	if len(kinds) != 2 || kinds[0] != notify.KindInfo || kinds[1] != notify.KindSuccess {
		t.Fatalf("unexpected notifications %v", kinds)
	}
	if inv.calls != 1 {
		t.Fatalf("expected exactly one invalidate, got %d", inv.calls)
	}
	if inv.seen[0] != 2 {
		t.Fatalf("expected invalidate after the success notification")
	}
	if c.InFlight() || c.Status() != Succeeded {
		t.Fatalf("expected succeeded and not in flight, got %v", c.Status())
	}
}

func TestTriggerFailureUsesBodyMessage(t *testing.T) {
	rec := &notify.Recorder{}
	inv := &countingInvalidator{}
	boom := &backend.Error{Body: map[string]any{"message": "quota exceeded"}}
	c := New(Options{
		Name:         "sync-orders",
		Run:          func(context.Context) (string, error) { return "", boom },
		Notifier:     rec,
		Invalidators: []Invalidator{inv},
	})

	err := c.Trigger(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	all := rec.All()
	last := all[len(all)-1]
	if last.Kind != notify.KindError || last.Message != "quota exceeded" {
		t.Fatalf("unexpected error notification %#v", last)
	}
	if inv.calls != 0 {
		t.Fatalf("expected no invalidation on failure")
	}
	if c.InFlight() || c.Status() != Failed || c.LastError() == nil {
		t.Fatalf("expected failed state, got %v", c.Status())
	}
}

func TestDuplicateTriggerRejected(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex
	c := New(Options{
		Name: "sync-customers",
		Run: func(context.Context) (string, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			close(started)
			<-gate
			return "", nil
		},
	})

	done := make(chan error, 1)
	go func() { done <- c.Trigger(context.Background()) }()
	<-started

	if !c.InFlight() {
		t.Fatalf("expected in flight")
	}
	if err := c.Trigger(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected one backend call, got %d", calls)
	}
	if c.InFlight() {
		t.Fatalf("expected in-flight cleared")
	}
}

func TestPanicInInvalidatorClearsInFlight(t *testing.T) {
	rec := &notify.Recorder{}
	c := New(Options{
		Name:     "cleanup",
		Run:      func(context.Context) (string, error) { return "database cleaned", nil },
		Notifier: rec,
		Invalidators: []Invalidator{InvalidatorFunc(func(context.Context) error {
			panic("view gone")
		})},
	})

	err := c.Trigger(context.Background())
	if err == nil {
		t.Fatalf("expected error from panic")
	}
	if c.InFlight() || c.Status() != Failed {
		t.Fatalf("expected failed and not in flight, got %v", c.Status())
	}
	kinds := rec.Kinds()
	if kinds[len(kinds)-1] != notify.KindError {
		t.Fatalf("expected trailing error notification, got %v", kinds)
	}
	if err := c.Trigger(context.Background()); err == nil || errors.Is(err, ErrInFlight) {
		t.Fatalf("expected a fresh run, got %v", err)
	}
}

func TestSuccessMessageFallbacks(t *testing.T) {
	rec := &notify.Recorder{}
	c := New(Options{
		Name:     "cleanup",
		Title:    "Cleanup",
		Run:      func(context.Context) (string, error) { return "database cleaned", nil },
		Notifier: rec,
	})
	_ = c.Trigger(context.Background())
	all := rec.All()
	if all[len(all)-1].Message != "database cleaned" {
		t.Fatalf("expected backend message, got %q", all[len(all)-1].Message)
	}

	rec2 := &notify.Recorder{}
	c2 := New(Options{
		Name:     "refresh",
		Title:    "Refresh",
		Run:      func(context.Context) (string, error) { return "", nil },
		Notifier: rec2,
	})
	_ = c2.Trigger(context.Background())
	if got := rec2.All()[1].Message; got != "Refresh completed" {
		t.Fatalf("expected default success message, got %q", got)
	}
}

func TestDefaultStartNotification(t *testing.T) {
	rec := &notify.Recorder{}
	c := New(Options{
		Name:     "sync-orders",
		Title:    "Orders",
		Run:      func(context.Context) (string, error) { return "", nil },
		Notifier: rec,
	})
	_ = c.Trigger(context.Background())
	all := rec.All()
	if len(all) != 2 {
		t.Fatalf("expected start and success notifications, got %#v", all)
	}
	if all[0].Kind != notify.KindInfo || all[0].Title != "Orders" || all[0].Message != "Orders started" {
		t.Fatalf("unexpected start notification %#v", all[0])
	}
}

func TestFailureTitleKeepsMessageUnprefixed(t *testing.T) {
	rec := &notify.Recorder{}
	c := New(Options{
		Name:     "sync-products",
		Title:    "Products",
		Run:      func(context.Context) (string, error) { return "", errors.New("timeout") },
		Notifier: rec,
		Messages: Messages{FailureTitle: "Error syncing products"},
	})
	_ = c.Trigger(context.Background())
	all := rec.All()
	last := all[len(all)-1]
	if last.Kind != notify.KindError || last.Title != "Error syncing products" || last.Message != "timeout" {
		t.Fatalf("unexpected error notification %#v", last)
	}
	if all[0].Title != "Products" {
		t.Fatalf("expected start notification under the action title, got %q", all[0].Title)
	}
}

func TestDescribePrecedence(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"body message wins", &backend.Error{Body: map[string]any{"message": "quota exceeded"}, Message: "429"}, "quota exceeded"},
		{"error message", &backend.Error{Message: "connection refused"}, "connection refused"},
		{"plain error", errors.New("timeout"), "timeout"},
		{"body dump", &backend.Error{Body: map[string]any{"code": "LIMIT"}}, `{"code":"LIMIT"}`},
		{"payload dump", &backend.Error{Payload: json.RawMessage(`["locked"]`)}, `["locked"]`},
		{"nothing", &backend.Error{}, UnknownError},
		{"nil", nil, UnknownError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Describe(tc.err); got != tc.want {
				t.Fatalf("Describe() = %q, want %q", got, tc.want)
			}
		})
	}
}
