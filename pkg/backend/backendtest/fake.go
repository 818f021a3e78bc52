// Package backendtest provides an in-memory backend.Client for tests.
package backendtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/record"
)

// Fake is an in-memory backend. Collections are raw payloads per kind;
// scoped reads match the OrderId field of order items.
type Fake struct {
	mu          sync.Mutex
	collections map[record.Kind][]json.RawMessage

	// ReadErr, when set, fails every GetCollection call.
	ReadErr error
	// SyncErr fails RunSync for a target.
	SyncErr map[record.SyncTarget]error
	// CleanupErr fails RunCleanup.
	CleanupErr error
	// Gate, when set, blocks jobs until it is closed or receives.
	Gate chan struct{}
	// Started receives the target of each job as it begins, if set.
	Started chan record.SyncTarget
	// OnSync runs after a successful sync, before it returns.
	OnSync func(record.SyncTarget)

	reads    int
	syncs    []record.SyncTarget
	cleanups int
}

var _ backend.Client = (*Fake)(nil)

// New creates an empty Fake.
func New() *Fake {
	return &Fake{
		collections: make(map[record.Kind][]json.RawMessage),
		SyncErr:     make(map[record.SyncTarget]error),
	}
}

// Set replaces the records of kind with the JSON encoding of recs.
func (f *Fake) Set(kind record.Kind, recs ...any) {
	raws := make([]json.RawMessage, 0, len(recs))
	for _, r := range recs {
		data, err := json.Marshal(r)
		if err != nil {
			panic(fmt.Sprintf("backendtest: marshal %T: %v", r, err))
		}
		raws = append(raws, data)
	}
	f.mu.Lock()
	f.collections[kind] = raws
	f.mu.Unlock()
}

// SetRaw replaces the records of kind with raw payloads.
func (f *Fake) SetRaw(kind record.Kind, docs ...string) {
	raws := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		raws = append(raws, json.RawMessage(d))
	}
	f.mu.Lock()
	f.collections[kind] = raws
	f.mu.Unlock()
}

func (f *Fake) GetCollection(_ context.Context, kind record.Kind, scopeID string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	var out []json.RawMessage
	for _, raw := range f.collections[kind] {
		if scopeID != "" && kind == record.KindOrderItems {
			var head struct {
				OrderID string `json:"OrderId"`
			}
			_ = json.Unmarshal(raw, &head)
			if head.OrderID != scopeID {
				continue
			}
		}
		out = append(out, raw)
	}
	return out, nil
}

func (f *Fake) RunSync(ctx context.Context, target record.SyncTarget) (backend.SyncOutcome, error) {
	if f.Started != nil {
		f.Started <- target
	}
	if err := f.wait(ctx); err != nil {
		return backend.SyncOutcome{}, err
	}
	f.mu.Lock()
	f.syncs = append(f.syncs, target)
	err := f.SyncErr[target]
	onSync := f.OnSync
	f.mu.Unlock()
	if err != nil {
		return backend.SyncOutcome{}, err
	}
	if onSync != nil {
		onSync(target)
	}
	return backend.SyncOutcome{Target: target, Message: fmt.Sprintf("%s synchronized", target)}, nil
}

func (f *Fake) RunCleanup(ctx context.Context) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	if f.CleanupErr != nil {
		return "", f.CleanupErr
	}
	f.collections = make(map[record.Kind][]json.RawMessage)
	return "database cleaned", nil
}

func (f *Fake) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reads counts GetCollection calls.
func (f *Fake) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Syncs returns the targets of completed RunSync calls.
func (f *Fake) Syncs() []record.SyncTarget {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]record.SyncTarget(nil), f.syncs...)
}

// Cleanups counts RunCleanup calls.
func (f *Fake) Cleanups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleanups
}
