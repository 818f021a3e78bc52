// Package binding implements a live, invalidatable read of a backend
// collection. A Binding owns the raw record cache for one query; dependents
// observe it through OnChange and never mutate it.
package binding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/record"
)

// ErrNotSubscribed is returned when invalidating a binding with no active
// subscription.
var ErrNotSubscribed = errors.New("binding: not subscribed")

// Query identifies the backend read a binding performs.
type Query struct {
	Kind    record.Kind
	ScopeID string
}

func (q Query) String() string {
	if q.ScopeID == "" {
		return string(q.Kind)
	}
	return fmt.Sprintf("%s[%s]", q.Kind, q.ScopeID)
}

// State tags a Result.
type State int

const (
	// Pending means no emission has been applied since subscribing.
	Pending State = iota
	// Ready means Data holds the latest records.
	Ready
	// Failed means Err holds the latest read failure and Data is empty.
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Result is one emission of the subscription.
type Result[R any] struct {
	State State
	Data  []R
	Err   error
}

// Data builds a successful emission.
func Data[R any](records []R) Result[R] {
	return Result[R]{State: Ready, Data: records}
}

// Failure builds a failed emission.
func Failure[R any](err error) Result[R] {
	return Result[R]{State: Failed, Err: err}
}

func (r Result[R]) clone() Result[R] {
	out := r
	if r.Data != nil {
		out.Data = append([]R(nil), r.Data...)
	}
	return out
}

// Fetcher performs the backend read for a query.
type Fetcher[R any] func(ctx context.Context, q Query) ([]R, error)

// Option configures a Binding.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for emission diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

type listener[R any] struct {
	id int
	fn func(Result[R])
}

// Binding is a reactive read of one backend collection.
type Binding[R any] struct {
	fetch Fetcher[R]
	log   *zap.Logger

	// applyMu serializes emissions so listeners of one emission finish
	// before the next emission starts.
	applyMu sync.Mutex

	mu            sync.RWMutex
	query         Query
	handle        string
	generation    int
	active        bool
	result        Result[R]
	listeners     []listener[R]
	nextListener  int
	invalidations int

	// seq numbers loads in start order; applied is the newest one applied
	// in this generation. Older loads finishing late are dropped.
	seq     int
	applied int
}

// New creates an inactive binding backed by fetch.
func New[R any](fetch Fetcher[R], opts ...Option) *Binding[R] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Binding[R]{fetch: fetch, log: o.log}
}

// Handle is the caller's reference to an active subscription.
type Handle struct {
	id      string
	release func(string)
	once    sync.Once
}

// ID identifies the subscription.
func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// Release tears the subscription down and discards the record cache. It is
// safe to call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() { h.release(h.id) })
}

// Subscribe activates the binding for q and delivers the first emission
// before returning. Any previous subscription is replaced.
func (b *Binding[R]) Subscribe(ctx context.Context, q Query) *Handle {
	b.mu.Lock()
	b.generation++
	b.query = q
	b.active = true
	b.handle = uuid.NewString()
	b.result = Result[R]{State: Pending}
	b.applied = 0
	b.seq++
	gen, seq := b.generation, b.seq
	h := &Handle{id: b.handle, release: b.release}
	b.mu.Unlock()

	b.log.Debug("binding subscribed", zap.Stringer("query", q), zap.String("handle", h.id))
	_ = b.load(ctx, gen, seq, q)
	return h
}

func (b *Binding[R]) release(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle != id {
		return
	}
	b.active = false
	b.handle = ""
	b.generation++
	b.result = Result[R]{}
	b.log.Debug("binding released", zap.Stringer("query", b.query), zap.String("handle", id))
}

// Invalidate re-runs the subscription's query without tearing it down and
// applies the outcome. The returned error is informational: a failed read is
// already applied as a Failed emission.
func (b *Binding[R]) Invalidate(ctx context.Context) error {
	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return ErrNotSubscribed
	}
	b.invalidations++
	b.seq++
	gen, seq, q := b.generation, b.seq, b.query
	b.mu.Unlock()

	return b.load(ctx, gen, seq, q)
}

func (b *Binding[R]) load(ctx context.Context, gen, seq int, q Query) error {
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := b.fetch(ctx, q)
	if err != nil {
		b.log.Warn("binding read failed", zap.Stringer("query", q), zap.Error(err))
		b.apply(gen, seq, Failure[R](err))
		return fmt.Errorf("binding: read %s: %w", q, err)
	}
	b.apply(gen, seq, Data(records))
	return nil
}

// Apply delivers an emission for the current subscription. On data it
// replaces the cache and clears any error; on failure it empties the cache
// and retains the error. Emissions on an inactive binding are dropped. An
// applied emission supersedes every read started before it.
func (b *Binding[R]) Apply(res Result[R]) {
	b.mu.Lock()
	b.seq++
	gen, seq := b.generation, b.seq
	b.mu.Unlock()
	b.apply(gen, seq, res)
}

func (b *Binding[R]) apply(gen, seq int, res Result[R]) {
	b.applyMu.Lock()
	defer b.applyMu.Unlock()

	b.mu.Lock()
	if !b.active || gen != b.generation || seq < b.applied {
		q := b.query
		b.mu.Unlock()
		b.log.Debug("binding emission dropped", zap.Stringer("query", q), zap.Int("seq", seq))
		return
	}
	b.applied = seq
	switch res.State {
	case Failed:
		b.result = Result[R]{State: Failed, Err: res.Err}
	case Ready:
		data := res.Data
		if data == nil {
			data = []R{}
		}
		b.result = Result[R]{State: Ready, Data: append([]R(nil), data...)}
	default:
		b.result = Result[R]{State: Pending}
	}
	snapshot := b.result.clone()
	listeners := append([]listener[R](nil), b.listeners...)
	b.mu.Unlock()

	for _, l := range listeners {
		l.fn(snapshot)
	}
}

// OnChange registers fn to run after every applied emission. Listeners run
// synchronously in registration order and must not call Apply or Invalidate
// on the same binding.
func (b *Binding[R]) OnChange(fn func(Result[R])) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextListener
	b.nextListener++
	b.listeners = append(b.listeners, listener[R]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the latest emission.
func (b *Binding[R]) Snapshot() Result[R] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.result.clone()
}

// Records returns a copy of the cached raw records.
func (b *Binding[R]) Records() []R {
	return b.Snapshot().Data
}

// Err returns the retained read error, if any.
func (b *Binding[R]) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.result.Err
}

// Query returns the active query.
func (b *Binding[R]) Query() Query {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.query
}

// Active reports whether a subscription is live.
func (b *Binding[R]) Active() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// Invalidations counts Invalidate calls made on live subscriptions.
func (b *Binding[R]) Invalidations() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.invalidations
}
