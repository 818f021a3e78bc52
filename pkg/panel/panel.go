// Package panel composes a live binding, the view-model mapper, a filter and
// sync actions into one list view of an entity kind.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/binding"
	"tableflip.dev/storefront/pkg/filter"
	"tableflip.dev/storefront/pkg/nav"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/syncaction"
)

// ErrUnknownAction is returned by Trigger for an action the panel does not
// expose.
var ErrUnknownAction = errors.New("panel: unknown action")

// Update announces that a panel recomputed its visible records.
type Update struct {
	Panel   string
	State   binding.State
	Total   int
	Visible int
	Err     error
}

// Config describes one panel.
type Config[R any, V record.Identified] struct {
	Name       string
	Query      binding.Query
	EntityType string
	Fetch      binding.Fetcher[R]
	Map        func([]R) []V
	Matcher    filter.Matcher[V]
	Navigator  nav.Navigator
	Logger     *zap.Logger
}

// Panel is a filtered, mapped, live list of one entity kind.
type Panel[R any, V record.Identified] struct {
	name       string
	query      binding.Query
	entityType string
	mapper     func([]R) []V
	matcher    filter.Matcher[V]
	navigator  nav.Navigator
	log        *zap.Logger

	binding *binding.Binding[R]
	updates chan Update

	mu      sync.Mutex
	handle  *binding.Handle
	stop    func()
	state   filter.State
	result  binding.State
	err     error
	all     []V
	visible []V
	actions map[string]*syncaction.Controller
	order   []string
}

// New creates a closed panel.
func New[R any, V record.Identified](cfg Config[R, V]) *Panel[R, V] {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("panel", cfg.Name))
	navigator := cfg.Navigator
	if navigator == nil {
		navigator = nav.Discard
	}
	p := &Panel[R, V]{
		name:       cfg.Name,
		query:      cfg.Query,
		entityType: cfg.EntityType,
		mapper:     cfg.Map,
		matcher:    cfg.Matcher,
		navigator:  navigator,
		log:        log,
		binding:    binding.New(cfg.Fetch, binding.WithLogger(log)),
		updates:    make(chan Update, 1),
		actions:    make(map[string]*syncaction.Controller),
	}
	if p.entityType == "" {
		p.entityType = cfg.Query.Kind.EntityType()
	}
	return p
}

// Name identifies the panel.
func (p *Panel[R, V]) Name() string { return p.name }

// Query is the read the panel subscribes to.
func (p *Panel[R, V]) Query() binding.Query { return p.query }

// Open subscribes the panel's binding and derives the first visible list.
// Opening an open panel re-subscribes.
func (p *Panel[R, V]) Open(ctx context.Context) {
	p.mu.Lock()
	if p.stop == nil {
		p.stop = p.binding.OnChange(p.onChange)
	}
	old := p.handle
	p.mu.Unlock()
	old.Release()

	h := p.binding.Subscribe(ctx, p.query)

	p.mu.Lock()
	p.handle = h
	p.mu.Unlock()
}

// Close releases the subscription and drops the derived records.
func (p *Panel[R, V]) Close() {
	p.mu.Lock()
	h, stop := p.handle, p.stop
	p.handle, p.stop = nil, nil
	p.all, p.visible, p.err = nil, nil, nil
	p.result = binding.Pending
	p.mu.Unlock()

	h.Release()
	if stop != nil {
		stop()
	}
}

// Invalidate re-reads the panel's query. It satisfies syncaction.Invalidator.
func (p *Panel[R, V]) Invalidate(ctx context.Context) error {
	return p.binding.Invalidate(ctx)
}

// Refresh is a manual Invalidate.
func (p *Panel[R, V]) Refresh(ctx context.Context) error {
	if err := p.Invalidate(ctx); err != nil {
		return fmt.Errorf("panel: refresh %s: %w", p.name, err)
	}
	return nil
}

// Invalidations counts invalidations of the underlying binding.
func (p *Panel[R, V]) Invalidations() int {
	return p.binding.Invalidations()
}

func (p *Panel[R, V]) onChange(res binding.Result[R]) {
	p.mu.Lock()
	p.result = res.State
	switch res.State {
	case binding.Failed:
		p.err = res.Err
		p.all = nil
	case binding.Ready:
		p.err = nil
		p.all = p.mapper(res.Data)
	default:
		p.err = nil
		p.all = nil
	}
	u := p.deriveLocked()
	p.mu.Unlock()

	if res.State == binding.Failed {
		p.log.Warn("panel read failed", zap.Error(res.Err))
	}
	p.publish(u)
}

// deriveLocked recomputes the visible list from the all-records cache.
func (p *Panel[R, V]) deriveLocked() Update {
	p.visible = filter.Apply(p.all, p.state, p.matcher)
	return Update{
		Panel:   p.name,
		State:   p.result,
		Total:   len(p.all),
		Visible: len(p.visible),
		Err:     p.err,
	}
}

func (p *Panel[R, V]) publish(u Update) {
	for {
		select {
		case p.updates <- u:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}

// Updates delivers the latest recomputation. Intermediate updates are
// coalesced when the consumer is slow.
func (p *Panel[R, V]) Updates() <-chan Update {
	return p.updates
}

// SetSearch changes the search term and re-filters without re-reading.
func (p *Panel[R, V]) SetSearch(term string) {
	p.mutateFilter(func(st *filter.State) { st.SearchTerm = term })
}

// SetStatus changes the status filter; "" clears it.
func (p *Panel[R, V]) SetStatus(status string) {
	p.mutateFilter(func(st *filter.State) { st.Status = status })
}

// ClearFilters resets the search term and status.
func (p *Panel[R, V]) ClearFilters() {
	p.mutateFilter(func(st *filter.State) { *st = filter.State{} })
}

func (p *Panel[R, V]) mutateFilter(fn func(*filter.State)) {
	p.mu.Lock()
	fn(&p.state)
	u := p.deriveLocked()
	p.mu.Unlock()
	p.publish(u)
}

// Filter returns the current filter state.
func (p *Panel[R, V]) Filter() filter.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Visible returns the filtered display records.
func (p *Panel[R, V]) Visible() []V {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]V(nil), p.visible...)
}

// All returns every display record regardless of filters.
func (p *Panel[R, V]) All() []V {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]V(nil), p.all...)
}

// HasItems reports whether the binding holds any record.
func (p *Panel[R, V]) HasItems() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all) > 0
}

// Err is the retained read error, if any.
func (p *Panel[R, V]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// State is the binding state of the last emission.
func (p *Panel[R, V]) State() binding.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Raw returns the raw records the panel derived from.
func (p *Panel[R, V]) Raw() []R {
	return p.binding.Records()
}

// AddAction exposes c under its name.
func (p *Panel[R, V]) AddAction(c *syncaction.Controller) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.actions[c.Name()]; !ok {
		p.order = append(p.order, c.Name())
	}
	p.actions[c.Name()] = c
}

// Action looks up a controller by name.
func (p *Panel[R, V]) Action(name string) (*syncaction.Controller, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.actions[name]
	return c, ok
}

// Actions lists the controllers in registration order.
func (p *Panel[R, V]) Actions() []*syncaction.Controller {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*syncaction.Controller, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.actions[name])
	}
	return out
}

// Busy reports whether any action is in flight.
func (p *Panel[R, V]) Busy() bool {
	for _, c := range p.Actions() {
		if c.InFlight() {
			return true
		}
	}
	return false
}

// Trigger runs the named action.
func (p *Panel[R, V]) Trigger(ctx context.Context, action string) error {
	c, ok := p.Action(action)
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownAction, p.name, action)
	}
	return c.Trigger(ctx)
}

// View opens recordID in the host.
func (p *Panel[R, V]) View(recordID string) {
	p.navigator.NavigateToRecord(p.entityType, recordID, nav.View)
}

// Edit opens recordID for editing in the host.
func (p *Panel[R, V]) Edit(recordID string) {
	p.navigator.NavigateToRecord(p.entityType, recordID, nav.Edit)
}
