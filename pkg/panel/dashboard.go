package panel

import (
	"context"
	"fmt"
	"sync"

	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/syncaction"
)

// Dashboard action names.
const (
	ActionProducts  = "products"
	ActionCustomers = "customers"
	ActionOrders    = "orders"
	ActionAll       = "all"
	ActionCleanup   = "cleanup"
)

// Dashboard owns the three top-level panels, the order items panel of the
// selected order, and the store-wide actions.
type Dashboard struct {
	Customers *Customers
	Orders    *Orders
	Products  *Products

	deps Deps

	mu      sync.Mutex
	items   *OrderItems
	actions map[string]*syncaction.Controller
	order   []string
}

// NewDashboard builds the panels and wires every action to invalidate the
// panels it affects. Per-panel sync actions are shared with the dashboard so
// one in-flight guard covers both entry points.
func NewDashboard(d Deps) *Dashboard {
	db := &Dashboard{
		Customers: NewCustomers(d),
		Orders:    NewOrders(d),
		Products:  NewProducts(d),
		deps:      d,
		actions:   make(map[string]*syncaction.Controller),
	}

	items := syncaction.InvalidatorFunc(db.invalidateItems)

	products, _ := db.Products.Action(SyncAction)
	customers, _ := db.Customers.Action(SyncAction)
	orders, _ := db.Orders.Action(SyncAction)
	orders.AddInvalidator(items)

	db.add(ActionProducts, products)
	db.add(ActionCustomers, customers)
	db.add(ActionOrders, orders)

	everything := []syncaction.Invalidator{db.Customers, db.Orders, db.Products, items}

	allTitle, allMsgs := SyncMessages(record.SyncAll)
	all := syncaction.New(syncaction.Options{
		Name:  ActionAll,
		Title: allTitle,
		Run: func(ctx context.Context) (string, error) {
			out, err := d.Client.RunSync(ctx, record.SyncAll)
			if err != nil {
				return "", err
			}
			return out.Message, nil
		},
		Notifier:     d.Notifier,
		Invalidators: everything,
		Messages:     allMsgs,
		Logger:       d.logger(),
	})
	db.add(ActionAll, all)

	cleanupTitle, cleanupMsgs := CleanupMessages()
	cleanup := syncaction.New(syncaction.Options{
		Name:         ActionCleanup,
		Title:        cleanupTitle,
		Run:          d.Client.RunCleanup,
		Notifier:     d.Notifier,
		Invalidators: everything,
		Messages:     cleanupMsgs,
		Logger:       d.logger(),
	})
	db.add(ActionCleanup, cleanup)

	return db
}

func (db *Dashboard) add(name string, c *syncaction.Controller) {
	db.actions[name] = c
	db.order = append(db.order, name)
}

// Open subscribes the top-level panels.
func (db *Dashboard) Open(ctx context.Context) {
	db.Customers.Open(ctx)
	db.Orders.Open(ctx)
	db.Products.Open(ctx)
}

// Close releases every subscription.
func (db *Dashboard) Close() {
	db.Customers.Close()
	db.Orders.Close()
	db.Products.Close()
	db.CloseItems()
}

// ShowItems opens the line items panel for orderID, replacing the one for
// any previously selected order.
func (db *Dashboard) ShowItems(ctx context.Context, orderID string) *OrderItems {
	db.mu.Lock()
	if db.items != nil && db.items.Query().ScopeID == orderID {
		items := db.items
		db.mu.Unlock()
		return items
	}
	old := db.items
	items := NewOrderItems(db.deps, orderID)
	db.items = items
	db.mu.Unlock()

	if old != nil {
		old.Close()
	}
	items.Open(ctx)
	return items
}

// Items returns the open line items panel, if any.
func (db *Dashboard) Items() *OrderItems {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.items
}

// CloseItems releases the line items panel.
func (db *Dashboard) CloseItems() {
	db.mu.Lock()
	items := db.items
	db.items = nil
	db.mu.Unlock()
	if items != nil {
		items.Close()
	}
}

func (db *Dashboard) invalidateItems(ctx context.Context) error {
	items := db.Items()
	if items == nil {
		return nil
	}
	return items.Invalidate(ctx)
}

// Action looks up a dashboard action.
func (db *Dashboard) Action(name string) (*syncaction.Controller, bool) {
	c, ok := db.actions[name]
	return c, ok
}

// Actions lists the dashboard actions in order.
func (db *Dashboard) Actions() []*syncaction.Controller {
	out := make([]*syncaction.Controller, 0, len(db.order))
	for _, name := range db.order {
		out = append(out, db.actions[name])
	}
	return out
}

// ActionNames lists the dashboard action names in order.
func (db *Dashboard) ActionNames() []string {
	return append([]string(nil), db.order...)
}

// Trigger runs the named dashboard action.
func (db *Dashboard) Trigger(ctx context.Context, action string) error {
	c, ok := db.Action(action)
	if !ok {
		return fmt.Errorf("%w: dashboard/%s", ErrUnknownAction, action)
	}
	return c.Trigger(ctx)
}

// Refresh invalidates every open panel.
func (db *Dashboard) Refresh(ctx context.Context) error {
	var firstErr error
	for _, inv := range []func(context.Context) error{
		db.Customers.Refresh, db.Orders.Refresh, db.Products.Refresh, db.invalidateItems,
	} {
		if err := inv(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
