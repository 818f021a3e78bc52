package panel

import (
	"context"

	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/binding"
	"tableflip.dev/storefront/pkg/filter"
	"tableflip.dev/storefront/pkg/nav"
	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/record/viewmodel"
	"tableflip.dev/storefront/pkg/syncaction"
)

// SyncAction is the name of the per-panel sync action.
const SyncAction = "sync"

type (
	Customers  = Panel[record.Customer, viewmodel.CustomerView]
	Orders     = Panel[record.Order, viewmodel.OrderView]
	Products   = Panel[record.Product, viewmodel.ProductView]
	OrderItems = Panel[record.OrderItem, viewmodel.OrderItemView]
)

// Deps are the collaborators shared by every panel.
type Deps struct {
	Client    backend.Client
	Formatter *viewmodel.Formatter
	Notifier  notify.Emitter
	Navigator nav.Navigator
	Logger    *zap.Logger
}

func (d Deps) formatter() *viewmodel.Formatter {
	if d.Formatter != nil {
		return d.Formatter
	}
	return viewmodel.DefaultFormatter()
}

func (d Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

// NewCustomers builds the customers panel with its sync action.
func NewCustomers(d Deps) *Customers {
	p := New(Config[record.Customer, viewmodel.CustomerView]{
		Name:      "customers",
		Query:     binding.Query{Kind: record.KindCustomers},
		Fetch:     backend.Fetcher[record.Customer](d.Client),
		Map:       viewmodel.MapCustomers,
		Matcher:   filter.Customers{},
		Navigator: d.Navigator,
		Logger:    d.logger(),
	})
	p.AddAction(syncController(d, record.SyncCustomers, p))
	return p
}

// NewOrders builds the orders panel with its sync action.
func NewOrders(d Deps) *Orders {
	p := New(Config[record.Order, viewmodel.OrderView]{
		Name:      "orders",
		Query:     binding.Query{Kind: record.KindOrders},
		Fetch:     backend.Fetcher[record.Order](d.Client),
		Map:       d.formatter().MapOrders,
		Matcher:   filter.Orders{},
		Navigator: d.Navigator,
		Logger:    d.logger(),
	})
	p.AddAction(syncController(d, record.SyncOrders, p))
	return p
}

// NewProducts builds the products panel with its sync action.
func NewProducts(d Deps) *Products {
	p := New(Config[record.Product, viewmodel.ProductView]{
		Name:      "products",
		Query:     binding.Query{Kind: record.KindProducts},
		Fetch:     backend.Fetcher[record.Product](d.Client),
		Map:       d.formatter().MapProducts,
		Matcher:   filter.Products{},
		Navigator: d.Navigator,
		Logger:    d.logger(),
	})
	p.AddAction(syncController(d, record.SyncProducts, p))
	return p
}

// NewOrderItems builds the line items panel of one order. It has no sync
// action of its own.
func NewOrderItems(d Deps, orderID string) *OrderItems {
	return New(Config[record.OrderItem, viewmodel.OrderItemView]{
		Name:      "order-items",
		Query:     binding.Query{Kind: record.KindOrderItems, ScopeID: orderID},
		Fetch:     backend.Fetcher[record.OrderItem](d.Client),
		Map:       d.formatter().MapOrderItems,
		Matcher:   filter.OrderItems{},
		Navigator: d.Navigator,
		Logger:    d.logger(),
	})
}

func syncController(d Deps, target record.SyncTarget, invalidators ...syncaction.Invalidator) *syncaction.Controller {
	title, msgs := SyncMessages(target)
	return syncaction.New(syncaction.Options{
		Name:  SyncAction,
		Title: title,
		Run: func(ctx context.Context) (string, error) {
			out, err := d.Client.RunSync(ctx, target)
			if err != nil {
				return "", err
			}
			return out.Message, nil
		},
		Notifier:     d.Notifier,
		Invalidators: invalidators,
		Messages:     msgs,
		Logger:       d.logger(),
	})
}
