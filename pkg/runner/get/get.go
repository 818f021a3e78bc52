// Package get prints one mirrored collection through the same
// map-and-filter pipeline the TUI panels use.
package get

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/nav"
	"tableflip.dev/storefront/pkg/panel"
	"tableflip.dev/storefront/pkg/printers"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/record/viewmodel"
)

type Get struct {
	Kind    record.Kind
	Search  string
	Status  string
	OrderID string
	ShowID  bool
	JSON    bool

	Client    backend.Client
	Formatter *viewmodel.Formatter
	Logger    *zap.Logger
	Out       io.Writer
}

func (g *Get) Do(ctx context.Context) error {
	if g.Client == nil {
		return errors.New("can not get, no backend")
	}
	d := panel.Deps{
		Client:    g.Client,
		Formatter: g.Formatter,
		Navigator: nav.Discard,
		Logger:    g.Logger,
	}
	pp := &printers.PrettyPrint{ShowID: g.ShowID, Out: g.out()}

	switch g.Kind {
	case record.KindCustomers:
		return show(ctx, g, panel.NewCustomers(d), "Customers", pp.Customers)
	case record.KindOrders:
		return show(ctx, g, panel.NewOrders(d), "Orders", pp.Orders)
	case record.KindProducts:
		return show(ctx, g, panel.NewProducts(d), "Products", pp.Products)
	case record.KindOrderItems:
		if g.OrderID == "" {
			return errors.New("order items need an order id, use --order")
		}
		return show(ctx, g, panel.NewOrderItems(d, g.OrderID), "Order "+g.OrderID, pp.OrderItems)
	}
	return fmt.Errorf("can not get %q", g.Kind)
}

func (g *Get) out() io.Writer {
	if g.Out != nil {
		return g.Out
	}
	return color.Output
}

func show[R any, V record.Identified](ctx context.Context, g *Get, p *panel.Panel[R, V], title string, print func([]V)) error {
	p.Open(ctx)
	defer p.Close()
	if err := p.Err(); err != nil {
		return err
	}
	p.SetSearch(g.Search)
	p.SetStatus(g.Status)
	visible := p.Visible()

	if g.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(visible)
	}
	pp := &printers.PrettyPrint{Out: g.out()}
	pp.TitleWithCount(title, len(visible), len(p.All()))
	print(visible)
	return nil
}
