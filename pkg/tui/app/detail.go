package teaui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/storefront/pkg/nav"
	"tableflip.dev/storefront/pkg/panel"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/record/viewmodel"
)

type field struct {
	label string
	value string
}

// detailView is the record overlay opened by a navigation request.
type detailView struct {
	entityType string
	recordID   string
	mode       nav.Mode
	title      string
	fields     []field
	items      *panel.OrderItems
	missing    bool
}

func (m *Model) openDetail(req nav.Request, cmds *[]tea.Cmd) {
	d := &detailView{
		entityType: req.EntityType,
		recordID:   req.RecordID,
		mode:       req.Mode,
	}
	if m.dash != nil {
		switch req.EntityType {
		case record.KindCustomers.EntityType():
			d.fillCustomer(find(m.dash.Customers.All(), req.RecordID))
		case record.KindOrders.EntityType():
			d.fillOrder(find(m.dash.Orders.All(), req.RecordID))
			*cmds = append(*cmds, m.loadItemsCmd(req.RecordID))
		case record.KindProducts.EntityType():
			d.fillProduct(find(m.dash.Products.All(), req.RecordID))
		default:
			d.missing = true
		}
	}
	if d.title == "" {
		d.title = fmt.Sprintf("%s %s", req.EntityType, req.RecordID)
	}
	m.detail = d
	m.mode = modeDetail
	m.log.Sugar().Debugw("navigate", "request", req.String())
}

func (m *Model) loadItemsCmd(orderID string) tea.Cmd {
	dash, ctx := m.dash, m.ctx
	return func() tea.Msg {
		return itemsLoadedMsg{orderID: orderID, items: dash.ShowItems(ctx, orderID)}
	}
}

func (m *Model) closeDetail() {
	if m.detail != nil && m.detail.items != nil && m.dash != nil {
		m.dash.CloseItems()
	}
	m.detail = nil
	m.mode = modeNormal
}

func find[V interface{ RecordID() string }](items []V, id string) *V {
	for i := range items {
		if items[i].RecordID() == id {
			return &items[i]
		}
	}
	return nil
}

func (d *detailView) fillCustomer(c *viewmodel.CustomerView) {
	if c == nil {
		d.missing = true
		return
	}
	d.title = c.FullName
	d.fields = []field{
		{"First name", c.FirstName},
		{"Last name", c.LastName},
		{"Email", c.Email},
		{"Phone", c.Phone},
	}
}

func (d *detailView) fillOrder(o *viewmodel.OrderView) {
	if o == nil {
		d.missing = true
		return
	}
	d.title = "Order " + o.OrderNumber
	d.fields = []field{
		{"Account", o.AccountName},
		{"Status", o.StatusLabel},
		{"Total", o.FormattedTotal},
		{"Date", o.FormattedDate},
	}
}

func (d *detailView) fillProduct(p *viewmodel.ProductView) {
	if p == nil {
		d.missing = true
		return
	}
	d.title = p.Name
	d.fields = []field{
		{"Code", p.ProductCode},
		{"Price", p.FormattedPrice},
		{"Status", p.StatusLabel},
		{"Description", p.Description},
	}
}

func (m *Model) renderDetail(width int) string {
	d := m.detail
	if d == nil {
		return ""
	}
	th := m.theme.Modal
	var b strings.Builder
	b.WriteString(th.Title.Render(d.title))
	b.WriteString("  ")
	b.WriteString(th.Label.Render(fmt.Sprintf("[%s %s/%s]", d.mode, d.entityType, d.recordID)))
	b.WriteString("\n\n")
	if d.missing {
		b.WriteString(th.Body.Render("Record is not in the current view."))
	}
	for _, f := range d.fields {
		value := f.value
		if value == "" {
			value = "-"
		}
		b.WriteString(th.Label.Render(fmt.Sprintf("%-12s", f.label)))
		b.WriteString(th.Body.Render(value))
		b.WriteString("\n")
	}
	if d.entityType == record.KindOrders.EntityType() {
		b.WriteString("\n")
		b.WriteString(m.renderItems(d.items, width-6))
	}
	if d.mode == nav.Edit {
		b.WriteString("\n")
		b.WriteString(th.Label.Render("Editing happens in the host; this view is read-only."))
	}
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	return th.Frame.Width(inner).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderItems(items *panel.OrderItems, width int) string {
	th := m.theme.Table
	if items == nil {
		return th.Empty.Render("Loading order items...")
	}
	if err := items.Err(); err != nil {
		return m.theme.Footer.Error.Render("Order items: " + err.Error())
	}
	if !items.HasItems() {
		return th.Empty.Render("This order has no items.")
	}
	cols := []column{
		{title: "Product", width: 24},
		{title: "Code", width: 12},
		{title: "Qty", width: 6},
		{title: "Unit", width: 16},
		{title: "Total", width: 16},
	}
	fitColumns(cols, width)
	lines := []string{th.Header.Render(renderRow(cols, headerCells(cols)))}
	for _, it := range items.Visible() {
		qty := ""
		if it.Quantity != nil {
			qty = it.Quantity.String()
		}
		lines = append(lines, renderRow(cols, []string{
			it.ProductName, it.ProductCode, qty, it.FormattedUnitPrice, it.FormattedLineTotal,
		}))
	}
	return strings.Join(lines, "\n")
}
