// Package printers renders mirrored records as colored terminal tables.
package printers

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/record/viewmodel"
)

const maxCell = 40

var (
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
	idText = color.New(color.FgHiYellow, color.Faint).SprintFunc()
)

var classColors = map[viewmodel.StyleClass]*color.Color{
	viewmodel.StyleInfo:    color.New(color.FgCyan),
	viewmodel.StyleSuccess: color.New(color.FgGreen),
	viewmodel.StyleWarning: color.New(color.FgYellow),
	viewmodel.StyleError:   color.New(color.FgRed),
}

// PrettyPrint writes record tables to Out, or color.Output when unset.
type PrettyPrint struct {
	ShowID bool
	Out    io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

// TitleWithCount prints an underlined title and the number of records shown.
func (pp *PrettyPrint) TitleWithCount(title string, shown, total int) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprint(pp.out(), title)
	noun := "records"
	if total == 1 {
		noun = "record"
	}
	_, _ = fmt.Fprintln(pp.out(), faint(fmt.Sprintf(" - %d of %d %s", shown, total, noun)))
}

func (pp *PrettyPrint) none() {
	_, _ = fmt.Fprintln(pp.out(), color.New(color.Faint, color.Italic).Sprint(" none"))
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) table(header ...any) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	cells := make([]any, 0, len(header)+1)
	if pp.ShowID {
		cells = append(cells, bold("ID"))
	}
	for _, h := range header {
		cells = append(cells, bold(h))
	}
	tbl.AddRow(cells...)
	return tbl
}

func (pp *PrettyPrint) row(tbl *uitable.Table, id string, cells ...any) {
	if pp.ShowID {
		cells = append([]any{idText(id)}, cells...)
	}
	tbl.AddRow(cells...)
}

func (pp *PrettyPrint) flush(tbl *uitable.Table) {
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out())
}

func cell(s string) string {
	return truncate.StringWithTail(s, maxCell, "…")
}

func styled(label string, class viewmodel.StyleClass) string {
	if c, ok := classColors[class]; ok {
		return c.Sprint(label)
	}
	return label
}

// Customers prints a customer table.
func (pp *PrettyPrint) Customers(rows []viewmodel.CustomerView) {
	if len(rows) == 0 {
		pp.none()
		return
	}
	tbl := pp.table("Name", "Email", "Phone")
	for _, c := range rows {
		pp.row(tbl, c.ID, cell(c.FullName), cell(c.Email), c.Phone)
	}
	pp.flush(tbl)
}

// Orders prints an order table with styled status labels.
func (pp *PrettyPrint) Orders(rows []viewmodel.OrderView) {
	if len(rows) == 0 {
		pp.none()
		return
	}
	tbl := pp.table("Order", "Account", "Status", "Total", "Date")
	for _, o := range rows {
		pp.row(tbl, o.ID, o.OrderNumber, cell(o.AccountName), styled(o.StatusLabel, o.StatusClass), o.FormattedTotal, o.FormattedDate)
	}
	pp.flush(tbl)
}

// Products prints a product table.
func (pp *PrettyPrint) Products(rows []viewmodel.ProductView) {
	if len(rows) == 0 {
		pp.none()
		return
	}
	tbl := pp.table("Name", "Code", "Price", "Status")
	for _, p := range rows {
		pp.row(tbl, p.ID, cell(p.Name), p.ProductCode, p.FormattedPrice, styled(p.StatusLabel, p.StatusClass))
	}
	pp.flush(tbl)
}

// OrderItems prints the lines of one order.
func (pp *PrettyPrint) OrderItems(rows []viewmodel.OrderItemView) {
	if len(rows) == 0 {
		pp.none()
		return
	}
	tbl := pp.table("Product", "Code", "Qty", "Unit", "Total")
	for _, it := range rows {
		qty := ""
		if it.Quantity != nil {
			qty = it.Quantity.String()
		}
		pp.row(tbl, it.ID, cell(it.ProductName), it.ProductCode, qty, it.FormattedUnitPrice, it.FormattedLineTotal)
	}
	pp.flush(tbl)
}

// Outcome prints a sync job result with per-kind counts.
func (pp *PrettyPrint) Outcome(o backend.SyncOutcome) {
	_, _ = fmt.Fprintln(pp.out(), color.New(color.FgGreen).Sprint(o.Message))
	if len(o.Counts) == 0 {
		return
	}
	kinds := make([]record.Kind, 0, len(o.Counts))
	for k := range o.Counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Kind"), bold("Records"))
	for _, k := range kinds {
		tbl.AddRow(string(k), o.Counts[k])
	}
	pp.flush(tbl)
}
