package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/storefront/pkg/binding"
	"tableflip.dev/storefront/pkg/filter"
	"tableflip.dev/storefront/pkg/record/viewmodel"
	"tableflip.dev/storefront/pkg/tui/components/help"
	"tableflip.dev/storefront/pkg/tui/overlay"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	ellipsis      = "…"
)

type column struct {
	title string
	width int
}

// fitColumns shrinks the widest columns until the row fits in width.
func fitColumns(cols []column, width int) {
	if width <= 0 {
		return
	}
	for rowWidth(cols) > width {
		widest := 0
		for i := range cols {
			if cols[i].width > cols[widest].width {
				widest = i
			}
		}
		if cols[widest].width <= 4 {
			return
		}
		cols[widest].width--
	}
}

func rowWidth(cols []column) int {
	w := 0
	for _, c := range cols {
		w += c.width + 1
	}
	return w
}

func headerCells(cols []column) []string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = c.title
	}
	return cells
}

func renderRow(cols []column, cells []string) string {
	var b strings.Builder
	for i, c := range cols {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(pad(cell, c.width))
		if i < len(cols)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func pad(s string, width int) string {
	s = truncate.StringWithTail(s, uint(width), ellipsis)
	if gap := width - lipgloss.Width(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// View implements tea.Model.
func (m *Model) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	header := m.renderTabs()
	footer := m.renderFooter(width)
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
	body := m.renderBody(width, bodyHeight)

	var modal string
	switch m.mode {
	case modeDetail:
		modal = m.renderDetail(min(width, 100))
	case modeHelp:
		modal = m.help.View()
	case modeHistory:
		modal = m.history.View()
	}
	if modal != "" {
		body = overlay.Compose(body, width, bodyHeight, modal, overlay.Center)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, tabNames[t])
		if t == m.tab {
			parts = append(parts, m.theme.Tabs.Active.Render(label))
		} else {
			parts = append(parts, m.theme.Tabs.Inactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody(width, height int) string {
	if m.dash == nil {
		return m.theme.Table.Empty.Render("No data source configured.")
	}
	switch m.tab {
	case tabCustomers:
		return m.renderCustomers(width, height)
	case tabOrders:
		return m.renderOrders(width, height)
	case tabProducts:
		return m.renderProducts(width, height)
	default:
		return m.renderDashboard(width)
	}
}

func (m *Model) filterLine(p listPanel, visible, total int, options []filter.Option) string {
	st := p.Filter()
	parts := []string{}
	if m.mode == modeSearch {
		parts = append(parts, m.input.View())
	} else if st.SearchTerm != "" {
		parts = append(parts, "/"+st.SearchTerm)
	}
	if len(options) > 0 {
		label := options[0].Label
		for _, opt := range options {
			if opt.Value == st.Status {
				label = opt.Label
			}
		}
		parts = append(parts, "["+label+"]")
	}
	parts = append(parts, fmt.Sprintf("%d of %d", visible, total))
	if p.Busy() {
		parts = append(parts, m.theme.Footer.Busy.Render("syncing"))
	}
	return m.theme.Tabs.Filter.Render(strings.Join(parts, "  "))
}

// renderTable draws a header, the visible window of rows around the cursor
// and an empty or error affordance.
func (m *Model) renderTable(p listPanel, cols []column, rows [][]string, total, width, height int) string {
	fitColumns(cols, width)
	lines := []string{
		m.filterLine(p, len(rows), total, m.statusOptions()),
		m.theme.Table.Header.Render(renderRow(cols, headerCells(cols))),
	}
	if err := p.Err(); err != nil {
		lines = append(lines, m.theme.Footer.Error.Render("Could not load "+p.Name()+": "+err.Error()))
		return strings.Join(lines, "\n")
	}
	if len(rows) == 0 {
		msg := "No " + p.Name() + " found."
		if p.State() == binding.Pending {
			msg = "Loading " + p.Name() + "..."
		}
		lines = append(lines, m.theme.Table.Empty.Render(msg))
		return strings.Join(lines, "\n")
	}

	window := height - len(lines)
	if window < 1 {
		window = 1
	}
	cursor := m.cursor[m.tab]
	start := 0
	if cursor >= window {
		start = cursor - window + 1
	}
	end := start + window
	if end > len(rows) {
		end = len(rows)
	}
	for i := start; i < end; i++ {
		line := renderRow(cols, rows[i])
		if i == cursor {
			line = m.theme.Table.Selected.Render(line)
		} else {
			line = m.theme.Table.Row.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) statusCell(label string, class viewmodel.StyleClass, width int) string {
	return m.theme.StatusStyle(class).Render(pad(label, width))
}

func (m *Model) renderCustomers(width, height int) string {
	p := m.dash.Customers
	cols := []column{
		{title: "Name", width: 28},
		{title: "Email", width: 32},
		{title: "Phone", width: 18},
	}
	visible := p.Visible()
	rows := make([][]string, 0, len(visible))
	for _, c := range visible {
		rows = append(rows, []string{c.FullName, c.Email, c.Phone})
	}
	return m.renderTable(p, cols, rows, len(p.All()), width, height)
}

func (m *Model) renderOrders(width, height int) string {
	p := m.dash.Orders
	cols := []column{
		{title: "Order", width: 12},
		{title: "Account", width: 28},
		{title: "Status", width: 12},
		{title: "Total", width: 16},
		{title: "Date", width: 22},
	}
	fitColumns(cols, width)
	visible := p.Visible()
	rows := make([][]string, 0, len(visible))
	for _, o := range visible {
		rows = append(rows, []string{
			o.OrderNumber,
			o.AccountName,
			m.statusCell(o.StatusLabel, o.StatusClass, cols[2].width),
			o.FormattedTotal,
			o.FormattedDate,
		})
	}
	return m.renderTable(p, cols, rows, len(p.All()), width, height)
}

func (m *Model) renderProducts(width, height int) string {
	p := m.dash.Products
	cols := []column{
		{title: "Name", width: 30},
		{title: "Code", width: 14},
		{title: "Price", width: 16},
		{title: "Status", width: 10},
	}
	fitColumns(cols, width)
	visible := p.Visible()
	rows := make([][]string, 0, len(visible))
	for _, pr := range visible {
		rows = append(rows, []string{
			pr.Name,
			pr.ProductCode,
			pr.FormattedPrice,
			m.statusCell(pr.StatusLabel, pr.StatusClass, cols[3].width),
		})
	}
	return m.renderTable(p, cols, rows, len(p.All()), width, height)
}

func (m *Model) renderDashboard(width int) string {
	cols := []column{
		{title: "Action", width: 36},
		{title: "Status", width: 12},
		{title: "Last error", width: 40},
	}
	fitColumns(cols, width)
	lines := []string{}
	if m.source != "" {
		lines = append(lines, m.theme.Tabs.Filter.Render("Source: "+m.source))
	}
	lines = append(lines, m.theme.Table.Header.Render(renderRow(cols, headerCells(cols))))
	for i, c := range m.dash.Actions() {
		lastErr := ""
		if err := c.LastError(); err != nil {
			lastErr = err.Error()
		}
		line := renderRow(cols, []string{c.Title(), c.Status().String(), lastErr})
		if i == m.cursor[tabDashboard] {
			line = m.theme.Table.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

var helpSections = []help.Section{
	{Title: "Panels", Bindings: []help.Binding{
		{Keys: "1-4, tab", Help: "switch panel"},
		{Keys: "j/k, g/G", Help: "move selection"},
		{Keys: "r", Help: "reload panel"},
		{Keys: "y", Help: "sync panel"},
	}},
	{Title: "Filters", Bindings: []help.Binding{
		{Keys: "/", Help: "search"},
		{Keys: "s", Help: "cycle status filter"},
		{Keys: "c", Help: "clear filters"},
	}},
	{Title: "Records", Bindings: []help.Binding{
		{Keys: "enter, v", Help: "view record or run action"},
		{Keys: "e", Help: "edit customer"},
	}},
	{Title: "General", Bindings: []help.Binding{
		{Keys: "n", Help: "notification history"},
		{Keys: "?", Help: "toggle help"},
		{Keys: "q", Help: "quit"},
	}},
}

func (m *Model) renderFooter(width int) string {
	lines := make([]string, 0, len(m.toasts)+1)
	for _, n := range m.toasts {
		text := n.Message
		if n.Title != "" {
			text = n.Title + ": " + n.Message
		}
		lines = append(lines, m.theme.ToastStyle(n.Kind).Render(truncate.StringWithTail(text, uint(width), ellipsis)))
	}
	status := m.theme.Footer.Status.Render(m.status)
	hint := m.theme.Footer.Help.Render("? help  n history  q quit")
	gap := width - lipgloss.Width(status) - lipgloss.Width(hint)
	if gap < 1 {
		gap = 1
	}
	lines = append(lines, status+strings.Repeat(" ", gap)+hint)
	return strings.Join(lines, "\n")
}
