package teaui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/storefront/pkg/binding"
	"tableflip.dev/storefront/pkg/filter"
	"tableflip.dev/storefront/pkg/panel"
)

// listPanel is the part of a typed panel the key handlers need.
type listPanel interface {
	Name() string
	SetSearch(term string)
	SetStatus(status string)
	ClearFilters()
	Filter() filter.State
	Refresh(ctx context.Context) error
	Trigger(ctx context.Context, action string) error
	Busy() bool
	Err() error
	State() binding.State
	View(recordID string)
	Edit(recordID string)
}

func (m *Model) currentPanel() listPanel {
	if m.dash == nil {
		return nil
	}
	switch m.tab {
	case tabCustomers:
		return m.dash.Customers
	case tabOrders:
		return m.dash.Orders
	case tabProducts:
		return m.dash.Products
	default:
		return nil
	}
}

// statusOptions returns the selector options of the current tab, if it has a
// status filter.
func (m *Model) statusOptions() []filter.Option {
	switch m.tab {
	case tabOrders:
		return filter.OrderStatusOptions()
	case tabProducts:
		return filter.ProductStatusOptions()
	default:
		return nil
	}
}

// selectedID returns the record ID under the cursor of the current tab.
func (m *Model) selectedID() string {
	if m.dash == nil {
		return ""
	}
	idx := m.cursor[m.tab]
	switch m.tab {
	case tabCustomers:
		return idAt(m.dash.Customers.Visible(), idx)
	case tabOrders:
		return idAt(m.dash.Orders.Visible(), idx)
	case tabProducts:
		return idAt(m.dash.Products.Visible(), idx)
	}
	return ""
}

func idAt[V interface{ RecordID() string }](items []V, idx int) string {
	if idx < 0 || idx >= len(items) {
		return ""
	}
	return items[idx].RecordID()
}

func (m *Model) rowCount() int {
	if m.dash == nil {
		return 0
	}
	switch m.tab {
	case tabCustomers:
		return len(m.dash.Customers.Visible())
	case tabOrders:
		return len(m.dash.Orders.Visible())
	case tabProducts:
		return len(m.dash.Products.Visible())
	case tabDashboard:
		return len(m.dash.ActionNames())
	}
	return 0
}

func (m *Model) clampCursor() {
	for t := tab(0); t < tabCount; t++ {
		saved := m.tab
		m.tab = t
		n := m.rowCount()
		m.tab = saved
		if m.cursor[t] >= n {
			m.cursor[t] = n - 1
		}
		if m.cursor[t] < 0 {
			m.cursor[t] = 0
		}
	}
}

func (m *Model) moveCursor(delta int) {
	n := m.rowCount()
	if n == 0 {
		m.cursor[m.tab] = 0
		return
	}
	next := m.cursor[m.tab] + delta
	if next < 0 {
		next = 0
	}
	if next >= n {
		next = n - 1
	}
	m.cursor[m.tab] = next
}

func (m *Model) switchTab(t tab) {
	m.tab = (t + tabCount) % tabCount
	m.clampCursor()
}

// handleKeyPress routes a key by mode and reports whether to quit.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg, cmds *[]tea.Cmd) bool {
	if msg.String() == "ctrl+c" {
		return true
	}
	switch m.mode {
	case modeSearch:
		m.handleSearchKey(msg, cmds)
	case modeDetail:
		m.handleDetailKey(msg)
	case modeHelp, modeHistory:
		m.handleOverlayKey(msg, cmds)
	default:
		return m.handleNormalKey(msg, cmds)
	}
	return false
}

func (m *Model) handleOverlayKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "?", "n", "enter":
		m.mode = modeNormal
		return
	}
	var cmd tea.Cmd
	if m.mode == modeHelp {
		_, cmd = m.help.Update(msg)
	} else {
		_, cmd = m.history.Update(msg)
	}
	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) handleDetailKey(msg tea.KeyPressMsg) {
	switch msg.String() {
	case "q", "esc", "enter", "backspace":
		m.closeDetail()
	}
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	p := m.currentPanel()
	switch msg.String() {
	case "enter":
		m.input.Blur()
		m.mode = modeNormal
		return
	case "esc":
		m.input.Blur()
		m.input.SetValue("")
		if p != nil {
			p.SetSearch("")
		}
		m.mode = modeNormal
		return
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
	if p != nil {
		p.SetSearch(m.input.Value())
		m.cursor[m.tab] = 0
	}
}

func (m *Model) handleNormalKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) bool {
	p := m.currentPanel()
	switch msg.String() {
	case "q":
		return true
	case "?":
		m.mode = modeHelp
	case "n":
		m.mode = modeHistory
	case "tab", "right", "l":
		m.switchTab(m.tab + 1)
	case "shift+tab", "left", "h":
		m.switchTab(m.tab - 1)
	case "1", "2", "3", "4":
		m.switchTab(tab(msg.String()[0] - '1'))
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "g", "home":
		m.cursor[m.tab] = 0
	case "G", "end":
		m.moveCursor(m.rowCount())
	case "/":
		if p == nil {
			return false
		}
		m.mode = modeSearch
		m.input.SetValue(p.Filter().SearchTerm)
		m.input.CursorEnd()
		if cmd := m.input.Focus(); cmd != nil {
			*cmds = append(*cmds, cmd)
		}
	case "s":
		options := m.statusOptions()
		if p == nil || len(options) == 0 {
			return false
		}
		next := filter.NextOption(options, p.Filter().Status)
		p.SetStatus(next.Value)
		m.cursor[m.tab] = 0
		m.status = "Status: " + next.Label
	case "c":
		if p == nil {
			return false
		}
		p.ClearFilters()
		m.input.SetValue("")
		m.status = "Filters cleared"
	case "r":
		if m.tab == tabDashboard {
			*cmds = append(*cmds, m.refreshAllCmd())
			m.status = "Refreshing..."
			return false
		}
		if p == nil {
			return false
		}
		name := p.Name()
		ctx := m.ctx
		*cmds = append(*cmds, func() tea.Msg {
			return refreshedMsg{panel: name, err: p.Refresh(ctx)}
		})
		m.status = "Refreshing " + name + "..."
	case "y":
		if p == nil {
			return m.triggerDashboardAction(cmds)
		}
		*cmds = append(*cmds, m.triggerCmd(p.Name(), panel.SyncAction, p.Trigger))
	case "enter", "v":
		if m.tab == tabDashboard {
			return m.triggerDashboardAction(cmds)
		}
		if id := m.selectedID(); id != "" && p != nil {
			p.View(id)
		}
	case "e":
		if m.tab != tabCustomers || p == nil {
			return false
		}
		if id := m.selectedID(); id != "" {
			p.Edit(id)
		}
	}
	return false
}

func (m *Model) triggerDashboardAction(cmds *[]tea.Cmd) bool {
	if m.dash == nil || m.tab != tabDashboard {
		return false
	}
	names := m.dash.ActionNames()
	idx := m.cursor[tabDashboard]
	if idx < 0 || idx >= len(names) {
		return false
	}
	*cmds = append(*cmds, m.triggerCmd("", names[idx], m.dash.Trigger))
	m.status = "Running " + names[idx] + "..."
	return false
}
