// Package teaui hosts the Bubble Tea program for the storefront TUI.
package teaui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/nav"
	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/panel"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/store"
	"tableflip.dev/storefront/pkg/syncaction"
	"tableflip.dev/storefront/pkg/tui/components/help"
	"tableflip.dev/storefront/pkg/tui/components/history"
	"tableflip.dev/storefront/pkg/tui/theme"
)

type tab int

const (
	tabCustomers tab = iota
	tabOrders
	tabProducts
	tabDashboard
	tabCount
)

var tabNames = [tabCount]string{"Customers", "Orders", "Products", "Dashboard"}

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeDetail
	modeHelp
	modeHistory
)

const (
	defaultToastTTL = 4 * time.Second
	maxToasts       = 3
	historySize     = 200
)

// Options wire the model to the panels and host surfaces.
type Options struct {
	Dashboard     *panel.Dashboard
	Notifications *notify.Channel
	Navigations   <-chan nav.Request
	// Persistence, when set, is watched so external mirror writes refresh
	// the matching panel.
	Persistence store.Persistence
	Logger      *zap.Logger
	Theme       *theme.Theme
	ToastTTL    time.Duration
	// Source describes where records come from, for the dashboard tab.
	Source string
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx         context.Context
	dash        *panel.Dashboard
	notes       *notify.Channel
	navCh       <-chan nav.Request
	persistence store.Persistence
	log         *zap.Logger
	theme       theme.Theme
	toastTTL    time.Duration
	source      string

	width  int
	height int

	tab    tab
	mode   mode
	cursor [tabCount]int
	input  textinput.Model

	toasts  []notify.Notification
	detail  *detailView
	status  string
	help    *help.Model
	history *history.Model

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
}

// New constructs a root model.
func New(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	th := theme.Default()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	ttl := opts.ToastTTL
	if ttl <= 0 {
		ttl = defaultToastTTL
	}

	ti := textinput.New()
	ti.Placeholder = "search"
	ti.CharLimit = 128
	ti.Prompt = "/"
	ti.Styles.Cursor.Color = lipgloss.Color("212")

	m := &Model{
		ctx:         ctx,
		dash:        opts.Dashboard,
		notes:       opts.Notifications,
		navCh:       opts.Navigations,
		persistence: opts.Persistence,
		log:         log,
		theme:       th,
		toastTTL:    ttl,
		source:      opts.Source,
		input:       ti,
		status:      "Loading...",
		help:        help.New(helpSections),
		history:     history.New(historySize),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.SetSize(min(width-4, 64), height-4)
	m.history.SetSize(min(width-4, 100), height-4)
}

// Run launches the Bubble Tea program.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	m.stopWatch()
	if m.dash != nil {
		m.dash.Close()
	}
	return err
}

type openedMsg struct{}

type panelUpdatedMsg struct {
	update panel.Update
	src    <-chan panel.Update
}

type notificationMsg struct {
	n notify.Notification
}

type toastExpiredMsg struct {
	id string
}

type navigateMsg struct {
	req nav.Request
}

type actionDoneMsg struct {
	panel  string
	action string
	err    error
}

type refreshedMsg struct {
	panel string
	err   error
}

type itemsLoadedMsg struct {
	orderID string
	items   *panel.OrderItems
}

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.openCmd(),
		m.waitForNotification(),
		m.waitForNavigation(),
		startWatchCmd(m.ctx, m.persistence),
	}
	if m.dash != nil {
		cmds = append(cmds,
			waitForUpdate(m.dash.Customers.Updates()),
			waitForUpdate(m.dash.Orders.Updates()),
			waitForUpdate(m.dash.Products.Updates()),
		)
	}
	return tea.Batch(cmds...)
}

func (m *Model) openCmd() tea.Cmd {
	if m.dash == nil {
		return nil
	}
	dash, ctx := m.dash, m.ctx
	return func() tea.Msg {
		dash.Open(ctx)
		return openedMsg{}
	}
}

func waitForUpdate(ch <-chan panel.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return panelUpdatedMsg{update: u, src: ch}
	}
}

func (m *Model) waitForNotification() tea.Cmd {
	if m.notes == nil {
		return nil
	}
	ch := m.notes.C()
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg{n: n}
	}
}

func (m *Model) waitForNavigation() tea.Cmd {
	if m.navCh == nil {
		return nil
	}
	ch := m.navCh
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			return nil
		}
		return navigateMsg{req: req}
	}
}

func startWatchCmd(parent context.Context, p store.Persistence) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := p.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(v.Width, v.Height)
	case tea.KeyPressMsg:
		if quit := m.handleKeyPress(v, &cmds); quit {
			m.stopWatch()
			return m, tea.Quit
		}
	case openedMsg:
		m.status = "Ready"
	case panelUpdatedMsg:
		m.clampCursor()
		if v.update.Err != nil {
			m.status = fmt.Sprintf("%s: %v", v.update.Panel, v.update.Err)
		}
		cmds = append(cmds, waitForUpdate(v.src))
	case notificationMsg:
		m.history.Append(v.n)
		m.pushToast(v.n, &cmds)
		cmds = append(cmds, m.waitForNotification())
	case toastExpiredMsg:
		m.dropToast(v.id)
	case navigateMsg:
		m.openDetail(v.req, &cmds)
		cmds = append(cmds, m.waitForNavigation())
	case itemsLoadedMsg:
		if m.detail != nil && m.detail.recordID == v.orderID {
			m.detail.items = v.items
		}
	case actionDoneMsg:
		m.handleActionDone(v)
	case refreshedMsg:
		if v.err != nil && !errors.Is(v.err, context.Canceled) {
			m.status = fmt.Sprintf("Refresh %s failed: %v", v.panel, v.err)
		} else {
			m.status = fmt.Sprintf("Refreshed %s", v.panel)
		}
		m.clampCursor()
	case watchStartedMsg:
		if v.err != nil {
			m.log.Warn("mirror watch unavailable", zap.Error(v.err))
			break
		}
		m.watchCh = v.ch
		m.watchCancel = v.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		m.handleWatchEvent(v.event, &cmds)
		cmds = append(cmds, m.waitForWatch())
	case watchStoppedMsg:
		m.watchCh = nil
	}

	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleActionDone(v actionDoneMsg) {
	label := v.action
	if v.panel != "" {
		label = v.panel + " " + v.action
	}
	switch {
	case errors.Is(v.err, syncaction.ErrInFlight):
		m.status = label + " is already running"
	case v.err != nil:
		m.status = fmt.Sprintf("%s failed", label)
	default:
		m.status = fmt.Sprintf("%s done", label)
	}
	m.clampCursor()
}

func (m *Model) handleWatchEvent(ev store.Event, cmds *[]tea.Cmd) {
	if m.dash == nil {
		return
	}
	m.log.Debug("mirror changed", zap.Stringer("type", ev.Type), zap.String("kind", string(ev.Kind)))
	switch ev.Type {
	case store.EventKindChanged:
		*cmds = append(*cmds, m.refreshKindCmd(ev.Kind))
	default:
		*cmds = append(*cmds, m.refreshAllCmd())
	}
}

func (m *Model) refreshKindCmd(kind record.Kind) tea.Cmd {
	dash, ctx := m.dash, m.ctx
	return func() tea.Msg {
		var err error
		switch kind {
		case record.KindCustomers:
			err = dash.Customers.Refresh(ctx)
		case record.KindOrders:
			err = dash.Orders.Refresh(ctx)
		case record.KindProducts:
			err = dash.Products.Refresh(ctx)
		case record.KindOrderItems:
			if items := dash.Items(); items != nil {
				err = items.Refresh(ctx)
			}
		}
		return refreshedMsg{panel: string(kind), err: err}
	}
}

func (m *Model) refreshAllCmd() tea.Cmd {
	dash, ctx := m.dash, m.ctx
	return func() tea.Msg {
		return refreshedMsg{panel: "all", err: dash.Refresh(ctx)}
	}
}

func (m *Model) triggerCmd(panelName, action string, trigger func(context.Context, string) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{panel: panelName, action: action, err: trigger(ctx, action)}
	}
}

func (m *Model) pushToast(n notify.Notification, cmds *[]tea.Cmd) {
	m.toasts = append(m.toasts, n)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	id := n.ID
	*cmds = append(*cmds, tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	}))
}

func (m *Model) dropToast(id string) {
	for i, n := range m.toasts {
		if n.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}
