// Package history renders the notification log as a scrollable overlay.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/tui/overlay"
)

const defaultMax = 200

// Styles controls the log's presentation.
type Styles struct {
	Frame     lipgloss.Style
	Header    lipgloss.Style
	Timestamp lipgloss.Style
	Title     lipgloss.Style
	Kinds     map[notify.Kind]lipgloss.Style
}

// DefaultStyles returns the stock styling.
func DefaultStyles() Styles {
	return Styles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("248")),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Kinds: map[notify.Kind]lipgloss.Style{
			notify.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			notify.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			notify.KindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
	}
}

// Model keeps the newest notifications first, capped at a maximum count.
type Model struct {
	viewport viewport.Model
	entries  []notify.Notification
	max      int

	width  int
	height int

	styles Styles
}

var _ overlay.Component = (*Model)(nil)

// New constructs a history capped at max entries.
func New(max int) *Model {
	if max <= 0 {
		max = defaultMax
	}
	return &Model{
		viewport: viewport.New(viewport.WithWidth(1), viewport.WithHeight(1)),
		max:      max,
		styles:   DefaultStyles(),
	}
}

// WithStyles overrides the default styling.
func (m *Model) WithStyles(s Styles) *Model {
	m.styles = s
	m.refresh()
	return m
}

// Update forwards scrolling keys to the viewport.
func (m *Model) Update(msg tea.Msg) (overlay.Component, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	return m, cmd
}

// SetSize resizes the viewport inside the frame and header.
func (m *Model) SetSize(width, height int) {
	width = max(width, 20)
	height = max(height, 4)
	if m.width == width && m.height == height {
		return
	}
	m.width, m.height = width, height
	m.viewport.SetWidth(max(1, width-m.styles.Frame.GetHorizontalFrameSize()))
	m.viewport.SetHeight(max(1, height-m.styles.Frame.GetVerticalFrameSize()-1))
	m.refresh()
}

// View renders the framed log.
func (m *Model) View() string {
	header := m.styles.Header.Render(fmt.Sprintf("Notifications (%d)", len(m.entries)))
	body := lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
	return m.styles.Frame.Width(m.width).Render(body)
}

// Append records n at the top of the log.
func (m *Model) Append(n notify.Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	m.entries = append([]notify.Notification{n}, m.entries...)
	if len(m.entries) > m.max {
		m.entries = m.entries[:m.max]
	}
	m.refresh()
	m.viewport.SetYOffset(0)
}

// Entries returns the logged notifications, newest first.
func (m *Model) Entries() []notify.Notification {
	return append([]notify.Notification(nil), m.entries...)
}

func (m *Model) refresh() {
	lines := make([]string, 0, len(m.entries))
	for _, n := range m.entries {
		lines = append(lines, m.render(n))
	}
	content := strings.Join(lines, "\n")
	if content == "" {
		content = m.styles.Timestamp.Render("No notifications yet")
	}
	m.viewport.SetContent(content)
}

func (m *Model) render(n notify.Notification) string {
	ts := m.styles.Timestamp.Render(n.At.Format("15:04:05"))
	msg := n.Message
	if s, ok := m.styles.Kinds[n.Kind]; ok {
		msg = s.Render(msg)
	}
	if n.Title == "" {
		return ts + " " + msg
	}
	return fmt.Sprintf("%s %s %s", ts, m.styles.Title.Render("["+n.Title+"]"), msg)
}
