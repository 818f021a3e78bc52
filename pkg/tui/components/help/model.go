// Package help renders the key reference as a scrollable overlay.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/storefront/pkg/tui/overlay"
)

// Binding documents one key or key group.
type Binding struct {
	Keys string
	Help string
}

// Section groups bindings under a heading.
type Section struct {
	Title    string
	Bindings []Binding
}

// Styles controls the overlay's presentation.
type Styles struct {
	Frame   lipgloss.Style
	Heading lipgloss.Style
	Key     lipgloss.Style
	Text    lipgloss.Style
}

// DefaultStyles returns the stock styling.
func DefaultStyles() Styles {
	return Styles{
		Frame:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		Text:    lipgloss.NewStyle(),
	}
}

// Model renders sections inside a bordered viewport.
type Model struct {
	viewport viewport.Model
	sections []Section
	styles   Styles
	width    int
	height   int
}

var _ overlay.Component = (*Model)(nil)

// New constructs a help overlay for sections.
func New(sections []Section) *Model {
	m := &Model{
		viewport: viewport.New(viewport.WithWidth(1), viewport.WithHeight(1)),
		sections: sections,
		styles:   DefaultStyles(),
	}
	m.viewport.MouseWheelEnabled = true
	return m
}

// WithStyles overrides the default styling.
func (m *Model) WithStyles(s Styles) *Model {
	m.styles = s
	m.render()
	return m
}

// Update forwards scrolling to the viewport.
func (m *Model) Update(msg tea.Msg) (overlay.Component, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	return m, cmd
}

// SetSize fits the overlay to the bounds, shrinking to its content height.
func (m *Model) SetSize(width, height int) {
	width = max(width, 32)
	height = max(height, 6)
	if m.width == width && m.height == height {
		return
	}
	m.width, m.height = width, height
	frameX := m.styles.Frame.GetHorizontalFrameSize()
	frameY := m.styles.Frame.GetVerticalFrameSize()
	m.viewport.SetWidth(max(1, width-frameX))
	m.viewport.SetHeight(max(1, min(height-frameY, m.lineCount())))
	m.render()
}

// View renders the framed key reference.
func (m *Model) View() string {
	return m.styles.Frame.Render(m.viewport.View())
}

func (m *Model) keyWidth() int {
	w := 0
	for _, s := range m.sections {
		for _, b := range s.Bindings {
			w = max(w, lipgloss.Width(b.Keys))
		}
	}
	return w
}

func (m *Model) lineCount() int {
	n := 0
	for i, s := range m.sections {
		if i > 0 {
			n++
		}
		n += 1 + len(s.Bindings)
	}
	return n
}

func (m *Model) render() {
	kw := m.keyWidth()
	var lines []string
	for i, s := range m.sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.styles.Heading.Render(s.Title))
		for _, b := range s.Bindings {
			lines = append(lines, m.styles.Key.Render(fmt.Sprintf("  %-*s", kw, b.Keys))+"  "+m.styles.Text.Render(b.Help))
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.SetYOffset(0)
}
