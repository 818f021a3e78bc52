package theme

import (
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/record/viewmodel"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer FooterTheme
	Tabs   TabTheme
	Table  TableTheme
	Modal  ModalTheme
	Status map[viewmodel.StyleClass]lipgloss.Style
	Toast  map[notify.Kind]lipgloss.Style
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Busy   lipgloss.Style
	Error  lipgloss.Style
}

// TabTheme styles the panel switcher.
type TabTheme struct {
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Filter   lipgloss.Style
}

// TableTheme styles record lists.
type TableTheme struct {
	Header   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Empty    lipgloss.Style
}

// ModalTheme styles centered overlays (detail, help).
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Label lipgloss.Style
	Body  lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Busy:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
		Tabs: TabTheme{
			Active: lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true).
				Underline(true).
				Padding(0, 1),
			Inactive: lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Padding(0, 1),
			Filter: lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		},
		Table: TableTheme{
			Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
			Row:      lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Reverse(true),
			Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Label: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Body:  lipgloss.NewStyle(),
		},
		Status: map[viewmodel.StyleClass]lipgloss.Style{
			viewmodel.StyleDefault: lipgloss.NewStyle(),
			viewmodel.StyleInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			viewmodel.StyleSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			viewmodel.StyleWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			viewmodel.StyleError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
		Toast: map[notify.Kind]lipgloss.Style{
			notify.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			notify.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			notify.KindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		},
	}
}

// StatusStyle returns the style for a status class, falling back to default.
func (t Theme) StatusStyle(class viewmodel.StyleClass) lipgloss.Style {
	if s, ok := t.Status[class]; ok {
		return s
	}
	return t.Status[viewmodel.StyleDefault]
}

// ToastStyle returns the style for a notification kind.
func (t Theme) ToastStyle(kind notify.Kind) lipgloss.Style {
	if s, ok := t.Toast[kind]; ok {
		return s
	}
	return t.Footer.Status
}
