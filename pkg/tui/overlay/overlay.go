// Package overlay composites modal views over the main screen.
package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Component is a modal body the root model sizes and forwards keys to.
type Component interface {
	Update(tea.Msg) (Component, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Placement controls overlay alignment.
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	MarginX    int
	MarginY    int
}

// Center places the overlay in the middle of the screen.
var Center = Placement{Horizontal: lipgloss.Center, Vertical: lipgloss.Center}

// Compose draws foreground over background, keeping the background visible
// outside the foreground's bounds. Styled (ANSI) text on either side is cut
// on cell boundaries.
func Compose(background string, width, height int, foreground string, p Placement) string {
	bg := normalize(background, width, height)
	if foreground == "" || width <= 0 || height <= 0 {
		return strings.Join(bg, "\n")
	}
	fg := strings.Split(foreground, "\n")
	fgWidth := 0
	for _, line := range fg {
		if w := lipgloss.Width(line); w > fgWidth {
			fgWidth = w
		}
	}
	fgWidth = min(fgWidth, width)
	fgHeight := min(len(fg), height)

	x, y := offsets(width, height, fgWidth, fgHeight, p)
	for row := 0; row < fgHeight; row++ {
		line := padTo(fg[row], fgWidth)
		base := bg[y+row]
		left := ansi.Truncate(base, x, "")
		right := ansi.TruncateLeft(base, x+fgWidth, "")
		bg[y+row] = left + line + right
	}
	return strings.Join(bg, "\n")
}

func normalize(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = padTo(lines[i], width)
	}
	return lines
}

func padTo(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if w := lipgloss.Width(s); w > width {
		return ansi.Truncate(s, width, "")
	} else if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func offsets(width, height, w, h int, p Placement) (int, int) {
	x := p.MarginX
	switch p.Horizontal {
	case lipgloss.Right:
		x = width - w - p.MarginX
	case lipgloss.Center:
		x = (width - w) / 2
	}
	y := p.MarginY
	switch p.Vertical {
	case lipgloss.Bottom:
		y = height - h - p.MarginY
	case lipgloss.Center:
		y = (height - h) / 2
	}
	return clamp(x, 0, width-w), clamp(y, 0, height-h)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
