package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss/v2"
)

func TestComposeCenters(t *testing.T) {
	bg := strings.Repeat(".", 10) + "\n" + strings.Repeat(".", 10) + "\n" + strings.Repeat(".", 10)
	got := Compose(bg, 10, 3, "ab", Center)
	want := "..........\n....ab....\n.........."
	if got != want {
		t.Fatalf("unexpected composition:\n%s", got)
	}
}

func TestComposeCornersAndPadding(t *testing.T) {
	got := Compose("xyz", 6, 2, "AB\nC", Placement{Horizontal: lipgloss.Right, Vertical: lipgloss.Bottom})
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected background height, got %d lines", len(lines))
	}
	if lines[0] != "xyz AB" || lines[1] != "    C " {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestComposeClipsForeground(t *testing.T) {
	got := Compose("", 4, 1, "abcdefgh", Center)
	if got != "abcd" {
		t.Fatalf("expected clipped overlay, got %q", got)
	}
}

func TestComposeEmptyForeground(t *testing.T) {
	if got := Compose("hi", 3, 2, "", Center); got != "hi \n   " {
		t.Fatalf("unexpected background %q", got)
	}
}
