package help

import (
	"strings"
	"testing"
)

func TestViewListsBindings(t *testing.T) {
	m := New([]Section{
		{Title: "Lists", Bindings: []Binding{{Keys: "j/k", Help: "move"}, {Keys: "/", Help: "search"}}},
		{Title: "Sync", Bindings: []Binding{{Keys: "y", Help: "sync panel"}}},
	})
	m.SetSize(60, 20)
	out := m.View()
	for _, want := range []string{"Lists", "move", "search", "Sync", "sync panel"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in help:\n%s", want, out)
		}
	}
	if got := m.lineCount(); got != 6 {
		t.Fatalf("expected 6 lines, got %d", got)
	}
}
