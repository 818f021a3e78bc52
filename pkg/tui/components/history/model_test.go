package history

import (
	"strings"
	"testing"

	"tableflip.dev/storefront/pkg/notify"
)

func TestAppendNewestFirstAndCapped(t *testing.T) {
	m := New(2)
	m.SetSize(60, 10)
	m.Append(notify.New(notify.KindInfo, "Products", "Syncing products..."))
	m.Append(notify.New(notify.KindSuccess, "Products", "Products synchronized"))
	m.Append(notify.New(notify.KindError, "Orders", "Error syncing orders: boom"))

	got := m.Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Message != "Error syncing orders: boom" || got[1].Message != "Products synchronized" {
		t.Fatalf("unexpected order %#v", got)
	}
	out := m.View()
	if !strings.Contains(out, "Notifications (2)") || !strings.Contains(out, "[Orders]") {
		t.Fatalf("unexpected view:\n%s", out)
	}
}

func TestEmptyHistory(t *testing.T) {
	m := New(0)
	m.SetSize(40, 6)
	if !strings.Contains(m.View(), "No notifications yet") {
		t.Fatalf("expected empty marker:\n%s", m.View())
	}
}
