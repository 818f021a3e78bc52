package notify

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChannelDropsWhenFull(t *testing.T) {
	c := NewChannel(1)
	c.Notify(New(KindInfo, "a", "first"))
	c.Notify(New(KindInfo, "b", "second"))

	select {
	case n := <-c.C():
		if n.Message != "first" {
			t.Fatalf("expected first notification, got %q", n.Message)
		}
	default:
		t.Fatalf("expected a queued notification")
	}
	select {
	case n := <-c.C():
		t.Fatalf("expected second notification to be dropped, got %q", n.Message)
	default:
	}
}

func TestMultiFansOut(t *testing.T) {
	var a, b Recorder
	m := Multi{&a, nil, &b}
	m.Notify(New(KindSuccess, "done", "ok"))
	if len(a.All()) != 1 || len(b.All()) != 1 {
		t.Fatalf("expected both recorders to receive the notification")
	}
}

func TestNewStampsIdentity(t *testing.T) {
	n1 := New(KindError, "t", "m")
	n2 := New(KindError, "t", "m")
	if n1.ID == "" || n1.ID == n2.ID {
		t.Fatalf("expected unique ids, got %q and %q", n1.ID, n2.ID)
	}
	if n1.At.IsZero() {
		t.Fatalf("expected timestamp")
	}
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Logger{Log: zap.New(core)}
	l.Notify(New(KindInfo, "Sync", "starting"))
	l.Notify(New(KindError, "Sync", "quota exceeded"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].Message != "quota exceeded" {
		t.Fatalf("unexpected error entry %#v", entries[1])
	}
	if entries[0].ContextMap()["title"] != "Sync" {
		t.Fatalf("expected title field, got %#v", entries[0].ContextMap())
	}
}

func TestConsolePrintsTitledLine(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Console{Out: &buf}.Notify(New(KindError, "Orders", "Error syncing orders: boom"))
	if got := buf.String(); got != "[Orders] Error syncing orders: boom\n" {
		t.Fatalf("unexpected console line %q", got)
	}
}
