package options

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
)

func TestHandleErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	saved := color.Output
	color.Output = &buf
	defer func() { color.Output = saved }()

	o := &OutputOptions{JSON: true}
	if err := o.HandleError(errors.New("backend: sync: status 500")); err != nil {
		t.Fatalf("expected error swallowed into json, got %v", err)
	}
	if got := buf.String(); got != "{\"error\":\"backend: sync: status 500\"}\n" {
		t.Fatalf("unexpected output %q", got)
	}

	o.JSON = false
	boom := errors.New("boom")
	if err := o.HandleError(boom); err != boom {
		t.Fatalf("expected error passed through, got %v", err)
	}
}

func TestWrap(t *testing.T) {
	got := Wrap("one two three four", 9)
	if got != "one two\nthree\nfour" {
		t.Fatalf("unexpected wrap %q", got)
	}
}
