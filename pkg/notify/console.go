package notify

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var consoleColors = map[Kind]*color.Color{
	KindInfo:    color.New(color.Faint),
	KindSuccess: color.New(color.FgGreen),
	KindError:   color.New(color.FgRed, color.Bold),
}

// Console prints notifications as single colored lines, for CLI commands
// that run without a toast surface.
type Console struct {
	Out io.Writer
}

// Notify writes n to Out, or color.Error when unset.
func (c Console) Notify(n Notification) {
	out := c.Out
	if out == nil {
		out = color.Error
	}
	line := n.Message
	if n.Title != "" {
		line = fmt.Sprintf("[%s] %s", n.Title, n.Message)
	}
	if col, ok := consoleColors[n.Kind]; ok {
		line = col.Sprint(line)
	}
	_, _ = fmt.Fprintln(out, line)
}
