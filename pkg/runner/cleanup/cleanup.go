// Package cleanup wipes the host-side records through the backend cleanup
// job.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/panel"
	"tableflip.dev/storefront/pkg/syncaction"
)

type Cleanup struct {
	// Confirmed must be set; cleanup is destructive and has no undo.
	Confirmed bool

	Client   backend.Client
	Notifier notify.Emitter
	Logger   *zap.Logger
	Out      io.Writer
}

// ErrNotConfirmed is returned when Do runs without confirmation.
var ErrNotConfirmed = errors.New("cleanup deletes every mirrored record, pass --yes to confirm")

func (c *Cleanup) Do(ctx context.Context) error {
	if !c.Confirmed {
		return ErrNotConfirmed
	}
	if c.Client == nil {
		return errors.New("can not clean up, no backend")
	}
	var result string
	title, msgs := panel.CleanupMessages()
	action := syncaction.New(syncaction.Options{
		Name:  panel.ActionCleanup,
		Title: title,
		Run: func(ctx context.Context) (string, error) {
			msg, err := c.Client.RunCleanup(ctx)
			result = msg
			return msg, err
		},
		Notifier: c.Notifier,
		Messages: msgs,
		Logger:   c.Logger,
	})
	if err := action.Trigger(ctx); err != nil {
		return err
	}
	out := c.Out
	if out == nil {
		out = color.Output
	}
	if result == "" {
		result = "Cleanup completed"
	}
	_, _ = fmt.Fprintln(out, color.New(color.FgGreen).Sprint(result))
	return nil
}
