// Package sync runs one backend sync job from the command line.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/panel"
	"tableflip.dev/storefront/pkg/printers"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/syncaction"
)

type Sync struct {
	Target record.SyncTarget
	JSON   bool

	Client   backend.Client
	Notifier notify.Emitter
	Logger   *zap.Logger
	Out      io.Writer
}

func (s *Sync) Do(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("can not sync, no backend")
	}
	var outcome backend.SyncOutcome
	title, msgs := panel.SyncMessages(s.Target)
	c := syncaction.New(syncaction.Options{
		Name:  string(s.Target),
		Title: title,
		Run: func(ctx context.Context) (string, error) {
			var err error
			outcome, err = s.Client.RunSync(ctx, s.Target)
			return outcome.Message, err
		},
		Notifier: s.Notifier,
		Messages: msgs,
		Logger:   s.Logger,
	})
	if err := c.Trigger(ctx); err != nil {
		return err
	}

	out := s.Out
	if out == nil {
		out = color.Output
	}
	if s.JSON {
		return json.NewEncoder(out).Encode(outcome)
	}
	pp := &printers.PrettyPrint{Out: out}
	pp.Outcome(outcome)
	return nil
}
