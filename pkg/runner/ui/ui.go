// Package ui wires the dashboard, notifications and navigation into the
// Bubble Tea program.
package ui

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/nav"
	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/panel"
	"tableflip.dev/storefront/pkg/record/viewmodel"
	"tableflip.dev/storefront/pkg/store"
	teaui "tableflip.dev/storefront/pkg/tui/app"
)

const (
	notificationBuffer = 16
	navigationBuffer   = 4
)

type UI struct {
	Client      backend.Client
	Persistence store.Persistence
	Formatter   *viewmodel.Formatter
	Logger      *zap.Logger
	Source      string
}

func (u *UI) Do(ctx context.Context) error {
	if u.Client == nil {
		return errors.New("can not open ui, no backend")
	}
	log := u.Logger
	if log == nil {
		log = zap.NewNop()
	}

	notes := notify.NewChannel(notificationBuffer)
	navCh := make(chan nav.Request, navigationBuffer)
	navigator := nav.Func(func(req nav.Request) {
		select {
		case navCh <- req:
		default:
			log.Warn("navigation dropped", zap.Stringer("request", req))
		}
	})

	dash := panel.NewDashboard(panel.Deps{
		Client:    u.Client,
		Formatter: u.Formatter,
		Notifier:  notify.Multi{notes, notify.Logger{Log: log}},
		Navigator: navigator,
		Logger:    log,
	})

	return teaui.Run(ctx, teaui.Options{
		Dashboard:     dash,
		Notifications: notes,
		Navigations:   navCh,
		Persistence:   u.Persistence,
		Logger:        log,
		Source:        u.Source,
	})
}
