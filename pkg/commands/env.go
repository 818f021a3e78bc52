package commands

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/backend/remote"
	"tableflip.dev/storefront/pkg/commands/options"
	"tableflip.dev/storefront/pkg/config"
	"tableflip.dev/storefront/pkg/logger"
	"tableflip.dev/storefront/pkg/record/viewmodel"
	"tableflip.dev/storefront/pkg/store"
)

// env is everything a runner needs, resolved from config and flags.
type env struct {
	cfg         *config.Config
	log         *zap.Logger
	persistence store.Persistence
	mirror      *backend.Mirror
	formatter   *viewmodel.Formatter
}

func loadEnv(lo *options.LogOptions) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lc := cfg.Logger()
	if lo != nil && lo.Level != "" {
		lc.Level = lo.Level
	}
	if lo != nil && lo.File != "" {
		if lc.Output, err = homedir.Expand(lo.File); err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
	}
	log, err := logger.New(lc)
	if err != nil {
		return nil, err
	}

	formatter, err := cfg.Formatter()
	if err != nil {
		return nil, err
	}

	p, err := store.Load(cfg, store.WithLogger(log.Named("store")))
	if err != nil {
		return nil, err
	}

	var upstream backend.Client
	if cfg.Remote.URL != "" {
		rc, err := remote.New(remote.Config{
			BaseURL: cfg.Remote.URL,
			Token:   cfg.Remote.Token,
			Timeout: cfg.Remote.Timeout,
			Logger:  log.Named("remote"),
		})
		if err != nil {
			return nil, err
		}
		upstream = rc
	}
	log.Debug("environment loaded",
		zap.String("config", cfg.File),
		zap.String("path", cfg.Path),
		zap.Bool("remote", upstream != nil),
	)

	return &env{
		cfg:         cfg,
		log:         log,
		persistence: p,
		mirror:      backend.NewMirror(p, upstream, log.Named("mirror")),
		formatter:   formatter,
	}, nil
}

// source describes where records come from.
func (e *env) source() string {
	if e.cfg.Remote.URL == "" {
		return e.cfg.Path + " (local only)"
	}
	return e.cfg.Path + " <- " + e.cfg.Remote.URL
}
