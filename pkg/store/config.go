package store

import "go.uber.org/zap"

// Config locates the mirror on disk.
type Config interface {
	BasePath() string
}

// Option configures a Persistence.
type Option func(*persistence)

// WithLogger routes watcher diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(p *persistence) {
		if l != nil {
			p.log = l
		}
	}
}
