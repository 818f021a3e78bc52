package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/store"
)

// Mirror serves reads from the local store and forwards jobs to an upstream
// Client. After a successful job the affected kinds are re-read from upstream
// and written to the store, which in turn wakes store watchers.
type Mirror struct {
	store    store.Persistence
	upstream Client
	log      *zap.Logger
}

var _ Client = (*Mirror)(nil)

// NewMirror creates a Mirror. upstream may be nil, in which case jobs fail
// with a *Error and reads are served from whatever the store holds.
func NewMirror(p store.Persistence, upstream Client, log *zap.Logger) *Mirror {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirror{store: p, upstream: upstream, log: log}
}

// GetCollection reads kind from the local store.
func (m *Mirror) GetCollection(ctx context.Context, kind record.Kind, scopeID string) ([]json.RawMessage, error) {
	raws, err := m.store.List(ctx, kind, scopeID)
	if err != nil {
		return nil, &Error{Op: "read " + string(kind), Message: err.Error()}
	}
	return raws, nil
}

// RunSync runs the job upstream and refreshes the mirrored kinds.
func (m *Mirror) RunSync(ctx context.Context, target record.SyncTarget) (SyncOutcome, error) {
	if m.upstream == nil {
		return SyncOutcome{}, errNoUpstream("sync " + string(target))
	}
	out, err := m.upstream.RunSync(ctx, target)
	if err != nil {
		return SyncOutcome{}, err
	}
	if out.Target == "" {
		out.Target = target
	}
	counts, err := m.Refresh(ctx, target.Kinds()...)
	if err != nil {
		return out, err
	}
	out.Counts = counts
	m.log.Info("sync finished",
		zap.String("target", string(target)),
		zap.Any("counts", counts))
	return out, nil
}

// RunCleanup erases the host data upstream, then the local mirror.
func (m *Mirror) RunCleanup(ctx context.Context) (string, error) {
	if m.upstream == nil {
		return "", errNoUpstream("cleanup")
	}
	msg, err := m.upstream.RunCleanup(ctx)
	if err != nil {
		return "", err
	}
	if err := m.store.Reset(); err != nil {
		return msg, &Error{Op: "cleanup", Message: fmt.Sprintf("reset mirror: %v", err)}
	}
	m.log.Info("cleanup finished", zap.String("message", msg))
	return msg, nil
}

// Refresh re-reads kinds from upstream and replaces them in the store. It
// returns the number of records written per kind.
func (m *Mirror) Refresh(ctx context.Context, kinds ...record.Kind) (map[record.Kind]int, error) {
	if m.upstream == nil {
		return nil, errNoUpstream("refresh")
	}
	counts := make(map[record.Kind]int, len(kinds))
	for _, kind := range kinds {
		raws, err := m.upstream.GetCollection(ctx, kind, "")
		if err != nil {
			return counts, err
		}
		if err := m.store.Replace(ctx, kind, raws); err != nil {
			return counts, &Error{Op: "refresh " + string(kind), Message: err.Error()}
		}
		counts[kind] = len(raws)
	}
	return counts, nil
}

func errNoUpstream(op string) error {
	return &Error{Op: op, Message: "no remote configured"}
}
