// Package notify publishes transient user notifications to a host surface
// (toast, status bar, log). Delivery is fire-and-forget.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind is the notification variant.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single transient message.
type Notification struct {
	ID      string
	Kind    Kind
	Title   string
	Message string
	At      time.Time
}

// New stamps a notification with an ID and time.
func New(kind Kind, title, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Title:   title,
		Message: message,
		At:      time.Now(),
	}
}

// Emitter accepts notifications. Implementations must not block the caller.
type Emitter interface {
	Notify(Notification)
}

// Func adapts a function to Emitter.
type Func func(Notification)

// Notify calls f.
func (f Func) Notify(n Notification) {
	if f != nil {
		f(n)
	}
}

// Multi fans a notification out to every emitter in order.
type Multi []Emitter

// Notify forwards to all non-nil emitters.
func (m Multi) Notify(n Notification) {
	for _, e := range m {
		if e != nil {
			e.Notify(n)
		}
	}
}

// Channel delivers notifications to a buffered channel, dropping them when
// the consumer falls behind.
type Channel struct {
	ch chan Notification
}

// NewChannel creates a Channel emitter with the given buffer size.
func NewChannel(size int) *Channel {
	if size <= 0 {
		size = 32
	}
	return &Channel{ch: make(chan Notification, size)}
}

// Notify enqueues n or drops it if the buffer is full.
func (c *Channel) Notify(n Notification) {
	select {
	case c.ch <- n:
	default:
	}
}

// C exposes the receive side for the host surface.
func (c *Channel) C() <-chan Notification {
	return c.ch
}

// Logger writes notifications to a zap logger.
type Logger struct {
	Log *zap.Logger
}

// Notify logs n at a level matching its kind.
func (l Logger) Notify(n Notification) {
	if l.Log == nil {
		return
	}
	fields := []zap.Field{
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
	}
	switch n.Kind {
	case KindError:
		l.Log.Error(n.Message, fields...)
	default:
		l.Log.Info(n.Message, fields...)
	}
}

// Recorder keeps every notification it receives, in order.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

// Notify records n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}

// Kinds returns the recorded kinds in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.all))
	for _, n := range r.all {
		out = append(out, n.Kind)
	}
	return out
}
