// Package syncaction runs a user-triggered backend job with a duplicate
// trigger guard, uniform notifications and post-success invalidation.
package syncaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/notify"
)

// ErrInFlight is returned by Trigger while a previous run is still going.
var ErrInFlight = errors.New("syncaction: already in flight")

// UnknownError is the message used when an error carries nothing readable.
const UnknownError = "unknown error"

// Status is the controller state.
type Status int

const (
	Idle Status = iota
	InFlight
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Action performs the backend job. The returned string, when non-empty,
// replaces the default success message.
type Action func(ctx context.Context) (string, error)

// Invalidator refreshes a dependent read after a successful run.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func(ctx context.Context) error

// Invalidate calls f.
func (f InvalidatorFunc) Invalidate(ctx context.Context) error {
	return f(ctx)
}

// Messages are the notification texts for one action.
// An empty Start defaults to "<title> started"; an empty FailureTitle falls
// back to the controller title.
type Messages struct {
	Start   string
	Success string
	// FailureTitle titles the error notification, e.g. "Error syncing
	// products". Its message is always Describe(err).
	FailureTitle string
}

// Options configure a Controller.
type Options struct {
	Name         string
	Title        string
	Run          Action
	Notifier     notify.Emitter
	Invalidators []Invalidator
	Messages     Messages
	Logger       *zap.Logger
}

// Controller runs one named action.
type Controller struct {
	name     string
	title    string
	run      Action
	notifier notify.Emitter
	messages Messages
	log      *zap.Logger

	mu           sync.Mutex
	status       Status
	lastErr      error
	invalidators []Invalidator
}

// New creates an idle Controller.
func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	n := opts.Notifier
	if n == nil {
		n = notify.Func(nil)
	}
	title := opts.Title
	if title == "" {
		title = opts.Name
	}
	msgs := opts.Messages
	if msgs.Start == "" {
		msgs.Start = title + " started"
	}
	if msgs.FailureTitle == "" {
		msgs.FailureTitle = title
	}
	return &Controller{
		name:         opts.Name,
		title:        title,
		run:          opts.Run,
		notifier:     n,
		messages:     msgs,
		log:          log.With(zap.String("action", opts.Name)),
		invalidators: append([]Invalidator(nil), opts.Invalidators...),
	}
}

// Name identifies the action.
func (c *Controller) Name() string { return c.name }

// Title is the notification title.
func (c *Controller) Title() string { return c.title }

// AddInvalidator registers another read to refresh after success.
func (c *Controller) AddInvalidator(inv Invalidator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidators = append(c.invalidators, inv)
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// InFlight reports whether a run is in progress.
func (c *Controller) InFlight() bool {
	return c.Status() == InFlight
}

// LastError returns the error of the last failed run.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Trigger runs the action. A trigger while another run is in flight returns
// ErrInFlight without calling the backend. On success every invalidator runs
// once after the success notification; on failure an error notification
// carries Describe(err) and no invalidation happens.
func (c *Controller) Trigger(ctx context.Context) (err error) {
	c.mu.Lock()
	if c.status == InFlight {
		c.mu.Unlock()
		c.log.Debug("trigger rejected while in flight")
		return ErrInFlight
	}
	c.status = InFlight
	c.lastErr = nil
	invalidators := append([]Invalidator(nil), c.invalidators...)
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("syncaction: %s: panic: %v", c.name, r)
			c.log.Error("action panicked", zap.Any("panic", r))
			c.notifyFailure(fmt.Sprint(r))
		}
		c.mu.Lock()
		if err != nil {
			c.status = Failed
			c.lastErr = err
		} else {
			c.status = Succeeded
		}
		c.mu.Unlock()
	}()

	c.notifier.Notify(notify.New(notify.KindInfo, c.title, c.messages.Start))
	c.log.Info("action started")

	msg, err := c.run(ctx)
	if err != nil {
		desc := Describe(err)
		c.log.Warn("action failed", zap.Error(err), zap.String("message", desc))
		c.notifyFailure(desc)
		return err
	}

	if c.messages.Success != "" {
		msg = c.messages.Success
	}
	if msg == "" {
		msg = c.title + " completed"
	}
	c.notifier.Notify(notify.New(notify.KindSuccess, c.title, msg))
	c.log.Info("action succeeded", zap.Int("invalidators", len(invalidators)))

	for _, inv := range invalidators {
		if ierr := inv.Invalidate(ctx); ierr != nil {
			c.log.Debug("invalidate after success", zap.Error(ierr))
		}
	}
	return nil
}

func (c *Controller) notifyFailure(message string) {
	if message == "" {
		message = UnknownError
	}
	c.notifier.Notify(notify.New(notify.KindError, c.messages.FailureTitle, message))
}

// Describe picks the user-facing message for err: the backend error body's
// message, then the error's own message, then a JSON dump of the body or
// payload, then UnknownError.
func Describe(err error) string {
	if err == nil {
		return UnknownError
	}
	be, ok := backend.AsError(err)
	if !ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return UnknownError
	}
	if msg := be.BodyMessage(); msg != "" {
		return msg
	}
	if be.Message != "" {
		return be.Message
	}
	if len(be.Body) > 0 {
		if data, jerr := json.Marshal(be.Body); jerr == nil {
			return string(data)
		}
	}
	if len(be.Payload) > 0 {
		return string(be.Payload)
	}
	return UnknownError
}
