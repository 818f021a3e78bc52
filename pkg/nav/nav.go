// Package nav is the host navigation collaborator panels delegate "view" and
// "edit" requests to.
package nav

import (
	"fmt"
	"strings"
	"sync"
)

// Mode selects how the target record opens.
type Mode string

const (
	View Mode = "view"
	Edit Mode = "edit"
)

// ParseMode converts user input to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case View, Edit:
		return m, nil
	}
	return "", fmt.Errorf("nav: unknown mode %q", raw)
}

// Request is one navigation.
type Request struct {
	EntityType string
	RecordID   string
	Mode       Mode
}

func (r Request) String() string {
	return fmt.Sprintf("%s/%s (%s)", r.EntityType, r.RecordID, r.Mode)
}

// Navigator opens a record in the host. Calls are fire-and-forget.
type Navigator interface {
	NavigateToRecord(entityType, recordID string, mode Mode)
}

// Func adapts a function to Navigator.
type Func func(Request)

// NavigateToRecord calls f.
func (f Func) NavigateToRecord(entityType, recordID string, mode Mode) {
	if f != nil {
		f(Request{EntityType: entityType, RecordID: recordID, Mode: mode})
	}
}

// Discard ignores every request.
var Discard Navigator = Func(nil)

// Recorder keeps every request it receives, in order.
type Recorder struct {
	mu       sync.Mutex
	requests []Request
}

// NavigateToRecord records the request.
func (r *Recorder) NavigateToRecord(entityType, recordID string, mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, Request{EntityType: entityType, RecordID: recordID, Mode: mode})
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

// Last returns the latest request, if any.
func (r *Recorder) Last() (Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return Request{}, false
	}
	return r.requests[len(r.requests)-1], true
}
