// Package backend is the boundary to the host data store and its sync
// engine. Panels only see the Client interface.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/storefront/pkg/record"
)

// Client is the host backend. Reads return raw payloads; jobs run on the
// host and report a human readable outcome.
type Client interface {
	// GetCollection reads the records of kind. scopeID narrows scoped kinds
	// (order items by order Id) and is ignored otherwise.
	GetCollection(ctx context.Context, kind record.Kind, scopeID string) ([]json.RawMessage, error)
	// RunSync asks the sync engine to pull target from the commerce platform.
	RunSync(ctx context.Context, target record.SyncTarget) (SyncOutcome, error)
	// RunCleanup erases the host's mirrored commerce data.
	RunCleanup(ctx context.Context) (string, error)
}

// SyncOutcome reports a finished sync job.
type SyncOutcome struct {
	Target  record.SyncTarget   `json:"target"`
	Message string              `json:"message,omitempty"`
	Counts  map[record.Kind]int `json:"counts,omitempty"`
}

// Error is a structured backend failure. Body is the decoded error document
// returned by the host, Payload the undecoded response when Body is absent.
type Error struct {
	Op      string
	Status  int
	Body    map[string]any
	Message string
	Payload json.RawMessage
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("backend")
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	switch {
	case e.BodyMessage() != "":
		b.WriteString(": ")
		b.WriteString(e.BodyMessage())
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// BodyMessage returns Body["message"] when it is a non-empty string.
func (e *Error) BodyMessage() string {
	if e == nil || e.Body == nil {
		return ""
	}
	msg, _ := e.Body["message"].(string)
	return msg
}

// AsError unwraps err to a *Error.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// Decode unmarshals raw payloads into records of type R, naming the failing
// index on error.
func Decode[R any](kind record.Kind, raws []json.RawMessage) ([]R, error) {
	out := make([]R, 0, len(raws))
	for i, raw := range raws {
		var r R
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("backend: decode %s record %d: %w", kind, i, err)
		}
		out = append(out, r)
	}
	return out, nil
}
