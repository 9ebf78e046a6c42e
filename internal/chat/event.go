package chat

import (
	"fmt"
	"strings"
	"time"
)

// EventKind enumerates the chat client lifecycle.
type EventKind int

const (
	EventQRIssued EventKind = iota + 1
	EventAuthenticated
	EventReady
	EventAuthFailed
	EventDisconnected
)

var eventNames = map[EventKind]string{
	EventQRIssued:      "qr_issued",
	EventAuthenticated: "authenticated",
	EventReady:         "ready",
	EventAuthFailed:    "auth_failed",
	EventDisconnected:  "disconnected",
}

// String returns the snake_case name used in logs, metrics and the event stream.
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// ParseEventKind is the inverse of String.
func ParseEventKind(s string) (EventKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range eventNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEventKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsMilestone reports whether the session artifact may have changed.
func (k EventKind) IsMilestone() bool {
	return k == EventAuthenticated || k == EventReady
}

// Event is one lifecycle notification. Detail carries the QR challenge for
// EventQRIssued and the reason for failures and disconnects.
type Event struct {
	Kind   EventKind `json:"kind"`
	Detail string    `json:"detail,omitempty"`
	// Reset marks an EventAuthFailed after which the client discarded its
	// stored login. The session artifact no longer holds a device.
	Reset  bool      `json:"reset,omitempty"`
	At     time.Time `json:"at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(kind EventKind, detail string) Event {
	return Event{Kind: kind, Detail: detail, At: time.Now()}
}

// NewResetEvent reports that the stored login was revoked and discarded.
func NewResetEvent(reason string) Event {
	e := NewEvent(EventAuthFailed, reason)
	e.Reset = true
	return e
}

// ChangesSession reports whether the session artifact may have been
// rewritten and should be backed up.
func (e Event) ChangesSession() bool {
	return e.Kind.IsMilestone() || (e.Kind == EventAuthFailed && e.Reset)
}

// Redacted returns e without its QR challenge. Whoever holds a challenge
// can link an account, so it must not leave the process by default.
func (e Event) Redacted() Event {
	if e.Kind == EventQRIssued {
		e.Detail = ""
	}
	return e
}
