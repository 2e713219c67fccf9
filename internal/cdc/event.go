// Package cdc models the row-level change events delivered by the primary
// database's webhooks.
package cdc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EventType is the row operation carried by a change event.
type EventType string

// Event types emitted by the primary database.
const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// MaxEventBytes bounds the size of a single webhook body.
const MaxEventBytes = 1 << 20

var (
	// ErrInvalidEvent indicates the webhook envelope itself is malformed.
	ErrInvalidEvent = errors.New("invalid change event")

	// ErrInvalidRecord indicates a row image could not be parsed into its table's record type.
	ErrInvalidRecord = errors.New("invalid record")
)

// Event is one change event. Record holds the new row image for INSERT and
// UPDATE; OldRecord holds the previous image for UPDATE and DELETE.
// The event exists only for the duration of one delivery.
type Event struct {
	Type      EventType      `json:"type"`
	Table     string         `json:"table"`
	Schema    string         `json:"schema"`
	Record    map[string]any `json:"record,omitempty"`
	OldRecord map[string]any `json:"old_record,omitempty"`
}

// IsDelete reports whether the event removes a row.
func (e Event) IsDelete() bool {
	return e.Type == EventDelete
}

// Validate checks the envelope fields. It does not inspect row images; those
// are parsed per table by the translators.
func (e Event) Validate() error {
	switch e.Type {
	case EventInsert, EventUpdate, EventDelete:
	case "":
		return fmt.Errorf("%w: type is required", ErrInvalidEvent)
	default:
		return fmt.Errorf("%w: unsupported type %q", ErrInvalidEvent, e.Type)
	}
	if strings.TrimSpace(e.Table) == "" {
		return fmt.Errorf("%w: table is required", ErrInvalidEvent)
	}
	return nil
}

// Decode reads and validates one event from r.
func Decode(r io.Reader) (Event, error) {
	var ev Event
	dec := json.NewDecoder(io.LimitReader(r, MaxEventBytes))
	// Row images keep numbers as json.Number so integer keys above 2^53
	// survive the round trip through DecodeRecord.
	dec.UseNumber()
	if err := dec.Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	ev.Type = EventType(strings.ToUpper(string(ev.Type)))
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}
