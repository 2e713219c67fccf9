// Package translator maps change events from the primary database onto
// parameterized statements against the replica schema.
//
// The set of synced tables is closed: each table has exactly one translator
// registered here, and an event for any other table is rejected.
package translator

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hyperengineering/edgereplica/internal/cdc"
)

var (
	// ErrUnknownTable indicates the event's table is not in the synced set.
	ErrUnknownTable = errors.New("table not configured for sync")

	// ErrMissingID indicates the row image carries no usable primary key.
	ErrMissingID = errors.New("record id is missing")
)

// Statement is one parameterized statement to execute on the replica.
type Statement struct {
	SQL  string
	Args []any
}

// Func translates a change event for its table. now is the write time used
// for timestamps the record does not carry.
type Func func(ev cdc.Event, now time.Time) (Statement, error)

// registry maps upstream table names to translators. cached_places is the
// upstream name of the places cache and lands in the restaurants table.
var registry = map[string]Func{
	"restaurants":            translateRestaurant,
	"cached_places":          translateRestaurant,
	"suppliers":              translateSupplier,
	"supplier_relationships": translateSupplierRelationship,
	"allergen_protocols":     translateAllergenProtocol,
}

// Lookup returns the translator registered for an upstream table.
func Lookup(table string) (Func, bool) {
	fn, ok := registry[table]
	return fn, ok
}

// Tables returns the upstream table names accepted for sync, sorted.
func Tables() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Translate looks up the event's table and translates it.
func Translate(ev cdc.Event, now time.Time) (Statement, error) {
	fn, ok := Lookup(ev.Table)
	if !ok {
		return Statement{}, fmt.Errorf("%w: %s", ErrUnknownTable, ev.Table)
	}
	return fn(ev, now)
}
