package translator

import (
	"fmt"
	"strings"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/hyperengineering/edgereplica/internal/cdc"
)

// upsert builds INSERT ... ON CONFLICT(id) DO UPDATE for one row. Every
// column except id and created_at is overwritten from the incoming row, so
// replaying the same event leaves the row unchanged apart from updated_at.
func upsert(table string, cols []string, values []any) Statement {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols(cols...)
	ib.Values(values...)

	query, args := ib.Build()

	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		if col == "id" || col == "created_at" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", col, col))
	}
	query += " ON CONFLICT(id) DO UPDATE SET " + strings.Join(sets, ", ")

	return Statement{SQL: query, Args: args}
}

func deleteByID(table, id string) Statement {
	db := sqlbuilder.SQLite.NewDeleteBuilder()
	db.DeleteFrom(table)
	db.Where(db.Equal("id", id))

	query, args := db.Build()
	return Statement{SQL: query, Args: args}
}

// keyRecord is the part of a row image needed to address a row.
type keyRecord struct {
	ID      cdc.ID `json:"id"`
	PlaceID cdc.ID `json:"place_id"`
}

// deleteKey extracts the key of the removed row from old_record.
func deleteKey(ev cdc.Event, allowPlaceID bool) (string, error) {
	if ev.OldRecord == nil {
		return "", fmt.Errorf("%w: DELETE on %s has no old_record", ErrMissingID, ev.Table)
	}
	key, err := cdc.DecodeRecord[keyRecord](ev.OldRecord)
	if err != nil {
		return "", err
	}
	if key.ID != "" {
		return key.ID.String(), nil
	}
	if allowPlaceID && key.PlaceID != "" {
		return key.PlaceID.String(), nil
	}
	return "", fmt.Errorf("%w: DELETE on %s", ErrMissingID, ev.Table)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampOr returns the record's timestamp, or now when it is absent.
func timestampOr(v *string, now time.Time) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return formatTime(now)
	}
	return *v
}

// boolInt converts a flag to the replica's 0/1 representation.
func boolInt(v *bool, def bool) int {
	b := def
	if v != nil {
		b = *v
	}
	if b {
		return 1
	}
	return 0
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
