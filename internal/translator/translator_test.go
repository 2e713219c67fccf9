package translator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/edgereplica/internal/cdc"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const testNowText = "2026-03-01T12:00:00Z"

// argsByColumn pairs an upsert's leading args with the given column list.
func argsByColumn(t *testing.T, stmt Statement, cols []string) map[string]any {
	t.Helper()
	if len(stmt.Args) != len(cols) {
		t.Fatalf("args = %d, want %d: %v", len(stmt.Args), len(cols), stmt.Args)
	}
	out := make(map[string]any, len(cols))
	for i, c := range cols {
		out[c] = stmt.Args[i]
	}
	return out
}

func TestTables(t *testing.T) {
	got := strings.Join(Tables(), ",")
	want := "allergen_protocols,cached_places,restaurants,supplier_relationships,suppliers"
	if got != want {
		t.Errorf("Tables() = %s, want %s", got, want)
	}
}

func TestTranslate_UnknownTable(t *testing.T) {
	_, err := Translate(cdc.Event{Type: cdc.EventInsert, Table: "users", Record: map[string]any{"id": "u1"}}, testNow)
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("err = %v, want ErrUnknownTable", err)
	}
}

func TestTranslate_RestaurantUpsert(t *testing.T) {
	ev := cdc.Event{Type: cdc.EventInsert, Table: "restaurants", Record: map[string]any{
		"id":               "r1",
		"name":             "Cafe X",
		"latitude":         40.0,
		"longitude":        -73.0,
		"rating":           4.5,
		"price_level":      2.0,
		"place_types":      []any{"cafe", "bakery"},
		"photo_references": `["p1"]`,
		"is_open_now":      true,
		"created_at":       "2025-01-01T00:00:00Z",
	}}

	stmt, err := Translate(ev, testNow)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if !strings.HasPrefix(stmt.SQL, "INSERT INTO restaurants") {
		t.Errorf("SQL = %s", stmt.SQL)
	}
	if !strings.Contains(stmt.SQL, "ON CONFLICT(id) DO UPDATE SET name = excluded.name") {
		t.Errorf("SQL missing upsert clause: %s", stmt.SQL)
	}
	if strings.Contains(stmt.SQL, "created_at = excluded.created_at") || strings.Contains(stmt.SQL, "id = excluded.id,") {
		t.Errorf("upsert overwrites id or created_at: %s", stmt.SQL)
	}

	args := argsByColumn(t, stmt, restaurantColumns)
	if args["id"] != "r1" || args["name"] != "Cafe X" {
		t.Errorf("id/name = %v/%v", args["id"], args["name"])
	}
	if args["place_types"] != `["cafe","bakery"]` {
		t.Errorf("place_types = %v", args["place_types"])
	}
	if args["photo_references"] != `["p1"]` {
		t.Errorf("photo_references = %v", args["photo_references"])
	}
	if args["is_open_now"] != 1 || args["has_supply_chain_data"] != 0 {
		t.Errorf("flags = %v/%v", args["is_open_now"], args["has_supply_chain_data"])
	}
	if args["created_at"] != "2025-01-01T00:00:00Z" {
		t.Errorf("created_at = %v", args["created_at"])
	}
	if args["updated_at"] != testNowText {
		t.Errorf("updated_at = %v", args["updated_at"])
	}
	if p, ok := args["price_level"].(*int); !ok || p == nil || *p != 2 {
		t.Errorf("price_level = %v", args["price_level"])
	}
}

func TestTranslate_CachedPlacesUsesPlaceID(t *testing.T) {
	ev := cdc.Event{Type: cdc.EventUpdate, Table: "cached_places", Record: map[string]any{
		"place_id": "ChIJ123",
		"name":     "Diner",
	}}

	stmt, err := Translate(ev, testNow)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.HasPrefix(stmt.SQL, "INSERT INTO restaurants") {
		t.Errorf("SQL = %s, want restaurants table", stmt.SQL)
	}
	if args := argsByColumn(t, stmt, restaurantColumns); args["id"] != "ChIJ123" {
		t.Errorf("id = %v, want place_id", args["id"])
	}
	// Absent created_at falls back to the write time.
	if args := argsByColumn(t, stmt, restaurantColumns); args["created_at"] != testNowText {
		t.Errorf("created_at = %v", args["created_at"])
	}
}

func TestTranslate_RestaurantWithoutKey(t *testing.T) {
	_, err := Translate(cdc.Event{Type: cdc.EventInsert, Table: "restaurants", Record: map[string]any{"name": "x"}}, testNow)
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("err = %v, want ErrMissingID", err)
	}
}

func TestTranslate_Deletes(t *testing.T) {
	tests := []struct {
		table     string
		oldRecord map[string]any
		wantTable string
		wantID    string
	}{
		{"restaurants", map[string]any{"id": "r1"}, "restaurants", "r1"},
		{"cached_places", map[string]any{"place_id": "ChIJ9"}, "restaurants", "ChIJ9"},
		{"suppliers", map[string]any{"id": 7.0}, "suppliers", "7"},
		{"supplier_relationships", map[string]any{"id": "rel1"}, "supplier_relationships", "rel1"},
		{"allergen_protocols", map[string]any{"id": "a1", "allergen": "milk"}, "allergen_protocols", "a1"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			stmt, err := Translate(cdc.Event{Type: cdc.EventDelete, Table: tt.table, OldRecord: tt.oldRecord}, testNow)
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if !strings.HasPrefix(stmt.SQL, "DELETE FROM "+tt.wantTable+" WHERE id = ?") {
				t.Errorf("SQL = %s", stmt.SQL)
			}
			if len(stmt.Args) != 1 || stmt.Args[0] != tt.wantID {
				t.Errorf("Args = %v, want [%s]", stmt.Args, tt.wantID)
			}
		})
	}
}

func TestTranslate_DeleteFailures(t *testing.T) {
	tests := []struct {
		name string
		ev   cdc.Event
	}{
		{"no old_record", cdc.Event{Type: cdc.EventDelete, Table: "restaurants"}},
		{"old_record without id", cdc.Event{Type: cdc.EventDelete, Table: "suppliers", OldRecord: map[string]any{"name": "x"}}},
		{"place_id only for places", cdc.Event{Type: cdc.EventDelete, Table: "suppliers", OldRecord: map[string]any{"place_id": "p"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Translate(tt.ev, testNow); !errors.Is(err, ErrMissingID) {
				t.Errorf("err = %v, want ErrMissingID", err)
			}
		})
	}
}

func TestTranslate_InsertWithoutRecord(t *testing.T) {
	for _, table := range Tables() {
		_, err := Translate(cdc.Event{Type: cdc.EventInsert, Table: table}, testNow)
		if !errors.Is(err, cdc.ErrInvalidRecord) {
			t.Errorf("%s: err = %v, want ErrInvalidRecord", table, err)
		}
	}
}

func TestTranslate_Supplier(t *testing.T) {
	ev := cdc.Event{Type: cdc.EventInsert, Table: "suppliers", Record: map[string]any{
		"id":              "s1",
		"name":            "Farm Co",
		"contact_email":   "ops@farm.example",
		"certifications":  []any{"organic"},
		"specialty_items": nil,
	}}

	stmt, err := Translate(ev, testNow)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	args := argsByColumn(t, stmt, supplierColumns)
	if args["certifications"] != `["organic"]` || args["specialty_items"] != `[]` {
		t.Errorf("lists = %v/%v", args["certifications"], args["specialty_items"])
	}

	ev.Record["contact_email"] = "not-an-email"
	if _, err := Translate(ev, testNow); !errors.Is(err, cdc.ErrInvalidRecord) {
		t.Errorf("err = %v, want ErrInvalidRecord for bad email", err)
	}
}

func TestTranslate_SupplierRelationshipDefaultsActive(t *testing.T) {
	ev := cdc.Event{Type: cdc.EventInsert, Table: "supplier_relationships", Record: map[string]any{
		"id":            "rel1",
		"restaurant_id": "r1",
		"supplier_id":   "s1",
	}}

	stmt, err := Translate(ev, testNow)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if args := argsByColumn(t, stmt, supplierRelationshipColumns); args["is_active"] != 1 {
		t.Errorf("is_active = %v, want 1", args["is_active"])
	}

	ev.Record["is_active"] = false
	stmt, _ = Translate(ev, testNow)
	if args := argsByColumn(t, stmt, supplierRelationshipColumns); args["is_active"] != 0 {
		t.Errorf("is_active = %v, want 0", args["is_active"])
	}
}

func TestTranslate_AllergenProtocolNormalizesKeys(t *testing.T) {
	ev := cdc.Event{Type: cdc.EventUpdate, Table: "allergen_protocols", Record: map[string]any{
		"id":                       "a1",
		"restaurant_id":            "r1",
		"allergen":                 "  Peanuts ",
		"cross_contamination_risk": "LOW",
	}}

	stmt, err := Translate(ev, testNow)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	args := argsByColumn(t, stmt, allergenProtocolColumns)
	if args["allergen"] != "peanuts" {
		t.Errorf("allergen = %v", args["allergen"])
	}
	if args["cross_contamination_risk"] != RiskLow {
		t.Errorf("risk = %v", args["cross_contamination_risk"])
	}
	if args["last_updated"] != testNowText {
		t.Errorf("last_updated = %v", args["last_updated"])
	}
}

func TestTranslate_AllergenProtocolRequiresRestaurant(t *testing.T) {
	ev := cdc.Event{Type: cdc.EventInsert, Table: "allergen_protocols", Record: map[string]any{
		"id":       "a1",
		"allergen": "milk",
	}}

	if _, err := Translate(ev, testNow); !errors.Is(err, cdc.ErrInvalidRecord) {
		t.Errorf("err = %v, want ErrInvalidRecord", err)
	}
}

func TestTranslate_LargeIntegerKeysKeepPrecision(t *testing.T) {
	// Given two ids that collapse to the same float64
	ids := []string{"9007199254740993", "9007199254740992"}

	for _, id := range ids {
		// When the event is decoded from the wire and translated
		ev, err := cdc.Decode(strings.NewReader(`{"type":"INSERT","table":"restaurants","record":{"id":` + id + `,"name":"Big"}}`))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		stmt, err := Translate(ev, testNow)
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}

		// Then the replica key is the exact integer text
		if args := argsByColumn(t, stmt, restaurantColumns); args["id"] != id {
			t.Errorf("id = %v, want %s", args["id"], id)
		}
	}

	ev, err := cdc.Decode(strings.NewReader(`{"type":"DELETE","table":"suppliers","old_record":{"id":9007199254740993}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	stmt, err := Translate(ev, testNow)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(stmt.Args) != 1 || stmt.Args[0] != "9007199254740993" {
		t.Errorf("delete args = %v", stmt.Args)
	}
}
