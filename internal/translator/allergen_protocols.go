package translator

import (
	"fmt"
	"time"

	"github.com/hyperengineering/edgereplica/internal/cdc"
)

// RiskLow is the cross-contamination rating that makes a restaurant eligible
// for allergen-constrained search.
const RiskLow = "low"

type allergenProtocolRecord struct {
	ID                     cdc.ID  `json:"id" validate:"required"`
	RestaurantID           cdc.ID  `json:"restaurant_id" validate:"required"`
	Allergen               string  `json:"allergen" validate:"required"`
	CrossContaminationRisk string  `json:"cross_contamination_risk"`
	ProtocolDescription    *string `json:"protocol_description"`
	LastUpdated            *string `json:"last_updated"`
	CreatedAt              *string `json:"created_at"`
}

var allergenProtocolColumns = []string{
	"id", "restaurant_id", "allergen", "cross_contamination_risk",
	"protocol_description", "last_updated", "created_at", "updated_at",
}

// translateAllergenProtocol stores allergen and risk lower-cased so the
// search filter can compare them exactly.
func translateAllergenProtocol(ev cdc.Event, now time.Time) (Statement, error) {
	if ev.IsDelete() {
		id, err := deleteKey(ev, false)
		if err != nil {
			return Statement{}, err
		}
		return deleteByID("allergen_protocols", id), nil
	}

	rec, err := cdc.DecodeRecord[allergenProtocolRecord](ev.Record)
	if err != nil {
		return Statement{}, fmt.Errorf("allergen_protocols: %w", err)
	}

	return upsert("allergen_protocols", allergenProtocolColumns, []any{
		rec.ID.String(),
		rec.RestaurantID.String(),
		normalizeKey(rec.Allergen),
		normalizeKey(rec.CrossContaminationRisk),
		rec.ProtocolDescription,
		timestampOr(rec.LastUpdated, now),
		timestampOr(rec.CreatedAt, now),
		formatTime(now),
	}), nil
}
