package translator

import (
	"fmt"
	"time"

	"github.com/hyperengineering/edgereplica/internal/cdc"
)

// restaurantRecord is the row image of a restaurant (or cached place).
type restaurantRecord struct {
	ID                 cdc.ID         `json:"id"`
	PlaceID            cdc.ID         `json:"place_id"`
	Name               string         `json:"name" validate:"required"`
	FormattedAddress   *string        `json:"formatted_address"`
	Latitude           *float64       `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64       `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	PrimaryType        *string        `json:"primary_type"`
	PlaceTypes         cdc.StringList `json:"place_types"`
	Rating             *float64       `json:"rating" validate:"omitempty,gte=0,lte=5"`
	PriceLevel         *int           `json:"price_level" validate:"omitempty,gte=0,lte=4"`
	PhoneNumber        *string        `json:"phone_number"`
	Website            *string        `json:"website"`
	PhotoReferences    cdc.StringList `json:"photo_references"`
	IsOpenNow          *bool          `json:"is_open_now"`
	HasSupplyChainData *bool          `json:"has_supply_chain_data"`
	CreatedAt          *string        `json:"created_at"`
}

// key prefers the source id and falls back to the place id.
func (r restaurantRecord) key() string {
	if r.ID != "" {
		return r.ID.String()
	}
	return r.PlaceID.String()
}

var restaurantColumns = []string{
	"id", "name", "formatted_address", "latitude", "longitude",
	"primary_type", "place_types", "rating", "price_level",
	"phone_number", "website", "photo_references",
	"is_open_now", "has_supply_chain_data", "created_at", "updated_at",
}

func translateRestaurant(ev cdc.Event, now time.Time) (Statement, error) {
	if ev.IsDelete() {
		id, err := deleteKey(ev, true)
		if err != nil {
			return Statement{}, err
		}
		return deleteByID("restaurants", id), nil
	}

	rec, err := cdc.DecodeRecord[restaurantRecord](ev.Record)
	if err != nil {
		return Statement{}, fmt.Errorf("restaurants: %w", err)
	}
	id := rec.key()
	if id == "" {
		return Statement{}, fmt.Errorf("restaurants: %w", ErrMissingID)
	}

	return upsert("restaurants", restaurantColumns, []any{
		id,
		rec.Name,
		rec.FormattedAddress,
		rec.Latitude,
		rec.Longitude,
		rec.PrimaryType,
		rec.PlaceTypes.JSON(),
		rec.Rating,
		rec.PriceLevel,
		rec.PhoneNumber,
		rec.Website,
		rec.PhotoReferences.JSON(),
		boolInt(rec.IsOpenNow, false),
		boolInt(rec.HasSupplyChainData, false),
		timestampOr(rec.CreatedAt, now),
		formatTime(now),
	}), nil
}
