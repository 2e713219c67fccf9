package store

import (
	"context"

	"github.com/hyperengineering/edgereplica/internal/translator"
)

// Store defines the interface contract for replica operations.
type Store interface {
	// Apply executes one translated change statement and returns the
	// number of affected rows.
	Apply(ctx context.Context, stmt translator.Statement) (int64, error)
	QueryRestaurants(ctx context.Context, query string, args ...any) ([]RestaurantRow, error)
	InsertDisclaimer(ctx context.Context, d DisclaimerAcceptance) error
	GetStats(ctx context.Context) (*Stats, error)
	Ping(ctx context.Context) error
	Close() error
}

// RestaurantRow is a restaurants row as stored in the replica. DistanceSq is
// only populated by location-constrained search queries.
type RestaurantRow struct {
	ID                 string   `db:"id"`
	Name               string   `db:"name"`
	FormattedAddress   *string  `db:"formatted_address"`
	Latitude           *float64 `db:"latitude"`
	Longitude          *float64 `db:"longitude"`
	PrimaryType        *string  `db:"primary_type"`
	PlaceTypes         string   `db:"place_types"`
	Rating             *float64 `db:"rating"`
	PriceLevel         *int64   `db:"price_level"`
	PhoneNumber        *string  `db:"phone_number"`
	Website            *string  `db:"website"`
	PhotoReferences    string   `db:"photo_references"`
	IsOpenNow          int64    `db:"is_open_now"`
	HasSupplyChainData int64    `db:"has_supply_chain_data"`
	CreatedAt          string   `db:"created_at"`
	UpdatedAt          string   `db:"updated_at"`
	DistanceSq         *float64 `db:"distance_sq"`
}

// DisclaimerAcceptance is one append-only compliance record.
type DisclaimerAcceptance struct {
	ID                string  `db:"id" json:"id"`
	UserID            string  `db:"user_id" json:"user_id"`
	DisclaimerType    string  `db:"disclaimer_type" json:"disclaimer_type"`
	DisclaimerVersion string  `db:"disclaimer_version" json:"disclaimer_version"`
	IPAddress         *string `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent         *string `db:"user_agent" json:"user_agent,omitempty"`
	Country           *string `db:"country" json:"country,omitempty"`
	Region            *string `db:"region" json:"region,omitempty"`
	PageURL           *string `db:"page_url" json:"page_url,omitempty"`
	AcceptedAt        string  `db:"accepted_at" json:"accepted_at"`
}

// Stats aggregates replica row counts.
type Stats struct {
	Restaurants           int64   `db:"restaurants" json:"restaurants"`
	Suppliers             int64   `db:"suppliers" json:"suppliers"`
	SupplierRelationships int64   `db:"supplier_relationships" json:"supplier_relationships"`
	AllergenProtocols     int64   `db:"allergen_protocols" json:"allergen_protocols"`
	DisclaimerAcceptances int64   `db:"disclaimer_acceptances" json:"disclaimer_acceptances"`
	LastReplicaUpdate     *string `db:"last_replica_update" json:"last_replica_update"`
}
