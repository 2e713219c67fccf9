package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperengineering/edgereplica/internal/metrics"
	"github.com/hyperengineering/edgereplica/internal/store"
)

// Querier runs a built restaurants query.
type Querier interface {
	QueryRestaurants(ctx context.Context, query string, args ...any) ([]store.RestaurantRow, error)
}

// Restaurant is a search hit as returned to clients.
type Restaurant struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	FormattedAddress   *string  `json:"formatted_address"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	PrimaryType        *string  `json:"primary_type"`
	PlaceTypes         []string `json:"place_types"`
	Rating             *float64 `json:"rating"`
	PriceLevel         *int64   `json:"price_level"`
	PhoneNumber        *string  `json:"phone_number"`
	Website            *string  `json:"website"`
	PhotoReferences    []string `json:"photo_references"`
	IsOpenNow          bool     `json:"is_open_now"`
	HasSupplyChainData bool     `json:"has_supply_chain_data"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
	DistanceMeters     *float64 `json:"distance_meters,omitempty"`
}

// Response is the search result envelope.
type Response struct {
	Restaurants []Restaurant `json:"restaurants"`
	Count       int          `json:"count"`
	Query       Params       `json:"query"`
}

// Service answers searches from the replica.
type Service struct {
	q          Querier
	maxResults int
}

// NewService creates a search service. maxResults <= 0 means MaxResults.
func NewService(q Querier, maxResults int) *Service {
	return &Service{q: q, maxResults: maxResults}
}

// Search runs p against the replica.
func (s *Service) Search(ctx context.Context, p Params) (*Response, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	p = p.Normalize()
	query, args := Build(p, s.maxResults)

	rows, err := s.q.QueryRestaurants(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}

	out := make([]Restaurant, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRestaurant(row))
	}

	return &Response{
		Restaurants: out,
		Count:       len(out),
		Query:       p,
	}, nil
}

func toRestaurant(row store.RestaurantRow) Restaurant {
	r := Restaurant{
		ID:                 row.ID,
		Name:               row.Name,
		FormattedAddress:   row.FormattedAddress,
		Latitude:           row.Latitude,
		Longitude:          row.Longitude,
		PrimaryType:        row.PrimaryType,
		PlaceTypes:         decodeList(row.PlaceTypes),
		Rating:             row.Rating,
		PriceLevel:         row.PriceLevel,
		PhoneNumber:        row.PhoneNumber,
		Website:            row.Website,
		PhotoReferences:    decodeList(row.PhotoReferences),
		IsOpenNow:          row.IsOpenNow != 0,
		HasSupplyChainData: row.HasSupplyChainData != 0,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.DistanceSq != nil {
		d := DistanceMeters(*row.DistanceSq)
		r.DistanceMeters = &d
	}
	return r
}

// decodeList reads a JSON-encoded list column. Malformed values decode as
// an empty list.
func decodeList(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{}
	}
	return out
}
