// Package search serves restaurant queries from the replica, combining full
// text, radius, category and allergen-safety filters into one statement.
package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/hyperengineering/edgereplica/internal/translator"
)

const (
	// DefaultRadiusMeters applies when the request gives no positive radius.
	DefaultRadiusMeters = 5000

	// MaxResults caps every result set. There is no pagination.
	MaxResults = 50

	// metersPerDegree is the length of one degree of latitude.
	metersPerDegree = 111320.0
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Params describes one search. A nil Location disables distance filtering
// and ordering.
type Params struct {
	Query        string   `json:"q,omitempty"`
	Location     *Point   `json:"location,omitempty"`
	RadiusMeters int      `json:"radius"`
	Cuisine      string   `json:"cuisine,omitempty"`
	PriceLevel   *int     `json:"price_level,omitempty"`
	Allergens    []string `json:"allergens,omitempty"`
}

// Normalize applies defaults and canonicalizes free-form inputs so that
// equivalent requests build identical statements.
func (p Params) Normalize() Params {
	out := p
	out.Query = strings.TrimSpace(p.Query)
	out.Cuisine = strings.TrimSpace(p.Cuisine)
	if out.RadiusMeters <= 0 {
		out.RadiusMeters = DefaultRadiusMeters
	}

	seen := make(map[string]bool, len(p.Allergens))
	out.Allergens = nil
	for _, a := range p.Allergens {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out.Allergens = append(out.Allergens, a)
	}
	return out
}

var selectColumns = []string{
	"id", "name", "formatted_address", "latitude", "longitude",
	"primary_type", "place_types", "rating", "price_level",
	"phone_number", "website", "photo_references",
	"is_open_now", "has_supply_chain_data", "created_at", "updated_at",
}

// Build assembles the parameterized search statement. limit is clamped to
// MaxResults.
//
// Distance is an equirectangular approximation: longitude deltas are scaled
// by cos(lat0) and the result is compared in squared degrees, so no SQL math
// functions are needed. Callers convert distance_sq to meters with
// DistanceMeters.
func Build(p Params, limit int) (string, []any) {
	p = p.Normalize()
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	cols := append([]string(nil), selectColumns...)

	if p.Location != nil {
		dist := distanceExpr(sb, *p.Location)
		cols = append(cols, sb.As(dist, "distance_sq"))

		radiusDeg := float64(p.RadiusMeters) / metersPerDegree
		sb.Where(
			sb.IsNotNull("latitude"),
			sb.IsNotNull("longitude"),
			fmt.Sprintf("%s <= %s", distanceExpr(sb, *p.Location), sb.Var(radiusDeg*radiusDeg)),
		)
	}

	sb.Select(cols...)
	sb.From("restaurants")

	if match := ftsQuery(p.Query); match != "" {
		sb.Where(fmt.Sprintf(
			"id IN (SELECT id FROM restaurants_fts WHERE restaurants_fts MATCH %s)",
			sb.Var(match),
		))
	}

	if p.Cuisine != "" {
		sb.Where(fmt.Sprintf(`place_types LIKE %s ESCAPE '\'`,
			sb.Var("%"+escapeLike(strings.ToLower(p.Cuisine))+"%")))
	}

	if p.PriceLevel != nil {
		sb.Where(sb.Equal("price_level", *p.PriceLevel))
	}

	// Any one requested allergen with a low-risk protocol qualifies.
	if len(p.Allergens) > 0 {
		allergens := make([]any, len(p.Allergens))
		for i, a := range p.Allergens {
			allergens[i] = a
		}
		sb.Where(fmt.Sprintf(
			"id IN (SELECT restaurant_id FROM allergen_protocols WHERE %s AND %s)",
			sb.In("allergen", allergens...),
			sb.Equal("cross_contamination_risk", translator.RiskLow),
		))
	}

	if p.Location != nil {
		sb.OrderBy("distance_sq ASC", "id ASC")
	} else {
		sb.OrderBy("rating DESC", "name ASC", "id ASC")
	}
	sb.Limit(limit)

	return sb.Build()
}

// distanceExpr renders the squared planar distance in degrees from origin.
func distanceExpr(sb *sqlbuilder.SelectBuilder, origin Point) string {
	cosLat := math.Cos(origin.Lat * math.Pi / 180)
	dy := func() string {
		return fmt.Sprintf("(latitude - %s)", sb.Var(origin.Lat))
	}
	dx := func() string {
		return fmt.Sprintf("((longitude - %s) * %s)", sb.Var(origin.Lng), sb.Var(cosLat))
	}
	return fmt.Sprintf("(%s * %s + %s * %s)", dy(), dy(), dx(), dx())
}

// DistanceMeters converts a squared-degree distance to meters.
func DistanceMeters(distanceSq float64) float64 {
	if distanceSq <= 0 {
		return 0
	}
	return math.Sqrt(distanceSq) * metersPerDegree
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ftsQuery turns free text into an FTS5 expression: every token is quoted,
// so operators in user input are matched literally, and prefix-matched.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}
