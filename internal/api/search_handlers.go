package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperengineering/edgereplica/internal/cache"
	"github.com/hyperengineering/edgereplica/internal/search"
	"github.com/hyperengineering/edgereplica/internal/validation"
)

// SearchRestaurants handles GET /api/restaurants/search.
func (h *Handler) SearchRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, vc := parseSearchParams(r.URL.Query(), h.defaultRadius)
	if vc.HasErrors() {
		WriteError(w, r, http.StatusBadRequest, "Invalid search parameters", vc.Message())
		return
	}
	params = params.Normalize()

	key, err := cache.Key("search", params)
	if err == nil {
		if body, err := h.cache.Get(ctx, key); err == nil {
			h.writeSearchBody(w, body, "HIT")
			return
		} else if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("search cache read failed", "component", "api", "action", "search", "error", err)
		}
	}

	resp, err := h.search.Search(ctx, params)
	if err != nil {
		slog.Error("search failed",
			"component", "api",
			"action", "search",
			"error", err,
		)
		WriteError(w, r, http.StatusInternalServerError, "Search failed", "")
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "Search failed", "")
		return
	}

	if key != "" {
		if err := h.cache.Set(ctx, key, body, h.cacheTTL); err != nil {
			slog.Warn("search cache write failed", "component", "api", "action", "search", "error", err)
		}
	}

	h.writeSearchBody(w, body, "MISS")
}

// writeSearchBody writes a successful search response. Only successes carry
// the shared-cache directive.
func (h *Handler) writeSearchBody(w http.ResponseWriter, body []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.cacheTTL.Seconds())))
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// parseSearchParams reads search query parameters. lat and lng come as a
// pair: both or neither. 0,0 is a valid origin.
func parseSearchParams(q url.Values, defaultRadius int) (search.Params, *validation.Collector) {
	vc := &validation.Collector{}
	p := search.Params{
		Query:        q.Get("q"),
		Cuisine:      q.Get("cuisine"),
		RadiusMeters: defaultRadius,
	}

	latStr, lngStr := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lng"))
	switch {
	case latStr != "" && lngStr == "":
		vc.Add(&validation.ValidationError{Field: "lng", Message: "is required when lat is given"})
	case latStr == "" && lngStr != "":
		vc.Add(&validation.ValidationError{Field: "lat", Message: "is required when lng is given"})
	case latStr != "" && lngStr != "":
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		switch {
		case latErr != nil:
			vc.Add(&validation.ValidationError{Field: "lat", Message: "must be a number"})
		case lngErr != nil:
			vc.Add(&validation.ValidationError{Field: "lng", Message: "must be a number"})
		default:
			vc.Add(validation.ValidateRange("lat", lat, -90, 90))
			vc.Add(validation.ValidateRange("lng", lng, -180, 180))
			p.Location = &search.Point{Lat: lat, Lng: lng}
		}
	}

	if v := strings.TrimSpace(q.Get("radius")); v != "" {
		radius, err := strconv.Atoi(v)
		if err != nil {
			vc.Add(&validation.ValidationError{Field: "radius", Message: "must be an integer"})
		} else {
			vc.Add(validation.ValidateRange("radius", float64(radius), 1, 100000))
			p.RadiusMeters = radius
		}
	}

	if v := strings.TrimSpace(q.Get("priceLevel")); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			vc.Add(&validation.ValidationError{Field: "priceLevel", Message: "must be an integer"})
		} else {
			vc.Add(validation.ValidateRange("priceLevel", float64(level), 0, 4))
			p.PriceLevel = &level
		}
	}

	vc.Add(validation.ValidateText("q", p.Query, 200))
	p.Allergens = q["allergen"]

	return p, vc
}
