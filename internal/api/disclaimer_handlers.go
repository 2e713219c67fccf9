package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/edgereplica/internal/store"
	"github.com/hyperengineering/edgereplica/internal/validation"
)

const (
	maxIdentifierLength = 256
	maxPageURLLength    = 2048
	maxUserAgentLength  = 1024
)

// DisclaimerRequest is the client body of POST /api/disclaimer. Geo fields
// are derived from edge headers and are not accepted here.
type DisclaimerRequest struct {
	UserID            string  `json:"user_id"`
	DisclaimerType    string  `json:"disclaimer_type"`
	DisclaimerVersion string  `json:"disclaimer_version"`
	PageURL           *string `json:"page_url"`
}

// DisclaimerResponse is the body of a recorded acceptance.
type DisclaimerResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// AcceptDisclaimer handles POST /api/disclaimer. Every call appends a new
// record.
func (h *Handler) AcceptDisclaimer(w http.ResponseWriter, r *http.Request) {
	var req DisclaimerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	required := &validation.Collector{}
	required.Add(validation.ValidateRequired("user_id", req.UserID))
	required.Add(validation.ValidateRequired("disclaimer_type", req.DisclaimerType))
	required.Add(validation.ValidateRequired("disclaimer_version", req.DisclaimerVersion))
	if required.HasErrors() {
		WriteMissingFields(w, r, required.Fields())
		return
	}

	vc := &validation.Collector{}
	vc.Add(validation.ValidateText("user_id", req.UserID, maxIdentifierLength))
	vc.Add(validation.ValidateText("disclaimer_type", req.DisclaimerType, maxIdentifierLength))
	vc.Add(validation.ValidateText("disclaimer_version", req.DisclaimerVersion, maxIdentifierLength))
	if req.PageURL != nil {
		vc.Add(validation.ValidateText("page_url", *req.PageURL, maxPageURLLength))
	}
	if vc.HasErrors() {
		WriteError(w, r, http.StatusBadRequest, "Invalid fields", vc.Message())
		return
	}

	d := store.DisclaimerAcceptance{
		ID:                ulid.Make().String(),
		UserID:            strings.TrimSpace(req.UserID),
		DisclaimerType:    strings.TrimSpace(req.DisclaimerType),
		DisclaimerVersion: strings.TrimSpace(req.DisclaimerVersion),
		IPAddress:         optional(clientIP(r)),
		UserAgent:         optional(truncate(r.Header.Get("User-Agent"), maxUserAgentLength)),
		Country:           optional(r.Header.Get("CF-IPCountry")),
		Region:            optional(r.Header.Get("CF-Region")),
		PageURL:           req.PageURL,
		AcceptedAt:        h.now().UTC().Format(time.RFC3339Nano),
	}

	if err := h.store.InsertDisclaimer(r.Context(), d); err != nil {
		slog.Error("disclaimer insert failed",
			"component", "api",
			"action", "disclaimer",
			"disclaimer_type", d.DisclaimerType,
			"error", err,
		)
		WriteError(w, r, http.StatusInternalServerError, "Failed to record disclaimer acceptance", "")
		return
	}

	slog.Info("disclaimer accepted",
		"component", "api",
		"action", "disclaimer",
		"id", d.ID,
		"disclaimer_type", d.DisclaimerType,
		"disclaimer_version", d.DisclaimerVersion,
	)

	writeJSON(w, http.StatusCreated, DisclaimerResponse{Success: true, ID: d.ID})
}

// clientIP prefers the edge-provided address, then the first forwarded hop,
// then X-Real-IP, then the connection address.
func clientIP(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); v != "" {
		return v
	}
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		first, _, _ := strings.Cut(v, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
		return v
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
