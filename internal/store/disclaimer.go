package store

import (
	"context"
	"fmt"
)

// InsertDisclaimer appends an acceptance record. Records are never updated;
// a duplicate id is an error.
func (s *SQLiteStore) InsertDisclaimer(ctx context.Context, d DisclaimerAcceptance) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO disclaimer_acceptances (
			id, user_id, disclaimer_type, disclaimer_version,
			ip_address, user_agent, country, region, page_url, accepted_at
		) VALUES (
			:id, :user_id, :disclaimer_type, :disclaimer_version,
			:ip_address, :user_agent, :country, :region, :page_url, :accepted_at
		)
	`, d)
	if err != nil {
		return fmt.Errorf("insert disclaimer acceptance: %w", err)
	}
	return nil
}

// ListDisclaimers returns a user's acceptances, oldest first.
func (s *SQLiteStore) ListDisclaimers(ctx context.Context, userID string) ([]DisclaimerAcceptance, error) {
	var out []DisclaimerAcceptance
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, user_id, disclaimer_type, disclaimer_version,
		       ip_address, user_agent, country, region, page_url, accepted_at
		FROM disclaimer_acceptances
		WHERE user_id = ?
		ORDER BY accepted_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list disclaimer acceptances: %w", err)
	}
	return out, nil
}
