// Package postgres implements the service repository interfaces against
// PostgreSQL. Uniqueness rules the services rely on (one email per
// campaign, globally unique referral codes and slugs) are enforced here by
// database constraints, and constraint violations are mapped back to the
// services' sentinel errors.
package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// Constraint names from migrations/001_init.sql.
const (
	constraintCampaignSlug  = "campaigns_slug_key"
	constraintEntryEmail    = "campaign_entries_campaign_id_email_key"
	constraintReferralCode  = "campaign_entries_referral_code_key"
)

// uniqueViolation reports whether err is a unique-constraint violation on
// the named constraint.
func uniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == constraint
}
