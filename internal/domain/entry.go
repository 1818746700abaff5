package domain

import (
	"time"
)

// Entry is one participant's admission record into a campaign. Entries are
// immutable after creation except for Points (incremented when someone they
// referred enters, or when a bonus action completes) and the completed
// bonus-action set.
type Entry struct {
	ID           string    `json:"id" db:"id"`
	CampaignID   string    `json:"campaign_id" db:"campaign_id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	ReferralCode string    `json:"referral_code" db:"referral_code"`
	ReferrerID   *string   `json:"referrer_id" db:"referrer_id"`
	Points       int       `json:"points" db:"points"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	BonusActions []string  `json:"bonus_actions_completed" db:"bonus_actions_completed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsReferred reports whether this entry arrived via a referral link.
func (e *Entry) IsReferred() bool {
	return e.ReferrerID != nil && *e.ReferrerID != ""
}

// HasCompleted reports whether the given bonus action is already completed.
func (e *Entry) HasCompleted(actionID string) bool {
	for _, id := range e.BonusActions {
		if id == actionID {
			return true
		}
	}
	return false
}
