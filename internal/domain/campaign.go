package domain

import (
	"time"
)

// CampaignStatus enumerates the stored lifecycle states of a campaign.
// "ended" is never stored; it is derived from the campaign window by
// EffectiveStatus so that storage and clock can never disagree.
type CampaignStatus string

const (
	CampaignDraft  CampaignStatus = "draft"
	CampaignActive CampaignStatus = "active"
	CampaignEnded  CampaignStatus = "ended"
)

// BonusActionType enumerates the kinds of bonus actions a campaign can offer.
type BonusActionType string

const (
	BonusSocialShare BonusActionType = "social_share"
	BonusVisitLink   BonusActionType = "visit_link"
	BonusCustom      BonusActionType = "custom"
)

// BonusAction is an optional task participants can complete for extra points.
type BonusAction struct {
	ID     string          `json:"id"`
	Type   BonusActionType `json:"type"`
	Title  string          `json:"title"`
	Points int             `json:"points"`
	Link   string          `json:"link,omitempty"`
}

// EntryOptions configures how participants may enter a campaign.
type EntryOptions struct {
	EmailOptIn      bool          `json:"email_opt_in"`
	ReferralEnabled bool          `json:"referral_enabled"`
	BonusActions    []BonusAction `json:"bonus_actions"`
}

// PointsConfig holds the point awards for a campaign.
type PointsConfig struct {
	ReferralPoints int `json:"referral_points"`
}

// AutoresponderConfig is the pro-gated autoresponder integration.
type AutoresponderConfig struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`
}

// ProFeatures holds subscription-gated campaign integrations.
type ProFeatures struct {
	Autoresponder AutoresponderConfig `json:"autoresponder_integration"`
	WebhookURL    string              `json:"webhook_url,omitempty"`
}

// Campaign represents a time-boxed giveaway configuration owned by a marketer.
type Campaign struct {
	ID            string         `json:"id" db:"id"`
	OwnerID       string         `json:"owner_id" db:"owner_id"`
	Title         string         `json:"title" db:"title"`
	Description   string         `json:"description" db:"description"`
	Slug          *string        `json:"slug" db:"slug"`
	StartDate     time.Time      `json:"start_date" db:"start_date"`
	EndDate       time.Time      `json:"end_date" db:"end_date"`
	Status        CampaignStatus `json:"status" db:"status"`
	PrizeTitle    string         `json:"prize_title" db:"prize_title"`
	PrizeDesc     string         `json:"prize_description" db:"prize_description"`
	NumWinners    int            `json:"num_winners" db:"num_winners"`
	FeaturedImage string         `json:"featured_image" db:"featured_image"`
	EntryOptions  EntryOptions   `json:"entry_options" db:"entry_options"`
	PointsConfig  PointsConfig   `json:"points_config" db:"points_config"`
	ProFeatures   ProFeatures    `json:"pro_features" db:"pro_features"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus reconciles the stored status with the campaign window.
// A published campaign whose end date has passed reads as ended everywhere,
// regardless of what storage says.
func (c *Campaign) EffectiveStatus(now time.Time) CampaignStatus {
	if c.Status == CampaignActive && now.After(c.EndDate) {
		return CampaignEnded
	}
	return c.Status
}

// AcceptsEntries reports whether a participant may enter right now.
func (c *Campaign) AcceptsEntries(now time.Time) bool {
	return c.EffectiveStatus(now) == CampaignActive
}

// FindBonusAction returns the configured bonus action with the given ID.
func (c *Campaign) FindBonusAction(actionID string) (BonusAction, bool) {
	for _, a := range c.EntryOptions.BonusActions {
		if a.ID == actionID {
			return a, true
		}
	}
	return BonusAction{}, false
}
