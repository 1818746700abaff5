package entry

import "errors"

// Sentinel errors for the entry service layer.
var (
	ErrNotFound          = errors.New("entry not found")
	ErrValidation        = errors.New("name and email are required")
	ErrDuplicateEntry    = errors.New("email already entered this campaign")
	ErrCampaignNotActive = errors.New("campaign is not accepting entries")
	ErrUnknownAction     = errors.New("bonus action not configured for this campaign")

	// ErrCodeCollision is returned by repositories when a generated
	// referral code is already taken. The service retries with a fresh
	// code; callers outside this package should never observe it.
	ErrCodeCollision = errors.New("referral code already in use")
)
