package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNotFound    = errors.New("campaign not found")
	ErrNotDraft    = errors.New("campaign is not a draft")
	ErrSlugTaken   = errors.New("campaign slug already in use")
	ErrProRequired = errors.New("pro subscription required for this feature")
)
