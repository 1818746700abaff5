package entry

import (
	"context"

	"github.com/prizejet/prizejet/internal/domain"
)

// Repository defines the data access contract for entries.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single entry. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Entry, error)

	// GetByReferralCode resolves a referral code to the entry that owns it,
	// scoped to one campaign. Returns ErrNotFound for unknown codes.
	GetByReferralCode(ctx context.Context, campaignID, code string) (*domain.Entry, error)

	// List returns entries for a campaign ordered by created_at DESC,
	// optionally filtered by a name/email search term.
	List(ctx context.Context, campaignID string, f ListFilter) ([]domain.Entry, int, error)

	// ListAll returns every entry for a campaign. Used by analytics, which
	// derives all statistics from the full collection.
	ListAll(ctx context.Context, campaignID string) ([]domain.Entry, error)

	// Count returns the number of entries for a campaign.
	Count(ctx context.Context, campaignID string) (int, error)

	// Create inserts a new entry. The storage layer enforces email
	// uniqueness per campaign (ErrDuplicateEntry) and global referral-code
	// uniqueness (ErrCodeCollision).
	Create(ctx context.Context, e *domain.Entry) error

	// AddPoints atomically increments an entry's points. The increment must
	// be a single atomic add at the data store, never read-modify-write.
	AddPoints(ctx context.Context, id string, delta int) error

	// CompleteBonusAction records a bonus-action completion and credits the
	// points in one transaction. Returns false without error if the action
	// was already completed for this entry.
	CompleteBonusAction(ctx context.Context, entryID, actionID string, points int) (bool, error)
}

// ListFilter controls pagination and search for entry lists.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
