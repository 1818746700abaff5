package campaign

import (
	"context"

	"github.com/prizejet/prizejet/internal/domain"
)

// Repository defines the data access contract for campaigns.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign owned by ownerID. Returns ErrNotFound
	// if it doesn't exist or belongs to someone else.
	Get(ctx context.Context, ownerID, id string) (*domain.Campaign, error)

	// GetBySlug resolves a published campaign by its public slug. Drafts
	// never resolve; returns ErrNotFound for unknown or unpublished slugs.
	GetBySlug(ctx context.Context, slug string) (*domain.Campaign, error)

	// List returns campaigns owned by ownerID, ordered by created_at DESC.
	List(ctx context.Context, ownerID string, filter ListFilter) ([]domain.Campaign, int, error)

	// Create inserts a new campaign and returns its ID.
	Create(ctx context.Context, c *domain.Campaign) (string, error)

	// Update replaces the mutable fields of a draft campaign.
	Update(ctx context.Context, c *domain.Campaign) error

	// Publish transitions a campaign to active and records its slug.
	// Returns ErrSlugTaken if another campaign already owns the slug.
	Publish(ctx context.Context, ownerID, id, slug string) error

	// Delete removes a campaign. Only drafts can be deleted.
	Delete(ctx context.Context, ownerID, id string) error

	// SetFeaturedImage updates the featured image URL.
	SetFeaturedImage(ctx context.Context, ownerID, id, url string) error
}

// ListFilter controls pagination and filtering for campaign lists.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}
